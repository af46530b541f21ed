package checkout

import (
	"fmt"
	"regexp"
	"sort"
	"strings"

	"github.com/ray-remotestate/pizzeria/models"
)

var (
	emailPattern      = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)
	phonePattern      = regexp.MustCompile(`^\+?[0-9 /()-]{6,20}$`)
	postalCodePattern = regexp.MustCompile(`^[0-9]{5}$`)
)

// ValidationErrors maps a request field to what is wrong with it.
type ValidationErrors map[string]string

func (v ValidationErrors) Error() string {
	fields := make([]string, 0, len(v))
	for f := range v {
		fields = append(fields, f)
	}
	sort.Strings(fields)

	parts := make([]string, 0, len(fields))
	for _, f := range fields {
		parts = append(parts, f+": "+v[f])
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

func required(errs ValidationErrors, field, value string) bool {
	if strings.TrimSpace(value) == "" {
		errs[field] = "is required"
		return false
	}
	return true
}

func validate(req Request) ValidationErrors {
	errs := ValidationErrors{}

	required(errs, "firstName", req.Customer.FirstName)
	required(errs, "lastName", req.Customer.LastName)
	if required(errs, "email", req.Customer.Email) && !emailPattern.MatchString(strings.TrimSpace(req.Customer.Email)) {
		errs["email"] = "is not a valid email address"
	}
	if required(errs, "phone", req.Customer.Phone) && !phonePattern.MatchString(strings.TrimSpace(req.Customer.Phone)) {
		errs["phone"] = "is not a valid phone number"
	}

	required(errs, "street", req.Address.Street)
	required(errs, "houseNumber", req.Address.HouseNumber)
	if required(errs, "postalCode", req.Address.PostalCode) && !postalCodePattern.MatchString(strings.TrimSpace(req.Address.PostalCode)) {
		errs["postalCode"] = "must have 5 digits"
	}
	required(errs, "city", req.Address.City)

	if !req.PaymentMethod.IsValid() {
		errs["paymentMethod"] = fmt.Sprintf("must be %q or %q", models.PaymentCash, models.PaymentPayPal)
	}

	if len(req.Items) == 0 {
		errs["items"] = "must not be empty"
	}
	for i, it := range req.Items {
		if it.Quantity <= 0 {
			errs[fmt.Sprintf("items[%d].quantity", i)] = "must be positive"
		}
		if it.PriceAtOrder < 0 {
			errs[fmt.Sprintf("items[%d].priceAtOrder", i)] = "must not be negative"
		}
	}

	if len(errs) == 0 {
		return nil
	}
	return errs
}
