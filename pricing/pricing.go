// Package pricing turns a configured product into a unit price in cents and
// the human readable extras list that goes with it.
//
// Prices are integer cents end to end. Conversion to a display string only
// happens in FormatCents and is never parsed back.
package pricing

import (
	"strings"

	"github.com/shopspring/decimal"

	"github.com/ray-remotestate/pizzeria/models"
)

// Quote is the priced form of one selection.
type Quote struct {
	UnitPrice int64    `json:"unitPrice"`
	Extras    []string `json:"extras"`
}

// UnitPrice returns the variant price when a variant is present, the base
// price otherwise, plus every extra increment.
func UnitPrice(basePrice int64, variant *models.Variant, extras []models.Extra) int64 {
	price := basePrice
	if variant != nil {
		price = variant.Price
	}
	for _, e := range extras {
		price += e.Price
	}
	return price
}

// ResolveExtras looks up extra names in an offered option list. Names the
// list does not know keep a zero price.
func ResolveExtras(offered []models.Extra, names []string) []models.Extra {
	out := make([]models.Extra, 0, len(names))
	seen := make(map[string]bool, len(names))
	for _, name := range names {
		if seen[name] {
			continue
		}
		seen[name] = true
		if e, ok := models.FindExtra(offered, name); ok {
			out = append(out, e)
			continue
		}
		out = append(out, models.Extra{Name: name})
	}
	return out
}

// ResolveVariant returns nil when no variant of that name exists, in which
// case the base price applies.
func ResolveVariant(variants models.Variants, name string) *models.Variant {
	if name == "" {
		return nil
	}
	v, ok := variants.Find(name)
	if !ok {
		return nil
	}
	return &v
}

// PriceSelection prices a full selection, bundle slots included.
func PriceSelection(basePrice int64, sel models.Selection) Quote {
	all := append([]models.Extra(nil), sel.Extras...)
	desc := DescribeExtras(sel.Extras)

	for _, slot := range sel.Slots {
		if slot.Choice != nil {
			all = append(all, *slot.Choice)
			desc = append(desc, slot.Label+": "+DescribeExtra(*slot.Choice))
		}
		for _, e := range slot.Extras {
			all = append(all, e)
			desc = append(desc, slot.Label+": "+DescribeExtra(e))
		}
	}

	return Quote{
		UnitPrice: UnitPrice(basePrice, sel.Variant, all),
		Extras:    desc,
	}
}

// DescribeExtra renders "mit Oliven (+1,00€)" for priced extras and the bare
// name for included ones.
func DescribeExtra(e models.Extra) string {
	if e.Price <= 0 {
		return e.Name
	}
	return e.Name + " (+" + FormatCents(e.Price) + ")"
}

func DescribeExtras(extras []models.Extra) []string {
	out := make([]string, 0, len(extras))
	for _, e := range extras {
		out = append(out, DescribeExtra(e))
	}
	return out
}

// FormatCents renders cents in the shop's locale: 1250 -> "12,50€".
func FormatCents(cents int64) string {
	s := decimal.New(cents, -2).StringFixed(2)
	return strings.Replace(s, ".", ",", 1) + "€"
}
