package models

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"time"
)

// Family decides which configuration steps a product walks through before it
// can be added to the cart.
type Family string

const (
	FamilySimple          Family = "simple"
	FamilySized           Family = "sized"
	FamilyDonerBundle     Family = "doner_bundle"
	FamilyPizzaBundle2    Family = "pizza_bundle_2"
	FamilyPizzaBundle1    Family = "pizza_bundle_1"
	FamilyMandatoryChoice Family = "mandatory_choice"
)

func (f Family) IsValid() bool {
	switch f {
	case FamilySimple, FamilySized, FamilyDonerBundle, FamilyPizzaBundle2, FamilyPizzaBundle1, FamilyMandatoryChoice:
		return true
	}
	return false
}

func (f Family) IsBundle() bool {
	return f == FamilyDonerBundle || f == FamilyPizzaBundle2 || f == FamilyPizzaBundle1
}

// OptionSet names the static option list attached to a product.
type OptionSet string

const (
	OptionSetNone    OptionSet = "none"
	OptionSetPizza   OptionSet = "pizza"
	OptionSetCalzone OptionSet = "calzone"
	OptionSetPide    OptionSet = "pide"
	OptionSetDoner   OptionSet = "doner"
	OptionSetSalad   OptionSet = "salad"
)

// Extra is an add-on with an incremental price in cents. The name is the
// identity of the extra within its product.
type Extra struct {
	Name  string `json:"name"`
	Price int64  `json:"price"`
}

// Variant replaces the base price of its product, e.g. a pizza diameter.
type Variant struct {
	Name  string `json:"name"`
	Price int64  `json:"price"`
}

// Variants is stored as a jsonb column.
type Variants []Variant

func (v Variants) Value() (driver.Value, error) {
	if v == nil {
		return nil, nil
	}
	return json.Marshal(v)
}

func (v *Variants) Scan(src any) error {
	switch data := src.(type) {
	case nil:
		*v = nil
		return nil
	case []byte:
		return json.Unmarshal(data, v)
	case string:
		return json.Unmarshal([]byte(data), v)
	default:
		return errors.New("variants: unsupported column type")
	}
}

func (v Variants) Find(name string) (Variant, bool) {
	for _, variant := range v {
		if variant.Name == name {
			return variant, true
		}
	}
	return Variant{}, false
}

type Category struct {
	ID          int64  `db:"id" json:"id"`
	Name        string `db:"name" json:"name"`
	Slug        string `db:"slug" json:"slug"`
	Description string `db:"description" json:"description"`
	SortOrder   int    `db:"sort_order" json:"sortOrder"`
}

type Product struct {
	ID           int64     `db:"id" json:"id"`
	CategoryID   int64     `db:"category_id" json:"categoryId"`
	Name         string    `db:"name" json:"name"`
	Slug         string    `db:"slug" json:"slug"`
	Description  string    `db:"description" json:"description"`
	BasePrice    int64     `db:"base_price" json:"basePrice"`
	ImageURL     string    `db:"image_url" json:"imageUrl"`
	Family       Family    `db:"family" json:"family"`
	OptionSet    OptionSet `db:"option_set" json:"optionSet"`
	Variants     Variants  `db:"variants" json:"variants"`
	Extras       []Extra   `db:"-" json:"extras,omitempty"`
	IsFeatured   bool      `db:"is_featured" json:"isFeatured"`
	IsVegetarian bool      `db:"is_vegetarian" json:"isVegetarian"`
	IsVegan      bool      `db:"is_vegan" json:"isVegan"`
	IsSpicy      bool      `db:"is_spicy" json:"isSpicy"`
	IsAvailable  bool      `db:"is_available" json:"isAvailable"`
	CreatedAt    time.Time `db:"created_at" json:"createdAt"`
}

func (p Product) HasVariants() bool {
	return len(p.Variants) > 0
}

func FindExtra(list []Extra, name string) (Extra, bool) {
	for _, e := range list {
		if e.Name == name {
			return e, true
		}
	}
	return Extra{}, false
}

// MarshalJSON adds the derived hasVariants flag to the wire form.
func (p Product) MarshalJSON() ([]byte, error) {
	type product Product
	return json.Marshal(struct {
		product
		HasVariants bool `json:"hasVariants"`
	}{product(p), p.HasVariants()})
}
