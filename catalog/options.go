package catalog

import (
	"github.com/ray-remotestate/pizzeria/configurator"
	"github.com/ray-remotestate/pizzeria/models"
)

// The option lists are fixed by the shop and priced in cents. A zero price
// means the option is included.
var (
	PizzaExtras = []models.Extra{
		{Name: "mit Thunfisch", Price: 100},
		{Name: "mit Oliven", Price: 100},
		{Name: "mit Salami", Price: 100},
		{Name: "mit Schinken", Price: 100},
		{Name: "mit Champignons", Price: 100},
		{Name: "mit Paprika", Price: 100},
		{Name: "mit Zwiebeln", Price: 50},
		{Name: "mit Peperoni", Price: 50},
		{Name: "mit extra Käse", Price: 150},
		{Name: "mit Knoblauch", Price: 0},
	}

	CalzoneExtras = []models.Extra{
		{Name: "mit Oliven", Price: 100},
		{Name: "mit Champignons", Price: 100},
		{Name: "mit Spinat", Price: 100},
		{Name: "mit extra Käse", Price: 150},
		{Name: "mit Knoblauch", Price: 0},
	}

	PideExtras = []models.Extra{
		{Name: "mit Ei", Price: 50},
		{Name: "mit Sucuk", Price: 100},
		{Name: "mit extra Käse", Price: 150},
		{Name: "mit Knoblauch", Price: 0},
	}

	DonerSauces = []models.Extra{
		{Name: "Knoblauchsoße"},
		{Name: "Kräutersoße"},
		{Name: "Scharfe Soße"},
		{Name: "Cocktailsoße"},
	}

	DonerExtras = []models.Extra{
		{Name: "mit Käse", Price: 50},
		{Name: "extra Fleisch", Price: 200},
		{Name: "ohne Zwiebeln", Price: 0},
		{Name: "mit Peperoni", Price: 0},
	}

	SideSauces = []models.Extra{
		{Name: "Ketchup"},
		{Name: "Mayonnaise"},
		{Name: "Knoblauchsoße"},
	}

	MenuDrinks = []models.Extra{
		{Name: "Cola 0,33l"},
		{Name: "Fanta 0,33l"},
		{Name: "Sprite 0,33l"},
		{Name: "Wasser 0,5l"},
		{Name: "Ayran 0,25l"},
	}

	SaladDressings = []models.Extra{
		{Name: "Joghurt-Dressing"},
		{Name: "Essig-Öl"},
		{Name: "French-Dressing"},
		{Name: "Balsamico"},
	}
)

// ExtrasFor returns the product level option list of an option set.
func ExtrasFor(set models.OptionSet) []models.Extra {
	switch set {
	case models.OptionSetPizza:
		return PizzaExtras
	case models.OptionSetCalzone:
		return CalzoneExtras
	case models.OptionSetPide:
		return PideExtras
	case models.OptionSetDoner:
		return DonerExtras
	case models.OptionSetSalad:
		return SaladDressings
	default:
		return nil
	}
}

// attachExtras fills Product.Extras in place from the product's option set.
func attachExtras(products []models.Product) {
	for i := range products {
		products[i].Extras = ExtrasFor(products[i].OptionSet)
	}
}

// ConfiguratorOptions collects the slot option lists bundles draw from. The
// pizza choices of a pizza menu are every available sized pizza.
func ConfiguratorOptions(products []models.Product) configurator.Options {
	opts := configurator.Options{
		Sauces:      DonerSauces,
		SlotExtras:  DonerExtras,
		SideSauces:  SideSauces,
		Drinks:      MenuDrinks,
		PizzaExtras: PizzaExtras,
	}
	for _, p := range products {
		if p.Family == models.FamilySized && p.OptionSet == models.OptionSetPizza && p.IsAvailable {
			opts.Pizzas = append(opts.Pizzas, models.Extra{Name: p.Name})
		}
	}
	return opts
}
