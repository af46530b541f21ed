// Package configurator walks a customer through the choices a product needs
// before it can go into the cart and produces a models.Selection.
package configurator

import (
	"errors"
	"fmt"

	"github.com/ray-remotestate/pizzeria/models"
)

var (
	ErrUnknownFamily = errors.New("configurator: unknown product family")
	ErrUnknownOption = errors.New("configurator: option not offered at this step")
	ErrNoStep        = errors.New("configurator: no active step")
	ErrIncomplete    = errors.New("configurator: mandatory choice missing")
	ErrTooManyInputs = errors.New("configurator: more inputs than steps")
	ErrNotChoosable  = errors.New("configurator: step takes no single choice")
)

type StepKind string

const (
	// StepVariant is a mandatory pick among the product's variants.
	StepVariant StepKind = "variant"
	// StepExtras is an optional multi-select and is always satisfied.
	StepExtras StepKind = "extras"
	// StepChoice is a mandatory single pick, optionally with extras on the
	// same screen.
	StepChoice StepKind = "choice"
)

// topLevel marks a step writing into the selection itself instead of a slot.
const topLevel = -1

type Step struct {
	Kind     StepKind        `json:"kind"`
	Label    string          `json:"label"`
	Slot     int             `json:"slot"`
	Variants models.Variants `json:"variants,omitempty"`
	Choices  []models.Extra  `json:"choices,omitempty"`
	Extras   []models.Extra  `json:"extras,omitempty"`
}

func (s Step) Mandatory() bool {
	return s.Kind != StepExtras
}

// Options are the slot option lists bundles and choice steps draw from.
type Options struct {
	Sauces      []models.Extra
	SlotExtras  []models.Extra
	SideSauces  []models.Extra
	Drinks      []models.Extra
	Pizzas      []models.Extra
	PizzaExtras []models.Extra
}

// Plan returns the ordered steps for a product and the labels of its bundle
// slots.
func Plan(p models.Product, opts Options) ([]Step, []string, error) {
	switch p.Family {
	case models.FamilySimple:
		return nil, nil, nil

	case models.FamilySized:
		return []Step{
			{Kind: StepVariant, Label: "Größe", Slot: topLevel, Variants: p.Variants},
			{Kind: StepExtras, Label: "Extras", Slot: topLevel, Extras: p.Extras},
		}, nil, nil

	case models.FamilyMandatoryChoice:
		return []Step{
			{Kind: StepChoice, Label: "Auswahl", Slot: topLevel, Choices: p.Extras},
		}, nil, nil

	case models.FamilyDonerBundle:
		labels := []string{"Döner 1", "Döner 2", "Beilage", "Getränk"}
		return []Step{
			{Kind: StepChoice, Label: labels[0], Slot: 0, Choices: opts.Sauces, Extras: opts.SlotExtras},
			{Kind: StepChoice, Label: labels[1], Slot: 1, Choices: opts.Sauces, Extras: opts.SlotExtras},
			{Kind: StepChoice, Label: labels[2], Slot: 2, Choices: opts.SideSauces},
			{Kind: StepChoice, Label: labels[3], Slot: 3, Choices: opts.Drinks},
		}, labels, nil

	case models.FamilyPizzaBundle2:
		return pizzaBundle(2, opts)

	case models.FamilyPizzaBundle1:
		return pizzaBundle(1, opts)
	}
	return nil, nil, fmt.Errorf("%w: %q", ErrUnknownFamily, p.Family)
}

// pizzaBundle lays out (pick, extras) pairs per pizza, then one drink step
// per pizza.
func pizzaBundle(n int, opts Options) ([]Step, []string, error) {
	var (
		steps  []Step
		labels []string
	)
	for i := 0; i < n; i++ {
		label := fmt.Sprintf("Pizza %d", i+1)
		if n == 1 {
			label = "Pizza"
		}
		labels = append(labels, label)
		steps = append(steps,
			Step{Kind: StepChoice, Label: label, Slot: i, Choices: opts.Pizzas},
			Step{Kind: StepExtras, Label: label + " Extras", Slot: i, Extras: opts.PizzaExtras},
		)
	}
	for i := 0; i < n; i++ {
		label := fmt.Sprintf("Getränk %d", i+1)
		if n == 1 {
			label = "Getränk"
		}
		labels = append(labels, label)
		steps = append(steps, Step{Kind: StepChoice, Label: label, Slot: n + i, Choices: opts.Drinks})
	}
	return steps, labels, nil
}
