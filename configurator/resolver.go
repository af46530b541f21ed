package configurator

import (
	"fmt"

	"github.com/ray-remotestate/pizzeria/models"
	"github.com/ray-remotestate/pizzeria/pricing"
)

type slotState struct {
	label  string
	choice *models.Extra
	extras []models.Extra
}

// Resolver holds the transient wizard state for one product. It is not safe
// for concurrent use; each configuration session owns its resolver.
type Resolver struct {
	product models.Product
	steps   []Step
	labels  []string

	step    int
	variant *models.Variant
	choice  *models.Extra
	extras  []models.Extra
	slots   []slotState
}

func New(p models.Product, opts Options) (*Resolver, error) {
	steps, labels, err := Plan(p, opts)
	if err != nil {
		return nil, err
	}
	r := &Resolver{product: p, steps: steps, labels: labels}
	r.Reset()
	return r, nil
}

// Reset drops every choice and returns to step 1.
func (r *Resolver) Reset() {
	r.step = 0
	if len(r.steps) > 0 {
		r.step = 1
	}
	r.variant = nil
	r.choice = nil
	r.extras = nil
	r.slots = make([]slotState, len(r.labels))
	for i, l := range r.labels {
		r.slots[i].label = l
	}
}

func (r *Resolver) Steps() []Step {
	return r.steps
}

func (r *Resolver) StepCount() int {
	return len(r.steps)
}

// Current is 1-based; 0 means the product has no steps.
func (r *Resolver) Current() int {
	return r.step
}

func (r *Resolver) CurrentStep() (Step, bool) {
	if r.step == 0 {
		return Step{}, false
	}
	return r.steps[r.step-1], true
}

// Choose fills the mandatory single choice of the current step.
func (r *Resolver) Choose(name string) error {
	st, ok := r.CurrentStep()
	if !ok {
		return ErrNoStep
	}

	switch st.Kind {
	case StepVariant:
		v := pricing.ResolveVariant(st.Variants, name)
		if v == nil {
			return fmt.Errorf("%w: %q", ErrUnknownOption, name)
		}
		r.variant = v
		return nil
	case StepChoice:
		opt, ok := models.FindExtra(st.Choices, name)
		if !ok {
			return fmt.Errorf("%w: %q", ErrUnknownOption, name)
		}
		if st.Slot == topLevel {
			r.choice = &opt
		} else {
			r.slots[st.Slot].choice = &opt
		}
		return nil
	}
	return ErrNotChoosable
}

// Toggle adds an extra if absent and removes it otherwise. For products
// without steps it toggles the product's own extras.
func (r *Resolver) Toggle(name string) error {
	list, target := r.product.Extras, &r.extras
	if st, ok := r.CurrentStep(); ok {
		list = st.Extras
		if st.Slot != topLevel {
			target = &r.slots[st.Slot].extras
		}
	}

	opt, ok := models.FindExtra(list, name)
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownOption, name)
	}
	*target = toggle(*target, opt)
	return nil
}

// Include adds extras to the current step, keeping those already chosen.
// Names the step does not offer are added at a zero price. A step that takes
// no extras at all still rejects them.
func (r *Resolver) Include(names ...string) error {
	list, target := r.product.Extras, &r.extras
	if st, ok := r.CurrentStep(); ok {
		if len(st.Extras) == 0 && len(names) > 0 {
			return fmt.Errorf("%w: %q", ErrUnknownOption, names[0])
		}
		list = st.Extras
		if st.Slot != topLevel {
			target = &r.slots[st.Slot].extras
		}
	}

	for _, e := range pricing.ResolveExtras(list, names) {
		if _, have := models.FindExtra(*target, e.Name); !have {
			*target = append(*target, e)
		}
	}
	return nil
}

func toggle(set []models.Extra, e models.Extra) []models.Extra {
	for i, have := range set {
		if have.Name == e.Name {
			return append(set[:i:i], set[i+1:]...)
		}
	}
	return append(set, e)
}

func (r *Resolver) satisfied(i int) bool {
	st := r.steps[i]
	switch st.Kind {
	case StepVariant:
		return r.variant != nil
	case StepChoice:
		if st.Slot == topLevel {
			return r.choice != nil
		}
		return r.slots[st.Slot].choice != nil
	}
	return true
}

func (r *Resolver) CanAdvance() bool {
	return r.step > 0 && r.step < len(r.steps) && r.satisfied(r.step-1)
}

func (r *Resolver) Next() bool {
	if !r.CanAdvance() {
		return false
	}
	r.step++
	return true
}

func (r *Resolver) Back() bool {
	if r.step <= 1 {
		return false
	}
	r.step--
	return true
}

// CanComplete reports whether the terminal action is enabled: the last step
// is reached and every mandatory step is filled.
func (r *Resolver) CanComplete() bool {
	if len(r.steps) == 0 {
		return true
	}
	if r.step != len(r.steps) {
		return false
	}
	for i := range r.steps {
		if !r.satisfied(i) {
			return false
		}
	}
	return true
}

// Complete emits the selection and resets the resolver for reuse.
func (r *Resolver) Complete() (models.Selection, bool) {
	if !r.CanComplete() {
		return models.Selection{}, false
	}

	sel := models.Selection{
		ProductID:   r.product.ID,
		ProductName: r.product.Name,
		Variant:     r.variant,
	}
	if r.choice != nil {
		sel.Extras = append(sel.Extras, *r.choice)
	}
	sel.Extras = append(sel.Extras, r.extras...)
	for _, s := range r.slots {
		sel.Slots = append(sel.Slots, models.SlotSelection{
			Label:  s.label,
			Choice: s.choice,
			Extras: append([]models.Extra(nil), s.extras...),
		})
	}

	r.Reset()
	return sel, true
}
