package configurator

import (
	"fmt"

	"github.com/ray-remotestate/pizzeria/models"
)

// StepInput is what a client submitted for one step of the wizard.
type StepInput struct {
	Choice string   `json:"choice,omitempty"`
	Extras []string `json:"extras,omitempty"`
}

// Replay drives a fresh resolver through the given inputs, one per step, and
// completes it. Products without steps accept a single input carrying extras.
// Extra names the product does not offer are kept at a zero price.
func Replay(p models.Product, opts Options, inputs []StepInput) (models.Selection, error) {
	r, err := New(p, opts)
	if err != nil {
		return models.Selection{}, err
	}

	limit := r.StepCount()
	if limit == 0 {
		limit = 1
	}
	if len(inputs) > limit {
		return models.Selection{}, ErrTooManyInputs
	}

	for i, in := range inputs {
		if in.Choice != "" {
			if err := r.Choose(in.Choice); err != nil {
				return models.Selection{}, fmt.Errorf("step %d: %w", i+1, err)
			}
		}
		if err := r.Include(in.Extras...); err != nil {
			return models.Selection{}, fmt.Errorf("step %d: %w", i+1, err)
		}
		if i < r.StepCount()-1 && !r.Next() {
			return models.Selection{}, fmt.Errorf("step %d: %w", i+1, ErrIncomplete)
		}
	}

	sel, ok := r.Complete()
	if !ok {
		return models.Selection{}, fmt.Errorf("step %d: %w", r.Current(), ErrIncomplete)
	}
	return sel, nil
}
