package models

// SlotSelection is the outcome of one bundled slot, e.g. "Döner 1" or
// "Getränk 2".
type SlotSelection struct {
	Label  string  `json:"label"`
	Choice *Extra  `json:"choice,omitempty"`
	Extras []Extra `json:"extras,omitempty"`
}

// Selection is what one pass through the configurator produced for a single
// cart addition.
type Selection struct {
	ProductID   int64           `json:"productId"`
	ProductName string          `json:"productName"`
	Variant     *Variant        `json:"variant,omitempty"`
	Extras      []Extra         `json:"extras,omitempty"`
	Slots       []SlotSelection `json:"slots,omitempty"`
}

func (s Selection) VariantName() string {
	if s.Variant == nil {
		return ""
	}
	return s.Variant.Name
}
