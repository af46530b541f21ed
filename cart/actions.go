package cart

// Action is a cart mutation. Dispatch applies one action to completion
// before the next is processed.
type Action interface {
	apply(c *Cart)
}

type AddItemAction struct {
	Item Item
}

type RemoveItemAction struct {
	Key Key
}

type UpdateQuantityAction struct {
	Key      Key
	Quantity int
}

type ClearAction struct{}

func (a AddItemAction) apply(c *Cart)        { c.AddItem(a.Item) }
func (a RemoveItemAction) apply(c *Cart)     { c.RemoveItem(a.Key) }
func (a UpdateQuantityAction) apply(c *Cart) { c.UpdateQuantity(a.Key, a.Quantity) }
func (ClearAction) apply(c *Cart)            { c.Clear() }

func (c *Cart) Dispatch(actions ...Action) {
	for _, a := range actions {
		a.apply(c)
	}
}
