// Package cart aggregates priced selections into quantity-bearing lines.
//
// A line is identified by product id and variant name only. Adding the same
// product and variant again bumps the quantity and keeps the price and extras
// captured on first insertion, even when the new selection had other extras.
package cart

type Key struct {
	ProductID int64  `json:"productId"`
	Variant   string `json:"variant,omitempty"`
}

type Line struct {
	ProductID   int64    `json:"productId"`
	ProductName string   `json:"productName"`
	Variant     string   `json:"variant,omitempty"`
	UnitPrice   int64    `json:"unitPrice"`
	Quantity    int      `json:"quantity"`
	Extras      []string `json:"extras,omitempty"`
	ImageURL    string   `json:"imageUrl,omitempty"`
}

func (l Line) Key() Key {
	return Key{ProductID: l.ProductID, Variant: l.Variant}
}

func (l Line) Total() int64 {
	return l.UnitPrice * int64(l.Quantity)
}

// Item is the payload of an add: the priced outcome of one configuration.
type Item struct {
	ProductID   int64
	ProductName string
	Variant     string
	UnitPrice   int64
	Extras      []string
	ImageURL    string
}

// Cart keeps its lines in insertion order. The zero value is an empty cart.
type Cart struct {
	lines []Line
}

func New(lines ...Line) *Cart {
	c := &Cart{}
	for _, l := range lines {
		if l.Quantity > 0 {
			c.lines = append(c.lines, l)
		}
	}
	return c
}

func (c *Cart) index(k Key) int {
	for i, l := range c.lines {
		if l.Key() == k {
			return i
		}
	}
	return -1
}

func (c *Cart) AddItem(it Item) {
	k := Key{ProductID: it.ProductID, Variant: it.Variant}
	if i := c.index(k); i >= 0 {
		c.lines[i].Quantity++
		return
	}
	c.lines = append(c.lines, Line{
		ProductID:   it.ProductID,
		ProductName: it.ProductName,
		Variant:     it.Variant,
		UnitPrice:   it.UnitPrice,
		Quantity:    1,
		Extras:      append([]string(nil), it.Extras...),
		ImageURL:    it.ImageURL,
	})
}

func (c *Cart) RemoveItem(k Key) {
	if i := c.index(k); i >= 0 {
		c.lines = append(c.lines[:i], c.lines[i+1:]...)
	}
}

// UpdateQuantity sets the quantity of an existing line; a quantity of zero
// or less removes it. Unknown keys are ignored.
func (c *Cart) UpdateQuantity(k Key, quantity int) {
	if quantity <= 0 {
		c.RemoveItem(k)
		return
	}
	if i := c.index(k); i >= 0 {
		c.lines[i].Quantity = quantity
	}
}

func (c *Cart) Find(k Key) (Line, bool) {
	if i := c.index(k); i >= 0 {
		return c.lines[i], true
	}
	return Line{}, false
}

func (c *Cart) TotalPrice() int64 {
	var total int64
	for _, l := range c.lines {
		total += l.Total()
	}
	return total
}

func (c *Cart) TotalItems() int {
	var n int
	for _, l := range c.lines {
		n += l.Quantity
	}
	return n
}

func (c *Cart) Clear() {
	c.lines = nil
}

func (c *Cart) IsEmpty() bool {
	return len(c.lines) == 0
}

// Lines returns a copy of the lines in insertion order.
func (c *Cart) Lines() []Line {
	out := make([]Line, len(c.lines))
	for i, l := range c.lines {
		l.Extras = append([]string(nil), l.Extras...)
		out[i] = l
	}
	return out
}
