package cart

import (
	"context"
	"reflect"
	"testing"
)

func pizza(price int64, extras ...string) Item {
	return Item{ProductID: 1, ProductName: "Pizza Tonno", Variant: "Ø26cm", UnitPrice: price, Extras: extras}
}

func TestAddItem_NewLine(t *testing.T) {
	c := New()
	c.AddItem(pizza(700))

	lines := c.Lines()
	if len(lines) != 1 || lines[0].Quantity != 1 {
		t.Fatalf("expected one line with quantity 1, got %+v", lines)
	}
	if c.TotalPrice() != 700 {
		t.Errorf("expected total 700, got %d", c.TotalPrice())
	}
}

func TestAddItem_SameKeyIgnoresExtras(t *testing.T) {
	c := New()
	c.AddItem(pizza(700))
	c.AddItem(pizza(900, "mit Thunfisch (+1,00€)", "mit Oliven (+1,00€)"))

	lines := c.Lines()
	if len(lines) != 1 {
		t.Fatalf("expected one line, got %d", len(lines))
	}
	if lines[0].Quantity != 2 {
		t.Errorf("expected quantity 2, got %d", lines[0].Quantity)
	}
	if lines[0].UnitPrice != 700 || len(lines[0].Extras) != 0 {
		t.Errorf("first insertion should win, got %+v", lines[0])
	}
	if c.TotalPrice() != 1400 {
		t.Errorf("expected total 1400, got %d", c.TotalPrice())
	}
}

func TestAddItem_DifferentVariantNewLine(t *testing.T) {
	c := New()
	c.AddItem(pizza(700))
	big := pizza(950)
	big.Variant = "Ø32cm"
	c.AddItem(big)

	if len(c.Lines()) != 2 {
		t.Errorf("expected two lines, got %d", len(c.Lines()))
	}
}

func TestAddThenRemove_RestoresTotal(t *testing.T) {
	c := New()
	c.AddItem(Item{ProductID: 5, UnitPrice: 1150})
	before := c.TotalPrice()

	c.AddItem(pizza(700))
	c.RemoveItem(Key{ProductID: 1, Variant: "Ø26cm"})

	if c.TotalPrice() != before {
		t.Errorf("expected %d after add+remove, got %d", before, c.TotalPrice())
	}
}

func TestRemoveItem_IgnoresQuantity(t *testing.T) {
	c := New()
	c.AddItem(pizza(700))
	c.AddItem(pizza(700))
	c.AddItem(pizza(700))
	c.RemoveItem(Key{ProductID: 1, Variant: "Ø26cm"})

	if !c.IsEmpty() {
		t.Errorf("expected empty cart, got %+v", c.Lines())
	}
}

func TestUpdateQuantity(t *testing.T) {
	k := Key{ProductID: 1, Variant: "Ø26cm"}
	c := New()
	c.AddItem(pizza(700))

	c.UpdateQuantity(k, 4)
	if l, _ := c.Find(k); l.Quantity != 4 {
		t.Errorf("expected quantity 4, got %d", l.Quantity)
	}

	c.UpdateQuantity(Key{ProductID: 99}, 3)
	if c.TotalItems() != 4 {
		t.Errorf("unknown key changed the cart: %+v", c.Lines())
	}

	c.UpdateQuantity(k, 0)
	if !c.IsEmpty() {
		t.Error("quantity 0 should remove the line")
	}

	c.AddItem(pizza(700))
	c.UpdateQuantity(k, -2)
	if !c.IsEmpty() {
		t.Error("negative quantity should remove the line")
	}
}

func TestTotals_Checkout(t *testing.T) {
	c := New()
	c.AddItem(Item{ProductID: 1, Variant: "Ø26cm", UnitPrice: 700})
	c.AddItem(Item{ProductID: 1, Variant: "Ø26cm", UnitPrice: 700})
	c.AddItem(Item{ProductID: 2, UnitPrice: 1200})
	c.AddItem(Item{ProductID: 3, UnitPrice: 250})

	if got := c.TotalPrice(); got != 2850 {
		t.Errorf("expected 2850, got %d", got)
	}
	if got := c.TotalItems(); got != 4 {
		t.Errorf("expected 4 items, got %d", got)
	}

	c.Clear()
	if c.TotalPrice() != 0 || c.TotalItems() != 0 {
		t.Error("expected empty cart after clear")
	}
}

func TestLines_ReturnsCopies(t *testing.T) {
	c := New()
	c.AddItem(pizza(900, "mit Oliven (+1,00€)"))

	lines := c.Lines()
	lines[0].Quantity = 10
	lines[0].Extras[0] = "changed"

	l, _ := c.Find(Key{ProductID: 1, Variant: "Ø26cm"})
	if l.Quantity != 1 || l.Extras[0] != "mit Oliven (+1,00€)" {
		t.Errorf("cart mutated through Lines(): %+v", l)
	}
}

func TestDispatch(t *testing.T) {
	k := Key{ProductID: 1, Variant: "Ø26cm"}
	c := New()
	c.Dispatch(
		AddItemAction{Item: pizza(700)},
		AddItemAction{Item: Item{ProductID: 2, UnitPrice: 1200}},
		UpdateQuantityAction{Key: k, Quantity: 3},
		RemoveItemAction{Key: Key{ProductID: 2}},
	)

	want := []Line{{ProductID: 1, ProductName: "Pizza Tonno", Variant: "Ø26cm", UnitPrice: 700, Quantity: 3}}
	if got := c.Lines(); !reflect.DeepEqual(got, want) {
		t.Errorf("expected %+v, got %+v", want, got)
	}

	c.Dispatch(ClearAction{})
	if !c.IsEmpty() {
		t.Error("expected empty cart")
	}
}

func TestMemoryStore(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()

	c, err := s.Load(ctx, "abc")
	if err != nil || !c.IsEmpty() {
		t.Fatalf("expected empty cart for new session, got %+v, %v", c, err)
	}

	c.AddItem(pizza(700))
	if err := s.Save(ctx, "abc", c); err != nil {
		t.Fatalf("Save: %v", err)
	}

	loaded, _ := s.Load(ctx, "abc")
	if loaded.TotalPrice() != 700 {
		t.Errorf("expected persisted total 700, got %d", loaded.TotalPrice())
	}

	_ = s.Delete(ctx, "abc")
	loaded, _ = s.Load(ctx, "abc")
	if !loaded.IsEmpty() {
		t.Error("expected empty cart after delete")
	}
}
