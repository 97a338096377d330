package terminal

import (
	"slices"

	"wilpos-terminal/internal/domain"
)

// Cart is an insertion-ordered set of lines keyed by product id. The zero
// value is an empty cart. Quantities never drop below 1.
type Cart struct {
	lines []domain.CartLine
}

func (c *Cart) index(productID int64) int {
	return slices.IndexFunc(c.lines, func(l domain.CartLine) bool { return l.ProductID == productID })
}

// Add puts one unit of p in the cart, creating its line on first add.
func (c *Cart) Add(p domain.Product) domain.CartLine {
	if i := c.index(p.ID); i >= 0 {
		c.lines[i].Quantity++
		return c.lines[i]
	}
	line := domain.CartLine{
		ProductID: p.ID,
		Name:      p.Name,
		UnitPrice: p.UnitPrice,
		Quantity:  1,
	}
	c.lines = append(c.lines, line)
	return line
}

// UpdateQuantity adjusts a line by delta. A result of zero or less removes the
// line. It reports whether the product was in the cart.
func (c *Cart) UpdateQuantity(productID int64, delta int) bool {
	i := c.index(productID)
	if i < 0 {
		return false
	}
	if q := c.lines[i].Quantity + delta; q > 0 {
		c.lines[i].Quantity = q
	} else {
		c.lines = slices.Delete(c.lines, i, i+1)
	}
	return true
}

// Remove drops a line whatever its quantity.
func (c *Cart) Remove(productID int64) bool {
	i := c.index(productID)
	if i < 0 {
		return false
	}
	c.lines = slices.Delete(c.lines, i, i+1)
	return true
}

// Quantity returns the quantity of productID, 0 when absent.
func (c *Cart) Quantity(productID int64) int {
	if i := c.index(productID); i >= 0 {
		return c.lines[i].Quantity
	}
	return 0
}

// Lines returns a copy of the lines in insertion order.
func (c *Cart) Lines() []domain.CartLine {
	return slices.Clone(c.lines)
}

func (c *Cart) Len() int      { return len(c.lines) }
func (c *Cart) IsEmpty() bool { return len(c.lines) == 0 }
func (c *Cart) Clear()        { c.lines = nil }

// Totals is recomputed from the current lines on every call.
func (c *Cart) Totals() domain.Totals {
	return domain.ComputeTotals(c.lines)
}
