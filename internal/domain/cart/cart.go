package cart

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Cart is the aggregate view of a set of line items. Total and ItemCount
// are always recomputed from Items, never stored, so they cannot drift.
type Cart struct {
	Items     []LineItem      `json:"items"`
	Total     decimal.Decimal `json:"total"`
	ItemCount int             `json:"item_count"`
}

// NewCart returns an empty cart
func NewCart() Cart {
	return Cart{
		Items: make([]LineItem, 0),
		Total: decimal.Zero,
	}
}

// NewCartFromItems builds a cart view with aggregates computed
func NewCartFromItems(items []LineItem) Cart {
	c := Cart{Items: items}
	if c.Items == nil {
		c.Items = make([]LineItem, 0)
	}
	c.Recalculate()
	return c
}

// Recalculate recomputes Total and ItemCount from the line items
func (c *Cart) Recalculate() {
	total := decimal.Zero
	count := 0
	for i := range c.Items {
		total = total.Add(c.Items[i].Subtotal())
		count += c.Items[i].Quantity
	}
	c.Total = total
	c.ItemCount = count
}

// FindByID returns the index of the line with the given id, or -1
func (c *Cart) FindByID(lineID uuid.UUID) int {
	for i := range c.Items {
		if c.Items[i].ID == lineID {
			return i
		}
	}
	return -1
}

// FindByVariant returns the index of the line matching the variant key, or -1
func (c *Cart) FindByVariant(key VariantKey) int {
	for i := range c.Items {
		if c.Items[i].Variant() == key {
			return i
		}
	}
	return -1
}

// IsEmpty reports whether the cart has no lines
func (c Cart) IsEmpty() bool {
	return len(c.Items) == 0
}
