package cart

import (
	"sync"

	"github.com/google/uuid"
	"github.com/omorfo/backend/internal/domain/cart"
	"github.com/omorfo/backend/internal/domain/shared"
)

// Container holds the canonical in-memory cart state. It performs no
// I/O; the sync engine is the only writer, the UI layer reads snapshots.
// All mutations recompute the derived aggregates, so Total and ItemCount
// can never drift from the line items.
type Container struct {
	mu      sync.RWMutex
	state   cart.Cart
	loading bool
}

// NewContainer creates an empty cart container
func NewContainer() *Container {
	return &Container{state: cart.NewCart()}
}

// Snapshot returns a copy of the current cart state
func (c *Container) Snapshot() cart.Cart {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.copyState()
}

// IsLoading reports whether a sync operation is in flight
func (c *Container) IsLoading() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.loading
}

// SetLoading sets the transient loading flag
func (c *Container) SetLoading(loading bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.loading = loading
}

// ApplyAdd inserts a line, folding it into an existing line with the
// same variant identity instead of creating a duplicate. Pure local
// mutation; never fails.
func (c *Container) ApplyAdd(item cart.LineItem) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if at := c.state.FindByVariant(item.Variant()); at >= 0 {
		c.state.Items[at].Quantity += item.Quantity
	} else {
		c.state.Items = append(c.state.Items, item)
	}
	c.state.Recalculate()
}

// ApplyCanonical replaces the line matching the record's variant with
// the backend-confirmed record, or appends it. Used in authenticated
// mode so the projection always carries backend ids.
func (c *Container) ApplyCanonical(item cart.LineItem) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if at := c.state.FindByVariant(item.Variant()); at >= 0 {
		c.state.Items[at] = item
	} else {
		c.state.Items = append(c.state.Items, item)
	}
	c.state.Recalculate()
}

// ApplyUpdateQuantity sets the quantity of an existing line
func (c *Container) ApplyUpdateQuantity(lineID uuid.UUID, quantity int) error {
	if quantity < 1 {
		return shared.ErrInvalidQuantity
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	at := c.state.FindByID(lineID)
	if at < 0 {
		return shared.ErrNotFound
	}

	c.state.Items[at].Quantity = quantity
	c.state.Recalculate()
	return nil
}

// ApplyRemove deletes a line if present; removing an absent line is a
// no-op, making removal idempotent
func (c *Container) ApplyRemove(lineID uuid.UUID) {
	c.mu.Lock()
	defer c.mu.Unlock()

	at := c.state.FindByID(lineID)
	if at < 0 {
		return
	}

	c.state.Items = append(c.state.Items[:at], c.state.Items[at+1:]...)
	c.state.Recalculate()
}

// ApplyClear empties the cart
func (c *Container) ApplyClear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.state = cart.NewCart()
}

// ApplyReplace swaps in a full cart loaded from a backend
func (c *Container) ApplyReplace(items []cart.LineItem) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.state = cart.NewCartFromItems(items)
}

func (c *Container) copyState() cart.Cart {
	items := make([]cart.LineItem, len(c.state.Items))
	copy(items, c.state.Items)
	return cart.Cart{
		Items:     items,
		Total:     c.state.Total,
		ItemCount: c.state.ItemCount,
	}
}
