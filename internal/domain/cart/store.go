package cart

import (
	"context"

	"github.com/google/uuid"
)

// LocalStore is the device-scoped guest cart backend. All operations are
// synchronous; implementations never block on the network.
type LocalStore interface {
	// ReadAll returns every guest line, empty when no cart exists
	ReadAll() ([]LineItem, error)
	// WriteAll replaces the stored guest cart
	WriteAll(items []LineItem) error
	// Clear removes the stored guest cart
	Clear() error
}

// InsertParams describes a line to add to a user's remote cart. The
// store resolves the unit price and display snapshot from the catalog
// at insert time; callers never supply a price.
type InsertParams struct {
	ProductID uuid.UUID
	Quantity  int
	Size      PosterSize
	Frame     FrameStyle
}

// UpdateParams carries the mutable fields of a remote line. Nil fields
// are left unchanged.
type UpdateParams struct {
	Quantity *int
	Size     *PosterSize
	Frame    *FrameStyle
}

// RemoteStore is the authenticated, per-user cart backend. Every
// mutation returns the canonical stored record so callers can project it
// into local state without drift between local and backend ids.
//
// Implementations translate driver failures into the domain taxonomy:
// a missing row is NOT_FOUND, anything transport-shaped is NETWORK_ERROR.
type RemoteStore interface {
	ListItems(ctx context.Context, userID uuid.UUID) ([]LineItem, error)
	FindByVariant(ctx context.Context, userID uuid.UUID, key VariantKey) (*LineItem, error)
	InsertItem(ctx context.Context, userID uuid.UUID, params InsertParams) (*LineItem, error)
	UpdateItem(ctx context.Context, lineID, userID uuid.UUID, params UpdateParams) (*LineItem, error)
	// DeleteItem is idempotent; deleting an absent line is not an error
	DeleteItem(ctx context.Context, lineID, userID uuid.UUID) error
	DeleteAllForUser(ctx context.Context, userID uuid.UUID) error
}
