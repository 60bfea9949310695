package cart

import (
	"context"

	"github.com/google/uuid"
)

// Repository is the persistence contract for authenticated cart lines.
// It is plain row storage; duplicate-variant folding and pricing live in
// the application layer.
type Repository interface {
	ListByUser(ctx context.Context, userID uuid.UUID) ([]LineItem, error)
	FindByID(ctx context.Context, lineID, userID uuid.UUID) (*LineItem, error)
	FindByVariant(ctx context.Context, userID uuid.UUID, key VariantKey) (*LineItem, error)
	Insert(ctx context.Context, item *LineItem) error
	Update(ctx context.Context, item *LineItem) error
	// Delete removes a line; absent lines are not an error
	Delete(ctx context.Context, lineID, userID uuid.UUID) error
	DeleteAllForUser(ctx context.Context, userID uuid.UUID) error
}
