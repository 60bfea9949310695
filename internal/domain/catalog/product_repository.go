package catalog

import (
	"context"

	"github.com/google/uuid"
)

// ProductRepository defines the persistence contract for catalog products
type ProductRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*Product, error)
	FindBySlug(ctx context.Context, slug string) (*Product, error)
	Save(ctx context.Context, product *Product) error
}
