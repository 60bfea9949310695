package persistence

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/omorfo/backend/internal/domain/cart"
	"github.com/omorfo/backend/internal/domain/shared"
	"gorm.io/gorm"
)

// GormCartItemRepository implements cart.Repository using GORM
type GormCartItemRepository struct {
	db *gorm.DB
}

// NewGormCartItemRepository creates a new GormCartItemRepository
func NewGormCartItemRepository(db *gorm.DB) *GormCartItemRepository {
	return &GormCartItemRepository{db: db}
}

// ListByUser returns all cart lines of a user, most recently updated last
func (r *GormCartItemRepository) ListByUser(ctx context.Context, userID uuid.UUID) ([]cart.LineItem, error) {
	var items []cart.LineItem
	if err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("updated_at asc").
		Find(&items).Error; err != nil {
		return nil, translate(err)
	}
	return items, nil
}

// FindByID finds a line by id within a user's cart
func (r *GormCartItemRepository) FindByID(ctx context.Context, lineID, userID uuid.UUID) (*cart.LineItem, error) {
	var item cart.LineItem
	if err := r.db.WithContext(ctx).
		Where("id = ? AND user_id = ?", lineID, userID).
		First(&item).Error; err != nil {
		return nil, translate(err)
	}
	return &item, nil
}

// FindByVariant finds a user's line matching a product variant
func (r *GormCartItemRepository) FindByVariant(ctx context.Context, userID uuid.UUID, key cart.VariantKey) (*cart.LineItem, error) {
	var item cart.LineItem
	if err := r.db.WithContext(ctx).
		Where("user_id = ? AND product_id = ? AND size = ? AND frame = ?",
			userID, key.ProductID, key.Size, key.Frame).
		First(&item).Error; err != nil {
		return nil, translate(err)
	}
	return &item, nil
}

// Insert stores a new cart line
func (r *GormCartItemRepository) Insert(ctx context.Context, item *cart.LineItem) error {
	if err := r.db.WithContext(ctx).Create(item).Error; err != nil {
		return translate(err)
	}
	return nil
}

// Update saves an existing cart line
func (r *GormCartItemRepository) Update(ctx context.Context, item *cart.LineItem) error {
	if err := r.db.WithContext(ctx).Save(item).Error; err != nil {
		return translate(err)
	}
	return nil
}

// Delete removes a cart line. Deleting an absent line is not an error.
func (r *GormCartItemRepository) Delete(ctx context.Context, lineID, userID uuid.UUID) error {
	if err := r.db.WithContext(ctx).
		Where("id = ? AND user_id = ?", lineID, userID).
		Delete(&cart.LineItem{}).Error; err != nil {
		return translate(err)
	}
	return nil
}

// DeleteAllForUser removes every line of a user's cart
func (r *GormCartItemRepository) DeleteAllForUser(ctx context.Context, userID uuid.UUID) error {
	if err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Delete(&cart.LineItem{}).Error; err != nil {
		return translate(err)
	}
	return nil
}

// translate maps gorm errors onto the domain taxonomy so nothing
// driver-shaped crosses the repository boundary. Unique index
// violations are not retryable and must not surface as NETWORK_ERROR.
func translate(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return shared.ErrNotFound
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return shared.ErrAlreadyExists
	}
	return shared.ErrNetwork
}

// Ensure the repository satisfies the domain contract
var _ cart.Repository = (*GormCartItemRepository)(nil)
