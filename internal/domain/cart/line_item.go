package cart

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/omorfo/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// PosterSize is a print size from the fixed storefront option set
type PosterSize string

const (
	SizeA4    PosterSize = "A4"
	SizeA3    PosterSize = "A3"
	SizeA2    PosterSize = "A2"
	Size50x70 PosterSize = "50x70"
)

// FrameStyle is a frame option from the fixed storefront option set
type FrameStyle string

const (
	FrameNone  FrameStyle = "none"
	FrameBlack FrameStyle = "black"
	FrameWhite FrameStyle = "white"
	FrameOak   FrameStyle = "oak"
)

// VariantKey identifies a purchasable configuration of a product.
// Two lines with the same key must never coexist in one cart; additions
// fold into the existing line's quantity instead.
type VariantKey struct {
	ProductID uuid.UUID
	Size      PosterSize
	Frame     FrameStyle
}

// String returns a stable textual form, used for logging and map keys
func (k VariantKey) String() string {
	return fmt.Sprintf("%s/%s/%s", k.ProductID, k.Size, k.Frame)
}

// LineItem represents one purchasable configuration of a product in a cart.
// It is the aggregate root for cart line operations. Name, UnitPrice and
// ImageURL are a display snapshot captured when the line is created; the
// catalog remains the pricing authority.
type LineItem struct {
	shared.BaseAggregateRoot
	UserID    uuid.UUID       `gorm:"type:uuid;index:idx_cart_items_user" json:"user_id"`
	ProductID uuid.UUID       `gorm:"type:uuid;not null;index" json:"product_id"`
	Name      string          `gorm:"type:varchar(200);not null" json:"name"`
	UnitPrice decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0" json:"unit_price"`
	ImageURL  string          `gorm:"type:text" json:"image_url"`
	Quantity  int             `gorm:"not null;default:1" json:"quantity"`
	Size      PosterSize      `gorm:"type:varchar(10);not null" json:"size"`
	Frame     FrameStyle      `gorm:"type:varchar(10);not null;default:'none'" json:"frame"`
}

// TableName returns the table name for GORM
func (LineItem) TableName() string {
	return "cart_items"
}

// NewLineItem creates a new cart line for the given product variant.
// UserID is left zero for guest lines; the remote store sets it on insert.
func NewLineItem(productID uuid.UUID, name string, unitPrice decimal.Decimal, imageURL string, quantity int, size PosterSize, frame FrameStyle) (*LineItem, error) {
	if productID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_INPUT", "Product ID is required")
	}
	if quantity < 1 {
		return nil, shared.ErrInvalidQuantity
	}
	if err := ValidateSize(size); err != nil {
		return nil, err
	}
	if err := ValidateFrame(frame); err != nil {
		return nil, err
	}
	if unitPrice.IsNegative() {
		return nil, shared.NewDomainError("INVALID_INPUT", "Unit price cannot be negative")
	}

	item := &LineItem{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		ProductID:         productID,
		Name:              name,
		UnitPrice:         unitPrice,
		ImageURL:          imageURL,
		Quantity:          quantity,
		Size:              size,
		Frame:             frame,
	}

	item.AddDomainEvent(NewItemAddedEvent(item))

	return item, nil
}

// Variant returns the line's variant identity
func (i *LineItem) Variant() VariantKey {
	return VariantKey{ProductID: i.ProductID, Size: i.Size, Frame: i.Frame}
}

// SameVariant reports whether the other line is the same product configuration
func (i *LineItem) SameVariant(other *LineItem) bool {
	return i.Variant() == other.Variant()
}

// SetQuantity replaces the line quantity. Callers wanting to drop a line
// remove it instead; a quantity below 1 is a caller error.
func (i *LineItem) SetQuantity(quantity int) error {
	if quantity < 1 {
		return shared.ErrInvalidQuantity
	}

	i.Quantity = quantity
	i.IncrementVersion()
	i.AddDomainEvent(NewItemUpdatedEvent(i))

	return nil
}

// AddQuantity folds an additional quantity into the line
func (i *LineItem) AddQuantity(delta int) error {
	if delta < 1 {
		return shared.ErrInvalidQuantity
	}
	return i.SetQuantity(i.Quantity + delta)
}

// Subtotal returns unit price times quantity
func (i *LineItem) Subtotal() decimal.Decimal {
	return i.UnitPrice.Mul(decimal.NewFromInt(int64(i.Quantity)))
}

// ValidateSize checks a size against the fixed option set
func ValidateSize(size PosterSize) error {
	switch size {
	case SizeA4, SizeA3, SizeA2, Size50x70:
		return nil
	}
	return shared.NewDomainError("INVALID_INPUT", fmt.Sprintf("Unknown poster size %q", size))
}

// ValidateFrame checks a frame style against the fixed option set
func ValidateFrame(frame FrameStyle) error {
	switch frame {
	case FrameNone, FrameBlack, FrameWhite, FrameOak:
		return nil
	}
	return shared.NewDomainError("INVALID_INPUT", fmt.Sprintf("Unknown frame style %q", frame))
}

// ParseSize parses a poster size from its textual form
func ParseSize(s string) (PosterSize, error) {
	size := PosterSize(strings.TrimSpace(s))
	if err := ValidateSize(size); err != nil {
		return "", err
	}
	return size, nil
}

// ParseFrame parses a frame style from its textual form
func ParseFrame(s string) (FrameStyle, error) {
	frame := FrameStyle(strings.ToLower(strings.TrimSpace(s)))
	if err := ValidateFrame(frame); err != nil {
		return "", err
	}
	return frame, nil
}
