package catalog

import (
	"strings"
	"time"

	"github.com/omorfo/backend/internal/domain/cart"
	"github.com/omorfo/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// ProductStatus represents the status of a poster in the catalog
type ProductStatus string

const (
	ProductStatusActive   ProductStatus = "active"
	ProductStatusArchived ProductStatus = "archived"
)

// Size surcharges over the base (A4) price. Frames add a flat amount on
// top. The catalog is the single pricing authority: cart lines snapshot
// the computed price at insert time and never recompute it.
var (
	sizeSurcharge = map[cart.PosterSize]decimal.Decimal{
		cart.SizeA4:    decimal.Zero,
		cart.SizeA3:    decimal.NewFromFloat(10),
		cart.SizeA2:    decimal.NewFromFloat(20),
		cart.Size50x70: decimal.NewFromFloat(25),
	}
	frameSurcharge = map[cart.FrameStyle]decimal.Decimal{
		cart.FrameNone:  decimal.Zero,
		cart.FrameBlack: decimal.NewFromFloat(19.9),
		cart.FrameWhite: decimal.NewFromFloat(19.9),
		cart.FrameOak:   decimal.NewFromFloat(24.9),
	}
)

// Product represents a poster design in the catalog
type Product struct {
	shared.BaseAggregateRoot
	Slug      string          `gorm:"type:varchar(120);not null;uniqueIndex"`
	Name      string          `gorm:"type:varchar(200);not null"`
	ImageURL  string          `gorm:"type:text"`
	BasePrice decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	Status    ProductStatus   `gorm:"type:varchar(20);not null;default:'active'"`
}

// TableName returns the table name for GORM
func (Product) TableName() string {
	return "products"
}

// NewProduct creates a new catalog product
func NewProduct(slug, name, imageURL string, basePrice decimal.Decimal) (*Product, error) {
	slug = strings.ToLower(strings.TrimSpace(slug))
	if slug == "" {
		return nil, shared.NewDomainError("INVALID_INPUT", "Product slug is required")
	}
	if strings.TrimSpace(name) == "" {
		return nil, shared.NewDomainError("INVALID_INPUT", "Product name is required")
	}
	if basePrice.IsNegative() {
		return nil, shared.NewDomainError("INVALID_INPUT", "Base price cannot be negative")
	}

	return &Product{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		Slug:              slug,
		Name:              name,
		ImageURL:          imageURL,
		BasePrice:         basePrice,
		Status:            ProductStatusActive,
	}, nil
}

// IsPurchasable reports whether the product can enter a cart
func (p *Product) IsPurchasable() bool {
	return p.Status == ProductStatusActive
}

// PriceFor computes the unit price for a variant of this product
func (p *Product) PriceFor(size cart.PosterSize, frame cart.FrameStyle) (decimal.Decimal, error) {
	sizeAdd, ok := sizeSurcharge[size]
	if !ok {
		return decimal.Zero, shared.NewDomainError("INVALID_INPUT", "Unknown poster size")
	}
	frameAdd, ok := frameSurcharge[frame]
	if !ok {
		return decimal.Zero, shared.NewDomainError("INVALID_INPUT", "Unknown frame style")
	}
	return p.BasePrice.Add(sizeAdd).Add(frameAdd), nil
}

// Archive takes the product off sale; existing cart lines keep their snapshot
func (p *Product) Archive() {
	p.Status = ProductStatusArchived
	p.UpdatedAt = time.Now()
	p.IncrementVersion()
}

// SetBasePrice updates the base price for future cart inserts
func (p *Product) SetBasePrice(price decimal.Decimal) error {
	if price.IsNegative() {
		return shared.NewDomainError("INVALID_INPUT", "Base price cannot be negative")
	}
	p.BasePrice = price
	p.UpdatedAt = time.Now()
	p.IncrementVersion()
	return nil
}
