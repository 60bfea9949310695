package handler

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	appcart "github.com/omorfo/backend/internal/application/cart"
	"github.com/omorfo/backend/internal/domain/cart"
	"github.com/omorfo/backend/internal/domain/shared"
)

// AddItemRequest represents a request to add a product variant to the cart
type AddItemRequest struct {
	ProductID string `json:"product_id" binding:"required,uuid"`
	Quantity  int    `json:"quantity" binding:"required,min=1"`
	Size      string `json:"size" binding:"required,oneof=A4 A3 A2 50x70"`
	Frame     string `json:"frame" binding:"required,oneof=none black white oak"`
}

// UpdateItemRequest represents a request to update a cart line.
// Nil fields are left unchanged.
type UpdateItemRequest struct {
	Quantity *int    `json:"quantity" binding:"omitempty,min=1"`
	Size     *string `json:"size" binding:"omitempty,oneof=A4 A3 A2 50x70"`
	Frame    *string `json:"frame" binding:"omitempty,oneof=none black white oak"`
}

// MergeItemRequest represents one guest cart line in a merge request
type MergeItemRequest struct {
	ProductID string `json:"product_id" binding:"required,uuid"`
	Name      string `json:"name" binding:"required,max=200"`
	UnitPrice string `json:"unit_price" binding:"required,decimalstring"`
	ImageURL  string `json:"image_url" binding:"omitempty,max=2000"`
	Quantity  int    `json:"quantity" binding:"required,min=1"`
	Size      string `json:"size" binding:"required,oneof=A4 A3 A2 50x70"`
	Frame     string `json:"frame" binding:"required,oneof=none black white oak"`
}

// MergeRequest represents a request to merge guest cart lines into
// the authenticated user's cart
type MergeRequest struct {
	Items []MergeItemRequest `json:"items" binding:"required,dive"`
}

// toLineItems converts a merge request payload into domain lines
func (r MergeRequest) toLineItems() ([]cart.LineItem, error) {
	lines := make([]cart.LineItem, 0, len(r.Items))
	for _, item := range r.Items {
		productID, err := uuid.Parse(item.ProductID)
		if err != nil {
			return nil, shared.NewDomainError("INVALID_INPUT", "Invalid product ID")
		}
		price, err := decimal.NewFromString(item.UnitPrice)
		if err != nil {
			return nil, shared.NewDomainError("INVALID_INPUT", "Invalid unit price")
		}
		line, err := cart.NewLineItem(productID, item.Name, price, item.ImageURL,
			item.Quantity, cart.PosterSize(item.Size), cart.FrameStyle(item.Frame))
		if err != nil {
			return nil, err
		}
		line.ClearDomainEvents()
		lines = append(lines, *line)
	}
	return lines, nil
}

// LineItemResponse represents a cart line in API responses
type LineItemResponse struct {
	ID        string `json:"id"`
	ProductID string `json:"product_id"`
	Name      string `json:"name"`
	UnitPrice string `json:"unit_price"`
	ImageURL  string `json:"image_url"`
	Quantity  int    `json:"quantity"`
	Size      string `json:"size"`
	Frame     string `json:"frame"`
	Subtotal  string `json:"subtotal"`
	CreatedAt string `json:"created_at"`
	UpdatedAt string `json:"updated_at"`
}

// CartResponse represents the full cart state in API responses
type CartResponse struct {
	Items     []LineItemResponse `json:"items"`
	Total     string             `json:"total"`
	ItemCount int                `json:"item_count"`
}

// MergeResponse represents the outcome of a cart merge
type MergeResponse struct {
	Planned   int          `json:"planned"`
	Succeeded int          `json:"succeeded"`
	Failed    int          `json:"failed"`
	Cart      CartResponse `json:"cart"`
}

func toLineItemResponse(item *cart.LineItem) LineItemResponse {
	return LineItemResponse{
		ID:        item.ID.String(),
		ProductID: item.ProductID.String(),
		Name:      item.Name,
		UnitPrice: item.UnitPrice.StringFixed(2),
		ImageURL:  item.ImageURL,
		Quantity:  item.Quantity,
		Size:      string(item.Size),
		Frame:     string(item.Frame),
		Subtotal:  item.Subtotal().StringFixed(2),
		CreatedAt: item.CreatedAt.Format(time.RFC3339),
		UpdatedAt: item.UpdatedAt.Format(time.RFC3339),
	}
}

func toCartResponse(c cart.Cart) CartResponse {
	items := make([]LineItemResponse, 0, len(c.Items))
	for i := range c.Items {
		items = append(items, toLineItemResponse(&c.Items[i]))
	}
	return CartResponse{
		Items:     items,
		Total:     c.Total.StringFixed(2),
		ItemCount: c.ItemCount,
	}
}

func toMergeResponse(report appcart.MergeReport, c cart.Cart) MergeResponse {
	return MergeResponse{
		Planned:   report.Planned,
		Succeeded: report.Succeeded,
		Failed:    report.Failed,
		Cart:      toCartResponse(c),
	}
}
