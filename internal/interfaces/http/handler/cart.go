package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	appcart "github.com/omorfo/backend/internal/application/cart"
	"github.com/omorfo/backend/internal/domain/cart"
	"github.com/omorfo/backend/internal/interfaces/http/dto"
)

// CartHandler handles cart API endpoints
type CartHandler struct {
	BaseHandler
	cartService   *appcart.Service
	mergeMaxLines int
}

// NewCartHandler creates a new CartHandler
func NewCartHandler(cartService *appcart.Service, mergeMaxLines int) *CartHandler {
	return &CartHandler{
		cartService:   cartService,
		mergeMaxLines: mergeMaxLines,
	}
}

// Get returns the authenticated user's cart
func (h *CartHandler) Get(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return
	}

	userCart, err := h.cartService.GetCart(c.Request.Context(), userID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, toCartResponse(userCart))
}

// AddItem adds a product variant to the cart. Adding a variant that is
// already in the cart folds the quantities into the existing line.
func (h *CartHandler) AddItem(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return
	}

	var req AddItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	productID, err := uuid.Parse(req.ProductID)
	if err != nil {
		h.BadRequest(c, "Invalid product ID")
		return
	}

	item, err := h.cartService.InsertItem(c.Request.Context(), userID, cart.InsertParams{
		ProductID: productID,
		Quantity:  req.Quantity,
		Size:      cart.PosterSize(req.Size),
		Frame:     cart.FrameStyle(req.Frame),
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Created(c, toLineItemResponse(item))
}

// UpdateItem updates the quantity or variant options of a cart line
func (h *CartHandler) UpdateItem(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return
	}

	var uri dto.IDRequest
	if err := c.ShouldBindUri(&uri); err != nil {
		h.BadRequest(c, "Invalid line ID")
		return
	}
	lineID := uuid.MustParse(uri.ID)

	var req UpdateItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	params := cart.UpdateParams{Quantity: req.Quantity}
	if req.Size != nil {
		size := cart.PosterSize(*req.Size)
		params.Size = &size
	}
	if req.Frame != nil {
		frame := cart.FrameStyle(*req.Frame)
		params.Frame = &frame
	}

	item, err := h.cartService.UpdateItem(c.Request.Context(), lineID, userID, params)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, toLineItemResponse(item))
}

// RemoveItem removes a line from the cart. Removing an absent line succeeds.
func (h *CartHandler) RemoveItem(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return
	}

	var uri dto.IDRequest
	if err := c.ShouldBindUri(&uri); err != nil {
		h.BadRequest(c, "Invalid line ID")
		return
	}
	lineID := uuid.MustParse(uri.ID)

	if err := h.cartService.DeleteItem(c.Request.Context(), lineID, userID); err != nil {
		h.HandleError(c, err)
		return
	}

	h.NoContent(c)
}

// Clear removes every line from the cart
func (h *CartHandler) Clear(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return
	}

	if err := h.cartService.DeleteAllForUser(c.Request.Context(), userID); err != nil {
		h.HandleError(c, err)
		return
	}

	h.NoContent(c)
}

// Merge folds guest cart lines into the authenticated user's cart.
// Lines for a variant already in the cart sum quantities; the rest are
// inserted. Each line is applied independently and the response reports
// how many landed.
func (h *CartHandler) Merge(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return
	}

	var req MergeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}
	if len(req.Items) > h.mergeMaxLines {
		h.BadRequest(c, "Too many lines in merge request")
		return
	}

	guest, err := req.toLineItems()
	if err != nil {
		h.HandleError(c, err)
		return
	}

	report, userCart, err := h.cartService.MergeGuestLines(c.Request.Context(), userID, guest)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, toMergeResponse(report, userCart))
}
