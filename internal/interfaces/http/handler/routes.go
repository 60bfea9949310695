package handler

import "github.com/gin-gonic/gin"

// RegisterRoutes mounts the cart endpoints on the given group
func (h *CartHandler) RegisterRoutes(rg *gin.RouterGroup) {
	cart := rg.Group("/cart")
	{
		cart.GET("", h.Get)
		cart.DELETE("", h.Clear)
		cart.POST("/items", h.AddItem)
		cart.PATCH("/items/:id", h.UpdateItem)
		cart.DELETE("/items/:id", h.RemoveItem)
		cart.POST("/merge", h.Merge)
	}
}
