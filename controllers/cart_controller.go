package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/mmaaza/surgical-mart-sub001/cart"
)

// CartController exposes the cart state manager.
type CartController struct {
	manager *cart.Manager
	logger  *zap.Logger
}

// NewCartController creates a cart controller.
func NewCartController(manager *cart.Manager, logger *zap.Logger) *CartController {
	return &CartController{manager: manager, logger: logger}
}

type addItemPayload struct {
	ProductID  string            `json:"product_id" binding:"required"`
	Quantity   int               `json:"quantity" binding:"required"`
	Attributes map[string]string `json:"attributes"`
}

type updateQuantityPayload struct {
	Quantity int `json:"quantity"`
}

// GetCart returns the current filtered cart view with derived totals.
func (cc *CartController) GetCart(c *gin.Context) {
	if cc.manager.State() == cart.StateUninitialized {
		if err := cc.manager.Fetch(c.Request.Context()); err != nil {
			cc.logger.Warn("cart fetch failed", zap.Error(err))
			respondError(c, err)
			return
		}
	}

	c.JSON(http.StatusOK, gin.H{
		"items":             cc.manager.Items(),
		"item_count":        cc.manager.ItemCount(),
		"total_value":       cc.manager.TotalValue(),
		"has_invalid_items": cc.manager.HasInvalidItems(),
	})
}

// Refresh re-fetches the cart from the gateway.
func (cc *CartController) Refresh(c *gin.Context) {
	if err := cc.manager.Fetch(c.Request.Context()); err != nil {
		respondError(c, err)
		return
	}
	cc.GetCart(c)
}

// AddItem puts a product in the cart.
func (cc *CartController) AddItem(c *gin.Context) {
	var payload addItemPayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid payload"})
		return
	}

	if err := cc.manager.Add(c.Request.Context(), payload.ProductID, payload.Quantity, payload.Attributes); err != nil {
		cc.logger.Warn("add to cart failed",
			zap.String("product_id", payload.ProductID),
			zap.Error(err),
		)
		respondError(c, err)
		return
	}
	cc.GetCart(c)
}

// UpdateQuantity changes a line's quantity.
func (cc *CartController) UpdateQuantity(c *gin.Context) {
	lineID := c.Param("line_id")
	var payload updateQuantityPayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid payload"})
		return
	}

	if err := cc.manager.UpdateQuantity(c.Request.Context(), lineID, payload.Quantity); err != nil {
		respondError(c, err)
		return
	}
	cc.GetCart(c)
}

// RemoveItem deletes a line. Removing an absent line succeeds.
func (cc *CartController) RemoveItem(c *gin.Context) {
	if err := cc.manager.Remove(c.Request.Context(), c.Param("line_id")); err != nil {
		respondError(c, err)
		return
	}
	cc.GetCart(c)
}

// ClearCart empties the cart locally and remotely.
func (cc *CartController) ClearCart(c *gin.Context) {
	if err := cc.manager.Clear(c.Request.Context()); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "cart cleared"})
}

// CleanupInvalid removes lines whose backing product went away.
func (cc *CartController) CleanupInvalid(c *gin.Context) {
	if err := cc.manager.CleanupInvalidItems(c.Request.Context()); err != nil {
		respondError(c, err)
		return
	}
	cc.GetCart(c)
}
