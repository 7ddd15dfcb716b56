package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"little-lemon-api/authz"
	"little-lemon-api/cart"
)

type CartHandler struct {
	ledger *cart.Ledger
}

func NewCartHandler(ledger *cart.Ledger) *CartHandler {
	return &CartHandler{ledger: ledger}
}

type addCartRequest struct {
	MenuItemID uint `json:"menu_item_id" binding:"required"`
	Quantity   int  `json:"quantity" binding:"required"`
}

// List returns the caller's own cart.
func (h *CartHandler) List(c *gin.Context) {
	p, ok := authorized(c, authz.CartRead)
	if !ok {
		return
	}
	lines, err := h.ledger.List(p.UserID)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"count": len(lines), "items": lines})
}

// Add puts a menu item into the caller's cart with a snapshot of its current
// price. Adding an item already in the cart is rejected.
func (h *CartHandler) Add(c *gin.Context) {
	p, ok := authorized(c, authz.CartAdd)
	if !ok {
		return
	}
	var req addCartRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	line, err := h.ledger.Add(p.UserID, req.MenuItemID, req.Quantity)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"item": line})
}

// Remove deletes a single cart line by menu item id.
func (h *CartHandler) Remove(c *gin.Context) {
	p, ok := authorized(c, authz.CartClear)
	if !ok {
		return
	}
	menuItemID, err := strconv.ParseUint(c.Param("menuItemId"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid menu item id"})
		return
	}
	if err := h.ledger.Remove(p.UserID, uint(menuItemID)); err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Item removed from cart"})
}

// Clear empties the caller's cart. Clearing an empty cart is fine.
func (h *CartHandler) Clear(c *gin.Context) {
	p, ok := authorized(c, authz.CartClear)
	if !ok {
		return
	}
	if err := h.ledger.Clear(p.UserID); err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Cart cleared"})
}
