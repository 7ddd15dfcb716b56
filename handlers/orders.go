package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"little-lemon-api/authz"
	"little-lemon-api/middleware"
	"little-lemon-api/orders"
)

type OrderHandler struct {
	svc *orders.Service
}

func NewOrderHandler(svc *orders.Service) *OrderHandler {
	return &OrderHandler{svc: svc}
}

// List returns the orders visible to the caller: all of them for managers,
// assigned ones for delivery crew, own ones for customers.
func (h *OrderHandler) List(c *gin.Context) {
	p, ok := authorized(c, authz.OrderList)
	if !ok {
		return
	}
	out, err := h.svc.ListFor(p)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"count": len(out), "orders": out})
}

// Place converts the caller's cart into a new order.
func (h *OrderHandler) Place(c *gin.Context) {
	p, ok := authorized(c, authz.OrderPlace)
	if !ok {
		return
	}
	order, err := h.svc.Place(p.UserID)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"message": "Order placed successfully", "order": order})
}

// Get returns a single order's detail to its owning customer.
func (h *OrderHandler) Get(c *gin.Context) {
	p := middleware.GetPrincipal(c)
	id, ok := orderID(c)
	if !ok {
		return
	}
	order, err := h.svc.Get(p, id)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"order": order})
}

// Replace is the manager-only full update of an order's mutable fields.
func (h *OrderHandler) Replace(c *gin.Context) {
	p, ok := authorized(c, authz.OrderReplace)
	if !ok {
		return
	}
	id, ok := orderID(c)
	if !ok {
		return
	}
	var req orders.ReplaceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	order, err := h.svc.Replace(p, id, req)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"order": order})
}

// PatchStatus is the status-only partial update for managers and delivery
// crew. The raw body keys are inspected so that a request touching anything
// besides status is rejected outright.
func (h *OrderHandler) PatchStatus(c *gin.Context) {
	p, ok := authorized(c, authz.OrderPatchStatus)
	if !ok {
		return
	}
	id, ok := orderID(c)
	if !ok {
		return
	}
	var fields map[string]json.RawMessage
	if err := c.ShouldBindJSON(&fields); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	order, err := h.svc.PatchStatus(p, id, fields)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"order": order})
}

// Delete removes an order and its item snapshots. Manager only.
func (h *OrderHandler) Delete(c *gin.Context) {
	if _, ok := authorized(c, authz.OrderDelete); !ok {
		return
	}
	id, ok := orderID(c)
	if !ok {
		return
	}
	if err := h.svc.Delete(id); err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Order deleted"})
}

func orderID(c *gin.Context) (uint, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid order id"})
		return 0, false
	}
	return uint(id), true
}
