package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"little-lemon-api/authz"
	"little-lemon-api/models"
)

type MenuHandler struct {
	db *gorm.DB
}

func NewMenuHandler(db *gorm.DB) *MenuHandler {
	return &MenuHandler{db: db}
}

type menuItemRequest struct {
	Title      string          `json:"title" binding:"required"`
	Price      decimal.Decimal `json:"price" binding:"required"`
	Featured   bool            `json:"featured"`
	CategoryID uint            `json:"category_id" binding:"required"`
}

// List returns the full menu. Readable by any authenticated principal.
func (h *MenuHandler) List(c *gin.Context) {
	if _, ok := authorized(c, authz.MenuRead); !ok {
		return
	}
	var items []models.MenuItem
	if err := h.db.Preload("Category").Find(&items).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load menu"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"count": len(items), "menu_items": items})
}

func (h *MenuHandler) Get(c *gin.Context) {
	if _, ok := authorized(c, authz.MenuRead); !ok {
		return
	}
	var item models.MenuItem
	if err := h.db.Preload("Category").First(&item, c.Param("id")).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Menu item not found"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"menu_item": item})
}

func (h *MenuHandler) Create(c *gin.Context) {
	if _, ok := authorized(c, authz.MenuWrite); !ok {
		return
	}
	var req menuItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if !req.Price.IsPositive() {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Price must be greater than zero"})
		return
	}
	var category models.Category
	if err := h.db.First(&category, req.CategoryID).Error; err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Category not found"})
		return
	}

	item := models.MenuItem{
		Title:      req.Title,
		Price:      req.Price,
		Featured:   req.Featured,
		CategoryID: req.CategoryID,
	}
	if err := h.db.Create(&item).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create menu item"})
		return
	}
	item.Category = category
	c.JSON(http.StatusCreated, gin.H{"menu_item": item})
}

// Update is the full replace of a menu item. Existing cart lines and order
// items keep their snapshot prices regardless of the new price.
func (h *MenuHandler) Update(c *gin.Context) {
	if _, ok := authorized(c, authz.MenuWrite); !ok {
		return
	}
	var item models.MenuItem
	if err := h.db.First(&item, c.Param("id")).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Menu item not found"})
		return
	}
	var req menuItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if !req.Price.IsPositive() {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Price must be greater than zero"})
		return
	}
	if err := h.db.First(&models.Category{}, req.CategoryID).Error; err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Category not found"})
		return
	}

	updates := map[string]any{
		"title":       req.Title,
		"price":       req.Price,
		"featured":    req.Featured,
		"category_id": req.CategoryID,
	}
	if err := h.db.Model(&item).Updates(updates).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update menu item"})
		return
	}
	h.db.Preload("Category").First(&item, item.ID)
	c.JSON(http.StatusOK, gin.H{"menu_item": item})
}

// Patch updates a subset of fields.
func (h *MenuHandler) Patch(c *gin.Context) {
	if _, ok := authorized(c, authz.MenuWrite); !ok {
		return
	}
	var item models.MenuItem
	if err := h.db.First(&item, c.Param("id")).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Menu item not found"})
		return
	}

	var req struct {
		Title      *string          `json:"title"`
		Price      *decimal.Decimal `json:"price"`
		Featured   *bool            `json:"featured"`
		CategoryID *uint            `json:"category_id"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	updates := map[string]any{}
	if req.Title != nil {
		updates["title"] = *req.Title
	}
	if req.Price != nil {
		if !req.Price.IsPositive() {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Price must be greater than zero"})
			return
		}
		updates["price"] = *req.Price
	}
	if req.Featured != nil {
		updates["featured"] = *req.Featured
	}
	if req.CategoryID != nil {
		if err := h.db.First(&models.Category{}, *req.CategoryID).Error; err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Category not found"})
			return
		}
		updates["category_id"] = *req.CategoryID
	}
	if len(updates) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "No updatable fields in request"})
		return
	}

	if err := h.db.Model(&item).Updates(updates).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update menu item"})
		return
	}
	h.db.Preload("Category").First(&item, item.ID)
	c.JSON(http.StatusOK, gin.H{"menu_item": item})
}

func (h *MenuHandler) Delete(c *gin.Context) {
	if _, ok := authorized(c, authz.MenuWrite); !ok {
		return
	}
	var item models.MenuItem
	if err := h.db.First(&item, c.Param("id")).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Menu item not found"})
		return
	}
	if err := h.db.Delete(&item).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete menu item"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Menu item deleted"})
}
