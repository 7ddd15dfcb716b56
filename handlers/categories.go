package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"little-lemon-api/authz"
	"little-lemon-api/models"
)

type CategoryHandler struct {
	db *gorm.DB
}

func NewCategoryHandler(db *gorm.DB) *CategoryHandler {
	return &CategoryHandler{db: db}
}

func (h *CategoryHandler) List(c *gin.Context) {
	if _, ok := authorized(c, authz.MenuRead); !ok {
		return
	}
	var categories []models.Category
	if err := h.db.Find(&categories).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load categories"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"count": len(categories), "categories": categories})
}

// Create adds a menu category. Gated like other menu writes.
func (h *CategoryHandler) Create(c *gin.Context) {
	if _, ok := authorized(c, authz.MenuWrite); !ok {
		return
	}
	var req struct {
		Slug  string `json:"slug" binding:"required"`
		Title string `json:"title" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	category := models.Category{Slug: req.Slug, Title: req.Title}
	if err := h.db.Create(&category).Error; err != nil {
		c.JSON(http.StatusConflict, gin.H{"error": "Category already exists"})
		return
	}
	c.JSON(http.StatusCreated, gin.H{"category": category})
}
