package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"little-lemon-api/authz"
	"little-lemon-api/models"
	"little-lemon-api/roles"
)

// GroupHandler administers Manager and Delivery crew memberships. Every
// operation here, removals from the crew group included, is guarded by the
// caller's Manager membership.
type GroupHandler struct {
	db       *gorm.DB
	registry *roles.Registry
	role     roles.Role
}

func NewGroupHandler(db *gorm.DB, registry *roles.Registry, role roles.Role) *GroupHandler {
	return &GroupHandler{db: db, registry: registry, role: role}
}

type groupMemberRequest struct {
	Email string `json:"email" binding:"required,email"`
}

// List returns the members of the group.
func (h *GroupHandler) List(c *gin.Context) {
	if _, ok := authorized(c, authz.GroupRead); !ok {
		return
	}
	users, err := h.registry.Members(h.role)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"count": len(users), "users": users})
}

// Add grants the group's role to an existing user.
func (h *GroupHandler) Add(c *gin.Context) {
	if _, ok := authorized(c, authz.GroupAdd); !ok {
		return
	}
	var req groupMemberRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	user, ok := h.lookup(c, req.Email)
	if !ok {
		return
	}
	if err := h.registry.Grant(user.ID, h.role); err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"message": "User added to " + string(h.role) + " group"})
}

// Remove revokes the group's role. Removing a user who is not a member
// succeeds with no effect.
func (h *GroupHandler) Remove(c *gin.Context) {
	if _, ok := authorized(c, authz.GroupRemove); !ok {
		return
	}
	user, ok := h.lookup(c, c.Param("email"))
	if !ok {
		return
	}
	if err := h.registry.Revoke(user.ID, h.role); err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "User removed from " + string(h.role) + " group"})
}

func (h *GroupHandler) lookup(c *gin.Context, email string) (*models.User, bool) {
	var user models.User
	if err := h.db.Where("email = ?", email).First(&user).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
		return nil, false
	}
	return &user, true
}
