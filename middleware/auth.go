package middleware

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"little-lemon-api/config"
	"little-lemon-api/models"
	"little-lemon-api/roles"
)

const principalKey = "principal"

type Claims struct {
	UserID uint   `json:"user_id"`
	Name   string `json:"name"`
	Email  string `json:"email"`
	jwt.RegisteredClaims
}

// GenerateToken creates a signed JWT for a given user. Role memberships are
// deliberately not embedded: they are resolved from the registry on every
// request, so a group change takes effect immediately.
func GenerateToken(user *models.User) (string, error) {
	claims := Claims{
		UserID: user.ID,
		Name:   user.Name,
		Email:  user.Email,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(24 * time.Hour)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(config.JWTSecret)
}

// AuthRequired validates the JWT, resolves the caller's role set through the
// registry and injects the resulting principal into the context.
func AuthRequired(registry *roles.Registry) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" || !strings.HasPrefix(authHeader, "Bearer ") {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Authorization header required (Bearer <token>)"})
			c.Abort()
			return
		}
		tokenStr := strings.TrimPrefix(authHeader, "Bearer ")
		claims := &Claims{}
		token, err := jwt.ParseWithClaims(tokenStr, claims, func(t *jwt.Token) (interface{}, error) {
			return config.JWTSecret, nil
		})
		if err != nil || !token.Valid {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid or expired token"})
			c.Abort()
			return
		}

		set, err := registry.RolesOf(claims.UserID)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to resolve roles"})
			c.Abort()
			return
		}

		c.Set(principalKey, roles.Principal{
			UserID: claims.UserID,
			Name:   claims.Name,
			Email:  claims.Email,
			Roles:  set,
		})
		c.Next()
	}
}

// GetPrincipal extracts the authenticated principal from the context.
func GetPrincipal(c *gin.Context) roles.Principal {
	val, _ := c.Get(principalKey)
	return val.(roles.Principal)
}
