package main

import (
	"log"
	"net/http"
	"os"

	"github.com/gin-gonic/gin"
	"golang.org/x/crypto/bcrypt"

	"little-lemon-api/config"
	"little-lemon-api/errs"
	"little-lemon-api/models"
	"little-lemon-api/roles"
	"little-lemon-api/routes"
	"little-lemon-api/statemachine"
)

func main() {
	mode := os.Getenv("GIN_MODE")
	if mode == "" {
		gin.SetMode(gin.DebugMode)
	}

	config.InitDB()
	seedManager()

	r := gin.Default()

	// CORS middleware for frontend integration
	r.Use(func(c *gin.Context) {
		c.Header("Access-Control-Allow-Origin", "*")
		c.Header("Access-Control-Allow-Methods", "GET, POST, PUT, PATCH, DELETE, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Origin, Content-Type, Authorization")
		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}
		c.Next()
	})

	r.HandleMethodNotAllowed = true
	r.NoMethod(func(c *gin.Context) {
		c.JSON(errs.HTTPStatus(errs.ErrMethodNotAllowed), gin.H{"error": errs.ErrMethodNotAllowed.Error()})
	})

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "healthy",
			"service": "Little Lemon Order Management API",
			"version": "1.0.0",
		})
	})

	// State machine info (handy for docs/Postman)
	r.GET("/api/state-machine", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"transitions": statemachine.GetAllTransitions()})
	})

	routes.SetupRoutes(r, config.DB)

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}
	log.Printf("Server running on http://localhost:%s", port)
	if err := r.Run(":" + port); err != nil {
		log.Fatal("Failed to start server:", err)
	}
}

// seedManager bootstraps the first manager account from the environment so a
// fresh deployment has someone able to administer groups.
func seedManager() {
	email := os.Getenv("MANAGER_EMAIL")
	password := os.Getenv("MANAGER_PASSWORD")
	if email == "" || password == "" {
		return
	}

	db := config.DB
	registry := roles.NewRegistry(db)

	var user models.User
	err := db.Where("email = ?", email).First(&user).Error
	if err != nil {
		hash, hashErr := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
		if hashErr != nil {
			log.Fatal("Failed to hash manager password:", hashErr)
		}
		user = models.User{Name: "Manager", Email: email, PasswordHash: string(hash)}
		if err := db.Create(&user).Error; err != nil {
			log.Fatal("Failed to create manager account:", err)
		}
	}
	if err := registry.Grant(user.ID, roles.Manager); err != nil {
		log.Fatal("Failed to grant manager role:", err)
	}
	log.Printf("Manager account ready: %s", email)
}
