package routes

import (
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"little-lemon-api/cart"
	"little-lemon-api/handlers"
	"little-lemon-api/middleware"
	"little-lemon-api/orders"
	"little-lemon-api/roles"
)

// SetupRoutes wires services and handlers onto the router. Role checks are
// done inside the handlers by the authorization policy, not by per-group
// route trees, because a principal can hold several roles at once.
func SetupRoutes(r *gin.Engine, db *gorm.DB) {
	registry := roles.NewRegistry(db)
	ledger := cart.NewLedger(db)
	orderSvc := orders.NewService(db, registry)

	authHandler := handlers.NewAuthHandler(db, registry)
	menuHandler := handlers.NewMenuHandler(db)
	categoryHandler := handlers.NewCategoryHandler(db)
	cartHandler := handlers.NewCartHandler(ledger)
	orderHandler := handlers.NewOrderHandler(orderSvc)
	managerGroup := handlers.NewGroupHandler(db, registry, roles.Manager)
	crewGroup := handlers.NewGroupHandler(db, registry, roles.DeliveryCrew)

	public := r.Group("/api")
	{
		public.POST("/auth/register", authHandler.Register)
		public.POST("/auth/login", authHandler.Login)
	}

	api := r.Group("/api")
	api.Use(middleware.AuthRequired(registry))
	{
		api.GET("/profile", authHandler.GetProfile)

		api.GET("/categories", categoryHandler.List)
		api.POST("/categories", categoryHandler.Create)

		api.GET("/menu-items", menuHandler.List)
		api.POST("/menu-items", menuHandler.Create)
		api.GET("/menu-items/:id", menuHandler.Get)
		api.PUT("/menu-items/:id", menuHandler.Update)
		api.PATCH("/menu-items/:id", menuHandler.Patch)
		api.DELETE("/menu-items/:id", menuHandler.Delete)

		api.GET("/cart/menu-items", cartHandler.List)
		api.POST("/cart/menu-items", cartHandler.Add)
		api.DELETE("/cart/menu-items", cartHandler.Clear)
		api.DELETE("/cart/menu-items/:menuItemId", cartHandler.Remove)

		api.GET("/orders", orderHandler.List)
		api.POST("/orders", orderHandler.Place)
		api.GET("/orders/:id", orderHandler.Get)
		api.PUT("/orders/:id", orderHandler.Replace)
		api.PATCH("/orders/:id", orderHandler.PatchStatus)
		api.DELETE("/orders/:id", orderHandler.Delete)

		api.GET("/groups/manager/users", managerGroup.List)
		api.POST("/groups/manager/users", managerGroup.Add)
		api.DELETE("/groups/manager/users/:email", managerGroup.Remove)

		api.GET("/groups/delivery-crew/users", crewGroup.List)
		api.POST("/groups/delivery-crew/users", crewGroup.Add)
		api.DELETE("/groups/delivery-crew/users/:email", crewGroup.Remove)
	}
}
