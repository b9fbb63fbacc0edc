package server

import (
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	"github.com/Daniel-Osman/nfd-express/internal/handlers"
	"github.com/Daniel-Osman/nfd-express/internal/middleware"
)

type RouterConfig struct {
	AuthHandler     *handlers.AuthHandler
	AuthMiddleware  *middleware.AuthMiddleware
	ProfileHandler  *handlers.ProfileHandler
	ShipmentHandler *handlers.ShipmentHandler
	TrackingHandler *handlers.TrackingHandler
	AdminHandler    *handlers.AdminHandler
}

func NewRouter(cfg RouterConfig) *gin.Engine {
	router := gin.Default()
	router.Use(otelgin.Middleware("nfd-express"))

	// Cors
	router.Use(cors.New(cors.Config{
		AllowOrigins: []string{
			"http://localhost:80",
			"http://localhost:3000",
			"http://localhost:5174",
		},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "PATCH", "OPTIONS"},
		AllowHeaders:     []string{"Authorization", "Content-Type", "X-Requested-With"},
		AllowCredentials: true,
	}))

	// ===============
	// || Public    ||
	// ===============
	router.GET("/healthcheck", handlers.HealthCheck)
	api := router.Group("/api")
	{
		api.POST("/register", cfg.AuthHandler.Register)
		api.POST("/login", cfg.AuthHandler.Login)
		api.GET("/track/:trackingNumber", cfg.TrackingHandler.Track)
	}

	// ===============
	// || Protected ||
	// ===============
	protected := api.Group("/")
	protected.Use(cfg.AuthMiddleware.RequireAuth())
	// Auth
	protected.POST("/refresh", cfg.AuthHandler.Refresh)
	protected.POST("/logout", cfg.AuthHandler.Logout)
	// Profile
	protected.GET("/me", cfg.ProfileHandler.GetMe)
	protected.PATCH("/me", cfg.ProfileHandler.UpdateMe)
	// Shipments (caller's own, tier projected)
	protected.GET("/shipments", cfg.TrackingHandler.MyShipments)
	protected.GET("/shipments/:id", cfg.TrackingHandler.ShipmentDetails)

	// ===============
	// || Admin     ||
	// ===============
	admin := api.Group("/admin")
	admin.Use(cfg.AuthMiddleware.RequireAuth(), cfg.AuthMiddleware.RequireAdmin())
	// Shipments
	admin.POST("/shipments", cfg.ShipmentHandler.Create)
	admin.GET("/shipments", cfg.ShipmentHandler.GetAll)
	admin.GET("/shipments/search", cfg.ShipmentHandler.Search)
	admin.GET("/shipments/tracking/:trackingNumber", cfg.ShipmentHandler.GetByTracking)
	admin.PATCH("/shipments/:id/status", cfg.ShipmentHandler.UpdateStatus)
	admin.POST("/shipments/:id/photo", cfg.ShipmentHandler.UploadPhoto)
	admin.POST("/shipments/:id/verification", cfg.ShipmentHandler.AddVerification)
	admin.POST("/shipments/consolidate", cfg.ShipmentHandler.Consolidate)
	// Users
	admin.GET("/users", cfg.AdminHandler.GetAllUsers)
	admin.GET("/users/mailbox/:mailboxId", cfg.AdminHandler.GetUserByMailbox)
	admin.PATCH("/users/:id/tier", cfg.AdminHandler.UpdateUserTier)
	// Stats
	admin.GET("/stats", cfg.AdminHandler.Stats)

	return router
}
