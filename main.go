package main

import (
	"log"
	"net/http"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/zaidzaid0342-dotcom/restaurant/config"
	"github.com/zaidzaid0342-dotcom/restaurant/controllers"
	"github.com/zaidzaid0342-dotcom/restaurant/middleware"
	"github.com/zaidzaid0342-dotcom/restaurant/models"
	"github.com/zaidzaid0342-dotcom/restaurant/services"
)

func main() {
	// Basic logging
	log.Println("Starting Restaurant Ordering API server...")

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Connect to database
	if err := config.ConnectDatabase(); err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	// Auto-migrate database models
	db := config.GetDB()
	if err := db.AutoMigrate(&models.User{}, &models.MenuItem{}, &models.Order{}); err != nil {
		log.Fatalf("Failed to migrate database: %v", err)
	}
	log.Println("Database migration completed successfully")

	// The broadcaster backs the order event stream; its listener set is
	// in-memory only and empties on restart
	services.InitBroadcaster()

	// Menu image uploads need an S3 bucket; everything else works without one
	if cfg.AWSS3Bucket != "" {
		s3Service, err := services.InitS3Service()
		if err != nil {
			log.Fatalf("Failed to initialize S3 service: %v", err)
		}
		services.InitImageService(s3Service)
	} else {
		log.Println("AWS_S3_BUCKET not set, menu image uploads are disabled")
	}

	router := setupRouter(cfg)

	// Start server
	port := ":" + cfg.Port
	log.Printf("Server is running on http://localhost%s", port)
	if err := router.Run(port); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}

// setupRouter builds the Gin engine with CORS and all API routes
func setupRouter(cfg *config.Config) *gin.Engine {
	router := gin.Default()

	// CORS restricted to the frontend origin
	router.Use(cors.New(cors.Config{
		AllowOrigins: []string{cfg.FrontendURL},
		AllowMethods: []string{"GET", "POST", "PUT", "DELETE"},
		AllowHeaders: []string{"Content-Type", "Authorization"},
	}))

	requireAuth := middleware.EnsureValidToken(cfg)
	requireAdmin := middleware.RequireAdmin()

	api := router.Group("/api")
	{
		// Health check endpoint
		api.GET("/health", healthCheck)

		// Database status endpoint
		api.GET("/database/status", databaseStatus)

		auth := api.Group("/auth")
		{
			auth.POST("/register", controllers.Register)
			auth.POST("/login", controllers.Login)
			auth.GET("/me", requireAuth, controllers.GetMe)
		}

		menu := api.Group("/menu")
		{
			menu.GET("", controllers.ListMenuItems)
			menu.POST("", requireAuth, requireAdmin, controllers.CreateMenuItem)
			menu.POST("/images", requireAuth, requireAdmin, controllers.UploadMenuImage)
			menu.PUT("/:id", requireAuth, requireAdmin, controllers.UpdateMenuItem)
			menu.DELETE("/:id", requireAuth, requireAdmin, controllers.DeleteMenuItem)
		}

		orders := api.Group("/orders")
		{
			orders.POST("", controllers.PlaceOrder)
			orders.GET("", requireAuth, requireAdmin, controllers.ListOrders)
			orders.GET("/events", controllers.StreamOrderEvents)
			orders.GET("/track/:trackingId", controllers.TrackOrder)
			orders.GET("/whatsapp/:number", controllers.GetOrderByWhatsappNumber)
			orders.GET("/:id", controllers.GetOrder)
			orders.PUT("/:id/status", requireAuth, requireAdmin, controllers.UpdateOrderStatus)
		}
	}

	return router
}

// healthCheck handles the health check endpoint
func healthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Restaurant Ordering API is running",
	})
}

// databaseStatus checks database connectivity and returns table information
func databaseStatus(c *gin.Context) {
	db := config.GetDB()

	// Get the underlying SQL database to check connection
	sqlDB, err := db.DB()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "DATABASE_ERROR",
				"message": "Failed to get database instance",
			},
		})
		return
	}

	// Ping the database to verify connection
	if err := sqlDB.Ping(); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "DATABASE_CONNECTION_ERROR",
				"message": "Database connection failed",
			},
		})
		return
	}

	// Count orders as a cheap liveness query that works on every backend
	var orderCount int64
	if err := db.Model(&models.Order{}).Count(&orderCount).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "DATABASE_QUERY_ERROR",
				"message": "Failed to query orders",
			},
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":    true,
		"message":    "Database connected",
		"orderCount": orderCount,
	})
}
