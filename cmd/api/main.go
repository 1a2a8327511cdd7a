package main

import (
	"log"
	"os"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/karmanya-engineer/uber-clone/internal/database"
	"github.com/karmanya-engineer/uber-clone/internal/handlers"
	"github.com/karmanya-engineer/uber-clone/internal/middleware"
	"github.com/karmanya-engineer/uber-clone/internal/services"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Printf("No .env file found, using environment variables")
	}

	db, err := database.InitDB()
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		log.Fatalf("Failed to get database instance: %v", err)
	}

	// Configure connection pool
	sqlDB.SetMaxIdleConns(10)
	sqlDB.SetMaxOpenConns(100)
	sqlDB.SetConnMaxLifetime(time.Hour)

	// Redis is optional - presence features degrade gracefully without it
	if err := services.InitRedis(); err != nil {
		log.Printf("Redis initialization warning: %v", err)
	}

	// Initialize WebSocket hub
	hub := services.NewHub()
	go hub.Run()

	estimator := services.NewFareEstimator(services.NewDistanceMatrixService())

	// Initialize router
	r := gin.Default()

	// Configure CORS
	config := cors.DefaultConfig()
	config.AllowOrigins = []string{"*"}
	config.AllowHeaders = []string{"Origin", "Content-Type", "Accept", "Authorization"}
	r.Use(cors.New(config))

	r.Use(middleware.Metrics())
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// Routes
	api := r.Group("/api")
	{
		// Public routes
		auth := api.Group("/auth")
		{
			auth.POST("/register", handlers.Register(db))
			auth.POST("/login", handlers.Login(db))
			auth.POST("/resend-verification", handlers.ResendVerification(db))
			auth.GET("/verify-email/:token", handlers.VerifyEmail(db))
			auth.GET("/google", handlers.GoogleLogin())
			auth.GET("/google/callback", handlers.GoogleCallback(db))
		}

		// WebSocket connection
		api.GET("/ws", middleware.AuthMiddleware(), handlers.WebSocketHandler(hub))

		// Protected routes
		protected := api.Group("/")
		protected.Use(middleware.AuthMiddleware())
		{
			// User routes
			users := protected.Group("/users")
			{
				users.GET("/me", handlers.GetMe(db))
				users.PUT("/location", handlers.UpdateLocation(db))
				users.PUT("/availability", handlers.UpdateAvailability(db))
				users.GET("/drivers", handlers.GetNearbyDrivers(db))
			}

			// Rides routes
			rides := protected.Group("/rides")
			{
				rides.POST("", handlers.CreateRide(db, hub, estimator))
				rides.GET("", handlers.GetRides(db))
				rides.GET("/available", handlers.GetAvailableRides(db))
				rides.POST("/:id/accept", handlers.AcceptRide(db, hub))
				rides.POST("/:id/start", handlers.StartRide(db, hub))
				rides.POST("/:id/complete", handlers.CompleteRide(db, hub))
				rides.POST("/:id/cancel", handlers.CancelRide(db, hub))
				rides.POST("/:id/location", handlers.UpdateRideLocation(db, hub))
			}
		}
	}

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}

	if err := r.Run(":" + port); err != nil {
		log.Fatal("Failed to start server:", err)
	}
}
