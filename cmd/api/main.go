package main

import (
	"context"
	"log"
	"os"
	"time"

	"github.com/carryalong/carryalong-backend/internal/database"
	"github.com/carryalong/carryalong-backend/internal/handlers"
	"github.com/carryalong/carryalong-backend/internal/middleware"
	"github.com/carryalong/carryalong-backend/internal/services"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	db, err := database.InitDB()
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}

	if err := database.RunMigrations(db); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}

	// Get underlying SQL DB instance
	sqlDB, err := db.DB()
	if err != nil {
		log.Fatalf("Failed to get database instance: %v", err)
	}

	// Configure connection pool
	sqlDB.SetMaxIdleConns(10)
	sqlDB.SetMaxOpenConns(100)
	sqlDB.SetConnMaxLifetime(time.Hour)

	// Initialize Redis (optional - message relay falls back to local hub)
	if err := services.InitRedis(); err != nil {
		log.Printf("Redis initialization warning: %v", err)
	}

	// Initialize Storage (S3 or local fallback)
	if err := services.InitStorage(); err != nil {
		log.Fatalf("Failed to initialize storage: %v", err)
	}

	// Initialize WebSocket hub and the Redis message relay
	hub := services.NewHub()
	go hub.Run()
	go services.SubscribeMessageEvents(context.Background(), hub)

	r := gin.Default()

	// Configure CORS
	config := cors.DefaultConfig()
	config.AllowOrigins = []string{"*"}
	config.AllowHeaders = []string{"Origin", "Content-Type", "Accept", "Authorization"}
	r.Use(cors.New(config))

	// Serve locally stored uploads
	r.Static("/uploads", "/app/uploads")

	api := r.Group("/api")
	{
		// Public routes
		auth := api.Group("/auth")
		{
			auth.POST("/register", handlers.Register(db))
			auth.POST("/login", handlers.Login(db))
		}
		api.GET("/terms", handlers.GetTerms())
		api.GET("/health", func(c *gin.Context) {
			c.JSON(200, gin.H{"status": "OK", "message": "CarryAlong API is running"})
		})

		// WebSocket connection (auth via token query parameter)
		api.GET("/ws", middleware.AuthMiddleware(), handlers.WebSocketHandler(db, hub))

		// Protected routes
		protected := api.Group("/")
		protected.Use(middleware.AuthMiddleware())
		{
			protected.GET("/auth/profile", handlers.GetProfile(db))
			protected.PUT("/auth/profile", handlers.UpdateProfile(db))
			protected.GET("/auth/users/:id", handlers.GetUserByID(db))

			users := protected.Group("/users")
			{
				users.POST("/kyc", handlers.UploadKYC(db))
				users.PUT("/:id/kyc/verify", handlers.VerifyUserKYC(db))
			}

			protected.POST("/terms/accept", handlers.AcceptTerms(db))

			parcels := protected.Group("/parcels")
			{
				parcels.POST("", handlers.CreateParcel(db))
				parcels.GET("", handlers.GetAllParcels(db))
				parcels.GET("/search", handlers.SearchParcels(db))
				parcels.GET("/my/sent", handlers.GetMySentParcels(db))
				parcels.GET("/my/carrying", handlers.GetMyCarryingParcels(db))
				parcels.GET("/:id", handlers.GetParcelByID(db))
				parcels.DELETE("/:id", handlers.DeleteParcel(db))
				parcels.POST("/:id/image", handlers.UploadParcelImage(db))
				parcels.POST("/:id/accept", handlers.AcceptParcel(db))
				parcels.PUT("/:id/status", handlers.UpdateParcelStatus(db))
				parcels.GET("/:id/matches", handlers.FindMatchingTravels(db))
			}

			travel := protected.Group("/travel")
			{
				travel.POST("", handlers.CreateTravel(db))
				travel.GET("", handlers.GetAllTravels(db))
				travel.GET("/search", handlers.SearchTravels(db))
				travel.GET("/my/posts", handlers.GetMyTravels(db))
				travel.GET("/:id", handlers.GetTravelByID(db))
				travel.DELETE("/:id", handlers.DeleteTravel(db))
				travel.PUT("/:id/status", handlers.UpdateTravelStatus(db))
				travel.GET("/:id/matches", handlers.FindMatchingParcels(db))
			}

			ratings := protected.Group("/ratings")
			{
				ratings.POST("", handlers.CreateRating(db))
				ratings.GET("/traveler/:travelerId", handlers.GetTravelerRatings(db))
				ratings.GET("/parcel/:parcelId", handlers.GetRatingByParcel(db))
			}

			payments := protected.Group("/payments")
			{
				payments.GET("/parcel/:parcelId", handlers.GetPaymentByParcel(db))
				payments.GET("/my/earnings", handlers.GetMyEarnings(db))
				payments.GET("/my/sent", handlers.GetMySentPayments(db))
				payments.POST("/confirm", handlers.ConfirmPayment(db))
			}

			messages := protected.Group("/messages")
			{
				messages.POST("", handlers.SendMessage(db, hub))
				messages.GET("/conversations", handlers.GetConversations(db))
				messages.GET("/parcel/:parcelId", handlers.GetMessagesByParcel(db))
				messages.PUT("/:id/read", handlers.MarkMessageRead(db))
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
