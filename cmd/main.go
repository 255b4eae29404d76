package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"property-market/internal/auth"
	"property-market/internal/cache"
	"property-market/internal/config"
	"property-market/internal/database"
	"property-market/internal/handlers"
	"property-market/internal/messaging"
	"property-market/internal/repository"
	"property-market/internal/services"
	"property-market/internal/storage"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Initialize JWT
	auth.InitJWT(cfg.App.JWTSecret)

	// Connect to database
	if err := database.Connect(cfg.GetDSN()); err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	// Run migrations
	if err := database.AutoMigrate(); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}

	// Optional adapters: each is skipped when unconfigured so the service can
	// run with just a database.
	var listingCache services.ListingCache
	if cfg.Redis.Address != "" {
		redisCache, err := cache.NewListingCache(cfg.Redis.Address)
		if err != nil {
			log.Fatalf("Failed to connect to redis at %s: %v", cfg.Redis.Address, err)
		}
		listingCache = redisCache
		log.Println("Listing cache enabled")
	}

	var publisher services.EventPublisher
	var natsPublisher *messaging.Publisher
	if cfg.NATS.URL != "" {
		natsPublisher, err = messaging.NewPublisher(cfg.NATS.URL)
		if err != nil {
			log.Fatalf("Failed to connect to NATS at %s: %v", cfg.NATS.URL, err)
		}
		defer natsPublisher.Close()
		publisher = natsPublisher
		log.Println("Event publishing enabled")
	}

	var mediaStorage handlers.BlobStorage
	if cfg.MinIO.Endpoint != "" {
		minioStorage, err := storage.NewMediaStorage(
			cfg.MinIO.Endpoint,
			cfg.MinIO.AccessKey,
			cfg.MinIO.SecretKey,
			cfg.MinIO.Bucket,
			cfg.MinIO.UseSSL,
		)
		if err != nil {
			log.Fatalf("Failed to connect to minio at %s: %v", cfg.MinIO.Endpoint, err)
		}
		mediaStorage = minioStorage
		log.Println("Media uploads enabled")
	}

	// Initialize repository
	repo := repository.NewRepository(database.GetDB())

	// Initialize services
	authService := services.NewAuthService(database.GetDB())
	listingService := services.NewListingService(repo, listingCache, publisher)
	reviewService := services.NewReviewService(repo, listingService)
	searchService := services.NewSearchService(repo)
	inspectionService := services.NewInspectionService(repo)

	// Initialize handlers
	authHandler := handlers.NewAuthHandler(authService)
	listingHandler := handlers.NewListingHandler(listingService, searchService, mediaStorage)
	adminHandler := handlers.NewAdminHandler(reviewService)
	inspectionHandler := handlers.NewInspectionHandler(inspectionService)

	// Set up Gin router
	router := gin.Default()

	// CORS middleware
	allowedOrigins := []string{
		"http://localhost:3000",
		"http://localhost:5173", // Vite dev server
		"http://127.0.0.1:3000",
		"http://127.0.0.1:5173",
	}
	// Add additional frontend URL from environment if provided
	if frontendURL := os.Getenv("FRONTEND_URL"); frontendURL != "" {
		allowedOrigins = append(allowedOrigins, frontendURL)
	}

	router.Use(cors.New(cors.Config{
		AllowOrigins:     allowedOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS", "PATCH"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization", "Accept", "X-Requested-With"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	// Health check endpoint
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status": "ok",
			"time":   time.Now().Format(time.RFC3339),
		})
	})

	// Authentication routes (public)
	authRoutes := router.Group("/auth")
	{
		authRoutes.POST("/register", authHandler.Register)
		authRoutes.POST("/login", authHandler.Login)
	}

	// Authenticated /auth/me route
	authProtected := router.Group("/auth")
	authProtected.Use(auth.AuthMiddleware())
	{
		authProtected.GET("/me", authHandler.GetMe)
	}

	// Public browse routes
	router.GET("/api/listings", listingHandler.SearchListings)
	router.GET("/api/listings/:id", listingHandler.GetListing)

	// API routes (protected)
	api := router.Group("/api")
	api.Use(auth.AuthMiddleware())
	{
		// Listing endpoints (developer)
		api.POST("/listings", listingHandler.CreateListing)
		api.PUT("/listings/:id", listingHandler.UpdateListing)
		api.DELETE("/listings/:id", listingHandler.DeleteListing)
		api.POST("/listings/:id/submit", listingHandler.SubmitListing)
		api.GET("/my/listings", listingHandler.GetMyListings)

		// Media and document endpoints
		api.POST("/listings/:id/media", listingHandler.AttachMedia)
		api.DELETE("/listings/:id/media/:mediaId", listingHandler.RemoveMedia)
		api.POST("/listings/:id/documents", listingHandler.AttachDocument)
		api.DELETE("/listings/:id/documents/:documentId", listingHandler.RemoveDocument)

		// Inspection endpoints
		api.POST("/inspections", inspectionHandler.BookInspection)
		api.GET("/inspections", inspectionHandler.GetInspections)
		api.GET("/inspections/:id", inspectionHandler.GetInspection)
		api.POST("/inspections/:id/cancel", inspectionHandler.CancelInspection)
	}

	// Admin routes (protected + admin only)
	admin := router.Group("/api/admin")
	admin.Use(auth.AuthMiddleware())
	admin.Use(auth.AdminMiddleware())
	{
		admin.GET("/queue", adminHandler.GetReviewQueue)
		admin.POST("/listings/:id/approve", adminHandler.ApproveListing)
		admin.POST("/listings/:id/reject", adminHandler.RejectListing)
	}

	// Create HTTP server
	srv := &http.Server{
		Addr:    ":" + cfg.Server.Port,
		Handler: router,
	}

	// Start server in a goroutine
	go func() {
		log.Printf("Server starting on port %s", cfg.Server.Port)
		log.Printf("Health check: http://localhost:%s/health", cfg.Server.Port)

		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down server...")

	// Graceful shutdown with 5 second timeout
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal("Server forced to shutdown:", err)
	}

	log.Println("Server exited")
}
