package routes

import (
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"reviewhub/internal/api/handlers"
	"reviewhub/internal/api/middleware"
	"reviewhub/internal/cache"
	"reviewhub/internal/config"
	"reviewhub/internal/moderation"
	"reviewhub/internal/services"
	"reviewhub/pkg/logger"
)

func SetupRoutes(router *gin.Engine, db *gorm.DB, c *cache.Cache, cfg *config.Config) error {
	// Middleware
	router.Use(gin.Logger())
	router.Use(gin.Recovery())
	router.Use(middleware.RequestID())
	router.Use(middleware.CORSMiddleware())
	router.Use(middleware.RateLimitMiddleware(cfg))

	matcher, err := moderation.NewKeywordMatcher(cfg.OffensiveWords)
	if err != nil {
		return err
	}

	// Initialize services
	emailService := services.NewEmailService(cfg)
	s3Service := services.NewS3Service(cfg.S3Region, cfg.S3BucketName, cfg.S3AccessKey, cfg.S3SecretKey)
	authService := services.NewAuthService(db, cfg.JWTSecret)
	notificationService := services.NewNotificationService(db)
	reviewService := services.NewReviewService(db, notificationService, emailService)
	engagementService := services.NewEngagementService(db)
	moderationService := services.NewModerationService(db, matcher)
	productService := services.NewProductService(db, s3Service)
	analyticsService := services.NewAnalyticsService(db, reviewService, c)

	// Initialize handlers
	authHandler := handlers.NewAuthHandler(authService)
	productHandler := handlers.NewProductHandler(productService)
	reviewHandler := handlers.NewReviewHandler(reviewService, engagementService, moderationService, c)
	adminHandler := handlers.NewAdminHandler(moderationService, analyticsService)
	notificationHandler := handlers.NewNotificationHandler(notificationService)

	// Health check
	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok", "message": "Server is running"})
	})

	// Auth routes
	auth := router.Group("/auth")
	{
		auth.POST("/register", authHandler.Register)
		auth.POST("/login", authHandler.Login)
		auth.POST("/token/refresh", authHandler.Refresh)
		auth.POST("/logout", middleware.RequireAuth(cfg), authHandler.Logout)
		auth.GET("/me", middleware.RequireAuth(cfg), authHandler.Me)
	}

	// Product routes; reads are public, writes are staff-only
	products := router.Group("/products")
	{
		products.GET("", productHandler.List)
		products.GET("/:product_id", productHandler.Get)
		products.POST("", middleware.RequireAuth(cfg), middleware.StaffOnly(), productHandler.Create)
		products.PUT("/:product_id", middleware.RequireAuth(cfg), middleware.StaffOnly(), productHandler.Update)
		products.DELETE("/:product_id", middleware.RequireAuth(cfg), middleware.StaffOnly(), productHandler.Delete)
		products.POST("/:product_id/images", middleware.RequireAuth(cfg), middleware.StaffOnly(), productHandler.UploadImages)
		products.GET("/:product_id/analytics", middleware.RequireAuth(cfg), middleware.StaffOnly(), adminHandler.ProductAnalytics)
	}

	// Review routes
	reviews := router.Group("/reviews")
	{
		reviews.GET("", middleware.OptionalAuth(cfg), reviewHandler.List)
		reviews.POST("", middleware.RequireAuth(cfg), reviewHandler.Create)
		reviews.GET("/:review_id", middleware.OptionalAuth(cfg), reviewHandler.Get)
		reviews.PUT("/:review_id", middleware.RequireAuth(cfg), reviewHandler.Update)
		reviews.DELETE("/:review_id", middleware.RequireAuth(cfg), reviewHandler.Delete)
		reviews.POST("/:review_id/approve", middleware.RequireAuth(cfg), middleware.StaffOnly(), reviewHandler.Approve)
		reviews.POST("/:review_id/react", middleware.RequireAuth(cfg), reviewHandler.React)
		reviews.POST("/:review_id/report", middleware.RequireAuth(cfg), reviewHandler.Report)
		reviews.GET("/:review_id/comments", reviewHandler.ListComments)
		reviews.POST("/:review_id/add-comment", middleware.RequireAuth(cfg), reviewHandler.AddComment)
	}

	// Admin routes
	admin := router.Group("/admin", middleware.RequireAuth(cfg), middleware.StaffOnly())
	{
		admin.GET("/reports", adminHandler.Reports)
	}

	router.GET("/analytics/general", middleware.RequireAuth(cfg), middleware.StaffOnly(), adminHandler.GeneralAnalytics)

	// Notification routes
	notifications := router.Group("/notifications", middleware.RequireAuth(cfg))
	{
		notifications.GET("", notificationHandler.List)
		notifications.POST("/:notification_id/read", notificationHandler.MarkRead)
	}

	logger.Info("Routes initialized successfully")
	return nil
}
