package main

import (
	"context"
	"log"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"

	"reviewhub/internal/api/routes"
	"reviewhub/internal/cache"
	"reviewhub/internal/config"
	"reviewhub/internal/database"
	"reviewhub/pkg/logger"
)

func main() {
	// Load environment variables
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found")
	}

	// Initialize logger
	logger.Init()

	// Load configuration
	cfg := config.Load()

	// Initialize database
	db, err := database.Init(cfg.DatabaseURL)
	if err != nil {
		logger.Fatal("Failed to initialize database", err)
	}

	// Optional analytics cache
	analyticsCache := cache.New(context.Background(), cfg.RedisURL)
	if analyticsCache == nil && cfg.RedisURL != "" {
		logger.Warn("Redis unreachable, analytics caching disabled")
	}

	// Set Gin mode
	if cfg.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	// Initialize router
	router := gin.New()

	// Setup routes
	if err := routes.SetupRoutes(router, db, analyticsCache, cfg); err != nil {
		logger.Fatal("Failed to set up routes", err)
	}

	// Start server
	logger.Info("Server starting on port " + cfg.Port)
	if err := router.Run(":" + cfg.Port); err != nil {
		logger.Fatal("Failed to start server", err)
	}
}
