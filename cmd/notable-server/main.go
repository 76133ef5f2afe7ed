package main

import (
	"os"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"github.com/tomblanch/notable/pkg/notable/auth"
	"github.com/tomblanch/notable/pkg/notable/database"
	"github.com/tomblanch/notable/pkg/notable/middleware"
	"github.com/tomblanch/notable/pkg/notable/models"
	"github.com/tomblanch/notable/pkg/notable/notes"
	"github.com/tomblanch/notable/pkg/notable/users"

	_ "github.com/tomblanch/notable/api/swagger"
)

// @title Notable API
// @version 1.0
// @description A note-taking backend with private/public notes and free-text tags.

// @license.name MIT
// @license.url https://opensource.org/licenses/MIT

// @host localhost:8080
// @BasePath /api

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description JWT token. Format: "Bearer {token}"

func main() {
	logger := zerolog.New(os.Stdout).With().Timestamp().Logger()

	// Get database path from environment or use default
	dbPath := os.Getenv("NOTABLE_DB_PATH")
	if dbPath == "" {
		dbPath = "notable.db"
	}

	// Connect to database
	if err := database.Connect(dbPath); err != nil {
		logger.Fatal().Err(err).Msg("Failed to connect to database")
	}

	// Run auto-migrations
	if err := models.AutoMigrate(database.GetDB()); err != nil {
		logger.Fatal().Err(err).Msg("Failed to run migrations")
	}
	logger.Info().Str("db", dbPath).Msg("Database migrations completed")

	// Set up Gin router
	r := gin.New()
	r.Use(middleware.RequestLogger(logger), gin.Recovery())

	// Health check endpoint
	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"status": "ok",
		})
	})

	// Swagger documentation
	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	// API routes
	api := r.Group("/api")
	{
		api.GET("/health", func(c *gin.Context) {
			c.JSON(200, gin.H{
				"status":  "ok",
				"service": "notable",
			})
		})

		// Registration and login (public)
		usersHandler := users.NewHandler(database.GetDB())
		usersHandler.RegisterRoutes(api)

		authHandler := auth.NewHandler(database.GetDB())
		authHandler.RegisterRoutes(api.Group("/auth"))

		// Notes routes
		notesHandler := notes.NewHandler(database.GetDB())
		notesHandler.RegisterPublicRoutes(api)
		notesHandler.RegisterRoutes(api.Group("", auth.AuthMiddleware()))
	}

	// Get port from environment or use default
	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}

	logger.Info().Str("port", port).Msg("Starting Notable server")
	if err := r.Run(":" + port); err != nil {
		logger.Fatal().Err(err).Msg("Failed to start server")
	}
}
