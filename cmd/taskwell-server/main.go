package main

import (
	"flag"
	"fmt"
	"log"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/taskwell/taskwell/pkg/taskwell/auth"
	"github.com/taskwell/taskwell/pkg/taskwell/config"
	"github.com/taskwell/taskwell/pkg/taskwell/database"
	"github.com/taskwell/taskwell/pkg/taskwell/logging"
	"github.com/taskwell/taskwell/pkg/taskwell/models"
	"github.com/taskwell/taskwell/pkg/taskwell/oauth"
	"github.com/taskwell/taskwell/pkg/taskwell/store"
	"github.com/taskwell/taskwell/pkg/taskwell/tags"
	"github.com/taskwell/taskwell/pkg/taskwell/tasks"
)

func main() {
	configPath := flag.String("config", "", "path to config file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	logger, err := logging.New(cfg.Log)
	if err != nil {
		log.Fatalf("Failed to set up logging: %v", err)
	}
	defer logger.Sync()

	db, err := database.Connect(cfg.Database.Path)
	if err != nil {
		logger.Fatal("Failed to connect to database", zap.Error(err))
	}

	if err := models.AutoMigrate(db); err != nil {
		logger.Fatal("Failed to run migrations", zap.Error(err))
	}
	logger.Info("Database migrations completed", zap.String("path", cfg.Database.Path))

	issuer := auth.NewTokenIssuer(cfg.Auth.JWTSecret, cfg.Auth.TokenTTL)
	taskStore := store.NewTaskStore(db)
	tagStore := store.NewTagStore(db)

	gin.SetMode(gin.ReleaseMode)
	r := gin.New()
	r.Use(gin.Recovery(), logging.RequestLogger(logger))

	// Health check endpoint
	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	// API routes
	api := r.Group("/api")
	{
		api.GET("/health", func(c *gin.Context) {
			c.JSON(200, gin.H{"status": "ok", "service": "taskwell"})
		})

		// Auth routes (public)
		authHandler := auth.NewHandler(db, issuer)
		authHandler.RegisterRoutes(api.Group("/auth"))

		// OAuth login (optional, public)
		if cfg.OAuth.Enabled {
			oauthHandler, err := oauth.NewHandler(db, issuer, cfg.OAuth)
			if err != nil {
				logger.Fatal("Failed to set up OAuth provider", zap.Error(err))
			}
			oauthHandler.RegisterRoutes(api.Group("/oauth"))
			logger.Info("OAuth login enabled", zap.String("issuer", cfg.OAuth.Issuer))
		}

		// Task and tag routes (protected)
		protected := api.Group("", auth.Middleware(issuer))
		tasks.NewHandler(taskStore, tagStore).RegisterRoutes(protected)
		tags.NewHandler(tagStore).RegisterRoutes(protected)
	}

	addr := fmt.Sprintf(":%d", cfg.Server.Port)
	logger.Info("Starting taskwell server", zap.String("addr", addr))
	if err := r.Run(addr); err != nil {
		logger.Fatal("Server exited", zap.Error(err))
	}
}
