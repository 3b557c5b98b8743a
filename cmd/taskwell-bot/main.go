package main

import (
	"flag"
	"fmt"
	"log"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/taskwell/taskwell/pkg/taskwell/chat"
	"github.com/taskwell/taskwell/pkg/taskwell/client"
	"github.com/taskwell/taskwell/pkg/taskwell/config"
	"github.com/taskwell/taskwell/pkg/taskwell/logging"
)

func main() {
	configPath := flag.String("config", "", "path to config file")
	port := flag.Int("port", 8090, "listen port")
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

	api := client.New(cfg.Chat.BackendURL, cfg.Chat.Timeout)
	registry := chat.NewRegistry(api)

	provider, err := chat.NewProvider(cfg.Chat, registry.Definitions())
	if err != nil {
		logger.Fatal("Failed to set up chat provider", zap.Error(err))
	}
	logger.Info("Chat provider ready",
		zap.String("provider", cfg.Chat.Provider),
		zap.String("backend", cfg.Chat.BackendURL))

	gin.SetMode(gin.ReleaseMode)
	r := gin.New()
	r.Use(gin.Recovery(), logging.RequestLogger(logger))

	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok", "service": "taskwell-bot"})
	})

	chat.NewHandler(provider, registry, logger).RegisterRoutes(r.Group(""))

	addr := fmt.Sprintf(":%d", *port)
	logger.Info("Starting taskwell bot", zap.String("addr", addr))
	if err := r.Run(addr); err != nil {
		logger.Fatal("Server exited", zap.Error(err))
	}
}
