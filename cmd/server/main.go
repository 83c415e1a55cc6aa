package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Yasvanth-2005/chat-backend/internal/config"
	"github.com/Yasvanth-2005/chat-backend/internal/database"
	"github.com/Yasvanth-2005/chat-backend/internal/handlers"
	"github.com/Yasvanth-2005/chat-backend/internal/middleware"
	"github.com/Yasvanth-2005/chat-backend/internal/presence"
	"github.com/Yasvanth-2005/chat-backend/internal/routes"
	"github.com/Yasvanth-2005/chat-backend/internal/services"
	"github.com/Yasvanth-2005/chat-backend/pkg/logger"
	"github.com/gin-gonic/gin"
)

func main() {
	config.LoadConfig()

	env := os.Getenv("GO_ENV")
	if env == "" {
		env = "development"
	}
	logger.Init(env)

	logger.Info().Str("environment", env).Msg("Starting chat backend...")

	if env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	database.Connect()
	database.InitRedis()

	if err := database.Migrate(database.DB); err != nil {
		logger.Fatal().Err(err).Msg("Migration failed")
	}

	// Connection state persisted by a previous process lifetime is stale;
	// the in-memory registry is the liveness authority from here on.
	if err := database.ResetPresence(database.DB); err != nil {
		logger.Warn().Err(err).Msg("Failed to reset persisted presence")
	}

	registry := presence.NewRegistry()
	vis := services.NewVisibility(database.DB, config.AppConfig.ChatPageSize)

	socketServer, dispatch := handlers.InitSocketServer(vis, registry)
	go func() {
		if err := socketServer.Serve(); err != nil {
			logger.Error().Err(err).Msg("socket server stopped")
		}
	}()
	defer socketServer.Close()

	h := handlers.New(vis, dispatch)

	r := gin.New()
	r.Use(middleware.LoggingMiddleware())
	r.Use(middleware.ErrorHandlerMiddleware())
	r.Use(middleware.CORSMiddleware())

	r.GET("/socket.io/*any", handlers.SocketHandler(socketServer))
	r.POST("/socket.io/*any", handlers.SocketHandler(socketServer))

	api := r.Group("/api")
	api.Use(middleware.RateLimitMiddleware(middleware.GeneralLimiter))
	routes.RegisterChatRoutes(api, h)
	routes.RegisterExportRoutes(api, h)

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	srv := &http.Server{
		Addr:    ":" + config.AppConfig.Port,
		Handler: r,
	}

	go func() {
		logger.Info().Str("port", config.AppConfig.Port).Msg("HTTP server listening")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal().Err(err).Msg("Server failed")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info().Msg("Shutting down...")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Error().Err(err).Msg("Forced shutdown")
	}
	logger.Info().Msg("Server exited")
}
