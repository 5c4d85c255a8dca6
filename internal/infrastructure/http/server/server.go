// Package server hosts the gin HTTP server for the API.
package server

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/mirepoix/v1/internal/infrastructure/config"
	"github.com/mirepoix/v1/internal/infrastructure/http/handlers"
	"github.com/mirepoix/v1/internal/infrastructure/http/middleware"
)

// Server wraps the gin engine and the underlying http.Server.
type Server struct {
	config *config.Config
	logger *zap.Logger
	server *http.Server
}

// NewServer builds the router and binds all routes.
func NewServer(cfg *config.Config, h *handlers.Handlers, logger *zap.Logger) *Server {
	if cfg.App.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(middleware.Recovery(logger))
	router.Use(middleware.Logger(logger))
	router.Use(middleware.BodySizeLimit(cfg.Server.MaxUploadBytes))

	router.GET("/health", h.Health)

	api := router.Group("/api/v1")
	{
		api.POST("/recipes", h.CreateRecipe)
		api.GET("/recipes/:id", h.GetRecipe)
		api.POST("/chat", h.Chat)
		api.GET("/nutrition/:name", h.Nutrition)
	}

	return &Server{
		config: cfg,
		logger: logger,
		server: &http.Server{
			Addr:              fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
			Handler:           router,
			ReadTimeout:       cfg.Server.ReadTimeout,
			WriteTimeout:      cfg.Server.WriteTimeout,
			IdleTimeout:       cfg.Server.IdleTimeout,
			ReadHeaderTimeout: 5 * time.Second,
			MaxHeaderBytes:    1 << 20,
		},
	}
}

// Start begins serving. It blocks until the listener fails or Shutdown
// is called.
func (s *Server) Start() error {
	s.logger.Info("starting HTTP server",
		zap.String("address", s.server.Addr),
		zap.String("environment", s.config.App.Environment))

	if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

// Shutdown drains in-flight requests and stops the server.
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("shutting down HTTP server")
	return s.server.Shutdown(ctx)
}
