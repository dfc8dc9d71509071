package http

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/openlearn-labs/channelsync-core/internal/core/ports/driven"
	"github.com/openlearn-labs/channelsync-core/internal/core/ports/driving"
)

// Pinger is a simple health check interface
type Pinger interface {
	Ping(ctx context.Context) error
}

// Server represents the HTTP server
type Server struct {
	httpServer *http.Server
	router     *http.ServeMux
	version    string

	// Services
	configService driving.ConfigService
	healthChecker driving.HealthChecker

	// Infrastructure
	channelFactory driven.ChannelFactory
	taskQueue      driven.TaskQueue
	db             Pinger // PostgreSQL health check
	redisClient    Pinger // Redis health check (optional)
}

// Config holds server configuration
type Config struct {
	Host      string
	Port      int
	Version   string
	JWTSecret string
}

// DefaultConfig returns sensible defaults
func DefaultConfig() Config {
	return Config{
		Host:    "0.0.0.0",
		Port:    8080,
		Version: "dev",
	}
}

// NewServer creates a new HTTP server
func NewServer(
	cfg Config,
	configService driving.ConfigService,
	healthChecker driving.HealthChecker,
	channelFactory driven.ChannelFactory,
	taskQueue driven.TaskQueue,
	db Pinger,
	redisClient Pinger, // can be nil
) *Server {
	s := &Server{
		router:         http.NewServeMux(),
		version:        cfg.Version,
		configService:  configService,
		healthChecker:  healthChecker,
		channelFactory: channelFactory,
		taskQueue:      taskQueue,
		db:             db,
		redisClient:    redisClient,
	}

	s.httpServer = &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		Handler:      s.router,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	s.setupRoutes(cfg.JWTSecret)
	return s
}

// setupRoutes configures all HTTP routes
func (s *Server) setupRoutes(jwtSecret string) {
	authMiddleware := NewAuthMiddleware(NewTokenValidator(jwtSecret))

	// Health endpoints (no auth)
	s.router.HandleFunc("GET /health", s.handleHealth)
	s.router.HandleFunc("GET /ready", s.handleReady)
	s.router.HandleFunc("GET /version", s.handleVersion)

	// Channel registry
	s.router.Handle("GET /api/v1/channels",
		authMiddleware.Authenticate(http.HandlerFunc(s.handleListChannels)))

	// Configuration endpoints
	s.router.Handle("GET /api/v1/configurations",
		authMiddleware.Authenticate(http.HandlerFunc(s.handleListConfigurations)))
	s.router.Handle("GET /api/v1/configurations/{id}",
		authMiddleware.Authenticate(http.HandlerFunc(s.handleGetConfiguration)))
	s.router.Handle("GET /api/v1/configurations/{id}/health",
		authMiddleware.Authenticate(http.HandlerFunc(s.handleChannelHealth)))
	s.router.Handle("POST /api/v1/configurations/{id}/sync",
		authMiddleware.Authenticate(http.HandlerFunc(s.handleTriggerSync)))

	// Run status polling
	s.router.Handle("GET /api/v1/runs/{id}",
		authMiddleware.Authenticate(http.HandlerFunc(s.handleGetRunStatus)))
}

// Start starts the HTTP server with graceful shutdown
func (s *Server) Start() error {
	// Channel to listen for OS signals
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	// Start server in goroutine
	go func() {
		log.Printf("Starting server on %s", s.httpServer.Addr)
		if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server error: %v", err)
		}
	}()

	// Wait for shutdown signal
	<-stop
	log.Println("Shutting down server...")

	// Create shutdown context with timeout
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	// Attempt graceful shutdown
	if err := s.httpServer.Shutdown(ctx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}

	log.Println("Server stopped")
	return nil
}

// Stop stops the server
func (s *Server) Stop(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}
