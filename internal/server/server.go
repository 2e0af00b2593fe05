// Package server exposes the approval checker and transaction builder over
// HTTP.
package server

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/alanyoungcy/polyapprove/internal/domain"
	"github.com/alanyoungcy/polyapprove/internal/server/handler"
	"github.com/alanyoungcy/polyapprove/internal/server/middleware"
)

// Config holds the HTTP server configuration.
type Config struct {
	Port            int
	CORSOrigins     []string
	APIKey          string // if empty, authentication is disabled
	RateLimit       int
	RateLimitWindow time.Duration
}

// Handlers aggregates all HTTP handlers that the server registers.
type Handlers struct {
	Health    *handler.HealthHandler
	Approvals *handler.ApprovalHandler
}

// Server is the HTTP API server.
type Server struct {
	httpServer *http.Server
	logger     *slog.Logger
}

// NewServer creates a Server with all routes and middleware registered.
// limiter may be nil, in which case requests are not rate limited.
func NewServer(cfg Config, handlers Handlers, limiter domain.RateLimiter, logger *slog.Logger) *Server {
	logger = logger.With(slog.String("component", "server"))

	return &Server{
		httpServer: &http.Server{
			Addr:              fmt.Sprintf(":%d", cfg.Port),
			Handler:           NewHandler(cfg, handlers, limiter, logger),
			ReadHeaderTimeout: 10 * time.Second,
			WriteTimeout:      30 * time.Second,
			IdleTimeout:       60 * time.Second,
		},
		logger: logger,
	}
}

// NewHandler builds the routed and wrapped http.Handler.
func NewHandler(cfg Config, handlers Handlers, limiter domain.RateLimiter, logger *slog.Logger) http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /api/health", handlers.Health.HealthCheck)

	mux.HandleFunc("GET /api/approvals/txs", handlers.Approvals.ListTransactions)
	mux.HandleFunc("GET /api/approvals/{safe}", handlers.Approvals.GetStatus)
	mux.HandleFunc("GET /api/approvals/{safe}/pending", handlers.Approvals.GetPending)

	var h http.Handler = mux

	// Innermost first: rate limit, auth, logging, CORS.
	if limiter != nil && cfg.RateLimit > 0 {
		h = middleware.RateLimit(limiter, cfg.RateLimit, cfg.RateLimitWindow, logger)(h)
	}
	h = middleware.Auth(cfg.APIKey, "/api/health")(h)
	h = middleware.Logging(logger)(h)
	h = middleware.CORS(cfg.CORSOrigins)(h)

	return h
}

// Start begins listening for HTTP requests. It blocks until the server
// encounters an error or is shut down.
func (s *Server) Start() error {
	s.logger.Info("server: starting", slog.String("addr", s.httpServer.Addr))
	if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("server: listen: %w", err)
	}
	return nil
}

// Shutdown gracefully shuts down the server, waiting for in-flight requests
// to complete within the given context deadline.
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("server: shutting down")
	if err := s.httpServer.Shutdown(ctx); err != nil {
		return fmt.Errorf("server: shutdown: %w", err)
	}
	return nil
}
