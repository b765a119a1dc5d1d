package server

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/haskel/irisd/internal/config"
	"github.com/haskel/irisd/internal/model"
	"github.com/haskel/irisd/internal/monitor"
	"github.com/haskel/irisd/internal/server/middleware"
)

// Server serves predictions from a single model artifact. The artifact is
// immutable after load and shared read-only by all requests; classifier
// invocation needs no locking. A nil artifact means degraded mode: only /
// and /health stay useful, /predict answers 503.
type Server struct {
	httpServer *http.Server
	artifact   *model.Artifact
	collector  *monitor.Collector
	config     *config.Config
	logger     *slog.Logger
	version    string
	authConfig *middleware.AuthConfig
}

func New(cfg *config.Config, artifact *model.Artifact, collector *monitor.Collector, logger *slog.Logger, version string) *Server {
	authConfig := &middleware.AuthConfig{
		Enabled:  cfg.Auth.Enabled,
		User:     cfg.Auth.User,
		Password: cfg.Auth.Password,
	}

	s := &Server{
		artifact:   artifact,
		collector:  collector,
		config:     cfg,
		logger:     logger,
		version:    version,
		authConfig: authConfig,
	}

	mux := s.setupRoutes()

	handler := middleware.Chain(
		mux,
		middleware.Recovery(logger),
		middleware.Logging(logger),
		middleware.SecurityHeaders(),
		middleware.RateLimit(&middleware.RateLimitConfig{
			Enabled:           cfg.Server.RateLimit.Enabled,
			RequestsPerSecond: cfg.Server.RateLimit.RequestsPerSecond,
			Burst:             cfg.Server.RateLimit.Burst,
		}),
		middleware.MaxBody(cfg.Server.MaxBodyBytes),
		middleware.Auth(authConfig, "/health", "/"), // Probes must work unauthenticated
	)

	s.httpServer = &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:      handler,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	return s
}

// ReloadConfig reloads configuration that can be changed at runtime.
// Note: host/port and model path changes require restart.
func (s *Server) ReloadConfig(cfg *config.Config) {
	s.logger.Info("reloading configuration")

	// Update auth config (pointer is shared with middleware)
	s.authConfig.Update(cfg.Auth.Enabled, cfg.Auth.User, cfg.Auth.Password)

	// Update stored config
	s.config = cfg

	s.logger.Info("configuration reloaded",
		"auth_enabled", cfg.Auth.Enabled,
	)
}

func (s *Server) Start() error {
	s.logger.Info("server starting",
		"addr", s.httpServer.Addr,
		"model_loaded", s.artifact != nil,
	)
	return s.httpServer.ListenAndServe()
}

func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("server shutting down")
	return s.httpServer.Shutdown(ctx)
}

func (s *Server) Addr() string {
	return s.httpServer.Addr
}
