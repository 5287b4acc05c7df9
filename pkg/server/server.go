package server

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"hooktrap-hq/hooktrap/pkg/collector"
	"hooktrap-hq/hooktrap/pkg/config"
	"hooktrap-hq/hooktrap/pkg/event"
	"hooktrap-hq/hooktrap/pkg/event/broadcast"
	"hooktrap-hq/hooktrap/pkg/limits/ratelimit"
	"hooktrap-hq/hooktrap/pkg/server/middleware"
	"hooktrap-hq/hooktrap/pkg/telemetry/metrics"
)

// Server is the HTTP front of the callback collector: the ingest
// routes plus the token-scoped read surface.
type Server struct {
	config       *config.Config
	httpServer   *http.Server
	handler      *collector.Handler
	store        event.Store
	broadcaster  *broadcast.Broadcaster
	limiter      *ratelimit.Limiter
	metrics      *metrics.Collector
	version      string
	startedAt    time.Time
	shutdownChan chan struct{}
	shutdownOnce sync.Once
	mu           sync.RWMutex
	isRunning    bool
}

// NewServer creates the server. metrics may be nil when disabled.
func NewServer(cfg *config.Config, h *collector.Handler, store event.Store, b *broadcast.Broadcaster, m *metrics.Collector, version string) *Server {
	return &Server{
		config:       cfg,
		handler:      h,
		store:        store,
		broadcaster:  b,
		limiter:      ratelimit.NewLimiter(cfg.RateLimit),
		metrics:      m,
		version:      version,
		shutdownChan: make(chan struct{}),
	}
}

// Start starts the HTTP server and blocks until shutdown.
func (s *Server) Start(ctx context.Context) error {
	s.mu.Lock()
	if s.isRunning {
		s.mu.Unlock()
		return fmt.Errorf("server is already running")
	}
	s.isRunning = true
	s.startedAt = time.Now()
	s.mu.Unlock()

	s.limiter.Sweep(ctx, time.Minute)

	handler := s.setupRoutes()

	s.httpServer = &http.Server{
		Addr:         s.config.Server.ListenAddress,
		Handler:      handler,
		ReadTimeout:  s.config.Server.ReadTimeout,
		WriteTimeout: s.config.Server.WriteTimeout,
		IdleTimeout:  s.config.Server.IdleTimeout,
	}

	errChan := make(chan error, 1)
	go func() {
		slog.Info("starting server",
			"address", s.config.Server.ListenAddress,
			"version", s.version,
		)
		if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errChan <- fmt.Errorf("server error: %w", err)
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	select {
	case <-ctx.Done():
		slog.Info("context cancelled, initiating shutdown")
		return s.Shutdown(context.Background())
	case sig := <-sigChan:
		slog.Info("received shutdown signal", "signal", sig.String())
		return s.Shutdown(context.Background())
	case err := <-errChan:
		return err
	case <-s.shutdownChan:
		slog.Info("shutdown requested")
		return s.Shutdown(context.Background())
	}
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	var shutdownErr error

	s.shutdownOnce.Do(func() {
		s.mu.Lock()
		if !s.isRunning {
			s.mu.Unlock()
			return
		}
		s.mu.Unlock()

		slog.Info("initiating graceful shutdown",
			"timeout", s.config.Server.ShutdownTimeout.String(),
		)

		shutdownCtx, cancel := context.WithTimeout(ctx, s.config.Server.ShutdownTimeout)
		defer cancel()

		if s.httpServer != nil {
			if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
				slog.Error("error during server shutdown", "error", err)
				shutdownErr = fmt.Errorf("server shutdown error: %w", err)
			}
		}

		s.mu.Lock()
		s.isRunning = false
		s.mu.Unlock()

		slog.Info("server stopped")
	})

	return shutdownErr
}

// IsRunning returns true if the server is running.
func (s *Server) IsRunning() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.isRunning
}

// Uptime returns how long the server has been running.
func (s *Server) Uptime() time.Duration {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.startedAt.IsZero() {
		return 0
	}
	return time.Since(s.startedAt)
}

// Handler returns the configured HTTP handler, routes plus middleware.
func (s *Server) Handler() http.Handler {
	return s.setupRoutes()
}

// setupRoutes configures routes and the middleware chain.
func (s *Server) setupRoutes() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("/{token}/c", func(w http.ResponseWriter, r *http.Request) {
		s.handler.Collect(w, r, r.PathValue("token"), "")
	})
	mux.HandleFunc("/{token}/c/{subpath...}", func(w http.ResponseWriter, r *http.Request) {
		s.handler.Collect(w, r, r.PathValue("token"), r.PathValue("subpath"))
	})

	mux.HandleFunc("GET /{token}/logs", s.tokenScoped(s.handleLogs))
	mux.HandleFunc("GET /{token}/events", s.tokenScoped(s.handleStream))
	mux.HandleFunc("GET /{token}/stats", s.tokenScoped(s.handleStats))
	mux.HandleFunc("GET /{token}/export", s.tokenScoped(s.handleExport))
	mux.HandleFunc("DELETE /{token}/cleanup", s.tokenScoped(s.handleCleanup))

	mux.HandleFunc("GET /healthz", s.handleHealthz)

	if s.metrics != nil {
		mux.Handle("GET "+s.config.Telemetry.Metrics.Path, s.metrics.Handler())
	}

	// Everything else gets the same 404 shape as a bad token.
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		collector.WriteNotFound(w)
	})

	var handler http.Handler = mux

	corsCfg := middleware.DefaultCORSConfig()
	corsCfg.Enabled = s.config.CORS.Enabled
	if len(s.config.CORS.AllowedOrigins) > 0 {
		corsCfg.AllowedOrigins = s.config.CORS.AllowedOrigins
	}
	handler = middleware.CORSMiddleware(corsCfg)(handler)

	exempt := []string{"/healthz"}
	if s.config.Telemetry.Metrics.Enabled {
		exempt = append(exempt, s.config.Telemetry.Metrics.Path)
	}
	handler = middleware.RateLimitMiddleware(s.limiter, s.config.Collector.TrustProxyHeaders, s.metrics, exempt)(handler)
	handler = middleware.LoggingMiddleware(handler)
	handler = middleware.RequestIDMiddleware(handler)
	handler = middleware.RecoveryMiddleware(handler)

	return handler
}

// tokenScoped wraps a read handler with the same token check the
// ingest path uses, failing with the uniform 404.
func (s *Server) tokenScoped(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if !s.handler.Authorizer().Authorized(r.PathValue("token")) {
			collector.WriteNotFound(w)
			return
		}
		next(w, r)
	}
}
