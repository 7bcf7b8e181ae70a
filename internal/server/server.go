// Package server exposes the leaderboard over HTTP.
package server

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/trueframework/true-board/internal/metrics"
	pkgcontext "github.com/trueframework/true-board/internal/pkg/context"
	"github.com/trueframework/true-board/internal/pkg/logger"
	"github.com/trueframework/true-board/internal/pkg/middleware"
	"github.com/trueframework/true-board/internal/seed"
	"github.com/trueframework/true-board/internal/store"
)

// Config configures the server.
type Config struct {
	// Host is the address to bind to.
	Host string

	// Port is the HTTP port.
	Port int

	// Version is the application version.
	Version string

	// ReadTimeout is the HTTP read timeout.
	ReadTimeout time.Duration

	// WriteTimeout is the HTTP write timeout.
	WriteTimeout time.Duration

	// ShutdownTimeout is the graceful shutdown timeout.
	ShutdownTimeout time.Duration
}

// DefaultConfig returns sensible server defaults.
func DefaultConfig() Config {
	return Config{
		Host:            "0.0.0.0",
		Port:            8080,
		Version:         "dev",
		ReadTimeout:     30 * time.Second,
		WriteTimeout:    60 * time.Second,
		ShutdownTimeout: 30 * time.Second,
	}
}

// Deps carries the services the server exposes.
type Deps struct {
	Store   *store.Service
	Runner  *seed.Runner
	Metrics *metrics.Metrics
	Log     *logger.Logger
}

// Server is the HTTP front of the leaderboard.
type Server struct {
	cfg        Config
	log        *logger.Logger
	metrics    *metrics.Metrics
	httpServer *http.Server

	leaderboardHandler *LeaderboardHandler
	evaluationHandler  *EvaluationHandler
	adminHandler       *AdminHandler

	handlerOnce sync.Once
	handler     http.Handler
	limiter     *middleware.RateLimiter

	mu      sync.RWMutex
	started bool
}

// New wires handlers around the given services.
func New(cfg Config, deps Deps) (*Server, error) {
	if cfg.Port == 0 {
		cfg = DefaultConfig()
	}
	if deps.Store == nil {
		return nil, fmt.Errorf("store service is required")
	}
	if deps.Metrics == nil {
		deps.Metrics = metrics.New()
	}
	if deps.Log == nil {
		deps.Log = logger.Default()
	}

	return &Server{
		cfg:                cfg,
		log:                deps.Log,
		metrics:            deps.Metrics,
		leaderboardHandler: NewLeaderboardHandler(deps.Store),
		evaluationHandler:  NewEvaluationHandler(deps.Store),
		adminHandler:       NewAdminHandler(deps.Store, deps.Runner, deps.Metrics, cfg.Version),
	}, nil
}

// Start blocks serving HTTP until the listener fails or Stop is called.
func (s *Server) Start() error {
	s.mu.Lock()
	if s.started {
		s.mu.Unlock()
		return fmt.Errorf("server already started")
	}
	s.started = true
	s.mu.Unlock()

	addr := fmt.Sprintf("%s:%d", s.cfg.Host, s.cfg.Port)
	s.httpServer = &http.Server{
		Addr:         addr,
		Handler:      s.Handler(),
		ReadTimeout:  s.cfg.ReadTimeout,
		WriteTimeout: s.cfg.WriteTimeout,
	}

	s.log.Info("Starting HTTP server", "addr", addr)
	return s.httpServer.ListenAndServe()
}

// Stop gracefully stops the server.
func (s *Server) Stop(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.started {
		return nil
	}

	s.log.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(ctx, s.cfg.ShutdownTimeout)
	defer cancel()

	if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
		s.log.Error("HTTP shutdown error", "error", err)
	}

	if s.limiter != nil {
		s.limiter.Stop()
	}

	s.started = false
	s.log.Info("Server stopped")

	return nil
}

// Handler builds the full middleware and routing chain. The chain is built
// once and reused.
func (s *Server) Handler() http.Handler {
	s.handlerOnce.Do(func() {
		mux := http.NewServeMux()

		s.leaderboardHandler.RegisterRoutes(mux)
		s.evaluationHandler.RegisterRoutes(mux)
		s.adminHandler.RegisterRoutes(mux)

		s.limiter = middleware.NewRateLimiter(middleware.DefaultRateLimiterConfig())

		var handler http.Handler = mux
		handler = s.limiter.Middleware(handler)
		handler = corsMiddleware(handler)
		handler = s.observeMiddleware(handler)
		s.handler = handler
	})
	return s.handler
}

// Health returns the server health status.
func (s *Server) Health() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.started
}

// corsMiddleware allows browser clients on other origins to call the API.
func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}

		next.ServeHTTP(w, r)
	})
}

// observeMiddleware tags each request with an id, logs it, and records it in
// the metrics.
func (s *Server) observeMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		requestID := uuid.NewString()[:8]
		w.Header().Set("X-Request-ID", requestID)
		r = r.WithContext(pkgcontext.WithRequestID(r.Context(), requestID))

		wrapped := &statusWriter{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(wrapped, r)

		duration := time.Since(start)
		s.metrics.RecordHTTPRequest(r.Method, routeLabel(r.URL.Path),
			strconv.Itoa(wrapped.status), duration.Milliseconds())

		s.log.Debug("HTTP request",
			"request_id", requestID,
			"method", r.Method,
			"path", r.URL.Path,
			"status", wrapped.status,
			"duration", duration,
		)
	})
}

// routeLabel collapses per-record paths so metric label cardinality stays
// bounded.
func routeLabel(path string) string {
	if rest, ok := strings.CutPrefix(path, "/api/evaluations/"); ok && rest != "" {
		return "/api/evaluations/{id}"
	}
	return path
}

// statusWriter wraps http.ResponseWriter to capture the status code.
type statusWriter struct {
	http.ResponseWriter
	status int
}

func (w *statusWriter) WriteHeader(code int) {
	w.status = code
	w.ResponseWriter.WriteHeader(code)
}
