// Package api serves the coop's HTTP endpoints.
package api

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"coopcontrol/internal/astro"
	"coopcontrol/internal/clock"
	"coopcontrol/internal/config"
	"coopcontrol/internal/device"
	"coopcontrol/internal/metrics"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"
)

// AstroService triggers the daily acquisition
type AstroService interface {
	AddDaily(ctx context.Context, date string) (uint, error)
}

// AstroRecords reads stored astronomical records
type AstroRecords interface {
	GetByDate(ctx context.Context, date string) (*astro.Record, error)
	Render(rec astro.Record) (astro.LocalView, error)
}

// Devices reads and writes applications and hardware
type Devices interface {
	GetApplication(ctx context.Context, name string) (*device.Application, error)
	SetApplicationStatus(ctx context.Context, name string, status device.AppStatus, create bool) (*device.Application, bool, error)
	GetHardware(ctx context.Context, name string) (*device.Hardware, error)
	SaveHardware(ctx context.Context, name string, in device.HardwareInput, create bool) (*device.Hardware, bool, error)
}

// Dependencies are the components the handlers call into. Events and
// Metrics are optional.
type Dependencies struct {
	Astro   AstroService
	Records AstroRecords
	Devices Devices
	Events  http.Handler
	Metrics *metrics.Metrics

	// Clock times requests; defaults to the real clock
	Clock clock.Clock
}

// Server provides HTTP API endpoints for the coop controller
type Server struct {
	deps   Dependencies
	logger *zap.Logger
	router chi.Router
	server *http.Server
}

// NewServer creates a new API server
func NewServer(cfg config.HTTPConfig, deps Dependencies, logger *zap.Logger) *Server {
	if deps.Clock == nil {
		deps.Clock = clock.NewRealClock()
	}

	s := &Server{
		deps:   deps,
		logger: logger,
	}
	s.router = s.routes()

	s.server = &http.Server{
		Addr:         cfg.Addr,
		Handler:      s.router,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
		IdleTimeout:  cfg.IdleTimeout,
	}

	return s
}

// Router returns the configured router, mainly for tests
func (s *Server) Router() chi.Router {
	return s.router
}

func (s *Server) routes() chi.Router {
	r := chi.NewRouter()

	r.Use(middleware.RealIP)
	r.Use(s.requestLogger)
	r.Use(middleware.Recoverer)

	r.Get("/", s.handleSitemap)
	r.Get("/health", s.handleHealth)
	if s.deps.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", s.deps.Metrics.Handler())
	}
	if s.deps.Events != nil {
		// Websocket connections outlive any request timeout.
		r.Method(http.MethodGet, "/ws", s.deps.Events)
	}

	r.Group(func(r chi.Router) {
		r.Use(middleware.Timeout(30 * time.Second))

		r.Route("/astronomical", func(r chi.Router) {
			r.Post("/", s.handleAddDaily)
			r.Get("/{date}", s.handleGetDate)
		})

		r.Route("/application", func(r chi.Router) {
			r.Get("/{name}", s.handleGetApplication)
			r.Put("/{name}", s.handlePutApplication)
			r.Post("/{name}", s.handlePutApplication)
		})

		r.Route("/hardware", func(r chi.Router) {
			r.Get("/{name}", s.handleGetHardware)
			r.Put("/{name}", s.handlePutHardware)
			r.Post("/{name}", s.handlePutHardware)
		})
	})

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		writeNotFound(w)
	})

	return r
}

// requestLogger logs each request and counts it by route pattern
func (s *Server) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := s.deps.Clock.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

		next.ServeHTTP(ww, r)

		route := r.URL.Path
		if rctx := chi.RouteContext(r.Context()); rctx != nil && rctx.RoutePattern() != "" {
			route = rctx.RoutePattern()
		}
		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}

		s.deps.Metrics.ObserveRequest(route, status)
		s.logger.Debug("HTTP request",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.String("route", route),
			zap.Int("status", status),
			zap.Duration("duration", s.deps.Clock.Since(start)),
			zap.String("remote_addr", r.RemoteAddr))
	})
}

// handleHealth returns a simple health check response
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"status": "ok",
	})
}

// Start begins serving HTTP requests
func (s *Server) Start() error {
	s.logger.Info("Starting HTTP API server", zap.String("addr", s.server.Addr))

	go func() {
		if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			s.logger.Error("HTTP server error", zap.Error(err))
		}
	}()

	return nil
}

// Stop gracefully shuts down the HTTP server
func (s *Server) Stop() error {
	s.logger.Info("Stopping HTTP API server")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := s.server.Shutdown(ctx); err != nil {
		return fmt.Errorf("failed to shutdown HTTP server: %w", err)
	}

	return nil
}
