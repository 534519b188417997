package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/adapters/humachi"
	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/cors"

	v1 "github.com/gosuda/honeypot/internal/api/v1"
	"github.com/gosuda/honeypot/internal/config"
	"github.com/gosuda/honeypot/internal/server/middleware"
)

// Engine is the turn-processing core the HTTP layer fronts.
// *honeypot.Engine satisfies this interface.
type Engine interface {
	v1.TurnProcessor
	v1.SessionCounter
}

// Server is the HTTP server that wires all application routes and middleware.
type Server struct {
	router     chi.Router
	httpServer *http.Server
}

// New creates a Server with all routes wired. ctx bounds the background
// sweeper of the rate limiter.
func New(ctx context.Context, cfg *config.Config, engine Engine, info v1.ServiceInfo) *Server {
	router := chi.NewRouter()

	// Global middleware stack.
	router.Use(chimw.RequestID)
	router.Use(chimw.RealIP)
	router.Use(chimw.Logger)
	router.Use(chimw.Recoverer)
	router.Use(cors.New(cors.Options{
		AllowedOrigins: cfg.Server.CORSOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Content-Type", middleware.APIKeyHeader, "X-Request-ID"},
		ExposedHeaders: []string{"X-Request-ID"},
		MaxAge:         300,
	}).Handler)

	s := &Server{
		router: router,
		httpServer: &http.Server{
			Addr:         cfg.Server.Addr,
			Handler:      router,
			ReadTimeout:  cfg.Server.ReadTimeout,
			WriteTimeout: cfg.Server.WriteTimeout,
		},
	}

	// Public status routes.
	router.Group(func(r chi.Router) {
		api := humachi.New(r, humaConfig(info, "Honeypot Status API", true))
		registerStatusRoutes(api, info, engine)
	})

	// Authenticated, rate-limited conversation route.
	router.Group(func(r chi.Router) {
		r.Use(middleware.APIKey(cfg.APIKey))
		r.Use(middleware.RateLimitByIP(ctx, cfg.Server.RateLimitRPS, cfg.Server.RateLimitBurst))

		api := humachi.New(r, humaConfig(info, "Honeypot API", false))
		registerHoneypotRoutes(api, engine)
	})

	// Liveness check for orchestrators.
	router.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})

	return s
}

// humaConfig builds a per-group config. Both groups share the root router, so
// only one of them serves the OpenAPI and docs endpoints.
func humaConfig(info v1.ServiceInfo, title string, withDocs bool) huma.Config {
	c := huma.DefaultConfig(title, info.Version)
	// Response bodies stay exactly as declared, without a $schema link.
	c.CreateHooks = nil
	if !withDocs {
		c.OpenAPIPath = ""
		c.DocsPath = ""
		c.SchemasPath = ""
	}
	return c
}

// Handler exposes the root router, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Start begins listening for HTTP requests.
func (s *Server) Start(_ context.Context) error {
	if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("server.Start: %w", err)
	}
	return nil
}

// Shutdown gracefully stops the HTTP server.
func (s *Server) Shutdown(ctx context.Context) error {
	if err := s.httpServer.Shutdown(ctx); err != nil {
		return fmt.Errorf("server.Shutdown: %w", err)
	}
	return nil
}
