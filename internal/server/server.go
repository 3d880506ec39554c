// Package server assembles the HTTP surface over the core components.
package server

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/formsink/formsink/internal/config"
	apperrors "github.com/formsink/formsink/internal/errors"
	"github.com/formsink/formsink/internal/observability"
	"github.com/formsink/formsink/internal/server/handlers"
	servermw "github.com/formsink/formsink/internal/server/middleware"
)

// Server wraps the HTTP server and router.
type Server struct {
	router *chi.Mux
	server *http.Server
	cfg    config.ServerConfig
}

// New builds the router, middleware stack, and routes.
func New(cfg config.ServerConfig, h *handlers.Handlers, health *handlers.HealthManager) *Server {
	r := chi.NewRouter()

	r.Use(chimw.RealIP)
	r.Use(servermw.RequestID)
	r.Use(servermw.RequestLogger)
	r.Use(servermw.Recovery)

	r.NotFound(func(w http.ResponseWriter, req *http.Request) {
		HandleError(w, req, apperrors.NewNotFoundError("the requested resource was not found"))
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, req *http.Request) {
		HandleError(w, req, apperrors.NewMethodNotAllowedError("the requested method is not allowed for this resource"))
	})

	handlers.SetHTTPErrorResponder(HandleError)

	s := &Server{router: r, cfg: cfg}
	s.registerRoutes(h, health)
	return s
}

func (s *Server) registerRoutes(h *handlers.Handlers, health *handlers.HealthManager) {
	s.router.Get("/health", health.HealthHandler)
	s.router.Get("/version", handlers.VersionHandler)

	s.router.Route("/v1/forms", func(r chi.Router) {
		r.Get("/", h.ListForms)
		r.Post("/", h.CreateForm)

		r.Route("/{formID}", func(r chi.Router) {
			r.Get("/", h.GetForm)
			r.Delete("/", h.DeleteForm)
			r.Get("/stats", h.Stats)

			r.Post("/submissions", h.Submit)
			r.Get("/submissions", h.ListSubmissions)
		})
	})
}

// Start starts the HTTP server and blocks until it stops.
func (s *Server) Start() error {
	addr := fmt.Sprintf("%s:%d", s.cfg.Host, s.cfg.Port)

	s.server = &http.Server{
		Addr:         addr,
		Handler:      s.router,
		ReadTimeout:  orDefault(s.cfg.ReadTimeout, 30*time.Second),
		WriteTimeout: orDefault(s.cfg.WriteTimeout, 30*time.Second),
		IdleTimeout:  orDefault(s.cfg.IdleTimeout, 120*time.Second),
	}

	observability.ServerLogger.Info("starting HTTP server", zap.String("addr", addr))
	return s.server.ListenAndServe()
}

// Shutdown gracefully shuts down the HTTP server.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.server == nil {
		return nil
	}
	observability.ServerLogger.Info("shutting down HTTP server")
	return s.server.Shutdown(ctx)
}

// Handler exposes the underlying router for testing.
func (s *Server) Handler() http.Handler {
	return s.router
}

func orDefault(d, fallback time.Duration) time.Duration {
	if d <= 0 {
		return fallback
	}
	return d
}
