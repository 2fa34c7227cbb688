// Package web exposes the import pipeline as a JSON HTTP API. It is a
// thin shell: parsing requests, invoking the pipeline, and formatting its
// results. Any other frontend could drive internal/core the same way.
package web

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/VortexWeb-Dev/mondus-spa-importer/internal/config"
	"github.com/VortexWeb-Dev/mondus-spa-importer/internal/core"
	"github.com/VortexWeb-Dev/mondus-spa-importer/internal/crm"
	"github.com/VortexWeb-Dev/mondus-spa-importer/internal/history"
)

// Server is the HTTP server wrapping the import pipeline.
type Server struct {
	crm     *crm.Client
	service *core.Service
	history *history.Store // nil when run history is disabled
	cfg     *config.Config
	router  *chi.Mux
	server  *http.Server
}

// NewServer creates a Server. history may be nil.
func NewServer(client *crm.Client, service *core.Service, store *history.Store, cfg *config.Config) *Server {
	s := &Server{
		crm:     client,
		service: service,
		history: store,
		cfg:     cfg,
		router:  chi.NewRouter(),
	}
	s.setupMiddleware()
	s.setupRoutes()
	return s
}

func (s *Server) setupMiddleware() {
	s.router.Use(middleware.RequestID)
	s.router.Use(middleware.RealIP)
	s.router.Use(middleware.Logger)
	s.router.Use(middleware.Recoverer)
	s.router.Use(middleware.Compress(5))
	s.router.Use(middleware.Timeout(60 * time.Second))
}

func (s *Server) setupRoutes() {
	s.router.Route("/api", func(r chi.Router) {
		// Schema discovery
		r.Get("/types", s.handleListTypes)
		r.Get("/types/{entityTypeID}/fields", s.handleListFields)

		// Import operations
		r.Post("/import/{entityTypeID}", s.handleImport)
		r.Get("/runs/{runID}", s.handleGetRun)

		// Run history (404s when no store is configured)
		r.Get("/history", s.handleHistory)
		r.Get("/history/{runID}", s.handleHistoryRun)
	})
}

// Handler returns the root handler, for tests and embedding.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Start begins listening for HTTP requests and blocks until the server
// stops.
func (s *Server) Start() error {
	s.server = &http.Server{
		Addr:         s.cfg.Server.Addr(),
		Handler:      s.router,
		ReadTimeout:  s.cfg.Server.ReadTimeout,
		WriteTimeout: s.cfg.Server.WriteTimeout,
		IdleTimeout:  s.cfg.Server.IdleTimeout,
	}
	err := s.server.ListenAndServe()
	if err == http.ErrServerClosed {
		return nil
	}
	return err
}

// Shutdown gracefully stops the server.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.server == nil {
		return nil
	}
	return s.server.Shutdown(ctx)
}
