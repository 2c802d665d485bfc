package server

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/rs/zerolog"

	"contentstudio/internal/config"
	"contentstudio/internal/fetch"
	"contentstudio/internal/history"
	"contentstudio/internal/logger"
	"contentstudio/internal/workflow"
)

// requestTimeout bounds a whole request, agent call included.
const requestTimeout = 3 * time.Minute

// PageFetcher loads a competitor article from a URL.
type PageFetcher interface {
	Fetch(ctx context.Context, rawURL string) (*fetch.Page, error)
}

// Server represents the HTTP server
type Server struct {
	router     *chi.Mux
	httpServer *http.Server
	config     config.Server
	log        *zerolog.Logger

	studio  *workflow.Studio
	history *history.Store
	fetcher PageFetcher
}

// New creates a new HTTP server around a studio and its history store. A nil
// fetcher disables the URL fetch endpoint.
func New(studio *workflow.Studio, hist *history.Store, fetcher PageFetcher, cfg config.Server) *Server {
	s := &Server{
		router:  chi.NewRouter(),
		config:  cfg,
		log:     logger.Get(),
		studio:  studio,
		history: hist,
		fetcher: fetcher,
	}

	s.setupMiddleware()
	s.setupRoutes()

	addr := fmt.Sprintf("%s:%d", cfg.Host, cfg.Port)
	s.httpServer = &http.Server{
		Addr:         addr,
		Handler:      s.router,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	}

	return s
}

// setupMiddleware configures middleware for the server
func (s *Server) setupMiddleware() {
	s.router.Use(middleware.RequestID)
	s.router.Use(middleware.RealIP)
	s.router.Use(requestLogger)
	s.router.Use(middleware.Recoverer)
	s.router.Use(middleware.Timeout(requestTimeout))
	s.router.Use(securityHeaders)

	if s.config.CORS.Enabled {
		s.router.Use(cors.Handler(cors.Options{
			AllowedOrigins:   s.config.CORS.AllowedOrigins,
			AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
			AllowedHeaders:   []string{"Accept", "Content-Type", "X-Request-ID"},
			ExposedHeaders:   []string{"Content-Disposition"},
			AllowCredentials: false,
			MaxAge:           300,
		}))
	}
}

// setupRoutes configures routes for the server
func (s *Server) setupRoutes() {
	s.router.Get("/health", s.handleHealth)

	s.router.Route("/api", func(r chi.Router) {
		r.Use(noCache)

		r.Get("/state", s.handleState)
		r.Put("/kind", s.handleSelectKind)
		r.Put("/form", s.handleSetForm)
		r.Put("/analysis-form", s.handleSetAnalysisForm)
		r.Post("/analysis-form/fetch", s.handleFetchCompetitor)
		r.Put("/feedback", s.handleSetFeedback)
		r.Post("/feedback/tone", s.handleToggleTone)

		r.Post("/generate", s.handleGenerate)
		r.Post("/analyze", s.handleAnalyze)
		r.Post("/refine", s.handleRefine)

		r.Get("/display", s.handleDisplay)
		r.Get("/export", s.handleExport)

		r.Route("/history", func(r chi.Router) {
			r.Get("/", s.handleListHistory)
			r.Delete("/", s.handleClearHistory)
			r.Delete("/{id}", s.handleDeleteHistory)
			r.Post("/{id}/load", s.handleLoadHistory)
		})
	})
}

// Start starts the HTTP server
func (s *Server) Start() error {
	s.log.Info().
		Str("addr", s.httpServer.Addr).
		Dur("read_timeout", s.config.ReadTimeout).
		Dur("write_timeout", s.config.WriteTimeout).
		Msg("Starting HTTP server")

	if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("server failed to start: %w", err)
	}

	return nil
}

// Shutdown gracefully shuts down the HTTP server
func (s *Server) Shutdown(ctx context.Context) error {
	s.log.Info().Msg("Shutting down HTTP server gracefully...")

	if err := s.httpServer.Shutdown(ctx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}

	s.log.Info().Msg("HTTP server stopped")
	return nil
}

// Router returns the chi router instance (useful for testing)
func (s *Server) Router() *chi.Mux {
	return s.router
}
