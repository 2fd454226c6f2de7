// Package server sets up the HTTP server, router, and all route definitions.
//
// This is the composition root: the store, services, handlers and
// middleware are created and wired together here and nowhere else.
//
//	config → Store (SQLite or Postgres) → services → handlers → chi routes
package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/sakif/programmer-battle/internal/auth"
	"github.com/sakif/programmer-battle/internal/config"
	"github.com/sakif/programmer-battle/internal/form"
	"github.com/sakif/programmer-battle/internal/handler"
	"github.com/sakif/programmer-battle/internal/middleware"
	"github.com/sakif/programmer-battle/internal/repository"
	postgresRepo "github.com/sakif/programmer-battle/internal/repository/postgres"
	sqliteRepo "github.com/sakif/programmer-battle/internal/repository/sqlite"
	"github.com/sakif/programmer-battle/internal/service"
)

// Server represents the HTTP server and all its dependencies.
//
// The Server owns the store and closes it on shutdown, flushing any
// pending writes and releasing the SQLite file lock.
type Server struct {
	router   *chi.Mux
	config   *config.Config
	logger   *slog.Logger
	store    repository.Store
	registry *prometheus.Registry
}

// OpenStore opens the backend selected by cfg: Postgres when DatabaseURL
// is set, SQLite at DBPath otherwise.
func OpenStore(cfg *config.Config) (repository.Store, error) {
	if cfg.DatabaseURL != "" {
		db, err := postgresRepo.Open(cfg.DatabaseURL)
		if err != nil {
			return nil, err
		}
		return db, nil
	}

	db, err := sqliteRepo.New(cfg.DBPath)
	if err != nil {
		return nil, err
	}
	return db, nil
}

// New opens the configured store and builds a Server around it.
func New(cfg *config.Config, logger *slog.Logger) (*Server, error) {
	store, err := OpenStore(cfg)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	s, err := NewWithStore(cfg, logger, store)
	if err != nil {
		store.Close()
		return nil, err
	}
	return s, nil
}

// NewWithStore builds a Server over an already open store. It seeds the
// default creator account and registers every route. The caller keeps
// ownership of store until Start is called.
func NewWithStore(cfg *config.Config, logger *slog.Logger, store repository.Store) (*Server, error) {
	s := &Server{
		router:   chi.NewRouter(),
		config:   cfg,
		logger:   logger,
		store:    store,
		registry: prometheus.NewRegistry(),
	}

	if err := s.setupRoutes(); err != nil {
		return nil, fmt.Errorf("setting up routes: %w", err)
	}

	return s, nil
}

// setupRoutes configures all middleware and route handlers.
//
// ROUTE STRUCTURE:
// GET    /health                       → liveness probe
// GET    /metrics                      → Prometheus scrape endpoint
// POST   /api/tokens                   → exchange credentials for a JWT  (JWT_SECRET only)
// GET    /api/me                       → current user                    (JWT_SECRET only)
// GET    /api/programmers              → list programmers
// POST   /api/programmers              → create programmer
// GET    /api/programmers/{nickname}   → show programmer
// PUT    /api/programmers/{nickname}   → replace programmer
// PATCH  /api/programmers/{nickname}   → partially update programmer
// DELETE /api/programmers/{nickname}   → delete programmer
//
// Middleware executes in the order it's added. Metrics sits inside Logger
// so both see the final status code.
func (s *Server) setupRoutes() error {
	var tokens *auth.TokenService
	if s.config.JWTSecret != "" {
		var err error
		tokens, err = auth.NewTokenService(s.config.JWTSecret)
		if err != nil {
			return err
		}
	} else {
		s.logger.Warn("JWT_SECRET not set, token authentication is disabled")
	}

	passwords := auth.NewPasswordService(s.config.BcryptCost)
	authService := service.NewAuthService(s.store, tokens, passwords, s.logger)

	// Anonymous creates are owned by this account, so it must exist first.
	seedCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if _, err := authService.EnsureUser(seedCtx, s.config.CreatorUsername, s.config.CreatorPassword); err != nil {
		return fmt.Errorf("seeding creator: %w", err)
	}

	programmerService := service.NewProgrammerService(
		s.store, s.store, form.NewProgrammerBinder(), s.config.CreatorUsername, s.logger,
	)
	programmerHandler := handler.NewProgrammerHandler(programmerService, s.logger)
	authHandler := handler.NewAuthHandler(authService, s.logger)

	s.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	metrics := middleware.NewMetrics(s.registry)

	// === Global Middleware ===
	s.router.Use(chimiddleware.RequestID)
	s.router.Use(chimiddleware.RealIP)
	s.router.Use(chimiddleware.Recoverer)
	s.router.Use(middleware.Logger(s.logger))
	s.router.Use(metrics.Handler)
	if tokens != nil {
		s.router.Use(auth.OptionalAuth(tokens))
	}

	s.router.Get("/health", handler.HandleHealth)
	s.router.Handle("/metrics", promhttp.HandlerFor(s.registry, promhttp.HandlerOpts{}))

	s.router.Route("/api", func(r chi.Router) {
		if tokens != nil {
			r.Post("/tokens", authHandler.HandleToken)
			r.With(auth.RequireAuth(tokens)).Get("/me", authHandler.HandleMe)
		}

		r.Route("/programmers", func(r chi.Router) {
			r.Get("/", programmerHandler.HandleList)
			r.Post("/", programmerHandler.HandleCreate)
			r.Get("/{nickname}", programmerHandler.HandleShow)
			r.Put("/{nickname}", programmerHandler.HandleUpdate)
			r.Patch("/{nickname}", programmerHandler.HandleUpdate)
			r.Delete("/{nickname}", programmerHandler.HandleDelete)
		})
	})

	return nil
}

// Handler returns the fully wired router, for httptest servers.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Store returns the backing store.
func (s *Server) Store() repository.Store {
	return s.store
}

// Start starts the HTTP server and handles graceful shutdown.
//
// On SIGINT or SIGTERM it stops accepting connections, gives in-flight
// requests 30 seconds to finish, then closes the store.
func (s *Server) Start() error {
	defer s.store.Close()

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", s.config.Port),
		Handler:      s.router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	serverErrors := make(chan error, 1)

	go func() {
		backend := "sqlite:" + s.config.DBPath
		if s.config.DatabaseURL != "" {
			backend = "postgres"
		}
		s.logger.Info("server starting",
			slog.Int("port", s.config.Port),
			slog.String("url", s.config.BaseURL),
			slog.String("database", backend),
		)
		serverErrors <- srv.ListenAndServe()
	}()

	select {
	case err := <-serverErrors:
		if !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server error: %w", err)
		}

	case sig := <-quit:
		s.logger.Info("shutdown signal received", slog.String("signal", sig.String()))

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		if err := srv.Shutdown(ctx); err != nil {
			return fmt.Errorf("graceful shutdown failed: %w", err)
		}
		s.logger.Info("server stopped gracefully")
	}

	return nil
}
