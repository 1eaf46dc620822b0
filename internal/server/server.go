// Package server wires handlers, middleware and routes together and runs the
// HTTP server.
//
// This is the composition root: main builds the config, logger and store,
// and New assembles the rest:
//
//	store → UserService → UserHandler
//	manifest.Loader → MetaHandler, DocsHandler
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

	"github.com/brianvoe/gofakeit/v7"
	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/sakif/birthday-tracker/internal/config"
	"github.com/sakif/birthday-tracker/internal/handler"
	"github.com/sakif/birthday-tracker/internal/manifest"
	"github.com/sakif/birthday-tracker/internal/middleware"
	"github.com/sakif/birthday-tracker/internal/repository"
	"github.com/sakif/birthday-tracker/internal/seed"
	"github.com/sakif/birthday-tracker/internal/service"
)

const shutdownTimeout = 30 * time.Second

// Server owns the router and the store. The store is closed when Start
// returns.
type Server struct {
	router *chi.Mux
	config config.Config
	logger *slog.Logger
	store  repository.Store
}

// New creates a Server using an already opened store.
func New(cfg config.Config, logger *slog.Logger, store repository.Store) *Server {
	s := &Server{
		router: chi.NewRouter(),
		config: cfg,
		logger: logger,
		store:  store,
	}
	s.setupRoutes()
	return s
}

// setupRoutes configures middleware and routes.
//
//	GET  /              → service description
//	POST /users/        → register user (also /users)
//	GET  /openapi.json  → OpenAPI document
//	GET  /docs          → Swagger UI
//
// Middleware runs in the order it is added: RequestID must precede Logger so
// the log line carries the id.
func (s *Server) setupRoutes() {
	s.router.Use(chimiddleware.RequestID)
	s.router.Use(chimiddleware.RealIP)
	s.router.Use(middleware.Logger(s.logger))
	s.router.Use(chimiddleware.Recoverer)

	versions := manifest.NewLoader(s.config.ManifestPath, s.logger)

	metaHandler := handler.NewMetaHandler(versions, string(s.config.AppEnv), s.logger)
	docsHandler := handler.NewDocsHandler(versions, s.logger)

	userService := service.NewUserService(s.store, s.logger)
	userHandler := handler.NewUserHandler(userService, s.logger)

	s.router.Get("/", metaHandler.HandleRoot)
	s.router.Get(handler.OpenAPIPath, docsHandler.HandleOpenAPI)
	s.router.Get(handler.DocsPath, docsHandler.HandleDocs)

	s.router.Post("/users/", userHandler.HandleCreate)
	s.router.Post("/users", userHandler.HandleCreate)
}

// Handler exposes the router, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Prepare creates the schema and, in development, seeds sample users.
func (s *Server) Prepare(ctx context.Context) error {
	s.logger.Info("initializing database")
	if err := s.store.Init(ctx); err != nil {
		return fmt.Errorf("initializing database: %w", err)
	}

	if s.config.IsDevelopment() {
		if _, err := seed.Run(ctx, s.store, s.logger, gofakeit.New(0)); err != nil {
			return fmt.Errorf("seeding database: %w", err)
		}
	}
	return nil
}

// Start prepares the store, serves HTTP and blocks until SIGINT/SIGTERM or a
// listener failure. In-flight requests get shutdownTimeout to finish.
func (s *Server) Start() error {
	defer func() {
		if err := s.store.Close(); err != nil {
			s.logger.Error("failed to close database", slog.String("error", err.Error()))
		}
	}()

	if err := s.Prepare(context.Background()); err != nil {
		return err
	}

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", s.config.Port),
		Handler:      s.router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(quit)

	serverErrors := make(chan error, 1)

	go func() {
		s.logger.Info("server starting",
			slog.Int("port", s.config.Port),
			slog.String("url", fmt.Sprintf("http://localhost:%d", s.config.Port)),
			slog.String("environment", string(s.config.AppEnv)),
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

		ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()

		if err := srv.Shutdown(ctx); err != nil {
			return fmt.Errorf("graceful shutdown failed: %w", err)
		}
		s.logger.Info("server stopped gracefully")
	}

	return nil
}
