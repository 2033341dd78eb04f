// Package server exposes the engine over a small JSON API. The dashboard
// proper is a separate consumer; this surface only accepts audio bytes or
// frame fixtures and returns structured results.
package server

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/DaisyQuest/Transcriberator/internal/config"
	enginesignal "github.com/DaisyQuest/Transcriberator/internal/signal"
	"github.com/DaisyQuest/Transcriberator/internal/symbolic"
)

// Config holds server configuration
type Config struct {
	Port     int
	Settings config.Settings
}

// Server is the HTTP server
type Server struct {
	config   Config
	router   *chi.Mux
	logger   *slog.Logger
	analyzer *enginesignal.Analyzer
	worker   *symbolic.Worker
	results  *ResultStore
}

// New creates a new server
func New(cfg Config) *Server {
	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))

	s := &Server{
		config:   cfg,
		router:   chi.NewRouter(),
		logger:   logger,
		analyzer: enginesignal.NewAnalyzer(cfg.Settings.TuningSettings()),
		worker:   symbolic.NewWorker(),
		results:  NewResultStore(),
	}

	s.setupRoutes()
	return s
}

// setupRoutes configures all HTTP routes
func (s *Server) setupRoutes() {
	r := s.router

	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Compress(5))

	r.Get("/health", s.handleHealth)

	r.Post("/analyze", s.handleAnalyze)
	r.Post("/transcribe", s.handleTranscribe)
	r.Get("/result/{id}", s.handleResult)
}

// Run starts the server
func (s *Server) Run() error {
	addr := fmt.Sprintf(":%d", s.config.Port)

	srv := &http.Server{
		Addr:         addr,
		Handler:      s.router,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Graceful shutdown
	done := make(chan struct{})
	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
		<-sigCh

		s.logger.Info("shutting down server...")
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		if err := srv.Shutdown(ctx); err != nil {
			s.logger.Error("shutdown error", slog.Any("error", err))
		}
		close(done)
	}()

	s.logger.Info("server starting", slog.Int("port", s.config.Port))

	if err := srv.ListenAndServe(); err != http.ErrServerClosed {
		return err
	}

	<-done
	return nil
}
