// Package internal provides the main application initialization and runtime logic.
package internal

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
	"github.com/go-chi/chi/v5/middleware"
	"golang.org/x/sync/errgroup"

	"github.com/youhengzhou/bibo-notes/internal/api"
	"github.com/youhengzhou/bibo-notes/internal/board"
	"github.com/youhengzhou/bibo-notes/internal/boardservice"
	"github.com/youhengzhou/bibo-notes/internal/mcpserver"
	"github.com/youhengzhou/bibo-notes/internal/mirror"
	"github.com/youhengzhou/bibo-notes/internal/sse"
	"github.com/youhengzhou/bibo-notes/internal/store"
)

// Run starts the application with the given options.
func Run(ctx context.Context, opts ...Option) error {
	app := &application{}

	for _, opt := range opts {
		opt(app)
	}

	if app.config == nil {
		return fmt.Errorf("config is required")
	}

	cfg := app.config

	// Initialize structured JSON logger.
	logger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
		Level: cfg.App.LogLevel,
	}))
	slog.SetDefault(logger)

	logger.Info("Configuration loaded",
		slog.String("http_address", cfg.App.HTTP.Address()),
		slog.String("store_path", cfg.Store.Path),
		slog.String("mirror_path", cfg.Mirror.Path),
		slog.Bool("mcp_mode", app.mcpMode),
		slog.String("log_level", cfg.App.LogLevel.String()))

	// Open the snapshot store.
	db, err := store.Open(cfg.Store.Path)
	if err != nil {
		return fmt.Errorf("init store: %w", err)
	}
	defer db.Close()

	// Outline mirror (optional).
	var m *mirror.Mirror
	if cfg.Mirror.Enabled() {
		m, err = mirror.New(cfg.Mirror.Path)
		if err != nil {
			return fmt.Errorf("init mirror: %w", err)
		}
	}

	// SSE broker.
	broker := sse.NewBroker(2 * time.Second)
	defer broker.Close()

	// Board engine and service.
	svc := newService(board.New(), db, m, broker)
	if err := svc.Load(ctx); err != nil {
		return fmt.Errorf("load snapshot: %w", err)
	}
	logger.Info("Board restored", slog.Int("notes", len(svc.State(ctx).Notes)))

	// MCP mode serves tools over stdio instead of HTTP.
	if app.mcpMode {
		logger.Info("Starting MCP server on stdio")
		return mcpserver.New(svc).ServeStdio()
	}

	// Write the mirror once so the file exists before the watcher starts.
	if m != nil {
		if werr := m.Write(svc.ExportOutline(ctx)); werr != nil {
			logger.Warn("initial mirror write failed", slog.String("error", werr.Error()))
		}
	}

	apiRouter := api.NewRouter(svc, cfg.Auth.AuthEnabled(), cfg.Auth.Token, http.HandlerFunc(broker.ServeHTTP))

	// Build chi router.
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	// Health check endpoints (unauthenticated).
	r.Get("/health/live", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})
	r.Get("/health/ready", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})

	// Mount API routes under /api.
	r.Mount("/api", apiRouter)

	httpServer := &http.Server{
		Addr:    cfg.App.HTTP.Address(),
		Handler: r,
	}

	logger.Info("Server starting...", slog.String("http_address", cfg.App.HTTP.Address()))

	g, gCtx := errgroup.WithContext(ctx)

	// Start the mirror watcher so external outline edits flow back in.
	if m != nil {
		g.Go(func() error {
			return m.Watch(gCtx, logger, func(text string) {
				created := svc.ImportFromMirror(gCtx, text)
				logger.Info("mirror re-import", slog.Int("notes", created))
			})
		})
	}

	// Start HTTP server.
	g.Go(func() error {
		logger.Info("Starting HTTP server", slog.String("address", cfg.App.HTTP.Address()))
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("HTTP server error: %w", err)
		}
		return nil
	})

	// Handle shutdown signals.
	g.Go(func() error {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

		select {
		case sig := <-quit:
			logger.Info("Received shutdown signal", slog.String("signal", sig.String()))
		case <-gCtx.Done():
			logger.Info("Context cancelled, initiating shutdown")
		}

		logger.Info("Shutting down server...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			logger.Error("HTTP server shutdown error", slog.String("error", err.Error()))
		}

		return nil
	})

	if err := g.Wait(); err != nil {
		logger.Error("Application error", slog.String("error", err.Error()))
		return err
	}

	logger.Info("Server stopped successfully")
	return nil
}

// newService wires the board, store, mirror, and broker into a service.
// The mirror writer is passed as nil (a typed-nil interface would defeat
// the service's nil checks) when disabled.
func newService(b *board.Board, db *store.DB, m *mirror.Mirror, broker *sse.Broker) *boardservice.Service {
	var mw boardservice.MirrorWriter
	if m != nil {
		mw = m
	}
	return boardservice.NewService(b, db, mw, broker.PublishChange)
}
