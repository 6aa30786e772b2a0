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

	"github.com/starford/raido/internal/api"
	"github.com/starford/raido/internal/cache"
	"github.com/starford/raido/internal/index"
	"github.com/starford/raido/internal/mcpserver"
	"github.com/starford/raido/internal/models"
	"github.com/starford/raido/internal/order"
	"github.com/starford/raido/internal/pinservice"
	"github.com/starford/raido/internal/scanner"
	"github.com/starford/raido/internal/sse"
	"github.com/starford/raido/internal/watch"
)

// publisher fans publish notifications out to the SSE broker and the search
// index. The index rebuild is best-effort; search lags at most one publish.
type publisher struct {
	broker *sse.Broker
	idx    *index.DB
	logger *slog.Logger
}

func (p *publisher) PinsUpdated(pins []models.Pin) {
	p.broker.PinsUpdated(pins)
	if p.idx != nil {
		if err := p.idx.Rebuild(pins); err != nil {
			p.logger.Warn("search index rebuild failed", slog.String("error", err.Error()))
		}
	}
}

func (p *publisher) ScanCompleted(res models.ScanResult) {
	p.broker.ScanCompleted(res)
}

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
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: cfg.App.LogLevel,
	}))
	slog.SetDefault(logger)

	logger.Info("Configuration loaded",
		slog.String("http_address", cfg.App.HTTP.Address()),
		slog.Int("roots", len(cfg.Pins.Roots)),
		slog.String("cache_path", cfg.Cache.Path),
		slog.String("log_level", cfg.App.LogLevel.String()))

	svc, idx, cacheStore, orderStore, err := buildCore(cfg, logger)
	if err != nil {
		return err
	}
	if idx != nil {
		defer idx.Close()
	}

	// SSE broker and publish fan-out.
	broker := sse.NewBroker()
	defer broker.Close()
	svc.SetEvents(&publisher{broker: broker, idx: idx, logger: logger})

	// Initial scan (SetRootDirectories scans when any root is valid).
	if len(cfg.Pins.Roots) > 0 {
		svc.SetRootDirectories(cfg.Pins.Roots)
	}

	// Build API router.
	h := api.NewHandler(svc, idx, orderStore)
	apiRouter := api.NewRouter(h, cfg.Auth.AuthEnabled(), cfg.Auth.Token, broker)

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

	r.Mount("/api", apiRouter)

	httpServer := &http.Server{
		Addr:    cfg.App.HTTP.Address(),
		Handler: r,
	}

	logger.Info("Server starting...", slog.String("http_address", cfg.App.HTTP.Address()))

	g, gCtx := errgroup.WithContext(ctx)

	// File watcher triggering incremental scans.
	if cfg.Pins.Watch && len(cfg.Pins.Roots) > 0 {
		g.Go(func() error {
			if err := watch.Run(gCtx, svc.Roots(), svc, logger); err != nil {
				logger.Warn("watcher failed", slog.String("error", err.Error()))
			}
			return nil
		})
	}

	// Periodic incremental scans.
	if cfg.Pins.ScanInterval > 0 {
		g.Go(func() error {
			ticker := time.NewTicker(cfg.Pins.ScanInterval)
			defer ticker.Stop()
			for {
				select {
				case <-gCtx.Done():
					return nil
				case <-ticker.C:
					svc.Scan()
				}
			}
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

	err = g.Wait()

	// Drop entries for vanished files, then flush the cache one last time.
	cacheStore.Cleanup()
	if saveErr := cacheStore.Save(); saveErr != nil {
		logger.Warn("final cache save failed", slog.String("error", saveErr.Error()))
	}

	if err != nil {
		logger.Error("Application error", slog.String("error", err.Error()))
		return err
	}

	logger.Info("Server stopped successfully")
	return nil
}

// RunMCP starts the stdio MCP server using the same core pipeline.
func RunMCP(cfg *Config) error {
	logger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
		Level: cfg.App.LogLevel,
	}))
	slog.SetDefault(logger)

	svc, idx, cacheStore, _, err := buildCore(cfg, logger)
	if err != nil {
		return err
	}
	if idx != nil {
		defer idx.Close()
	}

	broker := sse.NewBroker()
	defer broker.Close()
	svc.SetEvents(&publisher{broker: broker, idx: idx, logger: logger})

	if len(cfg.Pins.Roots) > 0 {
		svc.SetRootDirectories(cfg.Pins.Roots)
	}

	defer func() {
		cacheStore.Cleanup()
		_ = cacheStore.Save()
	}()

	return mcpserver.New(svc, idx).ServeStdio()
}

// buildCore wires the cache store, scanner, order provider, search index,
// and orchestrator.
func buildCore(cfg *Config, logger *slog.Logger) (*pinservice.Service, *index.DB, *cache.Store, *order.FileStore, error) {
	cacheStore := cache.NewStore(cfg.Cache.Path, logger)
	cacheStore.Initialize()

	sc := scanner.New(cacheStore, logger)

	var orderStore *order.FileStore
	var orderProvider order.Provider
	if cfg.Order.Path != "" {
		orderStore = order.NewFileStore(cfg.Order.Path, logger)
		orderProvider = orderStore
	}

	var idx *index.DB
	if cfg.Index.Path != "" {
		db, err := index.Open(cfg.Index.Path)
		if err != nil {
			return nil, nil, nil, nil, fmt.Errorf("init search index: %w", err)
		}
		idx = db
	}

	svc := pinservice.New(sc, cacheStore, orderProvider, cfg.Pins.MaxFileSizeMB, logger)
	return svc, idx, cacheStore, orderStore, nil
}
