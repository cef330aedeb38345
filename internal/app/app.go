// Package app provides application initialization and wiring.
package app

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/jobrunner/geodatum/internal/adapters/catalog"
	"github.com/jobrunner/geodatum/internal/adapters/metrics"
	"github.com/jobrunner/geodatum/internal/adapters/watcher"
	"github.com/jobrunner/geodatum/internal/application"
	"github.com/jobrunner/geodatum/internal/config"
	"github.com/jobrunner/geodatum/internal/domain"
	"github.com/jobrunner/geodatum/internal/ports/output"
)

// App holds all application components.
type App struct {
	Config            *config.Config
	Logger            *slog.Logger
	Catalog           *catalog.Repository
	ConversionService *application.ConversionService
	CheckService      *application.CheckService
	Watcher           *watcher.Watcher
	Metrics           *metrics.Collector
	Registry          *prometheus.Registry

	metrics output.MetricsCollector
}

// New creates and initializes a new application.
func New(cfg *config.Config, logger *slog.Logger) (*App, error) {
	app := &App{
		Config:  cfg,
		Logger:  logger,
		metrics: &output.NoOpMetrics{},
	}

	// Initialize metrics
	if cfg.Metrics.Enabled {
		app.Registry = prometheus.NewRegistry()
		app.Metrics = metrics.NewCollector(cfg.Metrics.Namespace, app.Registry)
		app.metrics = app.Metrics
	}

	// Initialize pipeline catalog
	repo, err := catalog.NewRepository(cfg.Solver.Solver())
	if err != nil {
		return nil, fmt.Errorf("initializing catalog: %w", err)
	}
	if cfg.Catalog.Path != "" {
		if err := repo.LoadFile(cfg.Catalog.Path); err != nil {
			return nil, fmt.Errorf("initializing catalog: %w", err)
		}
	}
	app.Catalog = repo
	app.metrics.SetPipelinesLoaded(repo.Count())

	// Initialize services
	app.ConversionService = application.NewConversionService(
		repo,
		app.metrics,
		logger,
		application.ConversionServiceConfig{
			Concurrency: cfg.Convert.Concurrency,
		},
	)
	app.CheckService = application.NewCheckService(
		repo,
		logger,
		application.CheckServiceConfig{
			RoundTripTolerance: cfg.Check.RoundTripTolerance,
		},
	)

	// Initialize file watcher for hot-reload
	if cfg.Catalog.Watch {
		w, err := watcher.New(
			watcher.Config{
				File:     cfg.Catalog.Path,
				Debounce: cfg.Catalog.Debounce,
			},
			app.handleCatalogEvent,
			logger,
		)
		if err != nil {
			logger.Warn("failed to initialize catalog watcher", "error", err)
		} else {
			app.Watcher = w
		}
	}

	logger.Debug("catalog loaded",
		"source", repo.Source(),
		"pipelines", repo.Count(),
	)

	return app, nil
}

// Start starts the background components.
func (a *App) Start(ctx context.Context) error {
	if a.Watcher != nil {
		if err := a.Watcher.Start(ctx); err != nil {
			return fmt.Errorf("starting catalog watcher: %w", err)
		}
	}
	return nil
}

// Shutdown stops the background components.
func (a *App) Shutdown(_ context.Context) error {
	a.Logger.Debug("shutting down application")

	if a.Watcher != nil {
		if err := a.Watcher.Stop(); err != nil {
			return fmt.Errorf("stopping catalog watcher: %w", err)
		}
	}
	return nil
}

// WriteMetrics writes the collected metrics in the Prometheus text format.
// It does nothing when metrics are disabled.
func (a *App) WriteMetrics(w io.Writer) error {
	if a.Registry == nil {
		return nil
	}
	return metrics.WriteText(w, a.Registry)
}

// handleCatalogEvent reloads the catalog file after it changed.
func (a *App) handleCatalogEvent(ctx context.Context, event watcher.Event) error {
	switch event.Operation {
	case watcher.OpCreate, watcher.OpModify:
		if err := a.Catalog.LoadFile(event.Path); err != nil {
			return err
		}
		a.metrics.SetPipelinesLoaded(a.Catalog.Count())
		a.Logger.Info("catalog reloaded",
			"path", event.Path,
			"pipelines", a.Catalog.Count(),
			"healthy", a.CheckService.IsHealthy(ctx),
		)
		return nil

	case watcher.OpDelete:
		a.Logger.Warn("catalog file removed, keeping current pipelines",
			"path", event.Path,
			"pipelines", a.Catalog.Count(),
		)
		return nil
	}

	return fmt.Errorf("operation %s: %w", event.Operation, domain.ErrUnsupported)
}
