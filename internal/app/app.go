// Package app wires configuration, storage, analysis and the orchestrator
// into one process-wide set of services.
package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"nutrilog/internal/analysis"
	"nutrilog/internal/config"
	"nutrilog/internal/daily"
	"nutrilog/internal/events"
	"nutrilog/internal/kvstore"
	"nutrilog/internal/logbook"
	"nutrilog/internal/logging"
	"nutrilog/internal/media"
	"nutrilog/internal/notifications"
	"nutrilog/internal/pipeline"
)

// App owns every long-lived service. Close releases them in reverse order.
type App struct {
	Config   *config.Config
	Logger   *slog.Logger
	Store    kvstore.Store
	Media    *media.Store
	Book     *logbook.Book
	Bus      *events.Bus
	Analyzer analysis.Analyzer
	Pipeline *pipeline.Orchestrator
	Daily    *daily.Queries

	lock      *kvstore.DirLock
	forwarder *notifications.Forwarder
}

// Option customises Open.
type Option func(*openOptions)

type openOptions struct {
	analyzer analysis.Analyzer
	pipeline []pipeline.Option
}

// WithAnalyzer replaces the configured analysis backend.
func WithAnalyzer(a analysis.Analyzer) Option {
	return func(o *openOptions) { o.analyzer = a }
}

// WithPipelineOptions passes extra options to the orchestrator.
func WithPipelineOptions(opts ...pipeline.Option) Option {
	return func(o *openOptions) { o.pipeline = append(o.pipeline, opts...) }
}

// Open builds the services described by cfg. The data directory is locked
// against other processes until Close.
func Open(ctx context.Context, cfg *config.Config, logger *slog.Logger, opts ...Option) (_ *App, err error) {
	if cfg == nil {
		return nil, fmt.Errorf("config is required")
	}
	if logger == nil {
		logger = logging.NewNop()
	}
	var o openOptions
	for _, opt := range opts {
		opt(&o)
	}

	a := &App{Config: cfg, Logger: logger}
	defer func() {
		if err != nil {
			_ = a.Close(context.Background())
		}
	}()

	if err := cfg.EnsureDirectories(); err != nil {
		return nil, err
	}
	if a.lock, err = kvstore.LockDir(cfg.Paths.DataDir); err != nil {
		return nil, err
	}
	if a.Store, err = kvstore.Open(cfg, logger); err != nil {
		return nil, fmt.Errorf("open store: %w", err)
	}
	if a.Media, err = media.NewFromConfig(cfg, logger); err != nil {
		return nil, fmt.Errorf("open media: %w", err)
	}
	a.Book, err = logbook.Open(ctx, a.Store, logbook.Options{
		Logger:         logger,
		LegacyImage:    a.Media.Save,
		WaterRetention: cfg.RetentionWindow(),
	})
	if err != nil {
		return nil, fmt.Errorf("open log book: %w", err)
	}

	a.Bus = events.NewBus(logger)
	if o.analyzer != nil {
		a.Analyzer = o.analyzer
	} else if a.Analyzer, err = analysis.New(ctx, cfg, logger); err != nil {
		return nil, fmt.Errorf("init analyzer: %w", err)
	}

	a.Pipeline = pipeline.NewFromConfig(cfg, a.Book, a.Bus, a.Analyzer, a.Media, logger, o.pipeline...)
	a.Daily = daily.NewFromConfig(cfg, a.Book)

	if cfg.Notifications.Toasts {
		a.forwarder = notifications.NewForwarder(a.Bus, notifications.NewService(cfg), logger)
	}

	logger.Info("nutrilog ready",
		logging.String("storage", cfg.Storage.Backend),
		logging.String("analysis", cfg.Analysis.Backend),
		logging.Int("meals", a.Book.Meals.Len()),
		logging.Int("exercises", a.Book.Exercises.Len()),
	)
	return a, nil
}

// Close stops the orchestrator and releases storage. It waits for in-flight
// analyses to exit or ctx to end.
func (a *App) Close(ctx context.Context) error {
	var errs []error
	if a.Pipeline != nil {
		errs = append(errs, a.Pipeline.Shutdown(ctx))
	}
	if a.forwarder != nil {
		a.forwarder.Close()
	}
	if a.Analyzer != nil {
		errs = append(errs, a.Analyzer.Close())
	}
	if a.Store != nil {
		errs = append(errs, a.Store.Close())
	}
	if a.lock != nil {
		errs = append(errs, a.lock.Unlock())
	}
	return errors.Join(errs...)
}
