package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"libregistry/janitor/pkg/config"
	"libregistry/janitor/pkg/maintenance"
	"libregistry/janitor/pkg/registry"
	"libregistry/janitor/pkg/registry/layout"
	"libregistry/janitor/pkg/registry/storage"
	"libregistry/janitor/pkg/telemetry/metrics"
	"libregistry/janitor/pkg/telemetry/tracing"
)

// app holds the components shared by every command.
type app struct {
	cfg        *config.Config
	store      registry.Store
	maintainer *maintenance.Maintainer
	runner     *maintenance.Runner
	lock       *maintenance.RunLock
	registry   *prometheus.Registry
	collector  *metrics.Collector
	tracer     *tracing.Tracer
}

// newApp opens the store and wires the maintenance stack.
func newApp(cfg *config.Config) (*app, error) {
	store, err := openStore(&cfg.Database)
	if err != nil {
		return nil, err
	}

	lock, err := maintenance.NewRunLock(cfg.Maintenance.LockPath)
	if err != nil {
		store.Close()
		return nil, err
	}

	tracer, err := tracing.New(&cfg.Telemetry.Tracing, Version)
	if err != nil {
		store.Close()
		return nil, fmt.Errorf("failed to initialize tracing: %w", err)
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	collector := metrics.NewCollector(&cfg.Telemetry.Metrics, reg)

	m := maintenance.New(store, layout.New(cfg.Storage.Root))
	m.SetObserver(collector)

	runner := maintenance.NewRunner(m, lock)
	runner.SetRecorder(collector)
	runner.SetTracer(tracer.Tracer())

	return &app{
		cfg:        cfg,
		store:      store,
		maintainer: m,
		runner:     runner,
		lock:       lock,
		registry:   reg,
		collector:  collector,
		tracer:     tracer,
	}, nil
}

// Close flushes traces and closes the store.
func (a *app) Close(ctx context.Context) error {
	var errs []error
	if err := a.tracer.Shutdown(ctx); err != nil {
		errs = append(errs, fmt.Errorf("tracer shutdown: %w", err))
	}
	if err := a.store.Close(); err != nil {
		errs = append(errs, fmt.Errorf("store close: %w", err))
	}
	return errors.Join(errs...)
}

// openStore creates the registry store selected by the database driver.
func openStore(cfg *config.DatabaseConfig) (registry.Store, error) {
	switch cfg.Driver {
	case "memory":
		return storage.NewMemoryStore(), nil
	case storage.DriverModernc, storage.DriverMattn:
		store, err := storage.NewSQLiteStore(&storage.SQLiteConfig{
			Path:        cfg.Path,
			Driver:      cfg.Driver,
			WALMode:     cfg.WALMode,
			BusyTimeout: cfg.BusyTimeout,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to open registry database: %w", err)
		}
		return store, nil
	default:
		return nil, fmt.Errorf("unsupported database driver: %s", cfg.Driver)
	}
}
