package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"

	"github.com/spf13/cobra"

	"libregistry/janitor/pkg/cli"
	"libregistry/janitor/pkg/config"
	"libregistry/janitor/pkg/maintenance"
	"libregistry/janitor/pkg/telemetry/health"
)

var runFlags struct {
	listenAddress string
	dryRun        bool
}

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the maintenance daemon",
	Long: `Run the maintenance scheduler until interrupted.

Version pruning and sync schedule optimization run on the cron schedules in
maintenance.prune_schedule and maintenance.optimize_schedule. Metrics and
health endpoints are served on server.listen_address. When --config is set
and maintenance.watch_config is true, edits to the file are picked up
without a restart; keep_versions applies to the next scheduled prune.

Examples:
  janitor run --config /etc/janitor/janitor.yaml
  janitor run --listen 0.0.0.0:9310
  janitor run --dry-run`,
	Args: cobra.NoArgs,
	RunE: runDaemon,
}

func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().StringVarP(&runFlags.listenAddress, "listen", "l", "", "override server.listen_address")
	runCmd.Flags().BoolVar(&runFlags.dryRun, "dry-run", false, "validate config without starting")
}

func runDaemon(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if runFlags.listenAddress != "" {
		cfg.Server.ListenAddress = runFlags.listenAddress
	}

	if runFlags.dryRun {
		fmt.Fprintln(cmd.OutOrStdout(), "✓ Configuration valid")
		return nil
	}

	ctx, stop := cli.SetupSignalHandler(commandContext(cmd))
	defer stop()

	d, err := newDaemon(cfg)
	if err != nil {
		return cli.NewCommandError("run", err)
	}
	if err := d.serve(ctx); err != nil {
		return cli.NewCommandError("run", err)
	}
	return nil
}

// daemon ties the scheduler, HTTP endpoints and config watcher together.
type daemon struct {
	app       *app
	scheduler *maintenance.Scheduler
	server    *http.Server
	listener  net.Listener
	watcher   *config.FileWatcher
	logger    *slog.Logger

	// applied is the last configuration seen by applyConfig.
	applied *config.Config
}

func newDaemon(cfg *config.Config) (*daemon, error) {
	a, err := newApp(cfg)
	if err != nil {
		return nil, err
	}

	d := &daemon{
		app: a,
		scheduler: maintenance.NewScheduler(a.runner, &maintenance.ScheduleConfig{
			PruneSchedule:    cfg.Maintenance.PruneSchedule,
			OptimizeSchedule: cfg.Maintenance.OptimizeSchedule,
			KeepVersions:     cfg.Maintenance.KeepVersions,
		}),
		logger:  slog.Default().With("component", "janitor.daemon"),
		applied: cfg,
	}

	if cfg.Telemetry.Metrics.Enabled || cfg.Telemetry.Health.Enabled {
		d.server = &http.Server{
			Handler:      d.routes(),
			ReadTimeout:  cfg.Server.ReadTimeout,
			WriteTimeout: cfg.Server.WriteTimeout,
		}
	}

	if cfgFile != "" && cfg.Maintenance.WatchConfig {
		w, err := config.NewFileWatcher(cfgFile, 0)
		if err != nil {
			a.Close(context.Background())
			return nil, err
		}
		d.watcher = w
	}

	return d, nil
}

// routes builds the metrics and health mux.
func (d *daemon) routes() *http.ServeMux {
	cfg := d.app.cfg
	mux := http.NewServeMux()

	if cfg.Telemetry.Metrics.Enabled {
		mux.Handle(cfg.Telemetry.Metrics.Path, d.app.collector.Handler())
	}

	if cfg.Telemetry.Health.Enabled {
		checker := health.New(cfg.Telemetry.Health.CheckTimeout)
		checker.RegisterCheck("database", health.DatabaseCheck(d.app.store))
		checker.RegisterCheck("storage", health.StorageRootCheck(cfg.Storage.Root))
		if cfg.Maintenance.PruneSchedule != "" || cfg.Maintenance.OptimizeSchedule != "" {
			checker.RegisterCheck("scheduler", health.SchedulerCheck(d.scheduler.IsRunning))
		}

		health.Register(mux, checker, health.Paths{
			Liveness:  cfg.Telemetry.Health.LivenessPath,
			Readiness: cfg.Telemetry.Health.ReadinessPath,
			Version:   "/version",
		}, health.VersionInfo{Version: Version, Commit: GitCommit, BuildTime: BuildDate})
	}

	return mux
}

// serve runs until ctx is cancelled or the HTTP server fails, then shuts
// everything down within server.shutdown_timeout.
func (d *daemon) serve(ctx context.Context) error {
	cfg := d.app.cfg
	errCh := make(chan error, 2)

	if d.server != nil {
		ln, err := net.Listen("tcp", cfg.Server.ListenAddress)
		if err != nil {
			d.app.Close(context.Background())
			return fmt.Errorf("failed to listen on %s: %w", cfg.Server.ListenAddress, err)
		}
		d.listener = ln

		go func() {
			if err := d.server.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
				errCh <- fmt.Errorf("server error: %w", err)
			}
		}()
		d.logger.Info("HTTP endpoints listening", "address", ln.Addr().String())
	}

	if err := d.scheduler.Start(ctx); err != nil {
		d.shutdown()
		return err
	}
	for _, task := range []string{maintenance.TaskPruneVersions, maintenance.TaskOptimizeSync} {
		if next := d.scheduler.NextRun(task); next != nil {
			d.logger.Info("maintenance task scheduled", "task", task, "next_run", next)
		}
	}

	if d.watcher != nil {
		go func() {
			err := d.watcher.Watch(ctx, d.applyConfig)
			if err != nil {
				errCh <- fmt.Errorf("config watcher: %w", err)
			}
		}()
	}

	d.logger.Info("janitor started", "version", Version)

	var runErr error
	select {
	case <-ctx.Done():
		d.logger.Info("shutdown signal received")
	case runErr = <-errCh:
		d.logger.Error("daemon failed", "error", runErr)
	}

	if err := d.shutdown(); err != nil && runErr == nil {
		runErr = err
	}
	return runErr
}

// applyConfig applies a reloaded configuration. Only the retention count is
// applied live; schedule and storage changes need a restart and are reported
// once per edit.
func (d *daemon) applyConfig(cfg *config.Config) {
	current := d.applied
	d.applied = cfg
	if cfg.Maintenance.KeepVersions != d.scheduler.KeepVersions() {
		d.scheduler.SetKeepVersions(cfg.Maintenance.KeepVersions)
		d.logger.Info("keep_versions updated", "keep_versions", cfg.Maintenance.KeepVersions)
	}
	if cfg.Maintenance.PruneSchedule != current.Maintenance.PruneSchedule ||
		cfg.Maintenance.OptimizeSchedule != current.Maintenance.OptimizeSchedule ||
		cfg.Database != current.Database ||
		cfg.Storage != current.Storage {
		d.logger.Warn("configuration change requires a restart to take effect")
	}
}

func (d *daemon) shutdown() error {
	ctx, cancel := context.WithTimeout(context.Background(), d.app.cfg.Server.ShutdownTimeout)
	defer cancel()

	var errs []error
	if d.server != nil && d.listener != nil {
		if err := d.server.Shutdown(ctx); err != nil {
			errs = append(errs, fmt.Errorf("server shutdown: %w", err))
		}
	}

	// Waits for an in-flight maintenance run.
	d.scheduler.Stop()

	if d.watcher != nil {
		if err := d.watcher.Stop(); err != nil {
			errs = append(errs, err)
		}
	}
	if err := d.app.Close(ctx); err != nil {
		errs = append(errs, err)
	}

	d.logger.Info("janitor stopped")
	return errors.Join(errs...)
}
