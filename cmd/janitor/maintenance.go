package main

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"libregistry/janitor/pkg/cli"
	"libregistry/janitor/pkg/maintenance"
	"libregistry/janitor/pkg/registry"
)

var maintenanceFlags struct {
	keep   int
	format string
}

var deleteLibraryCmd = &cobra.Command{
	Use:   "delete-library <id>",
	Short: "Delete a library, its versions and its artifacts",
	Long: `Delete a library row together with its versions, version archives and
examples directory. Missing files are logged and skipped.

Examples:
  janitor delete-library 42`,
	Args: cobra.ExactArgs(1),
	RunE: deleteLibrary,
}

var pruneCmd = &cobra.Command{
	Use:   "prune",
	Short: "Delete versions beyond the retention count",
	Long: `Keep the newest --keep versions of every library (by release time) and
delete the rest together with their archives.

Examples:
  # Use maintenance.keep_versions from the configuration
  janitor prune

  # Keep only the three newest versions
  janitor prune --keep 3`,
	Args: cobra.NoArgs,
	RunE: pruneVersions,
}

var optimizeSyncCmd = &cobra.Command{
	Use:   "optimize-sync",
	Short: "Spread the library sync schedule over 24 hours",
	Args:  cobra.NoArgs,
	RunE:  optimizeSync,
}

func init() {
	for _, cmd := range []*cobra.Command{deleteLibraryCmd, pruneCmd, optimizeSyncCmd} {
		cmd.Flags().StringVarP(&maintenanceFlags.format, "format", "f", "text", "output format (text, json, table)")
		rootCmd.AddCommand(cmd)
	}
	pruneCmd.Flags().IntVarP(&maintenanceFlags.keep, "keep", "k", 0, "versions to keep per library (default: maintenance.keep_versions)")
}

func deleteLibrary(cmd *cobra.Command, args []string) error {
	id, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil || id <= 0 {
		return cli.NewCommandError("delete-library", fmt.Errorf("invalid library id %q", args[0]))
	}

	return runTask(cmd, "delete-library", func(ctx context.Context, a *app) (*registry.Run, error) {
		return a.runner.DeleteLibrary(ctx, id)
	})
}

func pruneVersions(cmd *cobra.Command, args []string) error {
	return runTask(cmd, "prune", func(ctx context.Context, a *app) (*registry.Run, error) {
		keep := a.cfg.Maintenance.KeepVersions
		if maintenanceFlags.keep != 0 {
			keep = maintenanceFlags.keep
		}
		return a.runner.PruneVersions(ctx, keep)
	})
}

func optimizeSync(cmd *cobra.Command, args []string) error {
	return runTask(cmd, "optimize-sync", func(ctx context.Context, a *app) (*registry.Run, error) {
		return a.runner.OptimizeSyncSchedule(ctx)
	})
}

// runTask executes one maintenance run and prints its record.
func runTask(cmd *cobra.Command, name string, fn func(context.Context, *app) (*registry.Run, error)) error {
	format, err := cli.ParseFormat(maintenanceFlags.format)
	if err != nil {
		return cli.NewCommandError(name, err)
	}

	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	a, err := newApp(cfg)
	if err != nil {
		return cli.NewCommandError(name, err)
	}
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = a.Close(ctx)
	}()

	ctx, stop := cli.SetupSignalHandler(commandContext(cmd))
	defer stop()

	run, err := fn(ctx, a)
	if err != nil {
		return cli.NewCommandErrorWithCode(name, exitCodeFor(err), err)
	}

	return cli.NewFormatter(format).FormatTo(cmd.OutOrStdout(), runView{run})
}

func exitCodeFor(err error) int {
	switch {
	case errors.Is(err, maintenance.ErrLocked):
		return cli.ExitLocked
	case errors.Is(err, registry.ErrNotFound):
		return cli.ExitNotFound
	default:
		return cli.ExitFailure
	}
}
