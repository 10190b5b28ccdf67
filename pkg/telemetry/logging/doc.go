// Package logging builds the structured loggers used by janitor.
//
// # Overview
//
// The logging package wraps Go's standard log/slog package to provide:
//   - JSON, text and console output
//   - Configurable log levels (debug, info, warn, error)
//   - Context-aware records carrying the maintenance run ID and task
//
// # Usage
//
//	logger, err := logging.New(logging.Config{
//	    Level:  "info",
//	    Format: "json",
//	})
//	if err != nil {
//	    return err
//	}
//	slog.SetDefault(logger)
//
//	ctx = logging.WithRunID(ctx, runID)
//	ctx = logging.WithTask(ctx, "prune_versions")
//	slog.InfoContext(ctx, "version pruning completed") // includes run_id and task
package logging
