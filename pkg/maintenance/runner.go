package maintenance

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"

	"libregistry/janitor/pkg/registry"
	"libregistry/janitor/pkg/telemetry/logging"
	"libregistry/janitor/pkg/telemetry/tracing"
)

// Run statuses passed to RunRecorder.
const (
	StatusSuccess = "success"
	StatusError   = "error"
	StatusSkipped = "skipped"
)

// RunRecorder receives the outcome of every run.
// metrics.Collector satisfies it.
type RunRecorder interface {
	RecordRun(task, status string, duration time.Duration)
}

type nopRecorder struct{}

func (nopRecorder) RecordRun(string, string, time.Duration) {}

// Runner wraps the Maintainer routines with a run id, the maintenance lock,
// run history and run metrics. The scheduler and the CLI both go through a
// Runner.
type Runner struct {
	maintainer *Maintainer
	store      registry.Store
	lock       *RunLock
	recorder   RunRecorder
	tracer     trace.Tracer
	logger     *slog.Logger
	newID      func() string
}

// NewRunner creates a Runner. A nil lock disables locking.
func NewRunner(m *Maintainer, lock *RunLock) *Runner {
	return &Runner{
		maintainer: m,
		store:      m.store,
		lock:       lock,
		recorder:   nopRecorder{},
		tracer:     noop.NewTracerProvider().Tracer(""),
		logger:     slog.Default().With("component", "maintenance.runner"),
		newID:      func() string { return uuid.New().String() },
	}
}

// SetRecorder installs a run recorder. Nil restores the no-op recorder.
func (r *Runner) SetRecorder(rec RunRecorder) {
	if rec == nil {
		rec = nopRecorder{}
	}
	r.recorder = rec
}

// SetTracer installs the tracer used for run spans. Nil disables tracing.
func (r *Runner) SetTracer(tracer trace.Tracer) {
	if tracer == nil {
		tracer = noop.NewTracerProvider().Tracer("")
	}
	r.tracer = tracer
}

// DeleteLibrary runs Maintainer.DeleteLibrary as a recorded run.
func (r *Runner) DeleteLibrary(ctx context.Context, libID int64) (*registry.Run, error) {
	return r.run(ctx, TaskDeleteLibrary, func(ctx context.Context) (int64, error) {
		if err := r.maintainer.DeleteLibrary(ctx, libID); err != nil {
			return 0, err
		}
		return 1, nil
	}, attribute.Int64(tracing.AttrLibraryID, libID))
}

// PruneVersions runs Maintainer.PruneVersions as a recorded run.
func (r *Runner) PruneVersions(ctx context.Context, keepVersions int) (*registry.Run, error) {
	return r.run(ctx, TaskPruneVersions, func(ctx context.Context) (int64, error) {
		result, err := r.maintainer.PruneVersions(ctx, keepVersions)
		if err != nil {
			return 0, err
		}
		return int64(result.VersionsDeleted), nil
	}, attribute.Int(tracing.AttrKeepVersions, keepVersions))
}

// OptimizeSyncSchedule runs Maintainer.OptimizeSyncSchedule as a recorded run.
func (r *Runner) OptimizeSyncSchedule(ctx context.Context) (*registry.Run, error) {
	return r.run(ctx, TaskOptimizeSync, func(ctx context.Context) (int64, error) {
		result, err := r.maintainer.OptimizeSyncSchedule(ctx)
		if err != nil {
			return 0, err
		}
		return result.Libraries, nil
	})
}

// run executes fn under the lock and records its outcome. A run skipped
// because the lock is held returns ErrLocked and is not written to history.
func (r *Runner) run(ctx context.Context, task string, fn func(ctx context.Context) (int64, error), attrs ...attribute.KeyValue) (*registry.Run, error) {
	run := &registry.Run{ID: r.newID(), Task: task}
	ctx = logging.WithTask(logging.WithRunID(ctx, run.ID), task)

	ctx, span := r.tracer.Start(ctx, tracing.SpanName(task),
		trace.WithAttributes(tracing.RunAttributes(run.ID, task)...),
		trace.WithAttributes(attrs...),
	)
	defer span.End()

	if r.lock != nil {
		if err := r.lock.Acquire(); err != nil {
			if errors.Is(err, ErrLocked) {
				r.logger.WarnContext(ctx, "maintenance run skipped, lock is held", "lock", r.lock.Path())
				r.recorder.RecordRun(task, StatusSkipped, 0)
				span.SetAttributes(attribute.Bool(tracing.AttrLockSkipped, true))
			} else {
				tracing.SetStatus(span, err)
			}
			return nil, err
		}
		defer func() {
			if err := r.lock.Release(); err != nil {
				r.logger.ErrorContext(ctx, "failed to release maintenance lock", "error", err)
			}
		}()
	}

	r.logger.InfoContext(ctx, "maintenance run started")

	run.StartedAt = r.maintainer.now().UTC()
	affected, runErr := fn(ctx)
	run.FinishedAt = r.maintainer.now().UTC()
	run.Affected = affected

	status := StatusSuccess
	if runErr != nil {
		status = StatusError
		run.Error = runErr.Error()
	}
	r.recorder.RecordRun(task, status, run.Duration())
	span.SetAttributes(tracing.AffectedAttribute(affected))
	tracing.SetStatus(span, runErr)

	// History is written outside the routine's transaction so failed runs
	// are recorded too.
	if err := r.store.RecordRun(ctx, run); err != nil {
		r.logger.ErrorContext(ctx, "failed to record maintenance run", "error", err)
	}

	if runErr != nil {
		r.logger.ErrorContext(ctx, "maintenance run failed",
			"duration", run.Duration(),
			"error", runErr,
		)
		return run, runErr
	}

	r.logger.InfoContext(ctx, "maintenance run completed",
		"duration", run.Duration(),
		"affected", run.Affected,
	)
	return run, nil
}
