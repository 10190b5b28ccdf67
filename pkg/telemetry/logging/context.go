package logging

import (
	"context"
	"log/slog"
)

// Context keys for common log fields.
type contextKey string

const (
	// RunIDKey is the context key for maintenance run IDs.
	RunIDKey contextKey = "run_id"

	// TaskKey is the context key for maintenance task names.
	TaskKey contextKey = "task"
)

// WithRunID adds a run ID to the context.
func WithRunID(ctx context.Context, runID string) context.Context {
	return context.WithValue(ctx, RunIDKey, runID)
}

// GetRunID retrieves the run ID from the context.
func GetRunID(ctx context.Context) string {
	if runID, ok := ctx.Value(RunIDKey).(string); ok {
		return runID
	}
	return ""
}

// WithTask adds a task name to the context.
func WithTask(ctx context.Context, task string) context.Context {
	return context.WithValue(ctx, TaskKey, task)
}

// GetTask retrieves the task name from the context.
func GetTask(ctx context.Context) string {
	if task, ok := ctx.Value(TaskKey).(string); ok {
		return task
	}
	return ""
}

// extractContextFields extracts common fields from context for logging.
func extractContextFields(ctx context.Context) []slog.Attr {
	if ctx == nil {
		return nil
	}

	var fields []slog.Attr
	if runID := GetRunID(ctx); runID != "" {
		fields = append(fields, slog.String(string(RunIDKey), runID))
	}
	if task := GetTask(ctx); task != "" {
		fields = append(fields, slog.String(string(TaskKey), task))
	}
	return fields
}

// contextHandler adds context fields to every record passed to the
// *Context logging methods.
type contextHandler struct {
	next slog.Handler
}

func (h *contextHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return h.next.Enabled(ctx, level)
}

func (h *contextHandler) Handle(ctx context.Context, r slog.Record) error {
	if fields := extractContextFields(ctx); len(fields) > 0 {
		r = r.Clone()
		r.AddAttrs(fields...)
	}
	return h.next.Handle(ctx, r)
}

func (h *contextHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &contextHandler{next: h.next.WithAttrs(attrs)}
}

func (h *contextHandler) WithGroup(name string) slog.Handler {
	return &contextHandler{next: h.next.WithGroup(name)}
}
