package maintenance

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"testing"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"

	"libregistry/janitor/pkg/registry"
)

type recordedRun struct {
	task   string
	status string
}

type fakeRecorder struct {
	runs []recordedRun
}

func (f *fakeRecorder) RecordRun(task, status string, _ time.Duration) {
	f.runs = append(f.runs, recordedRun{task, status})
}

func newTestRunner(t *testing.T, f *fixture) (*Runner, *fakeRecorder, *RunLock) {
	t.Helper()

	lock, err := NewRunLock(filepath.Join(t.TempDir(), "janitor.lock"))
	if err != nil {
		t.Fatalf("NewRunLock() failed: %v", err)
	}

	seq := 0
	rec := &fakeRecorder{}
	r := NewRunner(f.m, lock)
	r.SetRecorder(rec)
	r.newID = func() string {
		seq++
		return fmt.Sprintf("run-%d", seq)
	}
	return r, rec, lock
}

func TestRunner_PruneVersions(t *testing.T) {
	f := newFixture(t)
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	f.addLibrary(t, 5, true, base, base.Add(time.Hour), base.Add(2*time.Hour))
	r, rec, _ := newTestRunner(t, f)

	run, err := r.PruneVersions(context.Background(), 1)
	if err != nil {
		t.Fatalf("PruneVersions() failed: %v", err)
	}
	if run.ID != "run-1" || run.Task != TaskPruneVersions || run.Affected != 2 {
		t.Errorf("run = %+v, want run-1 prune_versions affected=2", run)
	}
	if !run.Succeeded() {
		t.Errorf("run should succeed, error %q", run.Error)
	}

	history, err := f.store.ListRuns(context.Background(), 10)
	if err != nil {
		t.Fatalf("ListRuns() failed: %v", err)
	}
	if len(history) != 1 || history[0].ID != "run-1" {
		t.Errorf("history = %+v, want run-1", history)
	}
	if len(rec.runs) != 1 || rec.runs[0] != (recordedRun{TaskPruneVersions, StatusSuccess}) {
		t.Errorf("recorded = %+v", rec.runs)
	}
}

func TestRunner_FailedRunIsRecorded(t *testing.T) {
	f := newFixture(t)
	r, rec, _ := newTestRunner(t, f)

	run, err := r.DeleteLibrary(context.Background(), 404)
	if !errors.Is(err, registry.ErrNotFound) {
		t.Fatalf("DeleteLibrary() error = %v, want ErrNotFound", err)
	}
	if run == nil || run.Succeeded() {
		t.Fatalf("run = %+v, want failed run", run)
	}

	history, _ := f.store.ListRuns(context.Background(), 10)
	if len(history) != 1 || history[0].Error == "" {
		t.Errorf("history = %+v, want one failed run", history)
	}
	if len(rec.runs) != 1 || rec.runs[0].status != StatusError {
		t.Errorf("recorded = %+v, want one error", rec.runs)
	}
}

func TestRunner_SkipsWhenLocked(t *testing.T) {
	f := newFixture(t)
	f.addLibrary(t, 1, false)
	r, rec, lock := newTestRunner(t, f)

	other, err := NewRunLock(lock.Path())
	if err != nil {
		t.Fatalf("NewRunLock() failed: %v", err)
	}
	if err := other.Acquire(); err != nil {
		t.Fatalf("Acquire() failed: %v", err)
	}
	defer other.Release()

	if _, err := r.OptimizeSyncSchedule(context.Background()); !errors.Is(err, ErrLocked) {
		t.Fatalf("OptimizeSyncSchedule() error = %v, want ErrLocked", err)
	}

	history, _ := f.store.ListRuns(context.Background(), 10)
	if len(history) != 0 {
		t.Errorf("skipped run written to history: %+v", history)
	}
	if len(rec.runs) != 1 || rec.runs[0].status != StatusSkipped {
		t.Errorf("recorded = %+v, want one skipped", rec.runs)
	}
}

func TestRunner_ReleasesLock(t *testing.T) {
	f := newFixture(t)
	f.addLibrary(t, 1, false)
	r, _, _ := newTestRunner(t, f)

	ctx := context.Background()
	for i := 0; i < 2; i++ {
		if _, err := r.OptimizeSyncSchedule(ctx); err != nil {
			t.Fatalf("run %d failed: %v", i, err)
		}
	}
}

func TestRunner_Spans(t *testing.T) {
	f := newFixture(t)
	f.addLibrary(t, 1, false)
	r, _, _ := newTestRunner(t, f)

	spans := tracetest.NewSpanRecorder()
	r.SetTracer(sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(spans)).Tracer("test"))

	ctx := context.Background()
	if _, err := r.OptimizeSyncSchedule(ctx); err != nil {
		t.Fatalf("OptimizeSyncSchedule() failed: %v", err)
	}
	_, _ = r.DeleteLibrary(ctx, 404)

	ended := spans.Ended()
	if len(ended) != 2 {
		t.Fatalf("ended spans = %d, want 2", len(ended))
	}
	if ended[0].Name() != "maintenance.optimize_sync" || ended[0].Status().Code != codes.Ok {
		t.Errorf("first span = %s %v", ended[0].Name(), ended[0].Status())
	}
	if ended[1].Name() != "maintenance.delete_library" || ended[1].Status().Code != codes.Error {
		t.Errorf("second span = %s %v", ended[1].Name(), ended[1].Status())
	}

	found := false
	for _, kv := range ended[0].Attributes() {
		if kv.Key == attribute.Key("janitor.run_id") && kv.Value.AsString() == "run-1" {
			found = true
		}
	}
	if !found {
		t.Errorf("run id attribute missing: %v", ended[0].Attributes())
	}
}
