package maintenance

import (
	"context"
	"testing"
	"time"
)

func TestScheduler_Start(t *testing.T) {
	tests := []struct {
		name        string
		prune       string
		optimize    string
		wantRunning bool
		wantError   bool
	}{
		{
			name:        "both schedules",
			prune:       "0 3 * * *",
			optimize:    "30 3 * * 0",
			wantRunning: true,
		},
		{
			name:        "prune only",
			prune:       "0 * * * *",
			wantRunning: true,
		},
		{
			name:        "empty schedules - no error, not running",
			wantRunning: false,
		},
		{
			name:      "invalid prune schedule",
			prune:     "invalid cron",
			optimize:  "30 3 * * 0",
			wantError: true,
		},
		{
			name:      "invalid optimize schedule",
			prune:     "0 3 * * *",
			optimize:  "61 * * * *",
			wantError: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			scheduler := NewScheduler(NewRunner(f.m, nil), &ScheduleConfig{
				PruneSchedule:    tt.prune,
				OptimizeSchedule: tt.optimize,
				KeepVersions:     10,
			})

			ctx, cancel := context.WithCancel(context.Background())
			defer cancel()

			err := scheduler.Start(ctx)
			if (err != nil) != tt.wantError {
				t.Errorf("Start() error = %v, wantError %v", err, tt.wantError)
			}

			if scheduler.IsRunning() != tt.wantRunning {
				t.Errorf("IsRunning() = %v, want %v", scheduler.IsRunning(), tt.wantRunning)
			}

			if tt.wantRunning {
				if next := scheduler.NextRun(TaskPruneVersions); next == nil {
					t.Error("NextRun() returned nil for scheduled prune")
				}
			}
			if tt.optimize == "" && scheduler.NextRun(TaskOptimizeSync) != nil {
				t.Error("NextRun() should be nil for an unscheduled task")
			}

			scheduler.Stop()

			if scheduler.IsRunning() {
				t.Error("scheduler still running after Stop()")
			}
		})
	}
}

func TestScheduler_NextRun(t *testing.T) {
	f := newFixture(t)
	scheduler := NewScheduler(NewRunner(f.m, nil), &ScheduleConfig{
		PruneSchedule: "0 3 * * *",
		KeepVersions:  10,
	})

	if err := scheduler.Start(context.Background()); err != nil {
		t.Fatalf("Start() failed: %v", err)
	}
	defer scheduler.Stop()

	next := scheduler.NextRun(TaskPruneVersions)
	if next == nil {
		t.Fatal("NextRun() returned nil")
	}
	if next.Hour() != 3 || next.Minute() != 0 {
		t.Errorf("next run at %s, want 03:00", next.Format(time.Kitchen))
	}
	if !next.After(time.Now()) {
		t.Errorf("next run %s is in the past", next)
	}
}

func TestScheduler_GracefulShutdown(t *testing.T) {
	f := newFixture(t)
	scheduler := NewScheduler(NewRunner(f.m, nil), &ScheduleConfig{
		PruneSchedule: "0 3 * * *",
		KeepVersions:  10,
	})

	ctx, cancel := context.WithCancel(context.Background())
	if err := scheduler.Start(ctx); err != nil {
		t.Fatalf("Start() failed: %v", err)
	}

	cancel()

	deadline := time.Now().Add(2 * time.Second)
	for scheduler.IsRunning() && time.Now().Before(deadline) {
		time.Sleep(10 * time.Millisecond)
	}
	if scheduler.IsRunning() {
		t.Error("scheduler still running after context cancelled")
	}
}

func TestScheduler_SetKeepVersions(t *testing.T) {
	f := newFixture(t)
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	f.addLibrary(t, 1, true, base, base.Add(time.Hour), base.Add(2*time.Hour))

	scheduler := NewScheduler(NewRunner(f.m, nil), &ScheduleConfig{KeepVersions: 10})
	scheduler.SetKeepVersions(1)
	if got := scheduler.KeepVersions(); got != 1 {
		t.Fatalf("KeepVersions() = %d, want 1", got)
	}

	scheduler.runPrune(context.Background())

	if got := f.versionIDs(t, 1); len(got) != 1 {
		t.Errorf("versions after scheduled prune = %v, want 1", got)
	}
}
