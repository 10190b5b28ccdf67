package maintenance

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/robfig/cron/v3"
)

// ScheduleConfig configures the maintenance Scheduler.
type ScheduleConfig struct {
	// PruneSchedule is the cron expression for PruneVersions.
	// Empty disables scheduled pruning.
	PruneSchedule string

	// OptimizeSchedule is the cron expression for OptimizeSyncSchedule.
	// Empty disables scheduled sync optimization.
	OptimizeSchedule string

	// KeepVersions is the retention count passed to PruneVersions.
	KeepVersions int
}

// Scheduler runs maintenance tasks on cron schedules.
type Scheduler struct {
	runner  *Runner
	config  *ScheduleConfig
	keep    atomic.Int64
	cron    *cron.Cron
	entries map[string]cron.EntryID
	mu      sync.Mutex
	logger  *slog.Logger
	running bool
}

// NewScheduler creates a new maintenance scheduler.
func NewScheduler(runner *Runner, cfg *ScheduleConfig) *Scheduler {
	s := &Scheduler{
		runner:  runner,
		config:  cfg,
		cron:    cron.New(),
		entries: make(map[string]cron.EntryID),
		logger:  slog.Default().With("component", "maintenance.scheduler"),
	}
	s.keep.Store(int64(cfg.KeepVersions))
	return s
}

// Start registers the configured jobs and starts the cron scheduler.
//
// Common cron expressions:
//   - "0 3 * * *"    - Daily at 3 AM
//   - "0 */6 * * *"  - Every 6 hours
//   - "30 3 * * 0"   - Weekly on Sunday at 3:30 AM
//
// If both schedules are empty, the scheduler does nothing.
func (s *Scheduler) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.running {
		return errors.New("scheduler already running")
	}

	jobs := []struct {
		task     string
		schedule string
		run      func(ctx context.Context)
	}{
		{TaskPruneVersions, s.config.PruneSchedule, s.runPrune},
		{TaskOptimizeSync, s.config.OptimizeSchedule, s.runOptimize},
	}

	for _, job := range jobs {
		if job.schedule == "" {
			s.logger.Info("schedule not configured, skipping job", "task", job.task)
			continue
		}

		if _, err := cron.ParseStandard(job.schedule); err != nil {
			s.removeEntries()
			return fmt.Errorf("invalid cron schedule %q for %s: %w", job.schedule, job.task, err)
		}

		run := job.run
		id, err := s.cron.AddFunc(job.schedule, func() { run(ctx) })
		if err != nil {
			s.removeEntries()
			return fmt.Errorf("failed to schedule %s: %w", job.task, err)
		}
		s.entries[job.task] = id
	}

	if len(s.entries) == 0 {
		s.logger.Info("no maintenance schedules configured, scheduler idle")
		return nil
	}

	s.cron.Start()
	s.running = true

	s.logger.Info("maintenance scheduler started",
		"prune_schedule", s.config.PruneSchedule,
		"optimize_schedule", s.config.OptimizeSchedule,
		"keep_versions", s.keep.Load(),
	)

	go func() {
		<-ctx.Done()
		s.Stop()
	}()

	return nil
}

func (s *Scheduler) removeEntries() {
	for task, id := range s.entries {
		s.cron.Remove(id)
		delete(s.entries, task)
	}
}

// SetKeepVersions changes the retention count used by later prune runs.
func (s *Scheduler) SetKeepVersions(n int) {
	old := s.keep.Swap(int64(n))
	if old != int64(n) {
		s.logger.Info("keep versions updated", "old", old, "new", n)
	}
}

// KeepVersions returns the retention count used by the next prune run.
func (s *Scheduler) KeepVersions() int {
	return int(s.keep.Load())
}

func (s *Scheduler) runPrune(ctx context.Context) {
	s.logger.Info("starting scheduled version pruning")

	// The runner logs outcomes; only lock contention is worth repeating.
	if _, err := s.runner.PruneVersions(ctx, s.KeepVersions()); errors.Is(err, ErrLocked) {
		s.logger.Debug("scheduled pruning skipped")
	}
}

func (s *Scheduler) runOptimize(ctx context.Context) {
	s.logger.Info("starting scheduled sync optimization")

	if _, err := s.runner.OptimizeSyncSchedule(ctx); errors.Is(err, ErrLocked) {
		s.logger.Debug("scheduled sync optimization skipped")
	}
}

// Stop stops the scheduler and waits for any running jobs to complete.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.cron != nil && s.running {
		ctx := s.cron.Stop()
		<-ctx.Done() // Wait for running jobs to finish
		s.running = false
		s.logger.Info("maintenance scheduler stopped")
	}
}

// IsRunning returns true if the scheduler is running.
func (s *Scheduler) IsRunning() bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.running
}

// NextRun returns the next scheduled run of task, or nil if the task is not
// scheduled.
func (s *Scheduler) NextRun(task string) *time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()

	id, ok := s.entries[task]
	if !ok || !s.running {
		return nil
	}

	next := s.cron.Entry(id).Next
	if next.IsZero() {
		return nil
	}
	return &next
}
