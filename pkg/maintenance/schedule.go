package maintenance

import (
	"context"
	"time"

	"libregistry/janitor/pkg/registry"
)

// SyncWindow is the period over which library synchronizations are spread.
const SyncWindow = 24 * time.Hour

// scheduleResolution is the precision at which synced timestamps are stored.
const scheduleResolution = time.Millisecond

// ScheduleResult summarizes an OptimizeSyncSchedule run.
type ScheduleResult struct {
	// Libraries is the number of libraries rescheduled.
	Libraries int64 `json:"libraries"`

	// Interval is the gap between consecutive synced timestamps.
	Interval time.Duration `json:"interval"`

	// First and Last are the earliest and latest assigned timestamps.
	First time.Time `json:"first"`
	Last  time.Time `json:"last"`
}

// OptimizeSyncSchedule rewrites every library's synced timestamp so that the
// libraries are evenly spread over the SyncWindow ending now. Libraries are
// visited in id order; the first one gets now-24h and each following one is
// one Interval later.
//
// With no libraries the call is a no-op.
func (m *Maintainer) OptimizeSyncSchedule(ctx context.Context) (*ScheduleResult, error) {
	var result ScheduleResult

	err := m.store.WithTx(ctx, func(tx registry.Tx) error {
		result = ScheduleResult{}

		count, err := tx.CountLibraries(ctx)
		if err != nil {
			return err
		}
		if count == 0 {
			return nil
		}

		libs, err := tx.ListLibraries(ctx)
		if err != nil {
			return err
		}

		dt := syncInterval(int64(len(libs)))
		next := m.now().UTC().Add(-SyncWindow).Truncate(scheduleResolution)

		result.Libraries = int64(len(libs))
		result.Interval = dt
		result.First = next

		for _, lib := range libs {
			if err := tx.SetSynced(ctx, lib.ID, next); err != nil {
				return err
			}
			result.Last = next
			next = next.Add(dt)
		}
		return nil
	})
	if err != nil {
		return nil, registry.NewMaintenanceError(TaskOptimizeSync, err)
	}

	if result.Libraries == 0 {
		m.logger.InfoContext(ctx, "no libraries to schedule")
		return &result, nil
	}

	m.observer.LibrariesScheduled(int(result.Libraries))
	m.logger.InfoContext(ctx, "sync schedule optimized",
		"libraries", result.Libraries,
		"interval", result.Interval,
		"first", result.First,
		"last", result.Last,
	)
	return &result, nil
}

// syncInterval divides the SyncWindow among n libraries at storage
// resolution. Rounding down keeps the last slot inside the window; the
// interval never drops below one resolution step so timestamps stay strictly
// increasing.
func syncInterval(n int64) time.Duration {
	if n <= 0 {
		return SyncWindow
	}
	dt := (SyncWindow / time.Duration(n)).Truncate(scheduleResolution)
	if dt < scheduleResolution {
		dt = scheduleResolution
	}
	return dt
}
