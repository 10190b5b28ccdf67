// Package maintenance implements the periodic upkeep of the package registry.
//
// # Routines
//
// A Maintainer owns four routines, each running in a single transaction:
//
//   - RemoveArchive deletes the archive file of one library version.
//     A missing file is logged as a warning and is not an error.
//   - DeleteLibrary removes a library's examples directory, every version
//     archive and finally the library row, which cascades to its versions.
//   - PruneVersions keeps the newest N versions of every library and deletes
//     the rest (archive first, then row).
//   - OptimizeSyncSchedule spreads the libraries' next-sync timestamps evenly
//     over the preceding 24 hours.
//
// Filesystem deletions are not transactional. A crash between removing files
// and committing leaves rows whose files are already gone; rerunning the
// routine is safe because missing files and directories are tolerated.
//
// # Scheduling
//
// Runner wraps the routines with a run id, an exclusive file lock, run
// history and metrics. Scheduler drives the Runner from cron expressions:
//
//	sched := maintenance.NewScheduler(runner, &maintenance.ScheduleConfig{
//	    PruneSchedule:    "0 3 * * *",  // daily at 3 AM
//	    OptimizeSchedule: "30 3 * * 0", // weekly on Sunday
//	    KeepVersions:     10,
//	})
//	if err := sched.Start(ctx); err != nil {
//	    log.Fatal(err)
//	}
//	defer sched.Stop()
//
// Concurrent invocations against the same database are not coordinated by
// the routines themselves; Runner serializes them through RunLock.
package maintenance
