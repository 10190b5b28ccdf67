// Package metrics provides Prometheus metrics for janitor.
//
// # Overview
//
// A Collector owns a Prometheus registry and the maintenance metrics:
// run counts and durations per task, deleted libraries and versions,
// artifacts that were already missing, and the size of the last sync
// schedule.
//
// # Usage
//
//	collector := metrics.NewCollector(&cfg.Telemetry.Metrics, nil)
//
//	// Route routine counters to Prometheus
//	maintainer.SetObserver(collector)
//
//	// Record a finished run
//	collector.RecordRun("prune_versions", metrics.StatusSuccess, 3*time.Second)
//
//	// Expose /metrics
//	mux.Handle("/metrics", collector.Handler())
//
// When MetricsConfig.Enabled is false every recording method is a no-op.
package metrics
