package metrics

import (
	"time"

	"libregistry/janitor/pkg/config"

	"github.com/prometheus/client_golang/prometheus"
)

// MaintenanceMetrics tracks maintenance run metrics.
//
// Metrics:
//   - <ns>_<sub>_runs_total: Runs by task and status
//   - <ns>_<sub>_run_duration_seconds: Run duration by task
//   - <ns>_<sub>_last_success_timestamp_seconds: Unix time of the last successful run by task
//   - <ns>_<sub>_versions_deleted_total: Versions deleted by pruning or library deletion
//   - <ns>_<sub>_libraries_deleted_total: Libraries deleted
//   - <ns>_<sub>_missing_artifacts_total: Artifacts already gone at deletion time, by kind
//   - <ns>_<sub>_libraries_scheduled: Libraries covered by the last sync schedule
type MaintenanceMetrics struct {
	runsTotal   *prometheus.CounterVec
	runDuration *prometheus.HistogramVec
	lastSuccess *prometheus.GaugeVec

	versionsDeletedTotal  prometheus.Counter
	librariesDeletedTotal prometheus.Counter
	missingArtifactsTotal *prometheus.CounterVec
	librariesScheduled    prometheus.Gauge
}

// NewMaintenanceMetrics creates and registers maintenance metrics with the provided registry.
func NewMaintenanceMetrics(cfg *config.MetricsConfig, registry *prometheus.Registry) *MaintenanceMetrics {
	mm := &MaintenanceMetrics{
		runsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "runs_total",
				Help:      "Total number of maintenance runs",
			},
			[]string{"task", "status"},
		),

		runDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "run_duration_seconds",
				Help:      "Maintenance run duration in seconds",
				Buckets:   cfg.RunDurationBuckets,
			},
			[]string{"task"},
		),

		lastSuccess: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "last_success_timestamp_seconds",
				Help:      "Unix time of the last successful maintenance run",
			},
			[]string{"task"},
		),

		versionsDeletedTotal: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "versions_deleted_total",
				Help:      "Total number of library versions deleted",
			},
		),

		librariesDeletedTotal: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "libraries_deleted_total",
				Help:      "Total number of libraries deleted",
			},
		),

		missingArtifactsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "missing_artifacts_total",
				Help:      "Total number of artifacts already missing when deleted",
			},
			[]string{"kind"},
		),

		librariesScheduled: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "libraries_scheduled",
				Help:      "Number of libraries covered by the last sync schedule",
			},
		),
	}

	registry.MustRegister(
		mm.runsTotal,
		mm.runDuration,
		mm.lastSuccess,
		mm.versionsDeletedTotal,
		mm.librariesDeletedTotal,
		mm.missingArtifactsTotal,
		mm.librariesScheduled,
	)

	return mm
}

// RecordRun records a finished or skipped run.
func (mm *MaintenanceMetrics) RecordRun(task, status string, duration time.Duration) {
	mm.runsTotal.WithLabelValues(task, status).Inc()

	if status == StatusSkipped {
		return
	}
	mm.runDuration.WithLabelValues(task).Observe(duration.Seconds())

	if status == StatusSuccess {
		mm.lastSuccess.WithLabelValues(task).SetToCurrentTime()
	}
}
