package metrics

import (
	"time"

	"libregistry/janitor/pkg/config"

	"github.com/prometheus/client_golang/prometheus"
)

// Run statuses used as the status label of runs_total.
const (
	StatusSuccess = "success"
	StatusError   = "error"
	StatusSkipped = "skipped"
)

// Collector owns the Prometheus registry of a janitor process and the
// maintenance metrics registered in it.
//
// Collector implements maintenance.Observer, so it can be handed directly to
// a Maintainer, and maintenance.RunRecorder for the Runner.
type Collector struct {
	config   *config.MetricsConfig
	registry *prometheus.Registry

	maintenance *MaintenanceMetrics
}

// NewCollector creates a new metrics collector with the specified configuration
// and Prometheus registry. If registry is nil, a fresh registry is created.
//
// Example:
//
//	cfg := &config.MetricsConfig{
//		Enabled:   true,
//		Namespace: "libregistry",
//		Subsystem: "janitor",
//	}
//	collector := metrics.NewCollector(cfg, nil)
func NewCollector(cfg *config.MetricsConfig, registry *prometheus.Registry) *Collector {
	if registry == nil {
		registry = prometheus.NewRegistry()
	}

	if cfg.Namespace == "" {
		cfg.Namespace = "libregistry"
	}
	if cfg.Subsystem == "" {
		cfg.Subsystem = "janitor"
	}
	if len(cfg.RunDurationBuckets) == 0 {
		// Maintenance runs take from milliseconds to tens of minutes.
		cfg.RunDurationBuckets = []float64{0.01, 0.1, 0.5, 1, 5, 15, 60, 300, 1800}
	}

	return &Collector{
		config:      cfg,
		registry:    registry,
		maintenance: NewMaintenanceMetrics(cfg, registry),
	}
}

// RecordRun records the outcome of one maintenance run.
//
// Parameters:
//   - task: Task name (e.g., "prune_versions")
//   - status: StatusSuccess, StatusError or StatusSkipped
//   - duration: Wall time of the run; ignored for skipped runs
func (c *Collector) RecordRun(task, status string, duration time.Duration) {
	if !c.config.Enabled {
		return
	}

	c.maintenance.RecordRun(task, status, duration)
}

// ArtifactMissing counts an archive or examples directory that was already
// gone when maintenance tried to delete it.
func (c *Collector) ArtifactMissing(kind string) {
	if !c.config.Enabled {
		return
	}

	c.maintenance.missingArtifactsTotal.WithLabelValues(kind).Inc()
}

// LibraryDeleted counts one deleted library.
func (c *Collector) LibraryDeleted() {
	if !c.config.Enabled {
		return
	}

	c.maintenance.librariesDeletedTotal.Inc()
}

// VersionsDeleted counts n deleted versions.
func (c *Collector) VersionsDeleted(n int) {
	if !c.config.Enabled || n <= 0 {
		return
	}

	c.maintenance.versionsDeletedTotal.Add(float64(n))
}

// LibrariesScheduled sets the number of libraries covered by the most recent
// sync schedule.
func (c *Collector) LibrariesScheduled(n int) {
	if !c.config.Enabled {
		return
	}

	c.maintenance.librariesScheduled.Set(float64(n))
}

// Registry returns the Prometheus registry used by this collector.
func (c *Collector) Registry() *prometheus.Registry {
	return c.registry
}
