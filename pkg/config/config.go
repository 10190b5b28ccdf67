package config

import "time"

// Config is the root configuration structure for janitor.
// It contains all configuration sections for the maintenance daemon and CLI.
type Config struct {
	// Database selects and configures the registry database.
	Database DatabaseConfig `yaml:"database"`

	// Storage locates the artifact tree (archives and examples).
	Storage StorageConfig `yaml:"storage"`

	// Maintenance configures the maintenance routines and their schedules.
	Maintenance MaintenanceConfig `yaml:"maintenance"`

	// Server configures the HTTP listener serving metrics and health.
	Server ServerConfig `yaml:"server"`

	// Telemetry contains logging, metrics, tracing and health settings.
	Telemetry TelemetryConfig `yaml:"telemetry"`
}

// DatabaseConfig contains registry database configuration.
type DatabaseConfig struct {
	// Driver selects the backend.
	// Options: "sqlite" (pure Go), "sqlite3" (cgo), "memory"
	// Default: "sqlite"
	Driver string `yaml:"driver"`

	// Path is the SQLite database file. Ignored by the memory driver.
	// Default: "data/registry.db"
	Path string `yaml:"path"`

	// WALMode enables SQLite write-ahead logging.
	// Default: true
	WALMode bool `yaml:"wal_mode"`

	// BusyTimeout is how long SQLite waits on a locked database.
	// Default: 5s
	BusyTimeout time.Duration `yaml:"busy_timeout"`
}

// StorageConfig contains artifact storage configuration.
type StorageConfig struct {
	// Root is the download root holding libarch/ and libexample/.
	// Default: "data/storage"
	Root string `yaml:"root"`
}

// MaintenanceConfig contains maintenance routine configuration.
type MaintenanceConfig struct {
	// KeepVersions is how many of the newest versions each library keeps.
	// Default: 10
	KeepVersions int `yaml:"keep_versions"`

	// PruneSchedule is the cron expression for version pruning.
	// Empty disables scheduled pruning.
	// Default: "0 3 * * *"
	PruneSchedule string `yaml:"prune_schedule"`

	// OptimizeSchedule is the cron expression for sync schedule optimization.
	// Empty disables scheduled optimization.
	// Default: "30 3 * * 0"
	OptimizeSchedule string `yaml:"optimize_schedule"`

	// LockPath is the file lock shared by all janitor processes.
	// Default: "data/janitor.lock"
	LockPath string `yaml:"lock_path"`

	// HistoryLimit is the default number of runs listed by "janitor runs".
	// Default: 20
	HistoryLimit int `yaml:"history_limit"`

	// WatchConfig reloads the configuration file when it changes.
	// Default: true
	WatchConfig bool `yaml:"watch_config"`
}

// ServerConfig contains the HTTP server configuration of "janitor run".
type ServerConfig struct {
	// ListenAddress is the address for the metrics and health endpoints.
	// Default: "127.0.0.1:9310"
	ListenAddress string `yaml:"listen_address"`

	// ReadTimeout bounds reading a request.
	// Default: 10s
	ReadTimeout time.Duration `yaml:"read_timeout"`

	// WriteTimeout bounds writing a response.
	// Default: 10s
	WriteTimeout time.Duration `yaml:"write_timeout"`

	// ShutdownTimeout bounds graceful shutdown, including running jobs.
	// Default: 30s
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
}

// TelemetryConfig contains observability configuration.
type TelemetryConfig struct {
	// Logging contains logging configuration.
	Logging LoggingConfig `yaml:"logging"`

	// Metrics contains metrics collection configuration.
	Metrics MetricsConfig `yaml:"metrics"`

	// Tracing contains distributed tracing configuration.
	Tracing TracingConfig `yaml:"tracing"`

	// Health contains health check configuration.
	Health HealthConfig `yaml:"health"`
}

// LoggingConfig contains logging configuration.
type LoggingConfig struct {
	// Level is the minimum log level to emit.
	// Options: "debug", "info", "warn", "error"
	// Default: "info"
	Level string `yaml:"level"`

	// Format controls the log output format.
	// Options: "json", "text", "console"
	// Default: "json"
	Format string `yaml:"format"`

	// AddSource includes file and line number in log entries.
	// Default: false
	AddSource bool `yaml:"add_source"`
}

// MetricsConfig contains metrics collection configuration.
type MetricsConfig struct {
	// Enabled controls whether metrics collection is active.
	// Default: true
	Enabled bool `yaml:"enabled"`

	// Path is the HTTP path for the Prometheus metrics endpoint.
	// Default: "/metrics"
	Path string `yaml:"path"`

	// Namespace is the metric name prefix.
	// Default: "libregistry"
	Namespace string `yaml:"namespace"`

	// Subsystem is the metric subsystem name.
	// Default: "janitor"
	Subsystem string `yaml:"subsystem"`

	// RunDurationBuckets defines histogram buckets for run duration (seconds).
	RunDurationBuckets []float64 `yaml:"run_duration_buckets"`
}

// TracingConfig contains distributed tracing configuration.
type TracingConfig struct {
	// Enabled controls whether distributed tracing is active.
	// Default: false
	Enabled bool `yaml:"enabled"`

	// Sampler determines the sampling strategy.
	// Options: "always", "never", "ratio"
	// Default: "always"
	Sampler string `yaml:"sampler"`

	// SampleRatio is the fraction of runs to sample (0.0 to 1.0).
	// Only used when Sampler is "ratio".
	SampleRatio float64 `yaml:"sample_ratio"`

	// Exporter determines the trace exporter to use.
	// Options: "otlp"
	// Default: "otlp"
	Exporter string `yaml:"exporter"`

	// Endpoint is the collector address (host:port).
	// Default: "localhost:4317"
	Endpoint string `yaml:"endpoint"`

	// ServiceName is reported as service.name.
	// Default: "janitor"
	ServiceName string `yaml:"service_name"`

	// OTLP contains OTLP exporter options.
	OTLP OTLPConfig `yaml:"otlp"`
}

// OTLPConfig contains OTLP exporter configuration.
type OTLPConfig struct {
	// Insecure disables TLS towards the collector.
	Insecure bool `yaml:"insecure"`

	// Timeout bounds a single export.
	// Default: 10s
	Timeout time.Duration `yaml:"timeout"`
}

// HealthConfig contains health check configuration.
type HealthConfig struct {
	// Enabled controls whether health endpoints are served.
	// Default: true
	Enabled bool `yaml:"enabled"`

	// LivenessPath is the HTTP path for the liveness probe.
	// Default: "/health"
	LivenessPath string `yaml:"liveness_path"`

	// ReadinessPath is the HTTP path for the readiness probe.
	// Default: "/ready"
	ReadinessPath string `yaml:"readiness_path"`

	// CheckTimeout bounds each readiness check.
	// Default: 5s
	CheckTimeout time.Duration `yaml:"check_timeout"`
}
