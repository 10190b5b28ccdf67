package config

import "time"

// Default values for configuration fields.
const (
	// Database defaults
	DefaultDatabaseDriver      = "sqlite"
	DefaultDatabasePath        = "data/registry.db"
	DefaultDatabaseWALMode     = true
	DefaultDatabaseBusyTimeout = 5 * time.Second

	// Storage defaults
	DefaultStorageRoot = "data/storage"

	// Maintenance defaults
	DefaultKeepVersions     = 10
	DefaultPruneSchedule    = "0 3 * * *"
	DefaultOptimizeSchedule = "30 3 * * 0"
	DefaultLockPath         = "data/janitor.lock"
	DefaultHistoryLimit     = 20
	DefaultWatchConfig      = true

	// Server defaults
	DefaultListenAddress   = "127.0.0.1:9310"
	DefaultReadTimeout     = 10 * time.Second
	DefaultWriteTimeout    = 10 * time.Second
	DefaultShutdownTimeout = 30 * time.Second

	// Logging defaults
	DefaultLogLevel  = "info"
	DefaultLogFormat = "json"

	// Metrics defaults
	DefaultMetricsEnabled   = true
	DefaultMetricsPath      = "/metrics"
	DefaultMetricsNamespace = "libregistry"
	DefaultMetricsSubsystem = "janitor"

	// Tracing defaults
	DefaultTracingEnabled     = false
	DefaultTracingSampler     = "always"
	DefaultTracingExporter    = "otlp"
	DefaultTracingEndpoint    = "localhost:4317"
	DefaultTracingServiceName = "janitor"
	DefaultOTLPTimeout        = 10 * time.Second

	// Health defaults
	DefaultHealthEnabled      = true
	DefaultLivenessPath       = "/health"
	DefaultReadinessPath      = "/ready"
	DefaultHealthCheckTimeout = 5 * time.Second
)

// applyPresetDefaults sets fields whose zero value is meaningful: booleans,
// the cron schedules, where an empty expression disables the job, and the
// retention count, where 0 is rejected by Validate. It runs before the YAML
// file is decoded so that an explicit false, "" or 0 reaches validation.
func applyPresetDefaults(cfg *Config) {
	cfg.Maintenance.KeepVersions = DefaultKeepVersions
	cfg.Maintenance.PruneSchedule = DefaultPruneSchedule
	cfg.Maintenance.OptimizeSchedule = DefaultOptimizeSchedule
	cfg.Database.WALMode = DefaultDatabaseWALMode
	cfg.Maintenance.WatchConfig = DefaultWatchConfig
	cfg.Telemetry.Metrics.Enabled = DefaultMetricsEnabled
	cfg.Telemetry.Tracing.Enabled = DefaultTracingEnabled
	cfg.Telemetry.Health.Enabled = DefaultHealthEnabled
}

// ApplyDefaults fills every unset (zero-valued) field with its default.
// Booleans, schedules and keep_versions cannot be told apart from an explicit
// zero value and are left alone; Default returns a Config with those set as
// well.
func ApplyDefaults(cfg *Config) {
	// Database
	if cfg.Database.Driver == "" {
		cfg.Database.Driver = DefaultDatabaseDriver
	}
	if cfg.Database.Path == "" && cfg.Database.Driver != "memory" {
		cfg.Database.Path = DefaultDatabasePath
	}
	if cfg.Database.BusyTimeout == 0 {
		cfg.Database.BusyTimeout = DefaultDatabaseBusyTimeout
	}

	// Storage
	if cfg.Storage.Root == "" {
		cfg.Storage.Root = DefaultStorageRoot
	}

	// Maintenance
	if cfg.Maintenance.LockPath == "" {
		cfg.Maintenance.LockPath = DefaultLockPath
	}
	if cfg.Maintenance.HistoryLimit == 0 {
		cfg.Maintenance.HistoryLimit = DefaultHistoryLimit
	}

	// Server
	if cfg.Server.ListenAddress == "" {
		cfg.Server.ListenAddress = DefaultListenAddress
	}
	if cfg.Server.ReadTimeout == 0 {
		cfg.Server.ReadTimeout = DefaultReadTimeout
	}
	if cfg.Server.WriteTimeout == 0 {
		cfg.Server.WriteTimeout = DefaultWriteTimeout
	}
	if cfg.Server.ShutdownTimeout == 0 {
		cfg.Server.ShutdownTimeout = DefaultShutdownTimeout
	}

	// Logging
	if cfg.Telemetry.Logging.Level == "" {
		cfg.Telemetry.Logging.Level = DefaultLogLevel
	}
	if cfg.Telemetry.Logging.Format == "" {
		cfg.Telemetry.Logging.Format = DefaultLogFormat
	}

	// Metrics
	if cfg.Telemetry.Metrics.Path == "" {
		cfg.Telemetry.Metrics.Path = DefaultMetricsPath
	}
	if cfg.Telemetry.Metrics.Namespace == "" {
		cfg.Telemetry.Metrics.Namespace = DefaultMetricsNamespace
	}
	if cfg.Telemetry.Metrics.Subsystem == "" {
		cfg.Telemetry.Metrics.Subsystem = DefaultMetricsSubsystem
	}

	// Tracing
	if cfg.Telemetry.Tracing.Sampler == "" {
		cfg.Telemetry.Tracing.Sampler = DefaultTracingSampler
	}
	if cfg.Telemetry.Tracing.Exporter == "" {
		cfg.Telemetry.Tracing.Exporter = DefaultTracingExporter
	}
	if cfg.Telemetry.Tracing.Endpoint == "" {
		cfg.Telemetry.Tracing.Endpoint = DefaultTracingEndpoint
	}
	if cfg.Telemetry.Tracing.ServiceName == "" {
		cfg.Telemetry.Tracing.ServiceName = DefaultTracingServiceName
	}
	if cfg.Telemetry.Tracing.OTLP.Timeout == 0 {
		cfg.Telemetry.Tracing.OTLP.Timeout = DefaultOTLPTimeout
	}

	// Health
	if cfg.Telemetry.Health.LivenessPath == "" {
		cfg.Telemetry.Health.LivenessPath = DefaultLivenessPath
	}
	if cfg.Telemetry.Health.ReadinessPath == "" {
		cfg.Telemetry.Health.ReadinessPath = DefaultReadinessPath
	}
	if cfg.Telemetry.Health.CheckTimeout == 0 {
		cfg.Telemetry.Health.CheckTimeout = DefaultHealthCheckTimeout
	}
}

// Default returns a complete configuration built from default values only.
func Default() *Config {
	var cfg Config
	applyPresetDefaults(&cfg)
	ApplyDefaults(&cfg)
	return &cfg
}
