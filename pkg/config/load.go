package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// EnvPrefix prefixes every environment override.
const EnvPrefix = "JANITOR_"

// LoadConfig loads configuration from a YAML file at the specified path.
// It applies default values, validates the configuration, and returns any errors.
// The configuration is not modified by environment variables; use
// LoadConfigWithEnvOverrides for that functionality.
func LoadConfig(path string) (*Config, error) {
	cfg, err := load(path)
	if err != nil {
		return nil, err
	}

	if err := Validate(cfg); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}
	return cfg, nil
}

// LoadConfigWithEnvOverrides loads configuration from a YAML file and applies
// environment variable overrides. Environment variables follow the naming
// convention JANITOR_SECTION_FIELD (e.g., JANITOR_MAINTENANCE_KEEP_VERSIONS)
// and always take precedence over the file.
//
// An empty path skips the file; the configuration is then built from defaults
// and the environment.
//
// The loading sequence is:
// 1. Load YAML from file
// 2. Apply default values
// 3. Apply environment variable overrides
// 4. Validate final configuration
func LoadConfigWithEnvOverrides(path string) (*Config, error) {
	cfg, err := load(path)
	if err != nil {
		return nil, err
	}

	if err := applyEnvOverrides(cfg); err != nil {
		return nil, err
	}

	if err := Validate(cfg); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}
	return cfg, nil
}

func load(path string) (*Config, error) {
	var cfg Config
	applyPresetDefaults(&cfg)

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read configuration file %q: %w", path, err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("failed to parse configuration file %q: %w", path, err)
		}
	}

	ApplyDefaults(&cfg)
	return &cfg, nil
}

// applyEnvOverrides applies JANITOR_* environment variables to cfg.
// A value that cannot be parsed is reported rather than silently ignored.
func applyEnvOverrides(cfg *Config) error {
	var errs []error

	str := func(name string, dst *string) {
		if val, ok := os.LookupEnv(EnvPrefix + name); ok && val != "" {
			*dst = val
		}
	}
	integer := func(name string, dst *int) {
		if val, ok := os.LookupEnv(EnvPrefix + name); ok && val != "" {
			n, err := strconv.Atoi(val)
			if err != nil {
				errs = append(errs, fmt.Errorf("%s%s: %w", EnvPrefix, name, err))
				return
			}
			*dst = n
		}
	}
	boolean := func(name string, dst *bool) {
		if val, ok := os.LookupEnv(EnvPrefix + name); ok && val != "" {
			b, err := strconv.ParseBool(val)
			if err != nil {
				errs = append(errs, fmt.Errorf("%s%s: %w", EnvPrefix, name, err))
				return
			}
			*dst = b
		}
	}
	duration := func(name string, dst *time.Duration) {
		if val, ok := os.LookupEnv(EnvPrefix + name); ok && val != "" {
			d, err := time.ParseDuration(val)
			if err != nil {
				errs = append(errs, fmt.Errorf("%s%s: %w", EnvPrefix, name, err))
				return
			}
			*dst = d
		}
	}
	float := func(name string, dst *float64) {
		if val, ok := os.LookupEnv(EnvPrefix + name); ok && val != "" {
			f, err := strconv.ParseFloat(val, 64)
			if err != nil {
				errs = append(errs, fmt.Errorf("%s%s: %w", EnvPrefix, name, err))
				return
			}
			*dst = f
		}
	}

	// Database overrides
	str("DATABASE_DRIVER", &cfg.Database.Driver)
	str("DATABASE_PATH", &cfg.Database.Path)
	boolean("DATABASE_WAL_MODE", &cfg.Database.WALMode)
	duration("DATABASE_BUSY_TIMEOUT", &cfg.Database.BusyTimeout)

	// Storage overrides
	str("STORAGE_ROOT", &cfg.Storage.Root)

	// Maintenance overrides
	integer("MAINTENANCE_KEEP_VERSIONS", &cfg.Maintenance.KeepVersions)
	str("MAINTENANCE_PRUNE_SCHEDULE", &cfg.Maintenance.PruneSchedule)
	str("MAINTENANCE_OPTIMIZE_SCHEDULE", &cfg.Maintenance.OptimizeSchedule)
	str("MAINTENANCE_LOCK_PATH", &cfg.Maintenance.LockPath)
	integer("MAINTENANCE_HISTORY_LIMIT", &cfg.Maintenance.HistoryLimit)
	boolean("MAINTENANCE_WATCH_CONFIG", &cfg.Maintenance.WatchConfig)

	// Server overrides
	str("SERVER_LISTEN_ADDRESS", &cfg.Server.ListenAddress)
	duration("SERVER_SHUTDOWN_TIMEOUT", &cfg.Server.ShutdownTimeout)

	// Telemetry overrides
	str("TELEMETRY_LOGGING_LEVEL", &cfg.Telemetry.Logging.Level)
	str("TELEMETRY_LOGGING_FORMAT", &cfg.Telemetry.Logging.Format)
	boolean("TELEMETRY_METRICS_ENABLED", &cfg.Telemetry.Metrics.Enabled)
	boolean("TELEMETRY_TRACING_ENABLED", &cfg.Telemetry.Tracing.Enabled)
	str("TELEMETRY_TRACING_ENDPOINT", &cfg.Telemetry.Tracing.Endpoint)
	str("TELEMETRY_TRACING_SAMPLER", &cfg.Telemetry.Tracing.Sampler)
	float("TELEMETRY_TRACING_SAMPLE_RATIO", &cfg.Telemetry.Tracing.SampleRatio)
	boolean("TELEMETRY_TRACING_OTLP_INSECURE", &cfg.Telemetry.Tracing.OTLP.Insecure)
	boolean("TELEMETRY_HEALTH_ENABLED", &cfg.Telemetry.Health.Enabled)

	if len(errs) > 0 {
		return fmt.Errorf("invalid environment override: %w", errors.Join(errs...))
	}
	return nil
}
