package config

import (
	"fmt"
	"net"
	"strings"

	"github.com/robfig/cron/v3"

	"libregistry/janitor/pkg/telemetry/logging"
)

// FieldError represents a validation error for a specific configuration field.
type FieldError struct {
	// Field is the dotted path to the configuration field (e.g., "maintenance.keep_versions").
	Field string

	// Message is a human-readable error message.
	Message string
}

// Error returns the error message for this field error.
func (e FieldError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ValidationError represents one or more validation errors in a configuration.
type ValidationError struct {
	// Errors contains all validation errors found in the configuration.
	Errors []FieldError
}

// Error returns a formatted string containing all validation errors.
func (e ValidationError) Error() string {
	if len(e.Errors) == 0 {
		return "configuration validation failed"
	}
	if len(e.Errors) == 1 {
		return fmt.Sprintf("configuration validation failed: %s", e.Errors[0].Error())
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("configuration validation failed with %d errors:\n", len(e.Errors)))
	for _, err := range e.Errors {
		sb.WriteString(fmt.Sprintf("  - %s\n", err.Error()))
	}
	return sb.String()
}

// Validate validates the entire configuration and returns a ValidationError
// if any validation rules fail. All validation errors are collected and
// returned together.
func Validate(cfg *Config) error {
	var errs []FieldError

	errs = append(errs, validateDatabase(&cfg.Database)...)
	errs = append(errs, validateStorage(&cfg.Storage)...)
	errs = append(errs, validateMaintenance(&cfg.Maintenance)...)
	errs = append(errs, validateServer(&cfg.Server, &cfg.Telemetry)...)
	errs = append(errs, validateTelemetry(&cfg.Telemetry)...)

	if len(errs) > 0 {
		return ValidationError{Errors: errs}
	}
	return nil
}

func validateDatabase(cfg *DatabaseConfig) []FieldError {
	var errs []FieldError

	switch cfg.Driver {
	case "sqlite", "sqlite3":
		if cfg.Path == "" {
			errs = append(errs, FieldError{
				Field:   "database.path",
				Message: "path is required for sqlite drivers",
			})
		}
	case "memory":
	default:
		errs = append(errs, FieldError{
			Field:   "database.driver",
			Message: fmt.Sprintf("invalid driver %q (must be: sqlite, sqlite3, memory)", cfg.Driver),
		})
	}

	if cfg.BusyTimeout < 0 {
		errs = append(errs, FieldError{
			Field:   "database.busy_timeout",
			Message: "busy timeout must be non-negative",
		})
	}

	return errs
}

func validateStorage(cfg *StorageConfig) []FieldError {
	if cfg.Root == "" {
		return []FieldError{{Field: "storage.root", Message: "storage root is required"}}
	}
	return nil
}

func validateMaintenance(cfg *MaintenanceConfig) []FieldError {
	var errs []FieldError

	if cfg.KeepVersions < 1 {
		errs = append(errs, FieldError{
			Field:   "maintenance.keep_versions",
			Message: fmt.Sprintf("must be at least 1, got %d", cfg.KeepVersions),
		})
	}

	if err := validateSchedule(cfg.PruneSchedule); err != nil {
		errs = append(errs, FieldError{Field: "maintenance.prune_schedule", Message: err.Error()})
	}
	if err := validateSchedule(cfg.OptimizeSchedule); err != nil {
		errs = append(errs, FieldError{Field: "maintenance.optimize_schedule", Message: err.Error()})
	}

	if cfg.LockPath == "" {
		errs = append(errs, FieldError{
			Field:   "maintenance.lock_path",
			Message: "lock path is required",
		})
	}

	if cfg.HistoryLimit < 1 {
		errs = append(errs, FieldError{
			Field:   "maintenance.history_limit",
			Message: fmt.Sprintf("must be at least 1, got %d", cfg.HistoryLimit),
		})
	}

	return errs
}

// validateSchedule accepts an empty expression, which disables the job.
func validateSchedule(expr string) error {
	if expr == "" {
		return nil
	}
	if _, err := cron.ParseStandard(expr); err != nil {
		return fmt.Errorf("invalid cron expression %q: %w", expr, err)
	}
	return nil
}

func validateServer(cfg *ServerConfig, tel *TelemetryConfig) []FieldError {
	var errs []FieldError

	if tel.Metrics.Enabled || tel.Health.Enabled {
		if _, _, err := net.SplitHostPort(cfg.ListenAddress); err != nil {
			errs = append(errs, FieldError{
				Field:   "server.listen_address",
				Message: fmt.Sprintf("invalid listen address %q: %v", cfg.ListenAddress, err),
			})
		}
	}

	if cfg.ReadTimeout < 0 {
		errs = append(errs, FieldError{Field: "server.read_timeout", Message: "must be non-negative"})
	}
	if cfg.WriteTimeout < 0 {
		errs = append(errs, FieldError{Field: "server.write_timeout", Message: "must be non-negative"})
	}
	if cfg.ShutdownTimeout < 0 {
		errs = append(errs, FieldError{Field: "server.shutdown_timeout", Message: "must be non-negative"})
	}

	return errs
}

func validateTelemetry(cfg *TelemetryConfig) []FieldError {
	var errs []FieldError

	if cfg.Logging.Level == "" || !logging.ValidLevel(cfg.Logging.Level) {
		errs = append(errs, FieldError{
			Field:   "telemetry.logging.level",
			Message: fmt.Sprintf("invalid log level %q (must be: debug, info, warn, error)", cfg.Logging.Level),
		})
	}

	if cfg.Logging.Format == "" || !logging.ValidFormat(cfg.Logging.Format) {
		errs = append(errs, FieldError{
			Field:   "telemetry.logging.format",
			Message: fmt.Sprintf("invalid log format %q (must be: json, text, console)", cfg.Logging.Format),
		})
	}

	if cfg.Metrics.Enabled {
		if !strings.HasPrefix(cfg.Metrics.Path, "/") {
			errs = append(errs, FieldError{
				Field:   "telemetry.metrics.path",
				Message: "path must start with /",
			})
		}
		for i, b := range cfg.Metrics.RunDurationBuckets {
			if i > 0 && b <= cfg.Metrics.RunDurationBuckets[i-1] {
				errs = append(errs, FieldError{
					Field:   "telemetry.metrics.run_duration_buckets",
					Message: "buckets must be strictly increasing",
				})
				break
			}
		}
	}

	if cfg.Tracing.Enabled {
		errs = append(errs, validateTracing(&cfg.Tracing)...)
	}

	if cfg.Health.Enabled {
		if !strings.HasPrefix(cfg.Health.LivenessPath, "/") {
			errs = append(errs, FieldError{Field: "telemetry.health.liveness_path", Message: "path must start with /"})
		}
		if !strings.HasPrefix(cfg.Health.ReadinessPath, "/") {
			errs = append(errs, FieldError{Field: "telemetry.health.readiness_path", Message: "path must start with /"})
		}
		if cfg.Metrics.Enabled && (cfg.Health.LivenessPath == cfg.Metrics.Path || cfg.Health.ReadinessPath == cfg.Metrics.Path) {
			errs = append(errs, FieldError{Field: "telemetry.health", Message: "health paths must differ from the metrics path"})
		}
	}

	return errs
}

func validateTracing(cfg *TracingConfig) []FieldError {
	var errs []FieldError

	switch cfg.Sampler {
	case "always", "never":
	case "ratio":
		if cfg.SampleRatio < 0 || cfg.SampleRatio > 1 {
			errs = append(errs, FieldError{
				Field:   "telemetry.tracing.sample_ratio",
				Message: fmt.Sprintf("must be between 0.0 and 1.0, got %f", cfg.SampleRatio),
			})
		}
	default:
		errs = append(errs, FieldError{
			Field:   "telemetry.tracing.sampler",
			Message: fmt.Sprintf("invalid sampler %q (must be: always, never, ratio)", cfg.Sampler),
		})
	}

	if cfg.Exporter != "otlp" {
		errs = append(errs, FieldError{
			Field:   "telemetry.tracing.exporter",
			Message: fmt.Sprintf("invalid exporter %q (must be: otlp)", cfg.Exporter),
		})
	}

	if cfg.Endpoint == "" {
		errs = append(errs, FieldError{
			Field:   "telemetry.tracing.endpoint",
			Message: "endpoint is required when tracing is enabled",
		})
	}

	return errs
}
