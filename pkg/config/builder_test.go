package config

import "time"

// ConfigBuilder provides a fluent API for building Config instances in tests.
// It starts with default values and allows selective overrides.
type ConfigBuilder struct {
	cfg Config
}

// NewTestConfig creates a ConfigBuilder whose configuration is valid as is.
func NewTestConfig() *ConfigBuilder {
	return &ConfigBuilder{cfg: *Default()}
}

// Build returns the built Config instance.
func (b *ConfigBuilder) Build() *Config {
	return &b.cfg
}

// WithDatabase sets the database driver and path.
func (b *ConfigBuilder) WithDatabase(driver, path string) *ConfigBuilder {
	b.cfg.Database.Driver = driver
	b.cfg.Database.Path = path
	return b
}

// WithStorageRoot sets the artifact root.
func (b *ConfigBuilder) WithStorageRoot(root string) *ConfigBuilder {
	b.cfg.Storage.Root = root
	return b
}

// WithKeepVersions sets the retention count.
func (b *ConfigBuilder) WithKeepVersions(n int) *ConfigBuilder {
	b.cfg.Maintenance.KeepVersions = n
	return b
}

// WithSchedules sets both cron expressions.
func (b *ConfigBuilder) WithSchedules(prune, optimize string) *ConfigBuilder {
	b.cfg.Maintenance.PruneSchedule = prune
	b.cfg.Maintenance.OptimizeSchedule = optimize
	return b
}

// WithListenAddress sets the server listen address.
func (b *ConfigBuilder) WithListenAddress(addr string) *ConfigBuilder {
	b.cfg.Server.ListenAddress = addr
	return b
}

// WithShutdownTimeout sets the server shutdown timeout.
func (b *ConfigBuilder) WithShutdownTimeout(d time.Duration) *ConfigBuilder {
	b.cfg.Server.ShutdownTimeout = d
	return b
}

// WithLogLevel sets the logging level.
func (b *ConfigBuilder) WithLogLevel(level string) *ConfigBuilder {
	b.cfg.Telemetry.Logging.Level = level
	return b
}

// WithTracing enables tracing towards endpoint.
func (b *ConfigBuilder) WithTracing(endpoint string) *ConfigBuilder {
	b.cfg.Telemetry.Tracing.Enabled = true
	b.cfg.Telemetry.Tracing.Endpoint = endpoint
	return b
}

// MinimalConfig returns a valid configuration backed by the memory driver.
func MinimalConfig() *Config {
	return NewTestConfig().WithDatabase("memory", "").Build()
}
