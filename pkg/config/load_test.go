package config

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "janitor.yaml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("failed to write config file: %v", err)
	}
	return path
}

func TestLoadConfig_ValidFile(t *testing.T) {
	path := writeConfig(t, `
database:
  driver: sqlite3
  path: /var/lib/registry/registry.db
  busy_timeout: 2s
  wal_mode: false

storage:
  root: /var/lib/registry/download

maintenance:
  keep_versions: 5
  prune_schedule: "15 4 * * *"
  optimize_schedule: ""
  lock_path: /run/janitor.lock

telemetry:
  logging:
    level: debug
    format: text
  metrics:
    enabled: false
`)

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("failed to load config: %v", err)
	}

	if cfg.Database.Driver != "sqlite3" {
		t.Errorf("expected driver sqlite3, got %q", cfg.Database.Driver)
	}
	if cfg.Database.BusyTimeout != 2*time.Second {
		t.Errorf("expected busy timeout 2s, got %v", cfg.Database.BusyTimeout)
	}
	if cfg.Database.WALMode {
		t.Error("explicit wal_mode: false should win over the default")
	}
	if cfg.Storage.Root != "/var/lib/registry/download" {
		t.Errorf("unexpected storage root %q", cfg.Storage.Root)
	}
	if cfg.Maintenance.KeepVersions != 5 {
		t.Errorf("expected keep versions 5, got %d", cfg.Maintenance.KeepVersions)
	}
	if cfg.Maintenance.PruneSchedule != "15 4 * * *" {
		t.Errorf("unexpected prune schedule %q", cfg.Maintenance.PruneSchedule)
	}
	if cfg.Maintenance.OptimizeSchedule != "" {
		t.Errorf("explicit empty optimize schedule should disable the job, got %q", cfg.Maintenance.OptimizeSchedule)
	}
	if cfg.Telemetry.Metrics.Enabled {
		t.Error("expected metrics disabled")
	}
	// Unset sections still receive defaults.
	if !cfg.Telemetry.Health.Enabled {
		t.Error("expected health enabled by default")
	}
	if cfg.Maintenance.HistoryLimit != DefaultHistoryLimit {
		t.Errorf("expected history limit %d, got %d", DefaultHistoryLimit, cfg.Maintenance.HistoryLimit)
	}
}

func TestLoadConfig_Errors(t *testing.T) {
	tests := []struct {
		name    string
		content string
		wantErr string
	}{
		{
			name:    "invalid yaml",
			content: "database: [unterminated",
			wantErr: "failed to parse",
		},
		{
			name:    "invalid keep versions",
			content: "maintenance:\n  keep_versions: -1\n",
			wantErr: "maintenance.keep_versions",
		},
		{
			name:    "explicit zero keep versions",
			content: "maintenance:\n  keep_versions: 0\n",
			wantErr: "maintenance.keep_versions",
		},
		{
			name:    "invalid cron expression",
			content: "maintenance:\n  prune_schedule: \"every day\"\n",
			wantErr: "maintenance.prune_schedule",
		},
		{
			name:    "unknown driver",
			content: "database:\n  driver: postgres\n",
			wantErr: "database.driver",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadConfig(writeConfig(t, tt.content))
			if err == nil {
				t.Fatal("expected error, got nil")
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("error %q does not mention %q", err, tt.wantErr)
			}
		})
	}
}

func TestLoadConfig_KeepVersionsDefaultWhenUnset(t *testing.T) {
	cfg, err := LoadConfig(writeConfig(t, "storage:\n  root: /srv/registry\n"))
	if err != nil {
		t.Fatalf("LoadConfig() error = %v", err)
	}
	if cfg.Maintenance.KeepVersions != DefaultKeepVersions {
		t.Errorf("expected keep versions %d, got %d", DefaultKeepVersions, cfg.Maintenance.KeepVersions)
	}
}

func TestLoadConfig_MissingFile(t *testing.T) {
	_, err := LoadConfig(filepath.Join(t.TempDir(), "absent.yaml"))
	if !errors.Is(err, os.ErrNotExist) {
		t.Errorf("expected ErrNotExist, got %v", err)
	}
}

func TestLoadConfigWithEnvOverrides(t *testing.T) {
	path := writeConfig(t, "maintenance:\n  keep_versions: 5\n")

	t.Setenv("JANITOR_MAINTENANCE_KEEP_VERSIONS", "3")
	t.Setenv("JANITOR_DATABASE_DRIVER", "memory")
	t.Setenv("JANITOR_TELEMETRY_METRICS_ENABLED", "false")
	t.Setenv("JANITOR_DATABASE_BUSY_TIMEOUT", "750ms")

	cfg, err := LoadConfigWithEnvOverrides(path)
	if err != nil {
		t.Fatalf("failed to load config: %v", err)
	}

	if cfg.Maintenance.KeepVersions != 3 {
		t.Errorf("expected env override 3, got %d", cfg.Maintenance.KeepVersions)
	}
	if cfg.Database.Driver != "memory" {
		t.Errorf("expected driver memory, got %q", cfg.Database.Driver)
	}
	if cfg.Telemetry.Metrics.Enabled {
		t.Error("expected metrics disabled by env")
	}
	if cfg.Database.BusyTimeout != 750*time.Millisecond {
		t.Errorf("expected busy timeout 750ms, got %v", cfg.Database.BusyTimeout)
	}
}

func TestLoadConfigWithEnvOverrides_EnvFixesFile(t *testing.T) {
	path := writeConfig(t, "maintenance:\n  keep_versions: -4\n")
	t.Setenv("JANITOR_MAINTENANCE_KEEP_VERSIONS", "2")

	cfg, err := LoadConfigWithEnvOverrides(path)
	if err != nil {
		t.Fatalf("environment override should be applied before validation: %v", err)
	}
	if cfg.Maintenance.KeepVersions != 2 {
		t.Errorf("expected keep versions 2, got %d", cfg.Maintenance.KeepVersions)
	}
}

func TestLoadConfigWithEnvOverrides_InvalidValue(t *testing.T) {
	t.Setenv("JANITOR_MAINTENANCE_KEEP_VERSIONS", "ten")

	_, err := LoadConfigWithEnvOverrides("")
	if err == nil || !strings.Contains(err.Error(), "JANITOR_MAINTENANCE_KEEP_VERSIONS") {
		t.Errorf("expected error naming the variable, got %v", err)
	}
}

func TestLoadConfigWithEnvOverrides_NoFile(t *testing.T) {
	t.Setenv("JANITOR_STORAGE_ROOT", "/srv/download")

	cfg, err := LoadConfigWithEnvOverrides("")
	if err != nil {
		t.Fatalf("failed to load defaults: %v", err)
	}
	if cfg.Storage.Root != "/srv/download" {
		t.Errorf("expected storage root from env, got %q", cfg.Storage.Root)
	}
	if cfg.Maintenance.PruneSchedule != DefaultPruneSchedule {
		t.Errorf("expected default prune schedule, got %q", cfg.Maintenance.PruneSchedule)
	}
}
