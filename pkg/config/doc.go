// Package config provides configuration management for janitor.
//
// Configuration is read from a YAML file, completed with defaults, overridden
// from the environment and validated:
//
//	cfg, err := config.LoadConfigWithEnvOverrides("janitor.yaml")
//
// # Environment Variable Overrides
//
// Environment variables follow the naming convention JANITOR_SECTION_FIELD:
//
//   - JANITOR_DATABASE_PATH overrides database.path
//   - JANITOR_MAINTENANCE_KEEP_VERSIONS overrides maintenance.keep_versions
//   - JANITOR_TELEMETRY_LOGGING_LEVEL overrides telemetry.logging.level
//
// # Configuration Precedence
//
//  1. Default values (defined in defaults.go)
//  2. Values from YAML file
//  3. Environment variable overrides
//  4. Validation (fails fast if invalid)
//
// # Singleton
//
//	if err := config.Initialize("janitor.yaml"); err != nil {
//	    log.Fatal(err)
//	}
//	cfg := config.GetConfig()
//
// # Hot Reload
//
// FileWatcher watches the configuration file and swaps the global instance on
// every valid change. Invalid edits are logged and ignored.
//
// Example configuration:
//
//	database:
//	  driver: sqlite
//	  path: /var/lib/registry/registry.db
//	storage:
//	  root: /var/lib/registry/download
//	maintenance:
//	  keep_versions: 10
//	  prune_schedule: "0 3 * * *"
//	  optimize_schedule: "30 3 * * 0"
//	  lock_path: /run/janitor.lock
//	server:
//	  listen_address: 127.0.0.1:9310
//	telemetry:
//	  logging:
//	    level: info
//	    format: json
package config
