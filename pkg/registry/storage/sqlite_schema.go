package storage

// SchemaVersion is the current database schema version.
const SchemaVersion = 1

// Schema contains the SQL statements to create the registry database schema.
const Schema = `
-- Libraries tracked by the registry
CREATE TABLE IF NOT EXISTS libraries (
    id INTEGER PRIMARY KEY,
    name TEXT NOT NULL,

    -- Next synchronization due time (unix milliseconds, 0 = never)
    synced INTEGER NOT NULL DEFAULT 0
);

-- Released versions, owned by a library
CREATE TABLE IF NOT EXISTS versions (
    id INTEGER PRIMARY KEY,
    library_id INTEGER NOT NULL REFERENCES libraries(id) ON DELETE CASCADE,
    name TEXT NOT NULL,

    -- Release time (unix milliseconds)
    released INTEGER NOT NULL
);

-- Maintenance run history
CREATE TABLE IF NOT EXISTS maintenance_runs (
    id TEXT PRIMARY KEY,
    task TEXT NOT NULL,
    started_at INTEGER NOT NULL,
    finished_at INTEGER NOT NULL,
    affected INTEGER NOT NULL DEFAULT 0,
    error TEXT
);

-- Schema version table
CREATE TABLE IF NOT EXISTS schema_version (
    version INTEGER PRIMARY KEY,
    applied_at TIMESTAMP NOT NULL
);

-- Indexes for common queries
CREATE INDEX IF NOT EXISTS idx_versions_library_released ON versions(library_id, released DESC, id DESC);
CREATE INDEX IF NOT EXISTS idx_libraries_synced ON libraries(synced);
CREATE INDEX IF NOT EXISTS idx_runs_started_at ON maintenance_runs(started_at);
`

// InsertSchemaVersion inserts the schema version into the schema_version table.
const InsertSchemaVersion = `
INSERT INTO schema_version (version, applied_at)
VALUES (?, datetime('now'))
ON CONFLICT(version) DO NOTHING;
`

// GetSchemaVersion retrieves the current schema version from the database.
const GetSchemaVersion = `
SELECT version FROM schema_version ORDER BY version DESC LIMIT 1;
`
