package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"strings"
	"time"

	_ "github.com/mattn/go-sqlite3" // SQLite driver (cgo)
	_ "modernc.org/sqlite"          // SQLite driver (pure Go)

	"libregistry/janitor/pkg/registry"
)

// Supported database/sql driver names.
const (
	DriverModernc = "sqlite"
	DriverMattn   = "sqlite3"
)

// SQLiteConfig contains configuration for the SQLite storage backend.
type SQLiteConfig struct {
	// Path is the database file path.
	Path string

	// Driver selects the database/sql driver: "sqlite" or "sqlite3".
	// Default: "sqlite"
	Driver string

	// WALMode enables Write-Ahead Logging mode.
	// Default: true
	WALMode bool

	// BusyTimeout is the duration to wait when the database is locked.
	// Default: 5 seconds
	BusyTimeout time.Duration
}

// DefaultSQLiteConfig returns the default SQLite configuration.
func DefaultSQLiteConfig() *SQLiteConfig {
	return &SQLiteConfig{
		Path:        "data/registry.db",
		Driver:      DriverModernc,
		WALMode:     true,
		BusyTimeout: 5 * time.Second,
	}
}

// SQLiteStore implements registry.Store using SQLite.
type SQLiteStore struct {
	db     *sql.DB
	config *SQLiteConfig
	logger *slog.Logger
}

// NewSQLiteStore opens (creating if needed) the registry database.
func NewSQLiteStore(config *SQLiteConfig) (*SQLiteStore, error) {
	if config == nil {
		config = DefaultSQLiteConfig()
	}
	if config.Path == "" {
		return nil, registry.NewStorageError("sqlite", "open", errors.New("db path cannot be empty"))
	}
	if config.Driver == "" {
		config.Driver = DriverModernc
	}
	if config.BusyTimeout == 0 {
		config.BusyTimeout = 5 * time.Second
	}

	logger := slog.Default().With("component", "registry.storage.sqlite")

	dsn, err := buildDSN(config)
	if err != nil {
		return nil, registry.NewStorageError("sqlite", "open", err)
	}

	db, err := sql.Open(config.Driver, dsn)
	if err != nil {
		return nil, registry.NewStorageError("sqlite", "open", err)
	}

	// SQLite only supports a single writer; keeping one long-lived connection
	// also keeps per-connection pragmas in effect.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	s := &SQLiteStore{
		db:     db,
		config: config,
		logger: logger,
	}

	if err := s.initialize(); err != nil {
		db.Close()
		return nil, err
	}

	logger.Info("SQLite storage initialized",
		"path", config.Path,
		"driver", config.Driver,
		"wal_mode", config.WALMode,
	)

	return s, nil
}

// buildDSN encodes the per-connection pragmas in the form each driver expects.
func buildDSN(config *SQLiteConfig) (string, error) {
	busyMs := config.BusyTimeout.Milliseconds()
	params := url.Values{}

	switch config.Driver {
	case DriverMattn:
		params.Set("_foreign_keys", "on")
		params.Set("_busy_timeout", fmt.Sprint(busyMs))
		if config.WALMode {
			params.Set("_journal_mode", "WAL")
		}
	case DriverModernc:
		pragmas := []string{
			"foreign_keys(1)",
			fmt.Sprintf("busy_timeout(%d)", busyMs),
		}
		if config.WALMode {
			pragmas = append(pragmas, "journal_mode(WAL)")
		}
		for _, p := range pragmas {
			params.Add("_pragma", p)
		}
	default:
		return "", fmt.Errorf("unsupported sqlite driver %q (supported: %s, %s)", config.Driver, DriverModernc, DriverMattn)
	}

	return "file:" + config.Path + "?" + params.Encode(), nil
}

// initialize creates the schema and verifies the connection settings.
func (s *SQLiteStore) initialize() error {
	if _, err := s.db.Exec("PRAGMA foreign_keys = ON;"); err != nil {
		return registry.NewStorageError("sqlite", "enable_foreign_keys", err)
	}

	var fk int
	if err := s.db.QueryRow("PRAGMA foreign_keys;").Scan(&fk); err != nil {
		return registry.NewStorageError("sqlite", "check_foreign_keys", err)
	}
	if fk != 1 {
		return registry.NewStorageError("sqlite", "check_foreign_keys",
			errors.New("foreign key enforcement is disabled"))
	}

	if _, err := s.db.Exec(Schema); err != nil {
		return registry.NewStorageError("sqlite", "create_schema", err)
	}
	s.logger.Debug("database schema created")

	if _, err := s.db.Exec(InsertSchemaVersion, SchemaVersion); err != nil {
		return registry.NewStorageError("sqlite", "insert_schema_version", err)
	}

	var version int
	err := s.db.QueryRow(GetSchemaVersion).Scan(&version)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return registry.NewStorageError("sqlite", "get_schema_version", err)
	}
	if version != SchemaVersion {
		return registry.NewStorageError("sqlite", "schema_version_mismatch",
			fmt.Errorf("expected schema version %d, got %d", SchemaVersion, version))
	}

	s.logger.Debug("schema version verified", "version", version)
	return nil
}

// WithTx runs fn inside a database transaction.
func (s *SQLiteStore) WithTx(ctx context.Context, fn func(tx registry.Tx) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return registry.NewStorageError("sqlite", "begin", err)
	}
	return runInTx(s.logger, "sqlite", &sqliteTx{tx: tx}, fn)
}

// Ping checks the database connection.
func (s *SQLiteStore) Ping(ctx context.Context) error {
	if err := s.db.PingContext(ctx); err != nil {
		return registry.NewStorageError("sqlite", "ping", err)
	}
	return nil
}

// RecordRun appends a run to the maintenance history.
func (s *SQLiteStore) RecordRun(ctx context.Context, run *registry.Run) error {
	var errVal interface{}
	if run.Error != "" {
		errVal = run.Error
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO maintenance_runs (id, task, started_at, finished_at, affected, error)
		VALUES (?, ?, ?, ?, ?, ?)`,
		run.ID, run.Task, toMillis(run.StartedAt), toMillis(run.FinishedAt), run.Affected, errVal,
	)
	if err != nil {
		return registry.NewStorageError("sqlite", "record_run", err)
	}
	return nil
}

// ListRuns returns up to limit runs, most recent first.
func (s *SQLiteStore) ListRuns(ctx context.Context, limit int) ([]*registry.Run, error) {
	if limit <= 0 {
		limit = 100
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, task, started_at, finished_at, affected, error
		FROM maintenance_runs
		ORDER BY started_at DESC, id
		LIMIT ?`, limit)
	if err != nil {
		return nil, registry.NewStorageError("sqlite", "list_runs", err)
	}
	defer rows.Close()

	runs := []*registry.Run{}
	for rows.Next() {
		var run registry.Run
		var started, finished int64
		var errVal sql.NullString
		if err := rows.Scan(&run.ID, &run.Task, &started, &finished, &run.Affected, &errVal); err != nil {
			return nil, registry.NewStorageError("sqlite", "scan", err)
		}
		run.StartedAt = fromMillis(started)
		run.FinishedAt = fromMillis(finished)
		if errVal.Valid {
			run.Error = errVal.String
		}
		runs = append(runs, &run)
	}
	if err := rows.Err(); err != nil {
		return nil, registry.NewStorageError("sqlite", "list_runs", err)
	}

	return runs, nil
}

// Close releases the database connection.
func (s *SQLiteStore) Close() error {
	if err := s.db.Close(); err != nil {
		return registry.NewStorageError("sqlite", "close", err)
	}
	s.logger.Info("SQLite storage closed")
	return nil
}

// sqliteTx implements registry.Tx on a *sql.Tx.
type sqliteTx struct {
	tx *sql.Tx
}

func (t *sqliteTx) commit() error   { return t.tx.Commit() }
func (t *sqliteTx) rollback() error { return t.tx.Rollback() }

func (t *sqliteTx) GetLibrary(ctx context.Context, id int64) (*registry.Library, error) {
	var lib registry.Library
	var synced int64
	err := t.tx.QueryRowContext(ctx,
		`SELECT id, name, synced FROM libraries WHERE id = ?`, id,
	).Scan(&lib.ID, &lib.Name, &synced)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, registry.NewNotFoundError("library", id)
	}
	if err != nil {
		return nil, registry.NewStorageError("sqlite", "get_library", err)
	}
	lib.Synced = fromMillis(synced)

	versions, err := t.queryVersions(ctx, "get_library_versions",
		`SELECT id, library_id, name, released FROM versions WHERE library_id = ? ORDER BY id`, id)
	if err != nil {
		return nil, err
	}
	lib.Versions = versions

	return &lib, nil
}

func (t *sqliteTx) ListLibraries(ctx context.Context) ([]*registry.Library, error) {
	rows, err := t.tx.QueryContext(ctx, `SELECT id, name, synced FROM libraries ORDER BY id`)
	if err != nil {
		return nil, registry.NewStorageError("sqlite", "list_libraries", err)
	}
	defer rows.Close()

	libs := []*registry.Library{}
	for rows.Next() {
		var lib registry.Library
		var synced int64
		if err := rows.Scan(&lib.ID, &lib.Name, &synced); err != nil {
			return nil, registry.NewStorageError("sqlite", "scan", err)
		}
		lib.Synced = fromMillis(synced)
		libs = append(libs, &lib)
	}
	if err := rows.Err(); err != nil {
		return nil, registry.NewStorageError("sqlite", "list_libraries", err)
	}
	return libs, nil
}

func (t *sqliteTx) CountLibraries(ctx context.Context) (int64, error) {
	var count int64
	if err := t.tx.QueryRowContext(ctx, `SELECT COUNT(*) FROM libraries`).Scan(&count); err != nil {
		return 0, registry.NewStorageError("sqlite", "count_libraries", err)
	}
	return count, nil
}

func (t *sqliteTx) LibraryVersionCounts(ctx context.Context) ([]registry.LibraryVersionCount, error) {
	rows, err := t.tx.QueryContext(ctx, `
		SELECT l.id, l.name, l.synced, COUNT(v.id)
		FROM libraries l
		JOIN versions v ON v.library_id = l.id
		GROUP BY l.id, l.name, l.synced
		ORDER BY l.id`)
	if err != nil {
		return nil, registry.NewStorageError("sqlite", "library_version_counts", err)
	}
	defer rows.Close()

	counts := []registry.LibraryVersionCount{}
	for rows.Next() {
		var lib registry.Library
		var synced, n int64
		if err := rows.Scan(&lib.ID, &lib.Name, &synced, &n); err != nil {
			return nil, registry.NewStorageError("sqlite", "scan", err)
		}
		lib.Synced = fromMillis(synced)
		counts = append(counts, registry.LibraryVersionCount{Library: &lib, Versions: n})
	}
	if err := rows.Err(); err != nil {
		return nil, registry.NewStorageError("sqlite", "library_version_counts", err)
	}
	return counts, nil
}

func (t *sqliteTx) ListVersions(ctx context.Context, libraryID int64) ([]*registry.Version, error) {
	return t.queryVersions(ctx, "list_versions", `
		SELECT id, library_id, name, released
		FROM versions
		WHERE library_id = ?
		ORDER BY released DESC, id DESC`, libraryID)
}

func (t *sqliteTx) queryVersions(ctx context.Context, op, query string, args ...interface{}) ([]*registry.Version, error) {
	rows, err := t.tx.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, registry.NewStorageError("sqlite", op, err)
	}
	defer rows.Close()

	versions := []*registry.Version{}
	for rows.Next() {
		var v registry.Version
		var released int64
		if err := rows.Scan(&v.ID, &v.LibraryID, &v.Name, &released); err != nil {
			return nil, registry.NewStorageError("sqlite", "scan", err)
		}
		v.Released = fromMillis(released)
		versions = append(versions, &v)
	}
	if err := rows.Err(); err != nil {
		return nil, registry.NewStorageError("sqlite", op, err)
	}
	return versions, nil
}

func (t *sqliteTx) DeleteLibrary(ctx context.Context, id int64) error {
	return t.execOne(ctx, "delete_library", "library", id, `DELETE FROM libraries WHERE id = ?`, id)
}

func (t *sqliteTx) DeleteVersion(ctx context.Context, id int64) error {
	return t.execOne(ctx, "delete_version", "version", id, `DELETE FROM versions WHERE id = ?`, id)
}

func (t *sqliteTx) SetSynced(ctx context.Context, libraryID int64, synced time.Time) error {
	return t.execOne(ctx, "set_synced", "library", libraryID,
		`UPDATE libraries SET synced = ? WHERE id = ?`, toMillis(synced), libraryID)
}

// execOne runs a statement expected to touch exactly one row.
func (t *sqliteTx) execOne(ctx context.Context, op, kind string, id int64, query string, args ...interface{}) error {
	result, err := t.tx.ExecContext(ctx, query, args...)
	if err != nil {
		return registry.NewStorageError("sqlite", op, err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return registry.NewStorageError("sqlite", op, err)
	}
	if n == 0 {
		return registry.NewNotFoundError(kind, id)
	}
	return nil
}

func (t *sqliteTx) InsertLibrary(ctx context.Context, lib *registry.Library) error {
	var idVal interface{}
	if lib.ID != 0 {
		idVal = lib.ID
	}
	result, err := t.tx.ExecContext(ctx,
		`INSERT INTO libraries (id, name, synced) VALUES (?, ?, ?)`,
		idVal, lib.Name, toMillis(lib.Synced))
	if err != nil {
		return registry.NewStorageError("sqlite", "insert_library", err)
	}
	if lib.ID == 0 {
		id, err := result.LastInsertId()
		if err != nil {
			return registry.NewStorageError("sqlite", "insert_library", err)
		}
		lib.ID = id
	}
	return nil
}

func (t *sqliteTx) InsertVersion(ctx context.Context, v *registry.Version) error {
	var idVal interface{}
	if v.ID != 0 {
		idVal = v.ID
	}
	result, err := t.tx.ExecContext(ctx,
		`INSERT INTO versions (id, library_id, name, released) VALUES (?, ?, ?, ?)`,
		idVal, v.LibraryID, v.Name, toMillis(v.Released))
	if err != nil {
		if strings.Contains(strings.ToLower(err.Error()), "foreign key") {
			return registry.NewNotFoundError("library", v.LibraryID)
		}
		return registry.NewStorageError("sqlite", "insert_version", err)
	}
	if v.ID == 0 {
		id, err := result.LastInsertId()
		if err != nil {
			return registry.NewStorageError("sqlite", "insert_version", err)
		}
		v.ID = id
	}
	return nil
}

// toMillis converts t to unix milliseconds; the zero time maps to 0.
func toMillis(t time.Time) int64 {
	if t.IsZero() {
		return 0
	}
	return t.UnixMilli()
}

// fromMillis is the inverse of toMillis. Times are returned in UTC.
func fromMillis(ms int64) time.Time {
	if ms == 0 {
		return time.Time{}
	}
	return time.UnixMilli(ms).UTC()
}
