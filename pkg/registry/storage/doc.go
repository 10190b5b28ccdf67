// Package storage provides registry.Store implementations.
//
// # SQLite
//
// SQLiteStore persists libraries, versions and the maintenance run history in
// a single SQLite file. Two drivers are supported and selected by name:
//
//   - "sqlite": modernc.org/sqlite, pure Go (default)
//   - "sqlite3": github.com/mattn/go-sqlite3, requires cgo
//
// Foreign keys are enabled on every connection so that deleting a library
// cascades to its versions. The store keeps a single connection open because
// SQLite allows one writer at a time.
//
//	store, err := storage.NewSQLiteStore(&storage.SQLiteConfig{
//	    Path:   "data/registry.db",
//	    Driver: storage.DriverModernc,
//	})
//
// # Memory
//
// MemoryStore keeps everything in process memory. Transactions operate on a
// private copy of the data that replaces the shared state on commit, so a
// rolled-back transaction leaves no trace. It is intended for tests and
// rehearsals.
package storage
