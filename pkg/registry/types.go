package registry

import (
	"context"
	"time"
)

// Library is a package tracked by the registry.
type Library struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`

	// Synced marks when the library is next due for metadata
	// synchronization. It is rewritten by the sync schedule optimizer.
	Synced time.Time `json:"synced"`

	// Versions is populated by Tx.GetLibrary only.
	Versions []*Version `json:"versions,omitempty"`
}

// Version is one released snapshot of a Library.
type Version struct {
	ID        int64     `json:"id"`
	LibraryID int64     `json:"library_id"`
	Name      string    `json:"name"`
	Released  time.Time `json:"released"`
}

// LibraryVersionCount pairs a library with the number of versions it owns.
type LibraryVersionCount struct {
	Library  *Library
	Versions int64
}

// Run is one recorded execution of a maintenance task.
type Run struct {
	ID         string    `json:"id"` // UUID v4
	Task       string    `json:"task"`
	StartedAt  time.Time `json:"started_at"`
	FinishedAt time.Time `json:"finished_at"`
	Affected   int64     `json:"affected"`
	Error      string    `json:"error,omitempty"`
}

// Duration returns how long the run took.
func (r *Run) Duration() time.Duration {
	return r.FinishedAt.Sub(r.StartedAt)
}

// Succeeded reports whether the run finished without error.
func (r *Run) Succeeded() bool {
	return r.Error == ""
}

// Tx is the set of operations available inside a transaction.
//
// All reads observe the writes made earlier in the same transaction.
type Tx interface {
	// GetLibrary loads a library together with its versions.
	// Returns an error matching ErrNotFound if the library does not exist.
	GetLibrary(ctx context.Context, id int64) (*Library, error)

	// ListLibraries returns all libraries ordered by id.
	ListLibraries(ctx context.Context) ([]*Library, error)

	// CountLibraries returns the total number of libraries.
	CountLibraries(ctx context.Context) (int64, error)

	// LibraryVersionCounts returns every library that owns at least one
	// version, paired with its version count, ordered by library id.
	LibraryVersionCounts(ctx context.Context) ([]LibraryVersionCount, error)

	// ListVersions returns a library's versions, newest release first.
	// Versions released at the same instant are ordered by descending id.
	ListVersions(ctx context.Context, libraryID int64) ([]*Version, error)

	// DeleteLibrary removes a library row and, by cascade, its versions.
	DeleteLibrary(ctx context.Context, id int64) error

	// DeleteVersion removes a single version row.
	DeleteVersion(ctx context.Context, id int64) error

	// SetSynced updates a library's synced timestamp.
	SetSynced(ctx context.Context, libraryID int64, synced time.Time) error

	// InsertLibrary creates a library row. A zero ID is assigned by the store.
	InsertLibrary(ctx context.Context, lib *Library) error

	// InsertVersion creates a version row. A zero ID is assigned by the store.
	InsertVersion(ctx context.Context, v *Version) error
}

// Store is a transactional registry database.
type Store interface {
	// WithTx runs fn inside a transaction. The transaction is committed if fn
	// returns nil and rolled back otherwise; a panic inside fn also rolls back
	// and is re-raised after the rollback.
	WithTx(ctx context.Context, fn func(tx Tx) error) error

	// Ping checks that the backend is reachable.
	Ping(ctx context.Context) error

	// RecordRun appends a run to the maintenance history.
	RecordRun(ctx context.Context, run *Run) error

	// ListRuns returns up to limit runs, most recent first.
	ListRuns(ctx context.Context, limit int) ([]*Run, error)

	// Close releases resources held by the store.
	Close() error
}
