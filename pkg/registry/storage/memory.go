package storage

import (
	"context"
	"errors"
	"log/slog"
	"sort"
	"sync"
	"time"

	"libregistry/janitor/pkg/registry"
)

var errStoreClosed = errors.New("store is closed")

// memoryState is the full dataset; transactions work on a private copy.
type memoryState struct {
	libraries     map[int64]registry.Library
	versions      map[int64]registry.Version
	nextLibraryID int64
	nextVersionID int64
}

func (s *memoryState) clone() *memoryState {
	c := &memoryState{
		libraries:     make(map[int64]registry.Library, len(s.libraries)),
		versions:      make(map[int64]registry.Version, len(s.versions)),
		nextLibraryID: s.nextLibraryID,
		nextVersionID: s.nextVersionID,
	}
	for id, lib := range s.libraries {
		c.libraries[id] = lib
	}
	for id, v := range s.versions {
		c.versions[id] = v
	}
	return c
}

// MemoryStore implements registry.Store in process memory.
// Transactions are serialized.
type MemoryStore struct {
	mu     sync.Mutex // held for the lifetime of a transaction
	state  *memoryState
	closed bool

	runsMu sync.RWMutex
	runs   []*registry.Run

	logger *slog.Logger
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		state: &memoryState{
			libraries: make(map[int64]registry.Library),
			versions:  make(map[int64]registry.Version),
		},
		logger: slog.Default().With("component", "registry.storage.memory"),
	}
}

// WithTx runs fn against a private copy of the data and publishes the copy
// on success.
func (m *MemoryStore) WithTx(ctx context.Context, fn func(tx registry.Tx) error) error {
	if err := ctx.Err(); err != nil {
		return registry.NewStorageError("memory", "begin", err)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return registry.NewStorageError("memory", "begin", errStoreClosed)
	}

	tx := &memoryTx{store: m, state: m.state.clone()}
	return runInTx(m.logger, "memory", tx, fn)
}

// Ping reports whether the store is open.
func (m *MemoryStore) Ping(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return registry.NewStorageError("memory", "ping", errStoreClosed)
	}
	return nil
}

// RecordRun appends a run to the maintenance history.
func (m *MemoryStore) RecordRun(ctx context.Context, run *registry.Run) error {
	m.runsMu.Lock()
	defer m.runsMu.Unlock()

	copied := *run
	m.runs = append(m.runs, &copied)
	return nil
}

// ListRuns returns up to limit runs, most recent first.
func (m *MemoryStore) ListRuns(ctx context.Context, limit int) ([]*registry.Run, error) {
	m.runsMu.RLock()
	defer m.runsMu.RUnlock()

	if limit <= 0 {
		limit = 100
	}

	runs := make([]*registry.Run, 0, len(m.runs))
	for _, r := range m.runs {
		copied := *r
		runs = append(runs, &copied)
	}
	sort.SliceStable(runs, func(i, j int) bool {
		return runs[i].StartedAt.After(runs[j].StartedAt)
	})
	if len(runs) > limit {
		runs = runs[:limit]
	}
	return runs, nil
}

// Close marks the store as closed. Later transactions fail.
func (m *MemoryStore) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closed = true
	return nil
}

// memoryTx implements registry.Tx over a cloned memoryState.
type memoryTx struct {
	store *MemoryStore
	state *memoryState
	done  bool
}

func (t *memoryTx) commit() error {
	if t.done {
		return errors.New("transaction already finished")
	}
	t.done = true
	t.store.state = t.state
	return nil
}

func (t *memoryTx) rollback() error {
	if t.done {
		return errors.New("transaction already finished")
	}
	t.done = true
	return nil
}

func (t *memoryTx) GetLibrary(ctx context.Context, id int64) (*registry.Library, error) {
	lib, ok := t.state.libraries[id]
	if !ok {
		return nil, registry.NewNotFoundError("library", id)
	}

	versions := t.versionsOf(id)
	sort.Slice(versions, func(i, j int) bool { return versions[i].ID < versions[j].ID })
	lib.Versions = versions

	return &lib, nil
}

func (t *memoryTx) ListLibraries(ctx context.Context) ([]*registry.Library, error) {
	libs := make([]*registry.Library, 0, len(t.state.libraries))
	for _, lib := range t.state.libraries {
		lib := lib
		libs = append(libs, &lib)
	}
	sort.Slice(libs, func(i, j int) bool { return libs[i].ID < libs[j].ID })
	return libs, nil
}

func (t *memoryTx) CountLibraries(ctx context.Context) (int64, error) {
	return int64(len(t.state.libraries)), nil
}

func (t *memoryTx) LibraryVersionCounts(ctx context.Context) ([]registry.LibraryVersionCount, error) {
	perLibrary := make(map[int64]int64)
	for _, v := range t.state.versions {
		perLibrary[v.LibraryID]++
	}

	counts := make([]registry.LibraryVersionCount, 0, len(perLibrary))
	for libID, n := range perLibrary {
		lib, ok := t.state.libraries[libID]
		if !ok {
			continue
		}
		counts = append(counts, registry.LibraryVersionCount{Library: &lib, Versions: n})
	}
	sort.Slice(counts, func(i, j int) bool { return counts[i].Library.ID < counts[j].Library.ID })
	return counts, nil
}

func (t *memoryTx) ListVersions(ctx context.Context, libraryID int64) ([]*registry.Version, error) {
	versions := t.versionsOf(libraryID)
	sort.Slice(versions, func(i, j int) bool {
		if !versions[i].Released.Equal(versions[j].Released) {
			return versions[i].Released.After(versions[j].Released)
		}
		return versions[i].ID > versions[j].ID
	})
	return versions, nil
}

func (t *memoryTx) versionsOf(libraryID int64) []*registry.Version {
	versions := []*registry.Version{}
	for _, v := range t.state.versions {
		if v.LibraryID == libraryID {
			v := v
			versions = append(versions, &v)
		}
	}
	return versions
}

func (t *memoryTx) DeleteLibrary(ctx context.Context, id int64) error {
	if _, ok := t.state.libraries[id]; !ok {
		return registry.NewNotFoundError("library", id)
	}
	delete(t.state.libraries, id)
	for vid, v := range t.state.versions {
		if v.LibraryID == id {
			delete(t.state.versions, vid)
		}
	}
	return nil
}

func (t *memoryTx) DeleteVersion(ctx context.Context, id int64) error {
	if _, ok := t.state.versions[id]; !ok {
		return registry.NewNotFoundError("version", id)
	}
	delete(t.state.versions, id)
	return nil
}

func (t *memoryTx) SetSynced(ctx context.Context, libraryID int64, synced time.Time) error {
	lib, ok := t.state.libraries[libraryID]
	if !ok {
		return registry.NewNotFoundError("library", libraryID)
	}
	lib.Synced = synced.Truncate(time.Millisecond).UTC()
	t.state.libraries[libraryID] = lib
	return nil
}

func (t *memoryTx) InsertLibrary(ctx context.Context, lib *registry.Library) error {
	if lib.ID == 0 {
		t.state.nextLibraryID++
		lib.ID = t.state.nextLibraryID
	} else if lib.ID > t.state.nextLibraryID {
		t.state.nextLibraryID = lib.ID
	}
	if _, exists := t.state.libraries[lib.ID]; exists {
		return registry.NewStorageError("memory", "insert_library", errors.New("duplicate library id"))
	}

	stored := *lib
	stored.Versions = nil
	if !stored.Synced.IsZero() {
		stored.Synced = stored.Synced.Truncate(time.Millisecond).UTC()
	}
	t.state.libraries[lib.ID] = stored
	return nil
}

func (t *memoryTx) InsertVersion(ctx context.Context, v *registry.Version) error {
	if _, ok := t.state.libraries[v.LibraryID]; !ok {
		return registry.NewNotFoundError("library", v.LibraryID)
	}
	if v.ID == 0 {
		t.state.nextVersionID++
		v.ID = t.state.nextVersionID
	} else if v.ID > t.state.nextVersionID {
		t.state.nextVersionID = v.ID
	}
	if _, exists := t.state.versions[v.ID]; exists {
		return registry.NewStorageError("memory", "insert_version", errors.New("duplicate version id"))
	}

	stored := *v
	stored.Released = stored.Released.Truncate(time.Millisecond).UTC()
	t.state.versions[v.ID] = stored
	return nil
}
