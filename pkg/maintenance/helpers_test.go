package maintenance

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"libregistry/janitor/pkg/registry"
	"libregistry/janitor/pkg/registry/layout"
	"libregistry/janitor/pkg/registry/storage"
)

// logCapture collects log records emitted through captureHandler.
type logCapture struct {
	mu      sync.Mutex
	records []slog.Record
}

func (c *logCapture) count(level slog.Level) int {
	c.mu.Lock()
	defer c.mu.Unlock()

	n := 0
	for _, r := range c.records {
		if r.Level == level {
			n++
		}
	}
	return n
}

func (c *logCapture) messages(level slog.Level) []string {
	c.mu.Lock()
	defer c.mu.Unlock()

	var msgs []string
	for _, r := range c.records {
		if r.Level == level {
			msgs = append(msgs, r.Message)
		}
	}
	return msgs
}

type captureHandler struct {
	capture *logCapture
	attrs   []slog.Attr
}

func (h *captureHandler) Enabled(context.Context, slog.Level) bool { return true }

func (h *captureHandler) Handle(_ context.Context, r slog.Record) error {
	r = r.Clone()
	r.AddAttrs(h.attrs...)

	h.capture.mu.Lock()
	defer h.capture.mu.Unlock()
	h.capture.records = append(h.capture.records, r)
	return nil
}

func (h *captureHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	merged := append(append([]slog.Attr{}, h.attrs...), attrs...)
	return &captureHandler{capture: h.capture, attrs: merged}
}

func (h *captureHandler) WithGroup(string) slog.Handler { return h }

// countingObserver records the counters reported by a Maintainer.
type countingObserver struct {
	missing   map[string]int
	libraries int
	versions  int
	scheduled int
}

func newCountingObserver() *countingObserver {
	return &countingObserver{missing: make(map[string]int)}
}

func (o *countingObserver) ArtifactMissing(kind string) { o.missing[kind]++ }
func (o *countingObserver) LibraryDeleted()             { o.libraries++ }
func (o *countingObserver) VersionsDeleted(n int)       { o.versions += n }
func (o *countingObserver) LibrariesScheduled(n int)    { o.scheduled += n }

// fixture bundles a Maintainer with the collaborators tests inspect.
type fixture struct {
	m        *Maintainer
	store    registry.Store
	paths    *layout.Layout
	logs     *logCapture
	observer *countingObserver
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	return newFixtureWithStore(t, storage.NewMemoryStore())
}

func newSQLiteStore(t *testing.T) registry.Store {
	t.Helper()

	store, err := storage.NewSQLiteStore(&storage.SQLiteConfig{
		Path:   filepath.Join(t.TempDir(), "registry.db"),
		Driver: storage.DriverModernc,
	})
	if err != nil {
		t.Fatalf("NewSQLiteStore() failed: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

func newFixtureWithStore(t *testing.T, store registry.Store) *fixture {
	t.Helper()

	paths := layout.New(t.TempDir())
	logs := &logCapture{}
	observer := newCountingObserver()

	m := New(store, paths)
	m.SetLogger(slog.New(&captureHandler{capture: logs}))
	m.SetObserver(observer)

	return &fixture{m: m, store: store, paths: paths, logs: logs, observer: observer}
}

// addLibrary inserts a library with one version per release time and, when
// withFiles is set, creates the examples directory and every archive.
func (f *fixture) addLibrary(t *testing.T, libID int64, withFiles bool, released ...time.Time) []*registry.Version {
	t.Helper()
	ctx := context.Background()

	var versions []*registry.Version
	err := f.store.WithTx(ctx, func(tx registry.Tx) error {
		if err := tx.InsertLibrary(ctx, &registry.Library{ID: libID, Name: "lib"}); err != nil {
			return err
		}
		for _, r := range released {
			v := &registry.Version{LibraryID: libID, Name: r.Format("2006.01.02-150405"), Released: r}
			if err := tx.InsertVersion(ctx, v); err != nil {
				return err
			}
			versions = append(versions, v)
		}
		return nil
	})
	if err != nil {
		t.Fatalf("failed to insert library %d: %v", libID, err)
	}

	if withFiles {
		dir, _ := f.paths.ExamplesDir(libID)
		if err := os.MkdirAll(filepath.Join(dir, "basic"), 0o755); err != nil {
			t.Fatalf("failed to create examples: %v", err)
		}
		if err := os.WriteFile(filepath.Join(dir, "basic", "main.cpp"), []byte("int main() {}"), 0o644); err != nil {
			t.Fatalf("failed to write example: %v", err)
		}
		for _, v := range versions {
			f.writeArchive(t, libID, v.ID)
		}
	}
	return versions
}

func (f *fixture) writeArchive(t *testing.T, libID, versionID int64) string {
	t.Helper()

	path, err := f.paths.ArchivePath(libID, versionID)
	if err != nil {
		t.Fatalf("ArchivePath() failed: %v", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("failed to create archive dir: %v", err)
	}
	if err := os.WriteFile(path, []byte("archive"), 0o644); err != nil {
		t.Fatalf("failed to write archive: %v", err)
	}
	return path
}

func (f *fixture) archiveExists(t *testing.T, libID, versionID int64) bool {
	t.Helper()
	path, _ := f.paths.ArchivePath(libID, versionID)
	_, err := os.Stat(path)
	return err == nil
}

func (f *fixture) versionIDs(t *testing.T, libID int64) []int64 {
	t.Helper()
	ctx := context.Background()

	var ids []int64
	err := f.store.WithTx(ctx, func(tx registry.Tx) error {
		versions, err := tx.ListVersions(ctx, libID)
		if err != nil {
			return err
		}
		for _, v := range versions {
			ids = append(ids, v.ID)
		}
		return nil
	})
	if err != nil {
		t.Fatalf("ListVersions() failed: %v", err)
	}
	return ids
}

func (f *fixture) libraryExists(t *testing.T, libID int64) bool {
	t.Helper()
	ctx := context.Background()

	err := f.store.WithTx(ctx, func(tx registry.Tx) error {
		_, err := tx.GetLibrary(ctx, libID)
		return err
	})
	return err == nil
}

// removeAndBlock replaces a file with a non-empty directory so that removing
// the path fails with an error other than "not exist".
func removeAndBlock(path string) error {
	if err := os.Remove(path); err != nil {
		return err
	}
	return os.MkdirAll(filepath.Join(path, "nested"), 0o755)
}
