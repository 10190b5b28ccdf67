package maintenance

import (
	"context"
	"errors"
	"io/fs"
	"log/slog"
	"os"
	"testing"
	"time"

	"libregistry/janitor/pkg/registry"
)

func TestDeleteLibrary(t *testing.T) {
	f := newFixture(t)
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	versions := f.addLibrary(t, 5, true, base, base.Add(time.Hour), base.Add(2*time.Hour))
	f.addLibrary(t, 6, true, base)

	if err := f.m.DeleteLibrary(context.Background(), 5); err != nil {
		t.Fatalf("DeleteLibrary() failed: %v", err)
	}

	if f.libraryExists(t, 5) {
		t.Error("library 5 still exists")
	}
	if ids := f.versionIDs(t, 5); len(ids) != 0 {
		t.Errorf("versions of library 5 still exist: %v", ids)
	}
	for _, v := range versions {
		if f.archiveExists(t, 5, v.ID) {
			t.Errorf("archive of version %d still exists", v.ID)
		}
	}
	dir, _ := f.paths.ExamplesDir(5)
	if _, err := os.Stat(dir); !errors.Is(err, fs.ErrNotExist) {
		t.Errorf("examples dir still present: %v", err)
	}

	if !f.libraryExists(t, 6) {
		t.Error("unrelated library 6 was deleted")
	}
	if n := f.logs.count(slog.LevelWarn); n != 0 {
		t.Errorf("warnings = %d, want 0", n)
	}
	if f.observer.libraries != 1 || f.observer.versions != 3 {
		t.Errorf("observer = %+v, want 1 library and 3 versions", f.observer)
	}
}

func TestDeleteLibrary_MissingExamples(t *testing.T) {
	f := newFixture(t)
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	versions := f.addLibrary(t, 7, false, base, base.Add(time.Hour))
	for _, v := range versions {
		f.writeArchive(t, 7, v.ID)
	}

	if err := f.m.DeleteLibrary(context.Background(), 7); err != nil {
		t.Fatalf("DeleteLibrary() failed: %v", err)
	}

	if f.libraryExists(t, 7) {
		t.Error("library 7 still exists")
	}
	if n := f.logs.count(slog.LevelWarn); n != 1 {
		t.Errorf("warnings = %d, want exactly 1 (%v)", n, f.logs.messages(slog.LevelWarn))
	}
	if f.observer.missing[ArtifactExamples] != 1 {
		t.Errorf("missing examples observed = %d, want 1", f.observer.missing[ArtifactExamples])
	}
}

func TestDeleteLibrary_NotFound(t *testing.T) {
	f := newFixture(t)

	err := f.m.DeleteLibrary(context.Background(), 404)
	if !errors.Is(err, registry.ErrNotFound) {
		t.Fatalf("DeleteLibrary() error = %v, want ErrNotFound", err)
	}

	var me *registry.MaintenanceError
	if !errors.As(err, &me) || me.Task != TaskDeleteLibrary {
		t.Errorf("expected MaintenanceError for %s, got %v", TaskDeleteLibrary, err)
	}
	if f.observer.libraries != 0 {
		t.Error("observer notified for a failed deletion")
	}
}

func TestDeleteLibrary_SecondCallNotFound(t *testing.T) {
	f := newFixture(t)
	f.addLibrary(t, 9, true, time.Now())

	ctx := context.Background()
	if err := f.m.DeleteLibrary(ctx, 9); err != nil {
		t.Fatalf("first DeleteLibrary() failed: %v", err)
	}
	if err := f.m.DeleteLibrary(ctx, 9); !errors.Is(err, registry.ErrNotFound) {
		t.Errorf("second DeleteLibrary() error = %v, want ErrNotFound", err)
	}
}

func TestDeleteLibrary_FilesystemErrorRollsBack(t *testing.T) {
	f := newFixture(t)
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	versions := f.addLibrary(t, 3, true, base, base.Add(time.Hour))

	// Replace the second archive with a non-empty directory.
	blocked, _ := f.paths.ArchivePath(3, versions[1].ID)
	if err := removeAndBlock(blocked); err != nil {
		t.Fatalf("failed to block archive: %v", err)
	}

	if err := f.m.DeleteLibrary(context.Background(), 3); err == nil {
		t.Fatal("DeleteLibrary() should fail")
	}

	if !f.libraryExists(t, 3) {
		t.Error("library row should survive a failed deletion")
	}
	if ids := f.versionIDs(t, 3); len(ids) != 2 {
		t.Errorf("versions = %v, want both to survive", ids)
	}
	if f.observer.libraries != 0 {
		t.Error("observer notified for a failed deletion")
	}
}

func TestDeleteLibrary_SQLite(t *testing.T) {
	f := newFixtureWithStore(t, newSQLiteStore(t))
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	f.addLibrary(t, 150, true, base, base.Add(time.Minute))

	if err := f.m.DeleteLibrary(context.Background(), 150); err != nil {
		t.Fatalf("DeleteLibrary() failed: %v", err)
	}
	if f.libraryExists(t, 150) {
		t.Error("library 150 still exists")
	}
	if ids := f.versionIDs(t, 150); len(ids) != 0 {
		t.Errorf("versions did not cascade: %v", ids)
	}
}
