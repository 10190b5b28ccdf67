package main

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/cobra"

	"libregistry/janitor/pkg/registry"
	"libregistry/janitor/pkg/registry/layout"
	"libregistry/janitor/pkg/registry/storage"
)

// env is a temporary janitor installation: config file, database and
// artifact root.
type env struct {
	dir     string
	dbPath  string
	root    string
	cfgPath string
}

func newEnv(t *testing.T) *env {
	t.Helper()

	dir := t.TempDir()
	e := &env{
		dir:     dir,
		dbPath:  filepath.Join(dir, "registry.db"),
		root:    filepath.Join(dir, "download"),
		cfgPath: filepath.Join(dir, "janitor.yaml"),
	}
	if err := os.MkdirAll(e.root, 0o755); err != nil {
		t.Fatal(err)
	}

	content := fmt.Sprintf(`
database:
  driver: sqlite
  path: %s
storage:
  root: %s
maintenance:
  keep_versions: 2
  prune_schedule: ""
  optimize_schedule: ""
  lock_path: %s
  watch_config: false
server:
  listen_address: 127.0.0.1:0
telemetry:
  logging:
    level: error
`, e.dbPath, e.root, filepath.Join(dir, "janitor.lock"))
	if err := os.WriteFile(e.cfgPath, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	origCfg, origVerbose := cfgFile, verbose
	origMaint, origRuns, origRun := maintenanceFlags, runsFlags, runFlags
	cfgFile = e.cfgPath
	t.Cleanup(func() {
		cfgFile, verbose = origCfg, origVerbose
		maintenanceFlags, runsFlags, runFlags = origMaint, origRuns, origRun
	})

	return e
}

// seed inserts a library with one version per release offset (hours) and
// writes an archive for each.
func (e *env) seed(t *testing.T, libID int64, offsets ...int) {
	t.Helper()

	store, err := storage.NewSQLiteStore(&storage.SQLiteConfig{
		Path:        e.dbPath,
		Driver:      storage.DriverModernc,
		WALMode:     true,
		BusyTimeout: 5 * time.Second,
	})
	if err != nil {
		t.Fatalf("NewSQLiteStore() failed: %v", err)
	}
	defer store.Close()

	paths := layout.New(e.root)
	base := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	ctx := context.Background()

	err = store.WithTx(ctx, func(tx registry.Tx) error {
		if err := tx.InsertLibrary(ctx, &registry.Library{ID: libID, Name: fmt.Sprintf("lib-%d", libID)}); err != nil {
			return err
		}
		for i, h := range offsets {
			v := &registry.Version{
				LibraryID: libID,
				Name:      fmt.Sprintf("1.%d.0", i),
				Released:  base.Add(time.Duration(h) * time.Hour),
			}
			if err := tx.InsertVersion(ctx, v); err != nil {
				return err
			}
			path, err := paths.ArchivePath(libID, v.ID)
			if err != nil {
				return err
			}
			if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
				return err
			}
			if err := os.WriteFile(path, []byte("tar"), 0o644); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		t.Fatalf("seed failed: %v", err)
	}
}

// countArchives returns how many archive files remain under the root.
func (e *env) countArchives(t *testing.T) int {
	t.Helper()

	n := 0
	err := filepath.WalkDir(filepath.Join(e.root, "libarch"), func(path string, d os.DirEntry, err error) error {
		if os.IsNotExist(err) {
			return filepath.SkipDir
		}
		if err != nil {
			return err
		}
		if !d.IsDir() {
			n++
		}
		return nil
	})
	if err != nil {
		t.Fatalf("walk failed: %v", err)
	}
	return n
}

func testCommand() (*cobra.Command, *bytes.Buffer) {
	buf := &bytes.Buffer{}
	cmd := &cobra.Command{}
	cmd.SetOut(buf)
	cmd.SetContext(context.Background())
	return cmd, buf
}
