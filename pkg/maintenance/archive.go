package maintenance

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
)

// RemoveArchive deletes the archive file of one library version.
//
// A missing archive is logged once at warning level and is not an error;
// it was most likely removed by an earlier, interrupted run. Any other
// filesystem error is returned, and a routine calling RemoveArchive inside
// its transaction rolls that transaction back.
func (m *Maintainer) RemoveArchive(ctx context.Context, libID, versionID int64) error {
	path, err := m.paths.ArchivePath(libID, versionID)
	if err != nil {
		return err
	}

	if err := os.Remove(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			m.logger.WarnContext(ctx, "unable to remove version archive, probably it was removed earlier",
				"library_id", libID,
				"version_id", versionID,
				"path", path,
			)
			m.observer.ArtifactMissing(ArtifactArchive)
			return nil
		}
		return fmt.Errorf("remove archive of lib #%d version #%d: %w", libID, versionID, err)
	}

	m.logger.DebugContext(ctx, "version archive removed",
		"library_id", libID,
		"version_id", versionID,
		"path", path,
	)
	return nil
}

// removeExamples recursively deletes a library's examples directory.
// A missing directory is logged once at warning level and is not an error.
func (m *Maintainer) removeExamples(ctx context.Context, libID int64) error {
	dir, err := m.paths.ExamplesDir(libID)
	if err != nil {
		return err
	}

	if _, err := os.Lstat(dir); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			m.logger.WarnContext(ctx, "unable to remove library examples directory, probably it was removed earlier",
				"library_id", libID,
				"path", dir,
			)
			m.observer.ArtifactMissing(ArtifactExamples)
			return nil
		}
		return fmt.Errorf("stat examples dir of lib #%d: %w", libID, err)
	}

	if err := os.RemoveAll(dir); err != nil {
		return fmt.Errorf("remove examples dir of lib #%d: %w", libID, err)
	}

	m.logger.DebugContext(ctx, "library examples removed",
		"library_id", libID,
		"path", dir,
	)
	return nil
}
