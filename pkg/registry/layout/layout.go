// Package layout maps registry identifiers to their locations under the
// download root.
//
// Archives and examples are sharded into buckets of 100 libraries so no single
// directory grows unbounded:
//
//	<root>/libarch/<shard>/<lib_id>/<version_id>.tar.gz
//	<root>/libexample/<shard>/<lib_id>/
//
// where shard is ceil(lib_id / 100).
package layout

import (
	"errors"
	"fmt"
	"path/filepath"
	"strconv"
)

const (
	archivesDir = "libarch"
	examplesDir = "libexample"

	// ArchiveExt is the extension of version archive files.
	ArchiveExt = ".tar.gz"

	shardSize = 100
)

// ErrInvalidID is returned for non-positive library or version ids.
var ErrInvalidID = errors.New("layout: id must be positive")

// Layout resolves artifact paths relative to a download root.
type Layout struct {
	Root string
}

// New creates a Layout rooted at root.
func New(root string) *Layout {
	return &Layout{Root: root}
}

// ArchivePath returns the archive file path of one library version.
func (l *Layout) ArchivePath(libID, versionID int64) (string, error) {
	if libID <= 0 || versionID <= 0 {
		return "", fmt.Errorf("archive path for lib #%d version #%d: %w", libID, versionID, ErrInvalidID)
	}
	return filepath.Join(l.libraryDir(archivesDir, libID), strconv.FormatInt(versionID, 10)+ArchiveExt), nil
}

// ExamplesDir returns the directory holding a library's example files.
func (l *Layout) ExamplesDir(libID int64) (string, error) {
	if libID <= 0 {
		return "", fmt.Errorf("examples dir for lib #%d: %w", libID, ErrInvalidID)
	}
	return l.libraryDir(examplesDir, libID), nil
}

func (l *Layout) libraryDir(kind string, libID int64) string {
	return filepath.Join(l.Root, kind, strconv.FormatInt(Shard(libID), 10), strconv.FormatInt(libID, 10))
}

// Shard returns the bucket a library id falls into.
func Shard(libID int64) int64 {
	return (libID + shardSize - 1) / shardSize
}
