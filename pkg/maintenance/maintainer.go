package maintenance

import (
	"log/slog"
	"time"

	"libregistry/janitor/pkg/registry"
	"libregistry/janitor/pkg/registry/layout"
)

// Task names used in logs, metrics and run history.
const (
	TaskDeleteLibrary = "delete_library"
	TaskPruneVersions = "prune_versions"
	TaskOptimizeSync  = "optimize_sync"
)

// Artifact kinds reported to the Observer.
const (
	ArtifactArchive  = "archive"
	ArtifactExamples = "examples"
)

// Observer receives counters from the maintenance routines.
// metrics.MaintenanceMetrics satisfies it.
type Observer interface {
	ArtifactMissing(kind string)
	LibraryDeleted()
	VersionsDeleted(n int)
	LibrariesScheduled(n int)
}

type nopObserver struct{}

func (nopObserver) ArtifactMissing(string) {}
func (nopObserver) LibraryDeleted()        {}
func (nopObserver) VersionsDeleted(int)    {}
func (nopObserver) LibrariesScheduled(int) {}

// Maintainer runs maintenance routines against a registry store and the
// artifact tree described by a layout.
type Maintainer struct {
	store    registry.Store
	paths    *layout.Layout
	observer Observer
	logger   *slog.Logger
	now      func() time.Time
}

// New creates a Maintainer.
func New(store registry.Store, paths *layout.Layout) *Maintainer {
	return &Maintainer{
		store:    store,
		paths:    paths,
		observer: nopObserver{},
		logger:   slog.Default().With("component", "maintenance"),
		now:      time.Now,
	}
}

// SetObserver installs an observer for routine counters. Nil restores the
// no-op observer.
func (m *Maintainer) SetObserver(o Observer) {
	if o == nil {
		o = nopObserver{}
	}
	m.observer = o
}

// SetLogger replaces the logger used by the routines.
func (m *Maintainer) SetLogger(logger *slog.Logger) {
	if logger == nil {
		logger = slog.Default()
	}
	m.logger = logger.With("component", "maintenance")
}
