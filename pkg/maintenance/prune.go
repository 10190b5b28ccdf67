package maintenance

import (
	"context"
	"errors"
	"fmt"

	"libregistry/janitor/pkg/registry"
)

// ErrInvalidKeepVersions is returned when the retention count is below one.
var ErrInvalidKeepVersions = errors.New("keep versions must be at least 1")

// PruneResult summarizes a PruneVersions run.
type PruneResult struct {
	// LibrariesScanned is the number of libraries owning at least one version.
	LibrariesScanned int `json:"libraries_scanned"`

	// LibrariesPruned is the number of libraries that lost versions.
	LibrariesPruned int `json:"libraries_pruned"`

	// VersionsDeleted is the total number of version rows deleted.
	VersionsDeleted int `json:"versions_deleted"`
}

// PruneVersions keeps the keepVersions most recently released versions of
// every library and deletes the rest, archive first and row second.
//
// Versions released at the same instant are ranked by id, higher id first.
// All row deletions are committed together; on failure none of them are,
// while archives removed before the failure stay removed.
func (m *Maintainer) PruneVersions(ctx context.Context, keepVersions int) (*PruneResult, error) {
	if keepVersions < 1 {
		return nil, registry.NewMaintenanceError(TaskPruneVersions,
			fmt.Errorf("%w: got %d", ErrInvalidKeepVersions, keepVersions))
	}

	var result PruneResult
	err := m.store.WithTx(ctx, func(tx registry.Tx) error {
		result = PruneResult{}

		counts, err := tx.LibraryVersionCounts(ctx)
		if err != nil {
			return err
		}
		result.LibrariesScanned = len(counts)

		for _, c := range counts {
			if c.Versions <= int64(keepVersions) {
				continue
			}

			deleted, err := m.pruneLibrary(ctx, tx, c.Library.ID, keepVersions)
			if err != nil {
				return err
			}
			if deleted > 0 {
				result.LibrariesPruned++
				result.VersionsDeleted += deleted
			}
		}
		return nil
	})
	if err != nil {
		return nil, registry.NewMaintenanceError(TaskPruneVersions, err)
	}

	m.observer.VersionsDeleted(result.VersionsDeleted)

	if result.VersionsDeleted == 0 {
		m.logger.DebugContext(ctx, "no versions pruned",
			"keep_versions", keepVersions,
			"libraries_scanned", result.LibrariesScanned,
		)
	} else {
		m.logger.InfoContext(ctx, "version pruning completed",
			"keep_versions", keepVersions,
			"libraries_scanned", result.LibrariesScanned,
			"libraries_pruned", result.LibrariesPruned,
			"versions_deleted", result.VersionsDeleted,
		)
	}

	return &result, nil
}

// pruneLibrary deletes all but the newest keep versions of one library.
func (m *Maintainer) pruneLibrary(ctx context.Context, tx registry.Tx, libID int64, keep int) (int, error) {
	versions, err := tx.ListVersions(ctx, libID)
	if err != nil {
		return 0, err
	}
	if len(versions) <= keep {
		return 0, nil
	}

	excess := versions[keep:]
	for _, v := range excess {
		if err := m.RemoveArchive(ctx, libID, v.ID); err != nil {
			return 0, err
		}
		if err := tx.DeleteVersion(ctx, v.ID); err != nil {
			return 0, err
		}
	}

	m.logger.DebugContext(ctx, "library versions pruned",
		"library_id", libID,
		"kept", keep,
		"deleted", len(excess),
	)
	return len(excess), nil
}
