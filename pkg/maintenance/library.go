package maintenance

import (
	"context"

	"libregistry/janitor/pkg/registry"
)

// DeleteLibrary removes a library together with all of its artifacts.
//
// The steps run in a fixed order inside one transaction: load the library
// (a missing library fails with registry.ErrNotFound), remove its examples
// directory, remove every version archive, then delete the library row, which
// cascades to the version rows. A failure rolls back the row deletion; files
// removed before the failure stay removed.
func (m *Maintainer) DeleteLibrary(ctx context.Context, libID int64) error {
	var versions int

	err := m.store.WithTx(ctx, func(tx registry.Tx) error {
		lib, err := tx.GetLibrary(ctx, libID)
		if err != nil {
			return err
		}

		if err := m.removeExamples(ctx, libID); err != nil {
			return err
		}

		for _, v := range lib.Versions {
			if err := m.RemoveArchive(ctx, libID, v.ID); err != nil {
				return err
			}
		}

		if err := tx.DeleteLibrary(ctx, libID); err != nil {
			return err
		}
		versions = len(lib.Versions)
		return nil
	})
	if err != nil {
		return registry.NewMaintenanceError(TaskDeleteLibrary, err)
	}

	m.observer.LibraryDeleted()
	m.observer.VersionsDeleted(versions)
	m.logger.InfoContext(ctx, "library deleted",
		"library_id", libID,
		"versions_deleted", versions,
	)
	return nil
}
