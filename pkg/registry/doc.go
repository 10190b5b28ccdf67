// Package registry defines the package-registry data model that the janitor
// maintains, and the storage contract the maintenance routines run against.
//
// # Data Model
//
// A Library is a published unit of reusable code. It owns zero or more
// Versions, each a released snapshot with its own archive file on disk:
//
//	Library (id, name, synced)
//	   └── Version (id, library_id, name, released)
//
// Deleting a Library row cascades to its Version rows. Archive files and the
// examples directory live outside the database; see package layout.
//
// # Transactions
//
// Every maintenance routine runs inside Store.WithTx, which begins a
// transaction, runs the body, and commits on success. If the body returns an
// error or panics, the transaction is rolled back and the original failure is
// handed back to the caller:
//
//	err := store.WithTx(ctx, func(tx registry.Tx) error {
//	    lib, err := tx.GetLibrary(ctx, 42)
//	    if err != nil {
//	        return err
//	    }
//	    return tx.DeleteLibrary(ctx, lib.ID)
//	})
//
// # Backends
//
// See package storage for the SQLite and in-memory implementations.
package registry
