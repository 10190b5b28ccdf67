package storage

import (
	"fmt"
	"log/slog"

	"libregistry/janitor/pkg/registry"
)

// txn is a backend transaction that can be finished.
type txn interface {
	registry.Tx
	commit() error
	rollback() error
}

// runInTx runs fn against tx, committing on success. On error or panic the
// transaction is rolled back and the original failure is returned or
// re-panicked.
func runInTx(logger *slog.Logger, backend string, tx txn, fn func(registry.Tx) error) (err error) {
	defer func() {
		if p := recover(); p != nil {
			rollbackLogged(logger, tx, fmt.Errorf("panic: %v", p))
			panic(p)
		}
	}()

	if err := fn(tx); err != nil {
		rollbackLogged(logger, tx, err)
		return err
	}

	if err := tx.commit(); err != nil {
		return registry.NewStorageError(backend, "commit", err)
	}
	return nil
}

func rollbackLogged(logger *slog.Logger, tx txn, cause error) {
	if err := tx.rollback(); err != nil {
		logger.Error("transaction rollback failed",
			"error", err,
			"cause", cause,
		)
		return
	}
	logger.Error("transaction rolled back", "cause", cause)
}
