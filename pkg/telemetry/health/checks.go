package health

import (
	"context"
	"errors"
	"fmt"
	"os"
)

// Pinger is implemented by registry stores.
type Pinger interface {
	Ping(ctx context.Context) error
}

// DatabaseCheck reports whether the registry database answers.
func DatabaseCheck(p Pinger) CheckFunc {
	return func(ctx context.Context) error {
		if err := p.Ping(ctx); err != nil {
			return fmt.Errorf("database unreachable: %w", err)
		}
		return nil
	}
}

// StorageRootCheck reports whether the artifact root is an existing directory.
func StorageRootCheck(root string) CheckFunc {
	return func(ctx context.Context) error {
		info, err := os.Stat(root)
		if err != nil {
			return fmt.Errorf("storage root: %w", err)
		}
		if !info.IsDir() {
			return fmt.Errorf("storage root %s is not a directory", root)
		}
		return nil
	}
}

// SchedulerCheck reports whether the maintenance scheduler is running.
func SchedulerCheck(isRunning func() bool) CheckFunc {
	return func(ctx context.Context) error {
		if !isRunning() {
			return errors.New("scheduler is not running")
		}
		return nil
	}
}
