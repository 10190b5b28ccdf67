package maintenance

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/gofrs/flock"
)

// ErrLocked is returned when another process holds the maintenance lock.
var ErrLocked = errors.New("maintenance lock is held by another process")

// RunLock is an exclusive, non-blocking file lock shared by every janitor
// process pointed at the same lock path.
type RunLock struct {
	path string
	lock *flock.Flock
}

// NewRunLock creates a lock backed by the file at path. The parent
// directory is created if needed.
func NewRunLock(path string) (*RunLock, error) {
	if path == "" {
		return nil, errors.New("lock path is required")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create lock dir: %w", err)
	}
	return &RunLock{path: path, lock: flock.New(path)}, nil
}

// Acquire takes the lock or returns ErrLocked if it is held elsewhere.
func (l *RunLock) Acquire() error {
	ok, err := l.lock.TryLock()
	if err != nil {
		return fmt.Errorf("acquire lock %s: %w", l.path, err)
	}
	if !ok {
		return ErrLocked
	}
	return nil
}

// Release gives up the lock.
func (l *RunLock) Release() error {
	return l.lock.Unlock()
}

// Path returns the lock file path.
func (l *RunLock) Path() string {
	return l.path
}
