package registry

import (
	"errors"
	"fmt"
)

// ErrNotFound is matched by every NotFoundError.
var ErrNotFound = errors.New("not found")

// NotFoundError reports a missing library or version row.
type NotFoundError struct {
	Kind string // "library" or "version"
	ID   int64
}

// Error implements the error interface.
func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s #%d not found", e.Kind, e.ID)
}

// Is makes errors.Is(err, ErrNotFound) succeed.
func (e *NotFoundError) Is(target error) bool {
	return target == ErrNotFound
}

// NewNotFoundError creates a new NotFoundError.
func NewNotFoundError(kind string, id int64) *NotFoundError {
	return &NotFoundError{Kind: kind, ID: id}
}

// StorageError represents an error from the storage backend.
type StorageError struct {
	Backend   string // Storage backend type ("sqlite", "memory")
	Operation string // Operation that failed ("begin", "commit", "delete_library", etc.)
	Cause     error  // Underlying error
}

// Error implements the error interface.
func (e *StorageError) Error() string {
	return fmt.Sprintf("storage error [backend=%s, operation=%s]: %v", e.Backend, e.Operation, e.Cause)
}

// Unwrap returns the underlying cause error.
func (e *StorageError) Unwrap() error {
	return e.Cause
}

// NewStorageError creates a new StorageError.
func NewStorageError(backend, operation string, cause error) *StorageError {
	return &StorageError{
		Backend:   backend,
		Operation: operation,
		Cause:     cause,
	}
}

// MaintenanceError represents a failed maintenance task.
type MaintenanceError struct {
	Task  string // Task name ("delete_library", "prune_versions", "optimize_sync")
	Cause error  // Underlying error
}

// Error implements the error interface.
func (e *MaintenanceError) Error() string {
	return fmt.Sprintf("maintenance error [task=%s]: %v", e.Task, e.Cause)
}

// Unwrap returns the underlying cause error.
func (e *MaintenanceError) Unwrap() error {
	return e.Cause
}

// NewMaintenanceError creates a new MaintenanceError.
func NewMaintenanceError(task string, cause error) *MaintenanceError {
	return &MaintenanceError{
		Task:  task,
		Cause: cause,
	}
}
