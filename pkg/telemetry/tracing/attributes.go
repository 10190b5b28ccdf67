package tracing

import (
	"go.opentelemetry.io/otel/attribute"
)

// Attribute keys for maintenance spans. Custom keys use the "janitor.*"
// namespace.
const (
	AttrRunID        = "janitor.run_id"
	AttrTask         = "janitor.task"
	AttrAffected     = "janitor.affected"
	AttrLibraryID    = "janitor.library_id"
	AttrKeepVersions = "janitor.keep_versions"
	AttrLockSkipped  = "janitor.lock_skipped"
)

// SpanName returns the span name for a maintenance task.
func SpanName(task string) string {
	return "maintenance." + task
}

// RunAttributes returns the attributes identifying a maintenance run.
func RunAttributes(runID, task string) []attribute.KeyValue {
	return []attribute.KeyValue{
		attribute.String(AttrRunID, runID),
		attribute.String(AttrTask, task),
	}
}

// AffectedAttribute records how many rows a run changed.
func AffectedAttribute(n int64) attribute.KeyValue {
	return attribute.Int64(AttrAffected, n)
}
