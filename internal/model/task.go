package model

// TaskState represents the lifecycle state of an analysis task
type TaskState string

const (
	TaskStatePending    TaskState = "pending"
	TaskStateProcessing TaskState = "processing"
	TaskStateCompleted  TaskState = "completed"
	TaskStateFailed     TaskState = "failed"
)

// IsTerminal reports whether no further transitions may leave the state
func (s TaskState) IsTerminal() bool {
	return s == TaskStateCompleted || s == TaskStateFailed
}

// Stable machine-readable error codes recorded on failed tasks
const (
	ErrCodeSourceNotFound    = "source_not_found"
	ErrCodeSourceAuth        = "source_auth"
	ErrCodeSourceUnavailable = "source_unavailable"
)
