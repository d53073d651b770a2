package taskmanager

import "time"

// Status represents the current state of a task record.
type Status string

// Possible task status values
const (
	StatusPending   Status = "pending"
	StatusRunning   Status = "running"
	StatusCompleted Status = "completed"
	StatusFailed    Status = "failed"
	StatusCancelled Status = "cancelled"
)

// Terminal reports whether the status is a final state. A record in a
// terminal state never transitions again.
func (s Status) Terminal() bool {
	switch s {
	case StatusCompleted, StatusFailed, StatusCancelled:
		return true
	}
	return false
}

// IsValid reports whether s is one of the known status values.
func (s Status) IsValid() bool {
	switch s {
	case StatusPending, StatusRunning, StatusCompleted, StatusFailed, StatusCancelled:
		return true
	}
	return false
}

// Record describes one task submission. The task name acts as the primary
// key among live (pending or running) records. Query methods on Manager
// return copies of records, never live references, so a Record held by a
// caller does not change underneath it.
type Record struct {
	// Name is the caller-supplied task identifier.
	Name string `json:"name"`

	// Status is the current lifecycle state.
	Status Status `json:"status"`

	// Result holds the success value. It is set only when Status is
	// StatusCompleted.
	Result any `json:"result,omitempty"`

	// Error holds a human-readable failure description. It is set only
	// when Status is StatusFailed.
	Error string `json:"error,omitempty"`

	// Progress is a caller-updatable completion percentage in [0,100].
	Progress int `json:"progress"`

	// StartTime is when the task was submitted.
	StartTime time.Time `json:"start_time"`

	// FinishTime is when the task reached a terminal state. It is the
	// zero value while the task is live.
	FinishTime time.Time `json:"finish_time,omitzero"`

	// ArgsSnapshot captures the submission arguments for introspection.
	ArgsSnapshot string `json:"args,omitempty"`
}
