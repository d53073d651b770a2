package taskmanager

import (
	"errors"
	"fmt"
)

// Common errors returned by the Manager.
var (
	// ErrEmptyTaskName is returned by Submit when the task name is empty.
	ErrEmptyTaskName = errors.New("task name cannot be empty")

	// ErrNilTaskFunc is returned by Submit when the task function is nil.
	ErrNilTaskFunc = errors.New("task function cannot be nil")

	// ErrManagerShutdown is returned by Submit after Shutdown has been called.
	ErrManagerShutdown = errors.New("task manager is shut down")

	// ErrTaskCancelled is the error observed through a handle whose task
	// was cancelled before it started.
	ErrTaskCancelled = errors.New("task was cancelled before it started")

	// ErrInvalidConfig is returned by New when a configuration value is
	// zero or negative.
	ErrInvalidConfig = errors.New("invalid task manager configuration")
)

// ExecutionError wraps the failure of a submitted callable. It is stored on
// the task record as a string and surfaced to callers that block on the
// task's handle. It never propagates through the worker pool itself.
type ExecutionError struct {
	// TaskName is the name of the task that failed.
	TaskName string

	// Err is the underlying failure returned (or recovered) from the callable.
	Err error
}

func (e *ExecutionError) Error() string {
	return fmt.Sprintf("task %q failed: %v", e.TaskName, e.Err)
}

func (e *ExecutionError) Unwrap() error {
	return e.Err
}
