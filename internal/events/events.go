package events

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/feedscribe/feedscribe/internal/taskmanager"
)

// TaskEvent describes a background task reaching a terminal state. It carries
// a snapshot of the task record so handlers never touch live manager state.
type TaskEvent struct {
	// ID is a unique identifier for this event
	ID uuid.UUID `json:"id"`

	// TaskName is the name of the task that finished
	TaskName string `json:"task_name"`

	// Status is the terminal status the task reached
	Status taskmanager.Status `json:"status"`

	// Error holds the failure message for failed tasks, empty otherwise
	Error string `json:"error,omitempty"`

	// Duration is the wall time between the task starting and finishing,
	// zero for tasks that were cancelled before running
	Duration time.Duration `json:"duration"`

	// CreatedAt is the timestamp when the event was created
	CreatedAt time.Time `json:"created_at"`
}

// NewTaskEvent builds a TaskEvent from a finished task record.
func NewTaskEvent(record taskmanager.Record) *TaskEvent {
	event := &TaskEvent{
		ID:        uuid.New(),
		TaskName:  record.Name,
		Status:    record.Status,
		Error:     record.Error,
		CreatedAt: time.Now(),
	}
	if !record.StartTime.IsZero() && !record.FinishTime.IsZero() {
		event.Duration = record.FinishTime.Sub(record.StartTime)
	}
	return event
}

// EventHandler defines an interface for components that can handle events.
// Handlers are responsible for processing events and taking appropriate actions.
type EventHandler interface {
	// HandleEvent processes the given event within the provided context.
	// Returns an error if the event cannot be handled successfully.
	HandleEvent(ctx context.Context, event *TaskEvent) error
}

// EventEmitter defines an interface for components that can emit events.
// This allows the task manager to publish completions without direct
// knowledge of handlers.
type EventEmitter interface {
	// EmitEvent publishes the given event to all registered handlers.
	// Returns an error if the event cannot be emitted.
	EmitEvent(ctx context.Context, event *TaskEvent) error
}
