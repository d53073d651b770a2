package events

import (
	"context"
	"log/slog"

	"github.com/feedscribe/feedscribe/internal/taskmanager"
)

// LogHandler is an EventHandler that writes a structured log line for every
// task that reaches a terminal state. Failures log at error level, the rest
// at info.
type LogHandler struct {
	logger *slog.Logger
}

// NewLogHandler creates a LogHandler writing to logger.
func NewLogHandler(logger *slog.Logger) *LogHandler {
	return &LogHandler{
		logger: logger.With("component", "task_event_log"),
	}
}

// HandleEvent implements the EventHandler interface.
func (h *LogHandler) HandleEvent(ctx context.Context, event *TaskEvent) error {
	attrs := []any{
		slog.String("task_name", event.TaskName),
		slog.String("status", string(event.Status)),
		slog.Duration("duration", event.Duration),
	}

	if event.Status == taskmanager.StatusFailed {
		attrs = append(attrs, slog.String("error", event.Error))
		h.logger.ErrorContext(ctx, "background task failed", attrs...)
		return nil
	}

	h.logger.InfoContext(ctx, "background task finished", attrs...)
	return nil
}
