package api

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/feedscribe/feedscribe/internal/api/shared"
	"github.com/feedscribe/feedscribe/internal/taskmanager"
)

// TaskHandler exposes background task inspection and control endpoints.
type TaskHandler struct {
	tasks  *taskmanager.Manager
	logger *slog.Logger
}

// NewTaskHandler creates a new TaskHandler with the given dependencies.
func NewTaskHandler(tasks *taskmanager.Manager, logger *slog.Logger) *TaskHandler {
	return &TaskHandler{
		tasks:  tasks,
		logger: logger.With(slog.String("component", "task_handler")),
	}
}

// List handles GET /tasks. An optional status query parameter filters by
// lifecycle state.
func (h *TaskHandler) List(w http.ResponseWriter, r *http.Request) {
	var status taskmanager.Status
	if raw := r.URL.Query().Get("status"); raw != "" {
		status = taskmanager.Status(raw)
		if !status.IsValid() {
			shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid status filter")
			return
		}
	}

	records := h.tasks.ListTasks(status)
	shared.RespondWithJSON(w, r, http.StatusOK, TaskListResponse{
		Tasks: records,
		Count: len(records),
	})
}

// Get handles GET /tasks/{name}.
func (h *TaskHandler) Get(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	record, ok := h.tasks.GetTaskStatus(name)
	if !ok {
		shared.RespondWithError(w, r, http.StatusNotFound, "Task not found")
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, record)
}

// Cancel handles POST /tasks/{name}/cancel. Only tasks that have not started
// running can be cancelled.
func (h *TaskHandler) Cancel(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	record, ok := h.tasks.GetTaskStatus(name)
	if !ok {
		shared.RespondWithError(w, r, http.StatusNotFound, "Task not found")
		return
	}

	if !h.tasks.CancelTask(name) {
		shared.RespondWithError(w, r, http.StatusConflict,
			"Task is not pending, only pending tasks can be cancelled")
		return
	}

	h.logger.Info("task cancelled",
		slog.String("task_name", name),
		slog.String("previous_status", string(record.Status)))

	record, _ = h.tasks.GetTaskStatus(name)
	shared.RespondWithJSON(w, r, http.StatusOK, record)
}

// Progress handles PUT /tasks/{name}/progress.
func (h *TaskHandler) Progress(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")

	var req UpdateProgressRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid request body")
		return
	}
	if err := shared.ValidateRequest(req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, SanitizeValidationError(err))
		return
	}

	if _, ok := h.tasks.GetTaskStatus(name); !ok {
		shared.RespondWithError(w, r, http.StatusNotFound, "Task not found")
		return
	}

	if !h.tasks.UpdateProgress(name, req.Progress) {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Progress update rejected")
		return
	}

	record, _ := h.tasks.GetTaskStatus(name)
	shared.RespondWithJSON(w, r, http.StatusOK, record)
}

// ClearCompleted handles DELETE /tasks/completed. It evicts every record in
// the completed or failed state.
func (h *TaskHandler) ClearCompleted(w http.ResponseWriter, r *http.Request) {
	removed := h.tasks.ClearCompletedTasks()
	h.logger.Info("cleared finished task records", slog.Int("removed", removed))
	shared.RespondWithJSON(w, r, http.StatusOK, ClearedTasksResponse{Removed: removed})
}

// Stats handles GET /tasks/stats.
func (h *TaskHandler) Stats(w http.ResponseWriter, r *http.Request) {
	stats := h.tasks.Stats()
	shared.RespondWithJSON(w, r, http.StatusOK, TaskStatsResponse{
		Workers:              stats.Workers,
		PoolGeneration:       stats.PoolGeneration,
		ExecutedSinceRestart: stats.ExecutedSinceRestart,
		Pending:              h.tasks.TaskCount(taskmanager.StatusPending),
		Running:              h.tasks.TaskCount(taskmanager.StatusRunning),
		Completed:            h.tasks.TaskCount(taskmanager.StatusCompleted),
		Failed:               h.tasks.TaskCount(taskmanager.StatusFailed),
		Cancelled:            h.tasks.TaskCount(taskmanager.StatusCancelled),
		RunningTasks:         h.tasks.RunningTasks(),
		PendingTasks:         h.tasks.PendingTasks(),
	})
}
