// Package api provides HTTP handlers for the API.
package api

import (
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/taskwell/taskwell-api/internal/api/shared"
	"github.com/taskwell/taskwell-api/internal/domain"
	"github.com/taskwell/taskwell-api/internal/platform/logger"
	"github.com/taskwell/taskwell-api/internal/store"
)

// CreateTaskRequest represents the request body for creating a new task
type CreateTaskRequest struct {
	Title       string     `json:"title"       validate:"required,max=200"`
	Description *string    `json:"description" validate:"omitempty,max=1000"`
	Status      string     `json:"status"      validate:"omitempty,oneof=pending in_progress completed cancelled"`
	Priority    string     `json:"priority"    validate:"omitempty,oneof=low medium high urgent"`
	AssignedTo  *string    `json:"assigned_to" validate:"omitempty,max=100"`
	DueDate     *time.Time `json:"due_date"`
}

// UpdateTaskRequest represents the request body for partially updating a task.
// Absent fields leave the stored value untouched; an explicit null clears
// the attribute where it is clearable. Field constraints are enforced by
// the store under the same rules as creation.
type UpdateTaskRequest struct {
	Title       store.Optional[string]              `json:"title"`
	Description store.Optional[string]              `json:"description"`
	Status      store.Optional[domain.TaskStatus]   `json:"status"`
	Priority    store.Optional[domain.TaskPriority] `json:"priority"`
	AssignedTo  store.Optional[string]              `json:"assigned_to"`
	DueDate     store.Optional[time.Time]           `json:"due_date"`
}

// TaskResponse represents the response data for a task
type TaskResponse struct {
	ID          string     `json:"id"`
	Title       string     `json:"title"`
	Description *string    `json:"description"`
	Status      string     `json:"status"`
	Priority    string     `json:"priority"`
	AssignedTo  *string    `json:"assigned_to"`
	DueDate     *time.Time `json:"due_date"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

// TaskHandler handles task-related HTTP requests
type TaskHandler struct {
	taskStore store.TaskStore
	logger    *slog.Logger
}

// NewTaskHandler creates a new TaskHandler
func NewTaskHandler(taskStore store.TaskStore, log *slog.Logger) *TaskHandler {
	if taskStore == nil {
		panic("taskStore cannot be nil for TaskHandler")
	}
	if log == nil {
		log = slog.Default()
	}

	return &TaskHandler{
		taskStore: taskStore,
		logger:    log.With(slog.String("component", "task_handler")),
	}
}

// CreateTask handles POST /api/tasks requests
func (h *TaskHandler) CreateTask(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	var req CreateTaskRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid request format")
		return
	}

	if err := shared.ValidateRequest(req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, SanitizeValidationError(err))
		return
	}

	task, err := domain.NewTask(
		req.Title,
		req.Description,
		domain.TaskStatus(req.Status),
		domain.TaskPriority(req.Priority),
		req.AssignedTo,
		req.DueDate,
	)
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	if err := h.taskStore.Create(r.Context(), task); err != nil {
		log.Error("failed to create task",
			slog.String("error", err.Error()),
			slog.String("task_id", task.ID.String()))
		HandleAPIError(w, r, err, "")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusCreated, taskToResponse(task))
}

// GetTask handles GET /api/tasks/{id} requests
func (h *TaskHandler) GetTask(w http.ResponseWriter, r *http.Request) {
	id, ok := h.taskIDFromPath(w, r)
	if !ok {
		return
	}

	task, err := h.taskStore.GetByID(r.Context(), id)
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, taskToResponse(task))
}

// ListTasks handles GET /api/tasks requests.
// Optional query parameters: status, priority (equality filters), offset,
// limit (pagination).
func (h *TaskHandler) ListTasks(w http.ResponseWriter, r *http.Request) {
	var filter store.TaskFilter

	if raw := r.URL.Query().Get("status"); raw != "" {
		status, err := domain.ParseTaskStatus(raw)
		if err != nil {
			HandleAPIError(w, r, err, "")
			return
		}
		filter.Status = &status
	}

	if raw := r.URL.Query().Get("priority"); raw != "" {
		priority, err := domain.ParseTaskPriority(raw)
		if err != nil {
			HandleAPIError(w, r, err, "")
			return
		}
		filter.Priority = &priority
	}

	limit, err := queryInt(r, "limit", store.DefaultListLimit)
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}
	offset, err := queryInt(r, "offset", 0)
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	h.respondWithListing(w, r, filter, limit, offset)
}

// ListTasksByStatus handles GET /api/tasks/status/{status} requests.
// It is a convenience listing that returns every task with the given
// status, unpaginated.
func (h *TaskHandler) ListTasksByStatus(w http.ResponseWriter, r *http.Request) {
	status, err := domain.ParseTaskStatus(chi.URLParam(r, "status"))
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	h.respondWithListing(w, r, store.TaskFilter{Status: &status}, store.NoListLimit, 0)
}

// ListTasksByPriority handles GET /api/tasks/priority/{priority} requests.
// Like ListTasksByStatus, it returns every matching task.
func (h *TaskHandler) ListTasksByPriority(w http.ResponseWriter, r *http.Request) {
	priority, err := domain.ParseTaskPriority(chi.URLParam(r, "priority"))
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	h.respondWithListing(w, r, store.TaskFilter{Priority: &priority}, store.NoListLimit, 0)
}

// UpdateTask handles PUT /api/tasks/{id} requests.
// Only the fields present in the request body are applied; updated_at is
// always refreshed on success.
func (h *TaskHandler) UpdateTask(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	id, ok := h.taskIDFromPath(w, r)
	if !ok {
		return
	}

	var req UpdateTaskRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid request format")
		return
	}

	patch := store.TaskPatch{
		Title:       req.Title,
		Description: req.Description,
		Status:      req.Status,
		Priority:    req.Priority,
		AssignedTo:  req.AssignedTo,
		DueDate:     req.DueDate,
	}

	task, err := h.taskStore.Update(r.Context(), id, patch)
	if err != nil {
		log.Debug("task update rejected",
			slog.String("error", err.Error()),
			slog.String("task_id", id.String()))
		HandleAPIError(w, r, err, "")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, taskToResponse(task))
}

// DeleteTask handles DELETE /api/tasks/{id} requests.
// Responds with 204 No Content on success.
func (h *TaskHandler) DeleteTask(w http.ResponseWriter, r *http.Request) {
	id, ok := h.taskIDFromPath(w, r)
	if !ok {
		return
	}

	if err := h.taskStore.Delete(r.Context(), id); err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// taskIDFromPath extracts and parses the {id} path parameter.
// Writes a 400 response and returns false if the parameter is missing or
// not a valid UUID.
func (h *TaskHandler) taskIDFromPath(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	raw := chi.URLParam(r, "id")
	if raw == "" {
		HandleAPIError(w, r, domain.NewValidationError("id", "is required", domain.ErrInvalidID), "")
		return uuid.Nil, false
	}

	id, err := uuid.Parse(raw)
	if err != nil {
		HandleAPIError(w, r, domain.NewValidationError("id", "has invalid format", domain.ErrInvalidID), "")
		return uuid.Nil, false
	}

	return id, true
}

// respondWithListing runs the filtered listing and writes the response.
func (h *TaskHandler) respondWithListing(
	w http.ResponseWriter,
	r *http.Request,
	filter store.TaskFilter,
	limit, offset int,
) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	tasks, err := h.taskStore.List(r.Context(), filter, limit, offset)
	if err != nil {
		log.Error("failed to list tasks", slog.String("error", err.Error()))
		HandleAPIError(w, r, err, "Failed to list tasks")
		return
	}

	responses := make([]TaskResponse, 0, len(tasks))
	for _, task := range tasks {
		responses = append(responses, taskToResponse(task))
	}

	shared.RespondWithJSON(w, r, http.StatusOK, responses)
}

// queryInt parses an optional non-negative integer query parameter.
func queryInt(r *http.Request, name string, defaultValue int) (int, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return defaultValue, nil
	}

	value, err := strconv.Atoi(raw)
	if err != nil || value < 0 {
		return 0, domain.NewValidationError(name, "must be a non-negative integer", domain.ErrValidation)
	}

	return value, nil
}

// taskToResponse converts a domain.Task to a TaskResponse
func taskToResponse(task *domain.Task) TaskResponse {
	return TaskResponse{
		ID:          task.ID.String(),
		Title:       task.Title,
		Description: task.Description,
		Status:      string(task.Status),
		Priority:    string(task.Priority),
		AssignedTo:  task.AssignedTo,
		DueDate:     task.DueDate,
		CreatedAt:   task.CreatedAt,
		UpdatedAt:   task.UpdatedAt,
	}
}
