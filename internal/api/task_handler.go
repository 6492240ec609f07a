// Package api provides HTTP handlers for the API.
package api

import (
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/daytask/daytask-api/internal/api/shared"
	"github.com/daytask/daytask-api/internal/domain"
	"github.com/daytask/daytask-api/internal/platform/logger"
	"github.com/daytask/daytask-api/internal/service"
)

// TaskHandler handles task-related HTTP requests.
type TaskHandler struct {
	taskService *service.TaskService
	logger      *slog.Logger
}

// NewTaskHandler creates a new TaskHandler.
func NewTaskHandler(taskService *service.TaskService, log *slog.Logger) *TaskHandler {
	if log == nil {
		// ALLOW-PANIC: Constructor enforcing required dependency
		panic("logger cannot be nil for TaskHandler")
	}

	return &TaskHandler{
		taskService: taskService,
		logger:      log.With(slog.String("component", "task_handler")),
	}
}

// ListTasks handles GET /tasks requests.
// It returns one page of the authenticated user's tasks for a date, or for
// a search term spanning all dates.
func (h *TaskHandler) ListTasks(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	userID, ok := authenticatedUserID(w, r, log)
	if !ok {
		return
	}

	q := r.URL.Query()
	page, _ := strconv.Atoi(q.Get("page"))
	query := ListTasksQuery{
		TaskDate: q.Get("task_date"),
		Search:   q.Get("search"),
		SortBy:   q.Get("sort_by"),
		SortDir:  q.Get("sort_dir"),
		Page:     page,
	}

	if err := shared.Validate.Struct(query); err != nil {
		log.Debug("list query validation failed",
			slog.String("user_id", userID.String()))
		shared.RespondWithValidationErrors(w, r, shared.FieldErrors(err))
		return
	}

	params := service.ListTasksParams{
		Search:  query.Search,
		SortBy:  query.SortBy,
		SortDir: query.SortDir,
		Page:    query.Page,
	}
	if query.TaskDate != "" {
		date, err := time.Parse(taskDateLayout, query.TaskDate)
		if err != nil {
			shared.RespondWithValidationErrors(w, r, map[string][]string{
				"task_date": {"The task_date field must match the format 2006-01-02."},
			})
			return
		}
		params.Date = &date
	}

	taskPage, err := h.taskService.List(r.Context(), userID, params)
	if err != nil {
		shared.RespondWithErrorAndLog(w, r, MapErrorToStatusCode(err), GetSafeErrorMessage(err), err)
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, pageToResponse(taskPage))
}

// CreateTask handles POST /tasks requests.
func (h *TaskHandler) CreateTask(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	userID, ok := authenticatedUserID(w, r, log)
	if !ok {
		return
	}

	var req CreateTaskRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid request format")
		return
	}

	if err := shared.Validate.Struct(req); err != nil {
		log.Debug("create task validation failed",
			slog.String("user_id", userID.String()))
		shared.RespondWithValidationErrors(w, r, shared.FieldErrors(err))
		return
	}

	taskDate, err := time.Parse(taskDateLayout, req.TaskDate)
	if err != nil {
		shared.RespondWithValidationErrors(w, r, map[string][]string{
			"task_date": {"The task_date field must match the format 2006-01-02."},
		})
		return
	}

	priority := 0
	if req.Priority != nil {
		priority = *req.Priority
	}

	task, err := h.taskService.Create(r.Context(), userID, service.CreateTaskParams{
		Statement: req.Statement,
		TaskDate:  taskDate,
		Priority:  priority,
	})
	if err != nil {
		shared.RespondWithErrorAndLog(w, r, MapErrorToStatusCode(err), GetSafeErrorMessage(err), err)
		return
	}

	shared.RespondWithJSON(w, r, http.StatusCreated, taskToResponse(task))
}

// GetTask handles GET /tasks/{id} requests.
func (h *TaskHandler) GetTask(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	userID, ok := authenticatedUserID(w, r, log)
	if !ok {
		return
	}

	taskID, ok := taskIDFromPath(w, r, log)
	if !ok {
		return
	}

	task, err := h.taskService.Get(r.Context(), userID, taskID)
	if err != nil {
		shared.RespondWithErrorAndLog(w, r, MapErrorToStatusCode(err), GetSafeErrorMessage(err), err)
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, taskToResponse(task))
}

// UpdateTask handles PUT /tasks/{id} requests.
// Any subset of statement, status, priority, and task_date may be supplied;
// unspecified fields are unchanged.
func (h *TaskHandler) UpdateTask(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	userID, ok := authenticatedUserID(w, r, log)
	if !ok {
		return
	}

	taskID, ok := taskIDFromPath(w, r, log)
	if !ok {
		return
	}

	var req UpdateTaskRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid request format")
		return
	}

	if err := shared.Validate.Struct(req); err != nil {
		log.Debug("update task validation failed",
			slog.String("user_id", userID.String()),
			slog.String("task_id", taskID.String()))
		shared.RespondWithValidationErrors(w, r, shared.FieldErrors(err))
		return
	}

	params := service.UpdateTaskParams{
		Statement: req.Statement,
		Priority:  req.Priority,
	}
	if req.Status != nil {
		status := domain.TaskStatus(*req.Status)
		params.Status = &status
	}
	if req.TaskDate != nil {
		date, err := time.Parse(taskDateLayout, *req.TaskDate)
		if err != nil {
			shared.RespondWithValidationErrors(w, r, map[string][]string{
				"task_date": {"The task_date field must match the format 2006-01-02."},
			})
			return
		}
		params.TaskDate = &date
	}

	task, err := h.taskService.Update(r.Context(), userID, taskID, params)
	if err != nil {
		shared.RespondWithErrorAndLog(w, r, MapErrorToStatusCode(err), GetSafeErrorMessage(err), err)
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, taskToResponse(task))
}

// DeleteTask handles DELETE /tasks/{id} requests.
func (h *TaskHandler) DeleteTask(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	userID, ok := authenticatedUserID(w, r, log)
	if !ok {
		return
	}

	taskID, ok := taskIDFromPath(w, r, log)
	if !ok {
		return
	}

	if err := h.taskService.Delete(r.Context(), userID, taskID); err != nil {
		shared.RespondWithErrorAndLog(w, r, MapErrorToStatusCode(err), GetSafeErrorMessage(err), err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// ReorderTasks handles POST /tasks/reorder requests.
// Each entry updates one owned task's sort_order; entries referencing
// nonexistent or foreign-owned tasks update nothing and do not error.
func (h *TaskHandler) ReorderTasks(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	userID, ok := authenticatedUserID(w, r, log)
	if !ok {
		return
	}

	var req ReorderTasksRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid request format")
		return
	}

	if err := shared.Validate.Struct(req); err != nil {
		log.Debug("reorder validation failed",
			slog.String("user_id", userID.String()))
		shared.RespondWithValidationErrors(w, r, shared.FieldErrors(err))
		return
	}

	updates := make([]service.SortOrderUpdate, 0, len(req.Tasks))
	for _, item := range req.Tasks {
		taskID, err := uuid.Parse(item.ID)
		if err != nil {
			shared.RespondWithValidationErrors(w, r, map[string][]string{
				"tasks": {"The tasks field contains an invalid task id."},
			})
			return
		}
		updates = append(updates, service.SortOrderUpdate{
			TaskID:    taskID,
			SortOrder: *item.SortOrder,
		})
	}

	if err := h.taskService.Reorder(r.Context(), userID, updates); err != nil {
		shared.RespondWithErrorAndLog(w, r, MapErrorToStatusCode(err), GetSafeErrorMessage(err), err)
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, MessageResponse{Message: "Order saved."})
}

// authenticatedUserID extracts the authenticated user ID placed in the
// context by the auth middleware, failing the request with 401 when absent.
func authenticatedUserID(w http.ResponseWriter, r *http.Request, log *slog.Logger) (uuid.UUID, bool) {
	userID, ok := r.Context().Value(shared.UserIDContextKey).(uuid.UUID)
	if !ok || userID == uuid.Nil {
		log.Warn("user ID not found or invalid in request context")
		shared.RespondWithError(w, r, http.StatusUnauthorized, "User ID not found or invalid")
		return uuid.Nil, false
	}
	return userID, true
}

// taskIDFromPath parses the {id} URL parameter, failing the request with
// 404 when it is not a well-formed task ID.
func taskIDFromPath(w http.ResponseWriter, r *http.Request, log *slog.Logger) (uuid.UUID, bool) {
	pathID := chi.URLParam(r, "id")
	taskID, err := uuid.Parse(pathID)
	if err != nil {
		log.Debug("invalid task ID in URL path", slog.String("task_id", pathID))
		shared.RespondWithError(w, r, http.StatusNotFound, "Task not found.")
		return uuid.Nil, false
	}
	return taskID, true
}
