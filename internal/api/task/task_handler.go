package task

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/taskvault/backend/internal/api"
	"github.com/taskvault/backend/internal/api/auth"
	"github.com/taskvault/backend/internal/types"
)

type TaskHandler struct {
	taskService TaskService
	logger      *slog.Logger
}

func NewTaskHandler(taskService TaskService, logger *slog.Logger) *TaskHandler {
	return &TaskHandler{
		taskService: taskService,
		logger:      logger,
	}
}

// GetTasks handles GET /tasks.
func (h *TaskHandler) GetTasks(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	l := h.logger.With(slog.String("handler", "GetTasks"))

	userID, ok := auth.GetUserIDFromContext(ctx)
	if !ok || userID == "" {
		l.ErrorContext(ctx, "User ID not found in context")
		api.ErrorResponse(w, r, http.StatusUnauthorized, "Authentication required")
		return
	}

	tasks, err := h.taskService.GetTasks(ctx, userID)
	if err != nil {
		l.ErrorContext(ctx, "Failed to list tasks", slog.Any("error", err))
		api.ErrorResponse(w, r, http.StatusInternalServerError, "Internal Server Error")
		return
	}

	api.WriteJSONResponse(w, r, http.StatusOK, tasks)
}

// CreateTask handles POST /tasks.
func (h *TaskHandler) CreateTask(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	l := h.logger.With(slog.String("handler", "CreateTask"))

	userID, ok := auth.GetUserIDFromContext(ctx)
	if !ok || userID == "" {
		l.ErrorContext(ctx, "User ID not found in context")
		api.ErrorResponse(w, r, http.StatusUnauthorized, "Authentication required")
		return
	}

	var req CreateTaskRequest
	if err := api.DecodeJSONBody(w, r, &req); err != nil {
		api.ErrorResponse(w, r, http.StatusBadRequest, err.Error())
		return
	}
	if errs := req.Validate(); len(errs) > 0 {
		api.ValidationResponse(w, r, errs)
		return
	}

	task, err := h.taskService.CreateTask(ctx, userID, req.Title, req.Description)
	if err != nil {
		l.ErrorContext(ctx, "Failed to create task", slog.Any("error", err))
		api.ErrorResponse(w, r, http.StatusInternalServerError, "Internal Server Error")
		return
	}

	api.WriteJSONResponse(w, r, http.StatusCreated, task)
}

// UpdateTask handles PUT /tasks/{taskID}.
func (h *TaskHandler) UpdateTask(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	l := h.logger.With(slog.String("handler", "UpdateTask"))

	userID, ok := auth.GetUserIDFromContext(ctx)
	if !ok || userID == "" {
		l.ErrorContext(ctx, "User ID not found in context")
		api.ErrorResponse(w, r, http.StatusUnauthorized, "Authentication required")
		return
	}

	taskID := chi.URLParam(r, "taskID")
	if errs := ValidateTaskID(taskID); len(errs) > 0 {
		api.ValidationResponse(w, r, errs)
		return
	}

	var req UpdateTaskRequest
	if err := api.DecodeJSONBody(w, r, &req); err != nil {
		api.ErrorResponse(w, r, http.StatusBadRequest, err.Error())
		return
	}
	if errs := req.Validate(); len(errs) > 0 {
		api.ValidationResponse(w, r, errs)
		return
	}

	task, err := h.taskService.UpdateTask(ctx, userID, taskID, req.Title, req.Description)
	if err != nil {
		if errors.Is(err, types.ErrNotFound) {
			api.ErrorResponse(w, r, http.StatusNotFound, "Task not found")
			return
		}
		l.ErrorContext(ctx, "Failed to update task", slog.Any("error", err))
		api.ErrorResponse(w, r, http.StatusInternalServerError, "Internal Server Error")
		return
	}

	api.WriteJSONResponse(w, r, http.StatusOK, task)
}

// DeleteTask handles DELETE /tasks/{taskID}.
func (h *TaskHandler) DeleteTask(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	l := h.logger.With(slog.String("handler", "DeleteTask"))

	userID, ok := auth.GetUserIDFromContext(ctx)
	if !ok || userID == "" {
		l.ErrorContext(ctx, "User ID not found in context")
		api.ErrorResponse(w, r, http.StatusUnauthorized, "Authentication required")
		return
	}

	taskID := chi.URLParam(r, "taskID")
	if errs := ValidateTaskID(taskID); len(errs) > 0 {
		api.ValidationResponse(w, r, errs)
		return
	}

	if err := h.taskService.DeleteTask(ctx, userID, taskID); err != nil {
		l.ErrorContext(ctx, "Failed to delete task", slog.Any("error", err))
		api.ErrorResponse(w, r, http.StatusInternalServerError, "Internal Server Error")
		return
	}

	api.WriteJSONResponse(w, r, http.StatusOK, DeleteTaskResponse{Message: "Task deleted successfully"})
}
