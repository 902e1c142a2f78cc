// Package handlers provides HTTP handlers and middleware for the taskflow
// REST API.
package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"

	"github.com/scrypster/taskflow/internal/service"
	"github.com/scrypster/taskflow/internal/storage"
	"github.com/scrypster/taskflow/internal/workflow"
)

// TaskHandlers contains HTTP handlers for the task endpoints.
type TaskHandlers struct {
	tasks *service.TaskService
}

// NewTaskHandlers creates a new TaskHandlers instance.
func NewTaskHandlers(tasks *service.TaskService) *TaskHandlers {
	return &TaskHandlers{tasks: tasks}
}

// CreateTask handles POST /api/tasks - create a task at status 1.
func (h *TaskHandlers) CreateTask(w http.ResponseWriter, r *http.Request) {
	var req CreateTaskRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body", err)
		return
	}

	view, err := h.tasks.CreateTask(r.Context(), req.TaskType, req.Title, req.AssignedUserID)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, view)
}

// GetTask handles GET /api/tasks/{id} - get a single task with history.
func (h *TaskHandlers) GetTask(w http.ResponseWriter, r *http.Request) {
	id := extractID(r, "id")
	if id == "" {
		respondError(w, http.StatusBadRequest, "task ID is required", nil)
		return
	}

	view, err := h.tasks.GetTask(r.Context(), id)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, view)
}

// ListTasks handles GET /api/tasks - list all tasks, most recently
// updated first.
func (h *TaskHandlers) ListTasks(w http.ResponseWriter, r *http.Request) {
	views, err := h.tasks.ListTasks(r.Context())
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, views)
}

// ChangeStatus handles PUT /api/tasks/{id}/status - move a task to a new
// status through the transition engine.
func (h *TaskHandlers) ChangeStatus(w http.ResponseWriter, r *http.Request) {
	id := extractID(r, "id")
	if id == "" {
		respondError(w, http.StatusBadRequest, "task ID is required", nil)
		return
	}

	var req ChangeStatusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body", err)
		return
	}

	view, err := h.tasks.ChangeStatus(r.Context(), id, req.TargetStatus, req.AssignedUserID, req.CustomData)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, view)
}

// CloseTask handles PUT /api/tasks/{id}/close - close a task that sits at
// its final status.
func (h *TaskHandlers) CloseTask(w http.ResponseWriter, r *http.Request) {
	id := extractID(r, "id")
	if id == "" {
		respondError(w, http.StatusBadRequest, "task ID is required", nil)
		return
	}

	view, err := h.tasks.CloseTask(r.Context(), id)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, view)
}

// extractID extracts an ID from the request path.
func extractID(r *http.Request, key string) string {
	return r.PathValue(key)
}

// respondJSON writes a JSON response with the given status code.
func respondJSON(w http.ResponseWriter, statusCode int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		// Headers already sent; log and move on.
		fmt.Printf("failed to encode JSON response: %v\n", err)
	}
}

// respondError writes an error response with the given status code.
func respondError(w http.ResponseWriter, statusCode int, message string, err error) {
	errResp := ErrorResponse{
		Error: message,
		Code:  http.StatusText(statusCode),
	}

	if err != nil {
		errResp.Details = map[string]interface{}{
			"error": err.Error(),
		}
	}

	respondJSON(w, statusCode, errResp)
}

// respondServiceError maps service-layer errors onto HTTP status codes:
// validation failures become 400 with the individual messages listed,
// missing records become 404, anything else is an opaque 500.
func respondServiceError(w http.ResponseWriter, err error) {
	var verr *workflow.ValidationError
	switch {
	case errors.As(err, &verr):
		respondJSON(w, http.StatusBadRequest, ErrorResponse{
			Error: verr.Error(),
			Code:  http.StatusText(http.StatusBadRequest),
			Details: map[string]interface{}{
				"errors": verr.Errors,
			},
		})
	case errors.Is(err, storage.ErrNotFound):
		respondError(w, http.StatusNotFound, err.Error(), nil)
	case errors.Is(err, storage.ErrCircuitOpen):
		respondError(w, http.StatusServiceUnavailable, "storage temporarily unavailable", nil)
	default:
		log.Printf("handlers: internal error: %v", err)
		respondError(w, http.StatusInternalServerError, "internal server error", nil)
	}
}
