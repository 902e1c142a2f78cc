package handlers

import (
	"net/http"
	"strconv"

	"github.com/scrypster/taskflow/internal/service"
)

// UserHandlers contains HTTP handlers for the user endpoints.
type UserHandlers struct {
	users *service.UserService
}

// NewUserHandlers creates a new UserHandlers instance.
func NewUserHandlers(users *service.UserService) *UserHandlers {
	return &UserHandlers{users: users}
}

// ListUsers handles GET /api/users - list all users.
func (h *UserHandlers) ListUsers(w http.ResponseWriter, r *http.Request) {
	users, err := h.users.ListUsers(r.Context())
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, users)
}

// GetUserTasks handles GET /api/users/{id}/tasks - list the tasks assigned
// to one user. An unknown user is a 404 even though the task list for an
// unused ID would simply be empty.
func (h *UserHandlers) GetUserTasks(w http.ResponseWriter, r *http.Request) {
	raw := extractID(r, "id")
	userID, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || userID <= 0 {
		respondError(w, http.StatusBadRequest, "user ID must be a positive integer", nil)
		return
	}

	views, err := h.users.GetUserTasks(r.Context(), userID)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, views)
}
