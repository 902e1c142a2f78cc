package handlers

import (
	"net/http"

	"github.com/scrypster/taskflow/internal/workflow"
)

// TaskTypeHandlers serves the task type catalog used by clients to build
// status forms.
type TaskTypeHandlers struct {
	catalog *workflow.Catalog
}

// NewTaskTypeHandlers creates a new TaskTypeHandlers instance.
func NewTaskTypeHandlers(catalog *workflow.Catalog) *TaskTypeHandlers {
	return &TaskTypeHandlers{catalog: catalog}
}

// ListTaskTypes handles GET /api/task-types - list every registered task
// type with its statuses and required field definitions.
func (h *TaskTypeHandlers) ListTaskTypes(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, h.catalog.ListAll())
}
