package handlers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/scrypster/taskflow/internal/service"
	"github.com/scrypster/taskflow/internal/storage/sqlite"
	"github.com/scrypster/taskflow/internal/workflow"
	"github.com/scrypster/taskflow/pkg/types"
	"github.com/scrypster/taskflow/web/handlers"
)

// newTestAPI builds the API mux over a real in-memory SQLite store seeded
// with two users, mirroring the server's route table.
func newTestAPI(t *testing.T) (http.Handler, *service.TaskService) {
	t.Helper()

	store, err := sqlite.NewStore(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })

	ctx := context.Background()
	require.NoError(t, store.CreateUser(ctx, &types.User{ID: 1, Name: "Alice Johnson", Email: "alice@example.com"}))
	require.NoError(t, store.CreateUser(ctx, &types.User{ID: 2, Name: "Bob Smith", Email: "bob@example.com"}))

	registry := workflow.NewRegistry(workflow.ProcurementStrategy{}, workflow.DevelopmentStrategy{})
	taskService := service.NewTaskService(store, registry, workflow.NewEngine(), nil)
	userService := service.NewUserService(store, registry)

	taskHandlers := handlers.NewTaskHandlers(taskService)
	userHandlers := handlers.NewUserHandlers(userService)
	typeHandlers := handlers.NewTaskTypeHandlers(workflow.NewCatalog(registry))

	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/tasks", taskHandlers.CreateTask)
	mux.HandleFunc("GET /api/tasks", taskHandlers.ListTasks)
	mux.HandleFunc("GET /api/tasks/{id}", taskHandlers.GetTask)
	mux.HandleFunc("PUT /api/tasks/{id}/status", taskHandlers.ChangeStatus)
	mux.HandleFunc("PUT /api/tasks/{id}/close", taskHandlers.CloseTask)
	mux.HandleFunc("GET /api/users", userHandlers.ListUsers)
	mux.HandleFunc("GET /api/users/{id}/tasks", userHandlers.GetUserTasks)
	mux.HandleFunc("GET /api/task-types", typeHandlers.ListTaskTypes)
	return mux, taskService
}

func doJSON(t *testing.T, mux http.Handler, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	mux.ServeHTTP(w, req)
	return w
}

func decodeView(t *testing.T, w *httptest.ResponseRecorder) service.TaskView {
	t.Helper()
	var view service.TaskView
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &view))
	return view
}

func TestCreateTaskEndpoint(t *testing.T) {
	mux, _ := newTestAPI(t)

	w := doJSON(t, mux, "POST", "/api/tasks", handlers.CreateTaskRequest{
		TaskType:       "Procurement",
		Title:          "Purchase office laptops",
		AssignedUserID: 1,
	})

	require.Equal(t, http.StatusCreated, w.Code)
	view := decodeView(t, w)
	assert.Equal(t, "Procurement", view.TaskType)
	assert.Equal(t, 1, view.CurrentStatus)
	assert.Equal(t, "Created", view.CurrentStatusLabel)
	assert.Equal(t, "Alice Johnson", view.AssignedUserName)
}

func TestCreateTaskEndpointValidation(t *testing.T) {
	mux, _ := newTestAPI(t)

	w := doJSON(t, mux, "POST", "/api/tasks", handlers.CreateTaskRequest{
		TaskType:       "Marketing",
		Title:          "Launch campaign",
		AssignedUserID: 1,
	})

	require.Equal(t, http.StatusBadRequest, w.Code)
	var resp handlers.ErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "unknown task type: 'Marketing'", resp.Error)
	assert.Equal(t, []interface{}{"unknown task type: 'Marketing'"}, resp.Details["errors"])
}

func TestCreateTaskEndpointBadBody(t *testing.T) {
	mux, _ := newTestAPI(t)

	req := httptest.NewRequest("POST", "/api/tasks", bytes.NewBufferString("{not json"))
	w := httptest.NewRecorder()
	mux.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestCreateTaskEndpointUnknownUser(t *testing.T) {
	mux, _ := newTestAPI(t)

	w := doJSON(t, mux, "POST", "/api/tasks", handlers.CreateTaskRequest{
		TaskType:       "Procurement",
		Title:          "Purchase office laptops",
		AssignedUserID: 42,
	})

	require.Equal(t, http.StatusNotFound, w.Code)
	var resp handlers.ErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Contains(t, resp.Error, "user with ID 42 not found")
}

func TestGetTaskEndpointNotFound(t *testing.T) {
	mux, _ := newTestAPI(t)

	w := doJSON(t, mux, "GET", "/api/tasks/task:procurement:missing0", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestChangeStatusEndpoint(t *testing.T) {
	mux, tasks := newTestAPI(t)

	created, err := tasks.CreateTask(context.Background(), "Procurement", "Purchase monitors", 1)
	require.NoError(t, err)

	w := doJSON(t, mux, "PUT", fmt.Sprintf("/api/tasks/%s/status", created.ID), handlers.ChangeStatusRequest{
		TargetStatus:   2,
		AssignedUserID: 2,
		CustomData: types.CustomData{
			"priceQuote1": "EUR 300",
			"priceQuote2": "EUR 280",
		},
	})

	require.Equal(t, http.StatusOK, w.Code)
	view := decodeView(t, w)
	assert.Equal(t, 2, view.CurrentStatus)
	assert.Equal(t, "Supplier offers received", view.CurrentStatusLabel)
	assert.Equal(t, "Bob Smith", view.AssignedUserName)
	require.Len(t, view.StatusHistory, 1)
}

func TestChangeStatusEndpointValidationDetails(t *testing.T) {
	mux, tasks := newTestAPI(t)

	created, err := tasks.CreateTask(context.Background(), "Procurement", "Purchase monitors", 1)
	require.NoError(t, err)

	w := doJSON(t, mux, "PUT", fmt.Sprintf("/api/tasks/%s/status", created.ID), handlers.ChangeStatusRequest{
		TargetStatus:   2,
		AssignedUserID: 1,
	})

	require.Equal(t, http.StatusBadRequest, w.Code)
	var resp handlers.ErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, []interface{}{
		"Price Quote 1 is required",
		"Price Quote 2 is required",
	}, resp.Details["errors"])
}

func TestCloseTaskEndpoint(t *testing.T) {
	mux, tasks := newTestAPI(t)
	ctx := context.Background()

	created, err := tasks.CreateTask(ctx, "Procurement", "Purchase monitors", 1)
	require.NoError(t, err)
	_, err = tasks.ChangeStatus(ctx, created.ID, 2, 1, types.CustomData{"priceQuote1": "a", "priceQuote2": "b"})
	require.NoError(t, err)
	_, err = tasks.ChangeStatus(ctx, created.ID, 3, 1, types.CustomData{"receipt": "r"})
	require.NoError(t, err)

	w := doJSON(t, mux, "PUT", fmt.Sprintf("/api/tasks/%s/close", created.ID), nil)
	require.Equal(t, http.StatusOK, w.Code)
	view := decodeView(t, w)
	assert.True(t, view.IsClosed)

	// Closing again is a validation failure, not a conflict.
	w = doJSON(t, mux, "PUT", fmt.Sprintf("/api/tasks/%s/close", created.ID), nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestListTasksEndpoint(t *testing.T) {
	mux, tasks := newTestAPI(t)

	_, err := tasks.CreateTask(context.Background(), "Procurement", "Purchase monitors", 1)
	require.NoError(t, err)

	w := doJSON(t, mux, "GET", "/api/tasks", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var views []service.TaskView
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &views))
	assert.Len(t, views, 1)
}

func TestListUsersEndpoint(t *testing.T) {
	mux, _ := newTestAPI(t)

	w := doJSON(t, mux, "GET", "/api/users", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var users []types.User
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &users))
	require.Len(t, users, 2)
	assert.Equal(t, "Alice Johnson", users[0].Name)
}

func TestGetUserTasksEndpoint(t *testing.T) {
	mux, tasks := newTestAPI(t)

	created, err := tasks.CreateTask(context.Background(), "Development", "Build REST API", 2)
	require.NoError(t, err)

	w := doJSON(t, mux, "GET", "/api/users/2/tasks", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var views []service.TaskView
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &views))
	require.Len(t, views, 1)
	assert.Equal(t, created.ID, views[0].ID)

	// Unknown user is a 404 even though the list would be empty.
	w = doJSON(t, mux, "GET", "/api/users/42/tasks", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	// Non-numeric ID is a 400.
	w = doJSON(t, mux, "GET", "/api/users/alice/tasks", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestListTaskTypesEndpoint(t *testing.T) {
	mux, _ := newTestAPI(t)

	w := doJSON(t, mux, "GET", "/api/task-types", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var infos []workflow.TypeInfo
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &infos))
	require.Len(t, infos, 2)
	assert.Equal(t, "Development", infos[0].TaskType)
	assert.Equal(t, "Procurement", infos[1].TaskType)
	assert.Len(t, infos[1].FieldsByStatus[2], 2)
}
