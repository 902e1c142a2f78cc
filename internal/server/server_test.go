package server

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/scrypster/taskflow/internal/config"
	"github.com/scrypster/taskflow/internal/storage/sqlite"
	"github.com/scrypster/taskflow/internal/workflow"
	"github.com/scrypster/taskflow/pkg/types"
)

// startTestServer boots the full server on an ephemeral port with an
// in-memory store seeded with one user.
func startTestServer(t *testing.T) string {
	t.Helper()

	store, err := sqlite.NewStore(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })

	require.NoError(t, store.CreateUser(context.Background(), &types.User{
		ID: 1, Name: "Alice Johnson", Email: "alice@example.com",
	}))

	cfg, err := config.LoadConfig()
	require.NoError(t, err)
	cfg.Server.Host = "127.0.0.1"
	cfg.Server.Port = 0
	cfg.Storage.DataPath = t.TempDir()

	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(func() {
		cancel()
		time.Sleep(50 * time.Millisecond)
	})

	registry := workflow.NewRegistry(workflow.ProcurementStrategy{}, workflow.DevelopmentStrategy{})
	addr, _, err := Start(ctx, cfg, store, registry)
	require.NoError(t, err)
	return addr
}

func TestHealthEndpoint(t *testing.T) {
	addr := startTestServer(t)

	resp, err := http.Get(fmt.Sprintf("http://%s/api/health", addr))
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "nosniff", resp.Header.Get("X-Content-Type-Options"))
}

func TestTaskLifecycleOverHTTP(t *testing.T) {
	addr := startTestServer(t)
	base := fmt.Sprintf("http://%s", addr)

	body, err := json.Marshal(map[string]interface{}{
		"taskType":       "Procurement",
		"title":          "Purchase office laptops",
		"assignedUserId": 1,
	})
	require.NoError(t, err)

	resp, err := http.Post(base+"/api/tasks", "application/json", bytes.NewReader(body))
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	var created struct {
		ID            string `json:"id"`
		CurrentStatus int    `json:"currentStatus"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&created))
	assert.Equal(t, 1, created.CurrentStatus)

	// Move the task forward through the status endpoint.
	change, err := json.Marshal(map[string]interface{}{
		"targetStatus":   2,
		"assignedUserId": 1,
		"customData": map[string]string{
			"priceQuote1": "EUR 1200",
			"priceQuote2": "EUR 1150",
		},
	})
	require.NoError(t, err)

	req, err := http.NewRequest(http.MethodPut, base+"/api/tasks/"+created.ID+"/status", bytes.NewReader(change))
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")

	resp2, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp2.Body.Close()
	require.Equal(t, http.StatusOK, resp2.StatusCode)

	var moved struct {
		CurrentStatus      int    `json:"currentStatus"`
		CurrentStatusLabel string `json:"currentStatusLabel"`
	}
	require.NoError(t, json.NewDecoder(resp2.Body).Decode(&moved))
	assert.Equal(t, 2, moved.CurrentStatus)
	assert.Equal(t, "Supplier offers received", moved.CurrentStatusLabel)
}

func TestUnknownTaskReturns404(t *testing.T) {
	addr := startTestServer(t)

	resp, err := http.Get(fmt.Sprintf("http://%s/api/tasks/task:procurement:missing0", addr))
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}
