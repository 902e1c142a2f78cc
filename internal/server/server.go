// Package server provides HTTP server initialization and lifecycle
// management for the taskflow web API.
package server

import (
	"context"
	"fmt"
	"log"
	"net"
	"net/http"
	"time"

	"github.com/scrypster/taskflow/internal/config"
	"github.com/scrypster/taskflow/internal/notify"
	"github.com/scrypster/taskflow/internal/service"
	"github.com/scrypster/taskflow/internal/storage"
	"github.com/scrypster/taskflow/internal/workflow"
	"github.com/scrypster/taskflow/web/handlers"
)

// securityHeadersMiddleware adds security headers to all HTTP responses.
func securityHeadersMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Content-Type-Options", "nosniff")
		w.Header().Set("X-Frame-Options", "DENY")
		w.Header().Set("X-XSS-Protection", "1; mode=block")
		w.Header().Set("Referrer-Policy", "strict-origin-when-cross-origin")
		next.ServeHTTP(w, r)
	})
}

// eventFileSink adapts the notify writer to the service EventSink. Events
// are written as files so a separate consumer process can pick them up;
// the in-process watcher feeds them back into the websocket hub.
type eventFileSink struct {
	writer *notify.EventWriter
}

func (s *eventFileSink) TaskEvent(eventType, taskID string) {
	if err := s.writer.Notify(eventType, taskID); err != nil {
		log.Printf("server: event notify failed: %v", err)
	}
}

// Start initializes and starts the HTTP server.
// Returns the actual address being listened on (useful for testing with
// port 0) and the TaskEventHub for wiring broadcasts.
func Start(ctx context.Context, cfg *config.Config, store storage.Store, registry *workflow.Registry) (string, *handlers.TaskEventHub, error) {
	engine := workflow.NewEngine()
	catalog := workflow.NewCatalog(registry)

	// Task events flow through the filesystem: the service writes event
	// files, the watcher dispatches them to the websocket hub.
	sink := &eventFileSink{writer: notify.NewEventWriter(cfg.Storage.DataPath)}

	taskService := service.NewTaskService(store, registry, engine, sink)
	userService := service.NewUserService(store, registry)

	wsHub := handlers.NewTaskEventHub(cfg.Server.CORSOrigins)
	go wsHub.Run()

	watcher := notify.NewEventWatcher(cfg.Storage.DataPath, func(eventType, taskID string) {
		wsHub.BroadcastTaskEvent(eventType, taskID)
	})
	if err := watcher.Start(); err != nil {
		wsHub.Stop()
		return "", nil, fmt.Errorf("server: start event watcher: %w", err)
	}

	reqPerSec, burst := cfg.Server.RateLimit, cfg.Server.RateBurst
	if reqPerSec <= 0 {
		reqPerSec = 50
	}
	if burst <= 0 {
		burst = reqPerSec * 2
	}
	rateLimiter := handlers.NewRateLimiter(float64(reqPerSec), burst)

	taskHandlers := handlers.NewTaskHandlers(taskService)
	userHandlers := handlers.NewUserHandlers(userService)
	typeHandlers := handlers.NewTaskTypeHandlers(catalog)

	apiMux := http.NewServeMux()
	apiMux.HandleFunc("POST /api/tasks", taskHandlers.CreateTask)
	apiMux.HandleFunc("GET /api/tasks", taskHandlers.ListTasks)
	apiMux.HandleFunc("GET /api/tasks/{id}", taskHandlers.GetTask)
	apiMux.HandleFunc("PUT /api/tasks/{id}/status", taskHandlers.ChangeStatus)
	apiMux.HandleFunc("PUT /api/tasks/{id}/close", taskHandlers.CloseTask)
	apiMux.HandleFunc("GET /api/users", userHandlers.ListUsers)
	apiMux.HandleFunc("GET /api/users/{id}/tasks", userHandlers.GetUserTasks)
	apiMux.HandleFunc("GET /api/task-types", typeHandlers.ListTaskTypes)

	mux := http.NewServeMux()

	// Health endpoint - no auth required, used by monitoring
	mux.HandleFunc("GET /api/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"healthy","version":"1.0.0"}`))
	})

	// Wrap API routes with auth middleware
	mux.Handle("/api/", handlers.RequireAuth(apiMux, cfg))

	// WebSocket endpoint (no auth required - origin validation handles security)
	mux.Handle("/ws", wsHub)

	// Rate limiting, CORS, then security headers around everything
	handler := handlers.RateLimitMiddleware(mux, rateLimiter)
	handler = handlers.CORSMiddleware(handler, cfg.Server.CORSOrigins)
	handler = securityHeadersMiddleware(handler)

	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	server := &http.Server{
		Addr:         addr,
		Handler:      handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	listener, err := net.Listen("tcp", addr)
	if err != nil {
		watcher.Stop()
		wsHub.Stop()
		return "", nil, fmt.Errorf("server: listen %s: %w", addr, err)
	}

	actualAddr := listener.Addr().String()

	go func() {
		if err := server.Serve(listener); err != nil && err != http.ErrServerClosed {
			log.Printf("Server error: %v", err)
		}
	}()

	// Handle graceful shutdown
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			log.Printf("Server shutdown error: %v", err)
		}
		watcher.Stop()
		wsHub.Stop()
	}()

	return actualAddr, wsHub, nil
}
