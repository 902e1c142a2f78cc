// Package service glues the store, the transition engine, and the strategy
// registry into the task lifecycle use cases exposed over HTTP.
package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/scrypster/taskflow/internal/storage"
	"github.com/scrypster/taskflow/internal/workflow"
	"github.com/scrypster/taskflow/pkg/types"
)

// Task lifecycle event types emitted to the EventSink.
const (
	EventTaskCreated       = "task.created"
	EventTaskStatusChanged = "task.status_changed"
	EventTaskClosed        = "task.closed"
)

// EventSink receives task lifecycle events after they are persisted, for
// live-update fan-out. A nil sink drops all events. Implementations must not
// block: they are called on the request path.
type EventSink interface {
	TaskEvent(eventType, taskID string)
}

// TaskService implements the task lifecycle: create, transition, close, and
// the read paths. It owns no state beyond its collaborators; per-task
// serialization of concurrent requests is left to the store's row update
// semantics (last write wins).
type TaskService struct {
	store    storage.Store
	registry *workflow.Registry
	engine   *workflow.Engine
	events   EventSink
}

// NewTaskService creates a TaskService. sink may be nil.
func NewTaskService(store storage.Store, registry *workflow.Registry, engine *workflow.Engine, sink EventSink) *TaskService {
	return &TaskService{
		store:    store,
		registry: registry,
		engine:   engine,
		events:   sink,
	}
}

// CreateTask creates a new task of the given type at status 1, open, with
// empty custom data, assigned to assignedUserID.
func (s *TaskService) CreateTask(ctx context.Context, taskType, title string, assignedUserID int64) (*TaskView, error) {
	if strings.TrimSpace(taskType) == "" {
		return nil, workflow.NewValidationError("task type is required")
	}
	if strings.TrimSpace(title) == "" {
		return nil, workflow.NewValidationError("title is required")
	}
	if assignedUserID <= 0 {
		return nil, workflow.NewValidationError("assigned user is required")
	}

	strategy, err := s.registry.Resolve(taskType)
	if err != nil {
		return nil, err
	}

	user, err := s.resolveUser(ctx, assignedUserID)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	task := &types.Task{
		ID: newTaskID(strategy.TaskType()),
		// Store the registry's canonical casing, not the client's.
		TaskType:         strategy.TaskType(),
		Title:            title,
		CurrentStatus:    1,
		IsClosed:         false,
		AssignedUserID:   assignedUserID,
		AssignedUserName: user.Name,
		CustomData:       types.CustomData{},
		CreatedAt:        now,
		UpdatedAt:        now,
		StatusHistory:    []types.StatusChange{},
	}

	if err := s.store.CreateTask(ctx, task); err != nil {
		return nil, err
	}

	s.emit(EventTaskCreated, task.ID)
	return NewTaskView(task, strategy), nil
}

// ChangeStatus moves a task to targetStatus, reassigning it to
// assignedUserID and merging customData on forward moves. The engine decides
// legality; this method applies the decision and persists the mutated task
// together with the appended history record.
func (s *TaskService) ChangeStatus(ctx context.Context, taskID string, targetStatus int, assignedUserID int64, customData types.CustomData) (*TaskView, error) {
	if assignedUserID <= 0 {
		return nil, workflow.NewValidationError("next assigned user is required")
	}

	task, err := s.loadTask(ctx, taskID)
	if err != nil {
		return nil, err
	}

	strategy, err := s.registry.Resolve(task.TaskType)
	if err != nil {
		return nil, err
	}

	user, err := s.resolveUser(ctx, assignedUserID)
	if err != nil {
		return nil, err
	}

	decision, err := s.engine.EvaluateTransition(task, targetStatus, assignedUserID, customData, strategy)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	task.CurrentStatus = decision.NewStatus
	task.CustomData = decision.CustomData
	task.AssignedUserID = assignedUserID
	task.AssignedUserName = user.Name
	task.UpdatedAt = now

	change := decision.Change
	change.AssignedUserName = user.Name
	change.ChangedAt = now

	if err := s.store.SaveTransition(ctx, task, &change); err != nil {
		return nil, err
	}
	task.StatusHistory = append(task.StatusHistory, change)

	s.emit(EventTaskStatusChanged, task.ID)
	return NewTaskView(task, strategy), nil
}

// CloseTask closes a task sitting at its type's final status. Only the
// closed flag flips; no history record is appended for the close itself.
func (s *TaskService) CloseTask(ctx context.Context, taskID string) (*TaskView, error) {
	task, err := s.loadTask(ctx, taskID)
	if err != nil {
		return nil, err
	}

	strategy, err := s.registry.Resolve(task.TaskType)
	if err != nil {
		return nil, err
	}

	if err := s.engine.EvaluateClose(task, strategy); err != nil {
		return nil, err
	}

	task.IsClosed = true
	task.UpdatedAt = time.Now().UTC()

	if err := s.store.SaveTransition(ctx, task, nil); err != nil {
		return nil, err
	}

	s.emit(EventTaskClosed, task.ID)
	return NewTaskView(task, strategy), nil
}

// GetTask returns the view of one task.
func (s *TaskService) GetTask(ctx context.Context, taskID string) (*TaskView, error) {
	task, err := s.loadTask(ctx, taskID)
	if err != nil {
		return nil, err
	}
	strategy, err := s.registry.Resolve(task.TaskType)
	if err != nil {
		return nil, err
	}
	return NewTaskView(task, strategy), nil
}

// ListTasks returns views of all tasks, most recently updated first.
func (s *TaskService) ListTasks(ctx context.Context) ([]*TaskView, error) {
	tasks, err := s.store.ListTasks(ctx)
	if err != nil {
		return nil, err
	}
	return s.mapTasks(tasks)
}

// mapTasks resolves each task's strategy and maps it to a view.
func (s *TaskService) mapTasks(tasks []*types.Task) ([]*TaskView, error) {
	views := make([]*TaskView, 0, len(tasks))
	for _, task := range tasks {
		strategy, err := s.registry.Resolve(task.TaskType)
		if err != nil {
			return nil, err
		}
		views = append(views, NewTaskView(task, strategy))
	}
	return views, nil
}

// loadTask fetches a task, turning the store's bare ErrNotFound into a
// message that names the task.
func (s *TaskService) loadTask(ctx context.Context, taskID string) (*types.Task, error) {
	task, err := s.store.GetTask(ctx, taskID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, fmt.Errorf("task with ID %s not found: %w", taskID, storage.ErrNotFound)
		}
		return nil, err
	}
	return task, nil
}

// resolveUser fetches a user, turning the store's bare ErrNotFound into a
// message that names the user.
func (s *TaskService) resolveUser(ctx context.Context, userID int64) (*types.User, error) {
	user, err := s.store.GetUser(ctx, userID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, fmt.Errorf("user with ID %d not found: %w", userID, storage.ErrNotFound)
		}
		return nil, err
	}
	return user, nil
}

func (s *TaskService) emit(eventType, taskID string) {
	if s.events != nil {
		s.events.TaskEvent(eventType, taskID)
	}
}

// newTaskID generates an opaque task ID in the format task:<type>:<slug>.
func newTaskID(taskType string) string {
	slug := uuid.New().String()[:8]
	return fmt.Sprintf("task:%s:%s", strings.ToLower(taskType), slug)
}
