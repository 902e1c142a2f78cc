package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/scrypster/taskflow/internal/storage"
	"github.com/scrypster/taskflow/internal/workflow"
	"github.com/scrypster/taskflow/pkg/types"
)

// UserService implements the user read paths.
type UserService struct {
	store    storage.Store
	registry *workflow.Registry
}

// NewUserService creates a UserService.
func NewUserService(store storage.Store, registry *workflow.Registry) *UserService {
	return &UserService{store: store, registry: registry}
}

// ListUsers returns all users ordered by ID.
func (s *UserService) ListUsers(ctx context.Context) ([]*types.User, error) {
	return s.store.ListUsers(ctx)
}

// GetUserTasks returns the tasks assigned to userID, most recently updated
// first. The user's existence is validated even when the result set is
// empty: an unknown user is a 404, a user with no tasks is an empty list.
func (s *UserService) GetUserTasks(ctx context.Context, userID int64) ([]*TaskView, error) {
	if _, err := s.store.GetUser(ctx, userID); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, fmt.Errorf("user with ID %d not found: %w", userID, storage.ErrNotFound)
		}
		return nil, err
	}

	tasks, err := s.store.ListUserTasks(ctx, userID)
	if err != nil {
		return nil, err
	}

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
