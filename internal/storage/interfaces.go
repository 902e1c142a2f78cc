// Package storage defines the persistence interfaces for the taskflow
// system and the errors its backends share.
//
// The interfaces are split by concern (tasks, users) and composed into the
// full Store contract that each backend implements. Backends are expected to
// provide referential integrity: tasks reference users by ID, and a task's
// status history is removed with the task.
package storage

import (
	"context"

	"github.com/scrypster/taskflow/pkg/types"
)

// TaskStore provides persistence for tasks and their status history.
//
// All read methods return tasks with AssignedUserName resolved and
// StatusHistory populated in ChangedAt ascending order.
type TaskStore interface {
	// CreateTask persists a new task.
	CreateTask(ctx context.Context, task *types.Task) error

	// GetTask retrieves a task by ID.
	// Returns ErrNotFound if the task doesn't exist.
	GetTask(ctx context.Context, id string) (*types.Task, error)

	// ListTasks retrieves all tasks, most recently updated first.
	ListTasks(ctx context.Context) ([]*types.Task, error)

	// ListUserTasks retrieves the tasks assigned to userID, most recently
	// updated first. A user with no tasks yields an empty slice, not an
	// error; validating that the user exists is the caller's job.
	ListUserTasks(ctx context.Context, userID int64) ([]*types.Task, error)

	// SaveTransition persists the mutated task and, when change is non-nil,
	// appends the history record in the same transaction. A nil change is
	// used for the close operation, which flips the closed flag without
	// recording history.
	// Returns ErrNotFound if the task doesn't exist.
	SaveTransition(ctx context.Context, task *types.Task, change *types.StatusChange) error

	// CountTasks returns the total number of tasks. Used by seeding to
	// decide whether demo data should be applied.
	CountTasks(ctx context.Context) (int, error)
}

// UserStore provides read access to users plus the create needed by seeding.
type UserStore interface {
	// CreateUser persists a user (upsert semantics, keyed by ID).
	CreateUser(ctx context.Context, user *types.User) error

	// GetUser retrieves a user by ID.
	// Returns ErrNotFound if the user doesn't exist.
	GetUser(ctx context.Context, id int64) (*types.User, error)

	// ListUsers retrieves all users ordered by ID.
	ListUsers(ctx context.Context) ([]*types.User, error)

	// CountUsers returns the total number of users.
	CountUsers(ctx context.Context) (int, error)
}

// Store is the full persistence surface a backend must provide.
type Store interface {
	TaskStore
	UserStore

	// Close releases any resources held by the store.
	Close() error
}
