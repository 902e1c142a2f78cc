package storage

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/scrypster/taskflow/pkg/types"
)

// flakyStore is a Store stub whose calls fail with err until it is cleared.
type flakyStore struct {
	err error
}

func (f *flakyStore) CreateTask(ctx context.Context, task *types.Task) error { return f.err }
func (f *flakyStore) GetTask(ctx context.Context, id string) (*types.Task, error) {
	if f.err != nil {
		return nil, f.err
	}
	return &types.Task{ID: id, CustomData: types.CustomData{}}, nil
}
func (f *flakyStore) ListTasks(ctx context.Context) ([]*types.Task, error) {
	if f.err != nil {
		return nil, f.err
	}
	return []*types.Task{}, nil
}
func (f *flakyStore) ListUserTasks(ctx context.Context, userID int64) ([]*types.Task, error) {
	if f.err != nil {
		return nil, f.err
	}
	return []*types.Task{}, nil
}
func (f *flakyStore) SaveTransition(ctx context.Context, task *types.Task, change *types.StatusChange) error {
	return f.err
}
func (f *flakyStore) CountTasks(ctx context.Context) (int, error) { return 0, f.err }
func (f *flakyStore) CreateUser(ctx context.Context, user *types.User) error {
	return f.err
}
func (f *flakyStore) GetUser(ctx context.Context, id int64) (*types.User, error) {
	if f.err != nil {
		return nil, f.err
	}
	return &types.User{ID: id}, nil
}
func (f *flakyStore) ListUsers(ctx context.Context) ([]*types.User, error) {
	if f.err != nil {
		return nil, f.err
	}
	return []*types.User{}, nil
}
func (f *flakyStore) CountUsers(ctx context.Context) (int, error) { return 0, f.err }
func (f *flakyStore) Close() error                                { return nil }

func TestBreakerPassesThroughWhenHealthy(t *testing.T) {
	store := NewBreakerStore(&flakyStore{})
	ctx := context.Background()

	task, err := store.GetTask(ctx, "task:procurement:abc12345")
	require.NoError(t, err)
	assert.Equal(t, "task:procurement:abc12345", task.ID)
	assert.Equal(t, "closed", store.State())
}

func TestBreakerTripsAfterConsecutiveFailures(t *testing.T) {
	inner := &flakyStore{err: errors.New("connection refused")}
	store := NewBreakerStoreWithConfig(inner, BreakerConfig{
		MaxFailures:         3,
		Timeout:             time.Minute,
		HalfOpenMaxRequests: 1,
	})
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		_, err := store.GetTask(ctx, "task:procurement:abc12345")
		require.Error(t, err)
		assert.NotErrorIs(t, err, ErrCircuitOpen, "failure %d should reach the backend", i+1)
	}

	assert.Equal(t, "open", store.State())

	// Once open, calls are rejected without reaching the backend, even after
	// the inner store recovers.
	inner.err = nil
	_, err := store.GetTask(ctx, "task:procurement:abc12345")
	assert.ErrorIs(t, err, ErrCircuitOpen)
}

func TestBreakerIgnoresExpectedErrors(t *testing.T) {
	inner := &flakyStore{err: ErrNotFound}
	store := NewBreakerStoreWithConfig(inner, BreakerConfig{
		MaxFailures:         2,
		Timeout:             time.Minute,
		HalfOpenMaxRequests: 1,
	})
	ctx := context.Background()

	// Not-found responses are business outcomes, not backend failures; any
	// number of them leaves the circuit closed.
	for i := 0; i < 10; i++ {
		_, err := store.GetTask(ctx, "task:procurement:missing0")
		assert.ErrorIs(t, err, ErrNotFound)
	}
	assert.Equal(t, "closed", store.State())
}

func TestBreakerRecoversThroughHalfOpen(t *testing.T) {
	inner := &flakyStore{err: errors.New("connection refused")}
	store := NewBreakerStoreWithConfig(inner, BreakerConfig{
		MaxFailures:         1,
		Timeout:             50 * time.Millisecond,
		HalfOpenMaxRequests: 1,
	})
	ctx := context.Background()

	_, err := store.GetTask(ctx, "task:procurement:abc12345")
	require.Error(t, err)
	assert.Equal(t, "open", store.State())

	inner.err = nil
	time.Sleep(80 * time.Millisecond)

	_, err = store.GetTask(ctx, "task:procurement:abc12345")
	require.NoError(t, err)
	assert.Equal(t, "closed", store.State())
}
