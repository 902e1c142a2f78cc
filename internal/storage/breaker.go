package storage

import (
	"context"
	"errors"
	"log"
	"time"

	"github.com/sony/gobreaker"

	"github.com/scrypster/taskflow/pkg/types"
)

// BreakerStore wraps a Store with a circuit breaker so that a failing remote
// backend (Postgres over the network) sheds load fast instead of stacking up
// timed-out requests. The circuit trips after MaxFailures consecutive
// failures, stays open for Timeout, then allows trial requests in half-open
// state. Expected errors (ErrNotFound, ErrInvalidInput) do not count as
// failures; only genuine backend errors trip the circuit.
//
// The local SQLite backend is not wrapped: it cannot fail in ways a breaker
// helps with.
type BreakerStore struct {
	inner   Store
	breaker *gobreaker.CircuitBreaker
}

// BreakerConfig holds the circuit breaker tuning knobs.
type BreakerConfig struct {
	// MaxFailures is the number of consecutive failures required to trip.
	MaxFailures uint32

	// Timeout is how long the circuit stays open before going half-open.
	Timeout time.Duration

	// HalfOpenMaxRequests is the number of trial requests allowed while
	// half-open.
	HalfOpenMaxRequests uint32
}

// NewBreakerStore wraps inner with default breaker settings: trip after 3
// consecutive failures, stay open 30 seconds, allow 2 half-open trials.
func NewBreakerStore(inner Store) *BreakerStore {
	return NewBreakerStoreWithConfig(inner, BreakerConfig{
		MaxFailures:         3,
		Timeout:             30 * time.Second,
		HalfOpenMaxRequests: 2,
	})
}

// NewBreakerStoreWithConfig wraps inner with custom breaker settings.
func NewBreakerStoreWithConfig(inner Store, cfg BreakerConfig) *BreakerStore {
	settings := gobreaker.Settings{
		Name:        "taskflow-store",
		MaxRequests: cfg.HalfOpenMaxRequests,
		Interval:    0, // never clear counts while closed
		Timeout:     cfg.Timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= cfg.MaxFailures
		},
		IsSuccessful: func(err error) bool {
			return err == nil || errors.Is(err, ErrNotFound) || errors.Is(err, ErrInvalidInput)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			log.Printf("storage: circuit breaker %s: %s -> %s", name, from, to)
		},
	}
	return &BreakerStore{
		inner:   inner,
		breaker: gobreaker.NewCircuitBreaker(settings),
	}
}

// State returns the breaker state: "closed", "open", or "half-open".
func (s *BreakerStore) State() string {
	switch s.breaker.State() {
	case gobreaker.StateClosed:
		return "closed"
	case gobreaker.StateOpen:
		return "open"
	case gobreaker.StateHalfOpen:
		return "half-open"
	default:
		return "unknown"
	}
}

// execute runs fn through the breaker, translating open-circuit rejections
// into ErrCircuitOpen.
func (s *BreakerStore) execute(fn func() (interface{}, error)) (interface{}, error) {
	v, err := s.breaker.Execute(fn)
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return nil, ErrCircuitOpen
	}
	return v, err
}

func (s *BreakerStore) CreateTask(ctx context.Context, task *types.Task) error {
	_, err := s.execute(func() (interface{}, error) {
		return nil, s.inner.CreateTask(ctx, task)
	})
	return err
}

func (s *BreakerStore) GetTask(ctx context.Context, id string) (*types.Task, error) {
	v, err := s.execute(func() (interface{}, error) {
		return s.inner.GetTask(ctx, id)
	})
	if err != nil {
		return nil, err
	}
	return v.(*types.Task), nil
}

func (s *BreakerStore) ListTasks(ctx context.Context) ([]*types.Task, error) {
	v, err := s.execute(func() (interface{}, error) {
		return s.inner.ListTasks(ctx)
	})
	if err != nil {
		return nil, err
	}
	return v.([]*types.Task), nil
}

func (s *BreakerStore) ListUserTasks(ctx context.Context, userID int64) ([]*types.Task, error) {
	v, err := s.execute(func() (interface{}, error) {
		return s.inner.ListUserTasks(ctx, userID)
	})
	if err != nil {
		return nil, err
	}
	return v.([]*types.Task), nil
}

func (s *BreakerStore) SaveTransition(ctx context.Context, task *types.Task, change *types.StatusChange) error {
	_, err := s.execute(func() (interface{}, error) {
		return nil, s.inner.SaveTransition(ctx, task, change)
	})
	return err
}

func (s *BreakerStore) CountTasks(ctx context.Context) (int, error) {
	v, err := s.execute(func() (interface{}, error) {
		return s.inner.CountTasks(ctx)
	})
	if err != nil {
		return 0, err
	}
	return v.(int), nil
}

func (s *BreakerStore) CreateUser(ctx context.Context, user *types.User) error {
	_, err := s.execute(func() (interface{}, error) {
		return nil, s.inner.CreateUser(ctx, user)
	})
	return err
}

func (s *BreakerStore) GetUser(ctx context.Context, id int64) (*types.User, error) {
	v, err := s.execute(func() (interface{}, error) {
		return s.inner.GetUser(ctx, id)
	})
	if err != nil {
		return nil, err
	}
	return v.(*types.User), nil
}

func (s *BreakerStore) ListUsers(ctx context.Context) ([]*types.User, error) {
	v, err := s.execute(func() (interface{}, error) {
		return s.inner.ListUsers(ctx)
	})
	if err != nil {
		return nil, err
	}
	return v.([]*types.User), nil
}

func (s *BreakerStore) CountUsers(ctx context.Context) (int, error) {
	v, err := s.execute(func() (interface{}, error) {
		return s.inner.CountUsers(ctx)
	})
	if err != nil {
		return 0, err
	}
	return v.(int), nil
}

func (s *BreakerStore) Close() error {
	return s.inner.Close()
}
