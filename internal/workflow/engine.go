package workflow

import (
	"fmt"

	"github.com/scrypster/taskflow/pkg/types"
)

// Engine evaluates status transitions and closes against a task type's
// strategy. It is purely functional: it never mutates the task it is given,
// holds no state of its own, and leaves all persistence to the caller.
//
// The transition rules are deliberately asymmetric: forward moves must
// advance exactly one status at a time and satisfy the target status's
// required-field validation, while backward moves may jump to any earlier
// status in one step with no data checks and no custom-data merge.
type Engine struct{}

// NewEngine returns a transition engine.
func NewEngine() *Engine {
	return &Engine{}
}

// Decision is the outcome of a successful transition evaluation: the status
// the task moves to, the custom data it carries afterwards, and the history
// record to append. The caller applies the mutation and persists both.
type Decision struct {
	NewStatus int

	// CustomData is the merged result for forward moves; for backward moves
	// it is the task's existing data, untouched.
	CustomData types.CustomData

	// Change is the history record for this transition. ChangedAt and the
	// resolved user name are filled in by the caller at persist time.
	Change types.StatusChange
}

// EvaluateTransition decides whether task may move to targetStatus with the
// submitted custom data, reassigning to assignedUserID. Every rejection is a
// *ValidationError.
func (e *Engine) EvaluateTransition(task *types.Task, targetStatus int, assignedUserID int64, submitted types.CustomData, strategy Strategy) (*Decision, error) {
	if task.IsClosed {
		return nil, NewValidationError("cannot change status of a closed task")
	}
	if targetStatus == task.CurrentStatus {
		return nil, NewValidationError(fmt.Sprintf("task is already at status %d", task.CurrentStatus))
	}

	merged := task.CustomData

	if targetStatus > task.CurrentStatus {
		// Forward moves advance exactly one step. Skipping ahead is never
		// allowed, regardless of how much data the submission carries.
		if targetStatus != task.CurrentStatus+1 {
			return nil, NewValidationError(fmt.Sprintf(
				"forward moves must be sequential: current status is %d, target must be %d",
				task.CurrentStatus, task.CurrentStatus+1))
		}
		if targetStatus > strategy.MaxStatus() {
			return nil, NewValidationError(fmt.Sprintf(
				"target status %d exceeds the maximum status %d for task type '%s'",
				targetStatus, strategy.MaxStatus(), strategy.TaskType()))
		}
		if errs := strategy.Validate(targetStatus, submitted); len(errs) > 0 {
			return nil, NewValidationError(errs...)
		}
		merged = task.CustomData.Merge(submitted)
	} else {
		if targetStatus < 1 {
			return nil, NewValidationError("target status must be at least 1")
		}
		// Backward moves may jump to any earlier status in one step and
		// never validate or merge custom data.
	}

	return &Decision{
		NewStatus:  targetStatus,
		CustomData: merged,
		Change: types.StatusChange{
			TaskID:         task.ID,
			FromStatus:     task.CurrentStatus,
			ToStatus:       targetStatus,
			AssignedUserID: assignedUserID,
		},
	}, nil
}

// EvaluateClose decides whether task may be closed. A task closes only from
// its type's final status, and only once. Closing appends no history record;
// only the closed flag flips.
func (e *Engine) EvaluateClose(task *types.Task, strategy Strategy) error {
	if task.IsClosed {
		return NewValidationError("task is already closed")
	}
	if task.CurrentStatus != strategy.MaxStatus() {
		return NewValidationError(fmt.Sprintf(
			"task can only be closed from the final status (%d): current status is %d",
			strategy.MaxStatus(), task.CurrentStatus))
	}
	return nil
}
