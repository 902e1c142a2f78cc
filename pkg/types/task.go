// Package types contains the core domain types shared across the taskflow
// system: tasks, users, and status-change history records.
package types

import "time"

// CustomData is the accumulating type-specific key/value payload attached to
// a task. Values are whatever JSON decoding produced (string, float64, bool,
// nil, nested maps). The field set is open-ended and depends on the task type,
// so it is persisted as a JSON document rather than relational columns.
type CustomData map[string]interface{}

// Merge returns a copy of d with the submitted entries applied on top.
// New keys are added and existing keys overwritten; keys are never removed,
// which is why data collected on earlier forward moves stays visible after a
// later backward move. The receiver is not mutated.
func (d CustomData) Merge(submitted CustomData) CustomData {
	merged := make(CustomData, len(d)+len(submitted))
	for k, v := range d {
		merged[k] = v
	}
	for k, v := range submitted {
		merged[k] = v
	}
	return merged
}

// Task represents a single tracked work item. A task belongs to exactly one
// task type (immutable after creation), sits at one status in that type's
// linear workflow, and accumulates custom data as it moves forward.
type Task struct {
	// ID is the opaque task identifier (format: task:<type>:<slug>).
	ID string `json:"id"`

	// TaskType names the registered strategy governing this task's workflow.
	// Immutable after creation.
	TaskType string `json:"taskType"`

	// Title is the human-readable task title.
	Title string `json:"title"`

	// CurrentStatus is the task's position in the workflow, 1..maxStatus.
	CurrentStatus int `json:"currentStatus"`

	// IsClosed marks a finished task. Monotonic false -> true; a closed task
	// freezes at its last status and rejects all further transitions.
	IsClosed bool `json:"isClosed"`

	// AssignedUserID references the current assignee. Every transition
	// reassigns the task, forward or backward.
	AssignedUserID int64 `json:"assignedUserId"`

	// AssignedUserName is the assignee's display name, resolved from the
	// users table at read time. Not written back to storage.
	AssignedUserName string `json:"assignedUserName"`

	// CustomData is the union of all fields ever submitted across forward
	// moves. Never reset.
	CustomData CustomData `json:"customData"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`

	// StatusHistory holds the task's transition records, ordered by
	// ChangedAt ascending.
	StatusHistory []StatusChange `json:"statusHistory"`
}
