package types

import "time"

// StatusChange is one record in a task's transition history. Records are
// append-only and immutable once written; they are owned by the task and
// removed with it (cascade delete at the storage layer).
type StatusChange struct {
	// TaskID references the owning task.
	TaskID string `json:"taskId"`

	// FromStatus is the status the task left.
	FromStatus int `json:"fromStatus"`

	// ToStatus is the status the task entered.
	ToStatus int `json:"toStatus"`

	// AssignedUserID is who the task was assigned to as of this change.
	AssignedUserID int64 `json:"assignedUserId"`

	// AssignedUserName is the assignee's display name, resolved at read time.
	AssignedUserName string `json:"assignedUserName"`

	ChangedAt time.Time `json:"changedAt"`
}
