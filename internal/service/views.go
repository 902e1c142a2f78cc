package service

import (
	"time"

	"github.com/scrypster/taskflow/internal/workflow"
	"github.com/scrypster/taskflow/pkg/types"
)

// TaskView is the API representation of a task: the stored fields plus the
// label of the current status, resolved from the type's strategy.
type TaskView struct {
	ID                 string             `json:"id"`
	TaskType           string             `json:"taskType"`
	Title              string             `json:"title"`
	CurrentStatus      int                `json:"currentStatus"`
	CurrentStatusLabel string             `json:"currentStatusLabel"`
	IsClosed           bool               `json:"isClosed"`
	AssignedUserID     int64              `json:"assignedUserId"`
	AssignedUserName   string             `json:"assignedUserName"`
	CustomData         types.CustomData   `json:"customData"`
	CreatedAt          time.Time          `json:"createdAt"`
	UpdatedAt          time.Time          `json:"updatedAt"`
	StatusHistory      []StatusChangeView `json:"statusHistory"`
}

// StatusChangeView is one history entry in a task view, ordered by changedAt
// ascending.
type StatusChangeView struct {
	FromStatus       int       `json:"fromStatus"`
	ToStatus         int       `json:"toStatus"`
	AssignedUserID   int64     `json:"assignedUserId"`
	AssignedUserName string    `json:"assignedUserName"`
	ChangedAt        time.Time `json:"changedAt"`
}

// NewTaskView maps a task to its API view using the strategy that governs
// its type.
func NewTaskView(task *types.Task, strategy workflow.Strategy) *TaskView {
	label := "Unknown"
	for _, def := range strategy.StatusDefinitions() {
		if def.Status == task.CurrentStatus {
			label = def.Label
			break
		}
	}

	history := make([]StatusChangeView, 0, len(task.StatusHistory))
	for _, change := range task.StatusHistory {
		history = append(history, StatusChangeView{
			FromStatus:       change.FromStatus,
			ToStatus:         change.ToStatus,
			AssignedUserID:   change.AssignedUserID,
			AssignedUserName: change.AssignedUserName,
			ChangedAt:        change.ChangedAt,
		})
	}

	customData := task.CustomData
	if customData == nil {
		customData = types.CustomData{}
	}

	return &TaskView{
		ID:                 task.ID,
		TaskType:           task.TaskType,
		Title:              task.Title,
		CurrentStatus:      task.CurrentStatus,
		CurrentStatusLabel: label,
		IsClosed:           task.IsClosed,
		AssignedUserID:     task.AssignedUserID,
		AssignedUserName:   task.AssignedUserName,
		CustomData:         customData,
		CreatedAt:          task.CreatedAt,
		UpdatedAt:          task.UpdatedAt,
		StatusHistory:      history,
	}
}
