package handlers

import "github.com/scrypster/taskflow/pkg/types"

// ErrorResponse is the standard error response format for the API.
type ErrorResponse struct {
	Error   string                 `json:"error"`
	Code    string                 `json:"code"`
	Details map[string]interface{} `json:"details,omitempty"`
}

// CreateTaskRequest is the request format for POST /api/tasks.
type CreateTaskRequest struct {
	TaskType       string `json:"taskType"`
	Title          string `json:"title"`
	AssignedUserID int64  `json:"assignedUserId"`
}

// ChangeStatusRequest is the request format for PUT /api/tasks/{id}/status.
// CustomData carries the fields submitted with the transition; on forward
// moves it is validated and merged into the task's stored data.
type ChangeStatusRequest struct {
	TargetStatus   int              `json:"targetStatus"`
	AssignedUserID int64            `json:"assignedUserId"`
	CustomData     types.CustomData `json:"customData,omitempty"`
}
