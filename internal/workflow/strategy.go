// Package workflow implements the status-transition engine: the per-type
// strategies describing each workflow, the registry resolving type names to
// strategies, and the engine applying the transition rules. Everything in
// this package is immutable after startup and safe for concurrent use.
package workflow

import (
	"fmt"
	"strings"

	"github.com/scrypster/taskflow/pkg/types"
)

// StatusDefinition labels one status number within a task type's sequence.
type StatusDefinition struct {
	Status int    `json:"status"`
	Label  string `json:"label"`
}

// FieldDefinition describes a custom-data field that must accompany a forward
// move into a target status. The client uses these to render type-specific
// forms; the server uses them to validate submissions.
type FieldDefinition struct {
	FieldName string `json:"fieldName"`
	Label     string `json:"label"`
	FieldType string `json:"fieldType"`
	Required  bool   `json:"required"`

	// ArrayLength hints the expected element count for array-typed fields.
	ArrayLength *int `json:"arrayLength,omitempty"`
}

// Strategy defines the workflow for one task type: its ordered status
// sequence, the fields each forward move must carry, and the validation of
// those fields. Implementations are stateless; adding a new task type means
// adding a new Strategy and registering it, with no change to the engine.
type Strategy interface {
	// TaskType returns the unique type name, matched case-insensitively.
	TaskType() string

	// MaxStatus returns the highest valid status number, the final status
	// a task reaches before closing.
	MaxStatus() int

	// StatusDefinitions returns ordered labels for statuses 1..MaxStatus.
	StatusDefinitions() []StatusDefinition

	// RequiredFields returns the fields required when moving forward into
	// targetStatus. Empty for statuses with no requirement; the initial
	// status 1 never has any.
	RequiredFields(targetStatus int) []FieldDefinition

	// Validate checks submitted custom data for a forward move into
	// targetStatus and returns human-readable errors, one per problem.
	// An empty slice means the submission is valid. Only forward moves are
	// ever validated; backward moves bypass this entirely.
	Validate(targetStatus int, data types.CustomData) []string
}

// validateRequired checks every required field of the target status: an error
// is reported when a field is absent, nil, or blank after string coercion.
// Shared by all built-in strategies.
func validateRequired(s Strategy, targetStatus int, data types.CustomData) []string {
	var errs []string
	for _, field := range s.RequiredFields(targetStatus) {
		if !field.Required {
			continue
		}
		errs = requireString(data, field.FieldName, field.Label, errs)
	}
	return errs
}

// requireString appends an error when data[key] is missing, nil, or coerces
// to a blank string.
func requireString(data types.CustomData, key, label string, errs []string) []string {
	v, ok := data[key]
	if !ok || v == nil {
		return append(errs, fmt.Sprintf("%s is required", label))
	}
	if strings.TrimSpace(fmt.Sprintf("%v", v)) == "" {
		return append(errs, fmt.Sprintf("%s cannot be empty", label))
	}
	return errs
}
