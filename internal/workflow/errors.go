package workflow

import "strings"

// ValidationError is a business-rule or input validation failure carrying one
// or more human-readable messages. The HTTP boundary maps it to a 400 with
// the full message list; everything the engine and registry reject is one of
// these. Match with errors.As.
type ValidationError struct {
	Errors []string
}

// NewValidationError builds a ValidationError from one or more messages.
func NewValidationError(msgs ...string) *ValidationError {
	return &ValidationError{Errors: msgs}
}

func (e *ValidationError) Error() string {
	return strings.Join(e.Errors, "; ")
}
