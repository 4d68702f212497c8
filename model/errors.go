package model

import "strings"

// ValidationError rejects a malformed workflow definition at creation time,
// before any execution exists.
type ValidationError struct {
	Workflow string
	Issues   []string
}

// Error implements error.
func (e *ValidationError) Error() string {
	return "invalid workflow " + e.Workflow + ": " + strings.Join(e.Issues, "; ")
}

// NewValidationError aggregates issues into a single creation-time error.
func NewValidationError(workflow string, issues ...error) *ValidationError {
	err := &ValidationError{Workflow: workflow}
	for _, issue := range issues {
		err.Issues = append(err.Issues, issue.Error())
	}
	return err
}
