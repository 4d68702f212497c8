package executor

import "fmt"

// StepError wraps a failure of a single step attempt with its coordinates.
type StepError struct {
	StepID string
	Type   string
	Err    error
}

func (e *StepError) Error() string {
	return fmt.Sprintf("step %s (%s) failed: %v", e.StepID, e.Type, e.Err)
}

func (e *StepError) Unwrap() error { return e.Err }

func newStepError(stepID string, stepType string, err error) *StepError {
	return &StepError{StepID: stepID, Type: stepType, Err: err}
}
