package model

import (
	"fmt"

	"github.com/viant/conduit/policy"
)

// StepType is the closed set of workflow step kinds.
type StepType string

const (
	StepTypeServiceCall StepType = "service_call"
	StepTypeCondition   StepType = "condition"
	StepTypeParallel    StepType = "parallel"
	StepTypeDelay       StepType = "delay"
	StepTypeTransform   StepType = "transform"
)

// Known reports whether the step type is one of the supported variants.
func (t StepType) Known() bool {
	switch t {
	case StepTypeServiceCall, StepTypeCondition, StepTypeParallel, StepTypeDelay, StepTypeTransform:
		return true
	}
	return false
}

// Step is one node in a workflow's step graph.  OnSuccess/OnFailure reference
// step ids within the same definition; when OnSuccess is empty the walk
// advances to the structurally next step.
type Step struct {
	ID        string                 `json:"id" yaml:"id"`
	Name      string                 `json:"name,omitempty" yaml:"name,omitempty"`
	Type      StepType               `json:"type" yaml:"type"`
	Config    map[string]interface{} `json:"config,omitempty" yaml:"config,omitempty"`
	OnSuccess string                 `json:"onSuccess,omitempty" yaml:"onSuccess,omitempty"`
	OnFailure string                 `json:"onFailure,omitempty" yaml:"onFailure,omitempty"`
	TimeoutMs int                    `json:"timeout,omitempty" yaml:"timeout,omitempty"`
}

// Clone returns a copy of the step with its own config map.
func (s *Step) Clone() *Step {
	if s == nil {
		return nil
	}
	clone := *s
	if s.Config != nil {
		clone.Config = make(map[string]interface{}, len(s.Config))
		for k, v := range s.Config {
			clone.Config[k] = v
		}
	}
	return &clone
}

// Error-handling modes for steps failing without an onFailure edge.
const (
	OnErrorFail     = "fail"
	OnErrorContinue = "continue"
)

// ErrorHandling carries workflow-level failure settings.
type ErrorHandling struct {
	Retry   *policy.Retry `json:"retryPolicy,omitempty" yaml:"retryPolicy,omitempty"`
	OnError string        `json:"onError,omitempty" yaml:"onError,omitempty"`
}

// Source records where a definition was loaded from.
type Source struct {
	URL string `json:"url,omitempty" yaml:"url,omitempty"`
}

// Workflow is a declarative multi-step process definition.  Definitions are
// configuration entities: read-only to the engine at execution time.
type Workflow struct {
	ID            string                 `json:"id,omitempty" yaml:"id,omitempty"`
	Name          string                 `json:"name" yaml:"name"`
	Description   string                 `json:"description,omitempty" yaml:"description,omitempty"`
	Version       string                 `json:"version,omitempty" yaml:"version,omitempty"`
	Steps         []*Step                `json:"steps" yaml:"steps"`
	Variables     map[string]interface{} `json:"variables,omitempty" yaml:"variables,omitempty"`
	ErrorHandling *ErrorHandling         `json:"errorHandling,omitempty" yaml:"errorHandling,omitempty"`
	Source        *Source                `json:"source,omitempty" yaml:"source,omitempty"`
}

// Step returns the step with the given id or nil.
func (w *Workflow) Step(id string) *Step {
	for _, step := range w.Steps {
		if step.ID == id {
			return step
		}
	}
	return nil
}

// FirstStep returns the id of the first step or "" for an empty definition.
func (w *Workflow) FirstStep() string {
	if len(w.Steps) == 0 {
		return ""
	}
	return w.Steps[0].ID
}

// NextAfter returns the id of the step structurally following the given one,
// or "" when it is the last step.
func (w *Workflow) NextAfter(id string) string {
	for i, step := range w.Steps {
		if step.ID == id && i < len(w.Steps)-1 {
			return w.Steps[i+1].ID
		}
	}
	return ""
}

// Validate performs structural validation of the definition: unique step ids,
// known step types and resolvable onSuccess/onFailure references.  The
// returned slice is empty when the definition is sound.
func (w *Workflow) Validate() []error {
	var issues []error
	if w.Name == "" {
		issues = append(issues, fmt.Errorf("workflow name is required"))
	}
	if len(w.Steps) == 0 {
		issues = append(issues, fmt.Errorf("workflow %s has no steps", w.Name))
		return issues
	}
	seen := map[string]bool{}
	for _, step := range w.Steps {
		if step.ID == "" {
			issues = append(issues, fmt.Errorf("workflow %s: step with empty id", w.Name))
			continue
		}
		if seen[step.ID] {
			issues = append(issues, fmt.Errorf("duplicate step id %s", step.ID))
		}
		seen[step.ID] = true
		if !step.Type.Known() {
			issues = append(issues, fmt.Errorf("step %s has unknown type %q", step.ID, step.Type))
		}
	}
	for _, step := range w.Steps {
		if step.OnSuccess != "" && !seen[step.OnSuccess] {
			issues = append(issues, fmt.Errorf("step %s: invalid onSuccess reference %q", step.ID, step.OnSuccess))
		}
		if step.OnFailure != "" && !seen[step.OnFailure] {
			issues = append(issues, fmt.Errorf("step %s: invalid onFailure reference %q", step.ID, step.OnFailure))
		}
	}
	return issues
}

// Clone returns a deep copy of the workflow definition.
func (w *Workflow) Clone() *Workflow {
	if w == nil {
		return nil
	}
	clone := *w
	clone.Steps = make([]*Step, len(w.Steps))
	for i, step := range w.Steps {
		clone.Steps[i] = step.Clone()
	}
	if w.Variables != nil {
		clone.Variables = make(map[string]interface{}, len(w.Variables))
		for k, v := range w.Variables {
			clone.Variables[k] = v
		}
	}
	if w.ErrorHandling != nil {
		eh := *w.ErrorHandling
		eh.Retry = w.ErrorHandling.Retry.Clone()
		clone.ErrorHandling = &eh
	}
	if w.Source != nil {
		src := *w.Source
		clone.Source = &src
	}
	return &clone
}

// OnErrorMode returns the effective mode for failures without an onFailure
// edge.
func (w *Workflow) OnErrorMode() string {
	if w.ErrorHandling == nil || w.ErrorHandling.OnError == "" {
		return OnErrorFail
	}
	return w.ErrorHandling.OnError
}
