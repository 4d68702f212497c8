package executor

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/viant/conduit/model"
	"github.com/viant/conduit/model/expr"
	"github.com/viant/conduit/runtime/interpolate"
	"github.com/viant/conduit/service/invoker"
	"github.com/viant/conduit/tracing"
	"github.com/viant/structology/conv"
)

// Settlement is the recorded outcome of one parallel branch; branches settle
// independently and a rejected branch never aborts its siblings.
type Settlement struct {
	Branch string      `json:"branch"`
	Status string      `json:"status"`
	Output interface{} `json:"output,omitempty"`
	Error  string      `json:"error,omitempty"`
}

// Settlement statuses.
const (
	SettledFulfilled = "fulfilled"
	SettledRejected  = "rejected"
)

// Service executes one step at a time against an execution's context.
type Service struct {
	invoker   *invoker.Service
	converter *conv.Converter
}

// New creates a step executor.
func New(invokerService *invoker.Service) *Service {
	options := conv.DefaultOptions()
	options.ClonePointerData = true
	options.IgnoreUnmapped = true
	return &Service{
		invoker:   invokerService,
		converter: conv.NewConverter(options),
	}
}

// Execute runs a single step. The step's config is interpolated against the
// context before dispatch; the returned output is merged into the execution
// context by the caller.
func (s *Service) Execute(ctx context.Context, step *model.Step, execContext map[string]interface{}, correlationID string) (interface{}, error) {
	ctx, span := tracing.StartSpan(ctx, "executor."+string(step.Type), "INTERNAL")
	var err error
	var output interface{}
	defer func() { tracing.EndSpan(span, err) }()

	config, _ := interpolate.Payload(step.Config, execContext).(map[string]interface{})
	if config == nil {
		config = map[string]interface{}{}
	}

	switch step.Type {
	case model.StepTypeServiceCall:
		output, err = s.serviceCall(ctx, step, config, correlationID)
	case model.StepTypeCondition:
		output, err = s.condition(step, config, execContext)
	case model.StepTypeParallel:
		output, err = s.parallel(ctx, step, config, execContext, correlationID)
	case model.StepTypeDelay:
		output, err = s.delay(ctx, step, config)
	case model.StepTypeTransform:
		output, err = s.transform(step, config, execContext)
	default:
		err = newStepError(step.ID, string(step.Type), fmt.Errorf("unknown step type"))
	}
	return output, err
}

func (s *Service) serviceCall(ctx context.Context, step *model.Step, config map[string]interface{}, correlationID string) (interface{}, error) {
	typed := &ServiceCallConfig{}
	if err := s.converter.Convert(config, typed); err != nil {
		return nil, newStepError(step.ID, string(step.Type), fmt.Errorf("invalid config: %w", err))
	}
	typed.normalize()
	if typed.Service == "" {
		return nil, newStepError(step.ID, string(step.Type), fmt.Errorf("service is required"))
	}
	record, err := s.invoker.Call(ctx, &invoker.Request{
		CorrelationID: correlationID,
		ClientID:      typed.ClientID,
		Service:       typed.Service,
		Version:       typed.Version,
		Method:        typed.Method,
		Path:          typed.Path,
		Headers:       typed.Headers,
		QueryParams:   typed.QueryParams,
		Body:          typed.Body,
		Projection:    typed.Projection,
		TimeoutMs:     step.TimeoutMs,
		MaxRetries:    typed.MaxRetries,
	})
	if err != nil {
		return nil, newStepError(step.ID, string(step.Type), err)
	}
	return map[string]interface{}{
		"response":   record.ProjectedResponseBody,
		"statusCode": record.ResponseStatus,
	}, nil
}

// condition evaluates the expression; the boolean result never branches by
// itself, callers react to it through onSuccess/onFailure when Required is
// set.
func (s *Service) condition(step *model.Step, config map[string]interface{}, execContext map[string]interface{}) (interface{}, error) {
	typed := &ConditionConfig{}
	if err := s.converter.Convert(config, typed); err != nil {
		return nil, newStepError(step.ID, string(step.Type), fmt.Errorf("invalid config: %w", err))
	}
	if typed.Expression == "" {
		return nil, newStepError(step.ID, string(step.Type), fmt.Errorf("expression is required"))
	}
	result, err := expr.Evaluate(typed.Expression, execContext)
	if err != nil {
		return nil, newStepError(step.ID, string(step.Type), err)
	}
	output := map[string]interface{}{"conditionResult": result}
	if typed.Required && !result {
		return output, newStepError(step.ID, string(step.Type), fmt.Errorf("condition %q not satisfied", typed.Expression))
	}
	return output, nil
}

// parallel fans out branches concurrently and waits for the full settlement
// set; it never fails because a branch failed.
func (s *Service) parallel(ctx context.Context, step *model.Step, config map[string]interface{}, execContext map[string]interface{}, correlationID string) (interface{}, error) {
	typed := &ParallelConfig{}
	if err := s.converter.Convert(config, typed); err != nil {
		return nil, newStepError(step.ID, string(step.Type), fmt.Errorf("invalid config: %w", err))
	}
	settlements := make([]*Settlement, len(typed.Branches))
	var wg sync.WaitGroup
	for i, branch := range typed.Branches {
		wg.Add(1)
		go func(i int, branch *BranchConfig) {
			defer wg.Done()
			name := branch.ID
			if name == "" {
				name = fmt.Sprintf("%s[%d]", step.ID, i)
			}
			branchStep := &model.Step{
				ID:     name,
				Name:   branch.Name,
				Type:   model.StepType(branch.Type),
				Config: branch.Config,
			}
			output, err := s.Execute(ctx, branchStep, execContext, correlationID)
			settlement := &Settlement{Branch: name, Status: SettledFulfilled, Output: output}
			if err != nil {
				settlement.Status = SettledRejected
				settlement.Error = err.Error()
				settlement.Output = nil
			}
			settlements[i] = settlement
		}(i, branch)
	}
	wg.Wait()
	return map[string]interface{}{"results": settlements}, nil
}

// delay suspends this execution only; other executions keep running.
func (s *Service) delay(ctx context.Context, step *model.Step, config map[string]interface{}) (interface{}, error) {
	typed := &DelayConfig{}
	if err := s.converter.Convert(config, typed); err != nil {
		return nil, newStepError(step.ID, string(step.Type), fmt.Errorf("invalid config: %w", err))
	}
	if typed.Duration < 0 {
		typed.Duration = 0
	}
	select {
	case <-time.After(time.Duration(typed.Duration) * time.Millisecond):
	case <-ctx.Done():
		return nil, newStepError(step.ID, string(step.Type), ctx.Err())
	}
	return map[string]interface{}{"delayed": typed.Duration}, nil
}

// transform applies declarative map/filter operations to a working copy of
// the context and returns the result as the step output.
func (s *Service) transform(step *model.Step, config map[string]interface{}, execContext map[string]interface{}) (interface{}, error) {
	typed := &TransformConfig{}
	if err := s.converter.Convert(config, typed); err != nil {
		return nil, newStepError(step.ID, string(step.Type), fmt.Errorf("invalid config: %w", err))
	}
	working := make(map[string]interface{}, len(execContext))
	for k, v := range execContext {
		working[k] = v
	}
	for _, transformation := range typed.Transformations {
		switch transformation.Type {
		case "map":
			out := make(map[string]interface{}, len(transformation.Mapping))
			for _, mapping := range transformation.Mapping {
				if value, ok := lookupPath(working, mapping.Source); ok {
					target := mapping.Target
					if target == "" {
						target = mapping.Source
					}
					out[target] = value
				}
			}
			working = out
		case "filter":
			out := make(map[string]interface{}, len(transformation.Fields))
			for _, field := range transformation.Fields {
				if value, ok := working[field]; ok {
					out[field] = value
				}
			}
			working = out
		default:
			return nil, newStepError(step.ID, string(step.Type), fmt.Errorf("unknown transformation type %q", transformation.Type))
		}
	}
	return working, nil
}

// lookupPath resolves a dotted path against nested maps.
func lookupPath(data map[string]interface{}, path string) (interface{}, bool) {
	if path == "" {
		return nil, false
	}
	parts := strings.Split(path, ".")
	var current interface{} = data
	for i, part := range parts {
		asMap, ok := current.(map[string]interface{})
		if !ok {
			return nil, false
		}
		value, ok := asMap[part]
		if !ok {
			return nil, false
		}
		if i == len(parts)-1 {
			return value, true
		}
		current = value
	}
	return nil, false
}
