package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func linearWorkflow() *Workflow {
	return &Workflow{
		Name: "linear",
		Steps: []*Step{
			{ID: "s1", Name: "first", Type: StepTypeTransform},
			{ID: "s2", Name: "second", Type: StepTypeDelay},
			{ID: "s3", Name: "third", Type: StepTypeCondition},
		},
	}
}

func TestWorkflow_Validate(t *testing.T) {
	wf := linearWorkflow()
	assert.Empty(t, wf.Validate())

	wf.Steps[1].OnSuccess = "missing"
	issues := wf.Validate()
	assert.Len(t, issues, 1)
	assert.Contains(t, issues[0].Error(), "onSuccess")

	wf = linearWorkflow()
	wf.Steps[2].ID = "s1"
	issues = wf.Validate()
	assert.Len(t, issues, 1)
	assert.Contains(t, issues[0].Error(), "duplicate")

	wf = linearWorkflow()
	wf.Steps[0].Type = "shell"
	issues = wf.Validate()
	assert.Len(t, issues, 1)
	assert.Contains(t, issues[0].Error(), "unknown type")
}

func TestWorkflow_NextAfter(t *testing.T) {
	wf := linearWorkflow()
	assert.Equal(t, "s1", wf.FirstStep())
	assert.Equal(t, "s2", wf.NextAfter("s1"))
	assert.Equal(t, "s3", wf.NextAfter("s2"))
	assert.Equal(t, "", wf.NextAfter("s3"))
	assert.Equal(t, "", wf.NextAfter("unknown"))
}

func TestWorkflow_Clone(t *testing.T) {
	wf := linearWorkflow()
	wf.Variables = map[string]interface{}{"region": "eu"}
	clone := wf.Clone()
	clone.Steps[0].ID = "changed"
	clone.Variables["region"] = "us"
	assert.Equal(t, "s1", wf.Steps[0].ID)
	assert.Equal(t, "eu", wf.Variables["region"])
}

func TestRoute_CompilePattern(t *testing.T) {
	route := &Route{Name: "orders", Pattern: "order.*", Destinations: []string{"billing"}}
	assert.NoError(t, route.Validate())

	re, err := route.CompilePattern()
	assert.NoError(t, err)
	assert.True(t, re.MatchString("order.created"))
	assert.True(t, re.MatchString("order.shipped.confirmed"))
	assert.False(t, re.MatchString("invoice.created"))

	exact := &Route{Pattern: "order.created"}
	re, err = exact.CompilePattern()
	assert.NoError(t, err)
	assert.True(t, re.MatchString("order.created"))
	assert.False(t, re.MatchString("order.created.v2"))
}
