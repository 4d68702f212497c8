package workflow

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/viant/conduit/model"
)

func TestService_DecodeYAML(t *testing.T) {
	srv := New()
	definition, err := srv.DecodeYAML([]byte(`
name: fulfilment
steps:
  - id: wait
    type: delay
    config:
      duration: 10
`))
	require.NoError(t, err)
	assert.Equal(t, "fulfilment", definition.Name)
	assert.NotEmpty(t, definition.ID)
	require.Len(t, definition.Steps, 1)
	assert.Equal(t, model.StepTypeDelay, definition.Steps[0].Type)
}

func TestService_DecodeYAML_Invalid(t *testing.T) {
	srv := New()
	_, err := srv.DecodeYAML([]byte(`
name: broken
steps:
  - id: first
    type: delay
    onSuccess: nowhere
`))
	require.Error(t, err)
	var validation *model.ValidationError
	assert.ErrorAs(t, err, &validation)
}

func TestService_UpsertAndGet(t *testing.T) {
	srv := New()
	wf := &model.Workflow{ID: "wf-1", Name: "orders", Steps: []*model.Step{{ID: "s1", Type: model.StepTypeDelay}}}
	srv.Upsert("orders.yaml", wf)

	byID, ok := srv.Get("wf-1")
	require.True(t, ok)
	assert.Equal(t, "orders", byID.Name)
	byName, ok := srv.Get("orders")
	require.True(t, ok)
	assert.Equal(t, byID.ID, byName.ID)
	_, ok = srv.Get("missing")
	assert.False(t, ok)
	assert.Len(t, srv.List(), 1)
}
