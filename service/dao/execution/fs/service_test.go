package fs

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/viant/conduit/runtime/execution"
	"github.com/viant/conduit/service/dao"
)

func TestService_Roundtrip(t *testing.T) {
	srv, err := New("mem://localhost/executions")
	require.NoError(t, err)
	ctx := context.Background()

	exec := execution.New("e1", "orders", "corr-1", map[string]interface{}{"total": 10})
	exec.Start("validate")
	require.NoError(t, srv.Save(ctx, exec))

	loaded, err := srv.Load(ctx, "e1")
	require.NoError(t, err)
	assert.Equal(t, execution.StatusRunning, loaded.Status)
	assert.Equal(t, "validate", loaded.CurrentStep)
	assert.EqualValues(t, 10, loaded.Context["total"])

	// a second store over the same path sees the persisted record
	recovered, err := New("mem://localhost/executions")
	require.NoError(t, err)
	again, err := recovered.Load(ctx, "e1")
	require.NoError(t, err)
	assert.Equal(t, loaded.CurrentStep, again.CurrentStep)
}

func TestService_ListCriteria(t *testing.T) {
	srv, err := New("mem://localhost/executions-list")
	require.NoError(t, err)
	ctx := context.Background()

	first := execution.New("e1", "orders", "", nil)
	second := execution.New("e2", "billing", "", nil)
	require.NoError(t, srv.Save(ctx, first))
	require.NoError(t, srv.Save(ctx, second))

	all, err := srv.List(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 2)

	orders, err := srv.List(ctx, dao.NewParameter("WorkflowID", "orders"))
	require.NoError(t, err)
	require.Len(t, orders, 1)
	assert.Equal(t, "e1", orders[0].ID)
}

func TestService_Errors(t *testing.T) {
	srv, err := New("mem://localhost/executions-errors")
	require.NoError(t, err)
	ctx := context.Background()

	_, err = New("")
	assert.Error(t, err)
	assert.ErrorIs(t, srv.Save(ctx, nil), dao.ErrNilEntity)
	assert.ErrorIs(t, srv.Save(ctx, &execution.Execution{}), dao.ErrInvalidID)
	_, err = srv.Load(ctx, "missing")
	assert.ErrorIs(t, err, dao.ErrNotFound)
	assert.ErrorIs(t, srv.Delete(ctx, "missing"), dao.ErrNotFound)

	exec := execution.New("e1", "orders", "", nil)
	require.NoError(t, srv.Save(ctx, exec))
	require.NoError(t, srv.Delete(ctx, "e1"))
	_, err = srv.Load(ctx, "e1")
	assert.ErrorIs(t, err, dao.ErrNotFound)
}
