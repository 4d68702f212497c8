package memory

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/viant/conduit/model"
	"github.com/viant/conduit/service/dao"
)

func seed(t *testing.T) *Service {
	t.Helper()
	srv := New()
	ctx := context.Background()
	records := []*model.ServiceCall{
		{ID: "c1", CorrelationID: "corr-1", ServiceName: "billing", Status: model.CallStatusSuccess, ExecutionTimeMs: 100},
		{ID: "c2", CorrelationID: "corr-1", ServiceName: "billing", Status: model.CallStatusFailed, ExecutionTimeMs: 300},
		{ID: "c3", CorrelationID: "corr-2", ServiceName: "inventory", Status: model.CallStatusTimeout, ExecutionTimeMs: 200},
	}
	for _, record := range records {
		require.NoError(t, srv.Save(ctx, record))
	}
	return srv
}

func TestService_List(t *testing.T) {
	srv := seed(t)
	ctx := context.Background()

	all, err := srv.List(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 3)
	// insertion order is preserved
	assert.Equal(t, "c1", all[0].ID)

	billing, err := srv.List(ctx, dao.NewParameter("ServiceName", "billing"))
	require.NoError(t, err)
	assert.Len(t, billing, 2)

	correlated, err := srv.List(ctx, dao.NewParameter("CorrelationID", "corr-2"))
	require.NoError(t, err)
	require.Len(t, correlated, 1)
	assert.Equal(t, "c3", correlated[0].ID)
}

func TestService_Stats(t *testing.T) {
	srv := seed(t)
	stats, err := srv.Stats(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 3, stats.Total)
	assert.Equal(t, 1, stats.Successful)
	// timeouts count as failures
	assert.Equal(t, 2, stats.Failed)
	assert.InDelta(t, 1.0/3.0, stats.SuccessRate, 0.001)
	assert.EqualValues(t, 200, stats.AvgExecutionTimeMs)
}

func TestService_CloneSemantics(t *testing.T) {
	srv := seed(t)
	ctx := context.Background()
	loaded, err := srv.Load(ctx, "c1")
	require.NoError(t, err)
	loaded.Status = model.CallStatusCancelled
	again, err := srv.Load(ctx, "c1")
	require.NoError(t, err)
	assert.Equal(t, model.CallStatusSuccess, again.Status)
}

func TestService_LoadMissing(t *testing.T) {
	srv := New()
	_, err := srv.Load(context.Background(), "missing")
	assert.ErrorIs(t, err, dao.ErrNotFound)
}
