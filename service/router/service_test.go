package router

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/viant/conduit/model"
	"github.com/viant/conduit/service/dao"
	msglogmem "github.com/viant/conduit/service/dao/msglog/memory"
	"github.com/viant/conduit/service/dao/route"
	"github.com/viant/conduit/service/messaging/memory"
	"github.com/viant/conduit/service/transform"
)

func newTestRouter(t *testing.T, routes ...*model.Route) (*Service, *memory.Queue[model.Message], *msglogmem.Service, *transform.Registry) {
	t.Helper()
	registry := route.New()
	for _, candidate := range routes {
		require.NoError(t, registry.Add(candidate))
	}
	dispatch := memory.NewQueue[model.Message](memory.DefaultConfig())
	logs := msglogmem.New()
	transforms := transform.NewRegistry()
	return New(registry, transforms, dispatch, logs, nil), dispatch, logs, transforms
}

func drain(t *testing.T, queue *memory.Queue[model.Message]) []*model.Message {
	t.Helper()
	var out []*model.Message
	for queue.Size() > 0 {
		msg, err := queue.Consume(context.Background())
		require.NoError(t, err)
		out = append(out, msg.T())
		require.NoError(t, msg.Ack())
	}
	return out
}

func TestService_Route_FanOut(t *testing.T) {
	service, dispatch, logs, _ := newTestRouter(t,
		&model.Route{Name: "orders", Pattern: "order.*", Destinations: []string{"warehouse"}, IsActive: true, Priority: 10},
		&model.Route{Name: "audit", Pattern: "order.created", Destinations: []string{"audit", "billing"}, IsActive: true, Priority: 5},
	)

	outcome, err := service.Route(context.Background(), &model.Message{
		Source:      "shop",
		MessageType: "order.created",
		Payload:     map[string]interface{}{"orderId": "ord-1"},
	})
	require.NoError(t, err)
	assert.Equal(t, model.LogStatusRouted, outcome.Status)
	assert.Equal(t, []string{"orders", "audit"}, outcome.Matched)
	assert.Equal(t, 3, outcome.Dispatched)

	dispatched := drain(t, dispatch)
	require.Len(t, dispatched, 3)
	destinations := map[string]bool{}
	for _, msg := range dispatched {
		destinations[msg.Destination] = true
		assert.Equal(t, outcome.Message.CorrelationID, msg.CorrelationID)
	}
	assert.Equal(t, map[string]bool{"warehouse": true, "audit": true, "billing": true}, destinations)

	routed, err := logs.List(context.Background(), dao.NewParameter("Status", model.LogStatusRouted))
	require.NoError(t, err)
	assert.Len(t, routed, 2)
}

func TestService_Route_NoRoute(t *testing.T) {
	service, dispatch, logs, _ := newTestRouter(t,
		&model.Route{Name: "orders", Pattern: "order.*", Destinations: []string{"warehouse"}, IsActive: true},
	)

	outcome, err := service.Route(context.Background(), &model.Message{MessageType: "invoice.created"})
	require.NoError(t, err)
	assert.Equal(t, model.LogStatusNoRoute, outcome.Status)
	assert.Empty(t, outcome.Matched)
	assert.Empty(t, drain(t, dispatch))

	entries, err := logs.List(context.Background(), dao.NewParameter("Status", model.LogStatusNoRoute))
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}

func TestService_Route_Conditions(t *testing.T) {
	service, dispatch, _, _ := newTestRouter(t,
		&model.Route{
			Name:         "eu-orders",
			Pattern:      "order.*",
			Destinations: []string{"eu-warehouse"},
			Conditions:   map[string]interface{}{"source": "shop-eu", "header.region": "eu"},
			IsActive:     true,
		},
	)

	outcome, err := service.Route(context.Background(), &model.Message{
		Source:      "shop-eu",
		MessageType: "order.created",
		Headers:     map[string]interface{}{"region": "eu"},
	})
	require.NoError(t, err)
	assert.Equal(t, model.LogStatusRouted, outcome.Status)
	assert.Len(t, drain(t, dispatch), 1)

	outcome, err = service.Route(context.Background(), &model.Message{
		Source:      "shop-us",
		MessageType: "order.created",
		Headers:     map[string]interface{}{"region": "eu"},
	})
	require.NoError(t, err)
	assert.Equal(t, model.LogStatusNoRoute, outcome.Status)
}

func TestService_Route_InactiveRoutesIgnored(t *testing.T) {
	service, dispatch, _, _ := newTestRouter(t,
		&model.Route{Name: "orders", Pattern: "order.*", Destinations: []string{"warehouse"}, IsActive: false},
	)
	outcome, err := service.Route(context.Background(), &model.Message{MessageType: "order.created"})
	require.NoError(t, err)
	assert.Equal(t, model.LogStatusNoRoute, outcome.Status)
	assert.Empty(t, drain(t, dispatch))
}

func TestService_Route_TransformFailureIsolation(t *testing.T) {
	service, dispatch, logs, transforms := newTestRouter(t,
		&model.Route{Name: "broken", Pattern: "order.*", Destinations: []string{"x"}, Transformations: []string{"boom"}, IsActive: true, Priority: 10},
		&model.Route{Name: "healthy", Pattern: "order.*", Destinations: []string{"warehouse"}, IsActive: true, Priority: 5},
	)
	transforms.Register(transform.NewFunc("boom", func(_ context.Context, _ *model.Message) (*model.Message, error) {
		return nil, fmt.Errorf("kaput")
	}))

	outcome, err := service.Route(context.Background(), &model.Message{MessageType: "order.created"})
	require.NoError(t, err)
	assert.Equal(t, model.LogStatusRouted, outcome.Status)
	assert.Equal(t, []string{"broken", "healthy"}, outcome.Matched)
	assert.Equal(t, 1, outcome.Dispatched)
	assert.Len(t, outcome.Errors, 1)
	assert.Len(t, drain(t, dispatch), 1)

	errored, err := logs.List(context.Background(), dao.NewParameter("Status", model.LogStatusError))
	require.NoError(t, err)
	require.Len(t, errored, 1)
	assert.Equal(t, "broken", errored[0].RouteName)
}

func TestService_Route_TransformApplied(t *testing.T) {
	service, dispatch, _, transforms := newTestRouter(t,
		&model.Route{Name: "enrich", Pattern: "order.*", Destinations: []string{"warehouse"}, Transformations: []string{"stamp"}, IsActive: true},
	)
	transforms.Register(transform.NewFunc("stamp", func(_ context.Context, message *model.Message) (*model.Message, error) {
		message.Headers["stamped"] = true
		return message, nil
	}))

	original := &model.Message{MessageType: "order.created", Headers: map[string]interface{}{}}
	_, err := service.Route(context.Background(), original)
	require.NoError(t, err)

	dispatched := drain(t, dispatch)
	require.Len(t, dispatched, 1)
	assert.Equal(t, true, dispatched[0].Headers["stamped"])
	// transforms operate on a copy, the inbound message is untouched
	_, stamped := original.Headers["stamped"]
	assert.False(t, stamped)
}
