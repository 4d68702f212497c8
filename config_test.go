package conduit_test

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/viant/conduit"
	"github.com/viant/conduit/model"
	"github.com/viant/conduit/service/messaging/memory"
)

func TestNew_ZeroConfigInheritsDefaults(t *testing.T) {
	runtime := conduit.New(conduit.WithConfig(&conduit.Config{})).Runtime()
	require.NoError(t, runtime.Start(context.Background()))
	require.NoError(t, runtime.Shutdown(context.Background()))
}

func TestNew_InvalidConfigSurfacesOnStart(t *testing.T) {
	runtime := conduit.New(conduit.WithConfig(&conduit.Config{
		Processor: conduit.ProcessorConfig{WorkerCount: -1},
	})).Runtime()
	err := runtime.Start(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid configuration")
}

func TestRuntime_DeadLetters(t *testing.T) {
	dispatch := memory.NewQueue[model.Message](memory.Config{
		MaxRetries: 0,
		RetryDelay: time.Millisecond,
		DeadLetter: true,
	})
	runtime := conduit.New(conduit.WithDispatchQueue(dispatch)).Runtime()

	ctx := context.Background()
	require.NoError(t, dispatch.Publish(ctx, &model.Message{ID: "m-1", Destination: "warehouse"}))
	message, err := dispatch.Consume(ctx)
	require.NoError(t, err)
	require.NoError(t, message.Nack(fmt.Errorf("destination unavailable")))

	letters, err := runtime.DeadLetters()
	require.NoError(t, err)
	require.Len(t, letters, 1)
	assert.Equal(t, "m-1", letters[0].ID)
	assert.Equal(t, "warehouse", letters[0].Destination)
}
