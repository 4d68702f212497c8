package memory

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type dispatchNote struct {
	MessageID   string
	Destination string
	Attempt     int
}

func TestQueue_PublishConsumeAck(t *testing.T) {
	config := DefaultConfig()
	config.RetryDelay = 10 * time.Millisecond
	queue := NewQueue[dispatchNote](config)
	ctx := context.Background()

	note := dispatchNote{MessageID: "m1", Destination: "warehouse"}
	require.NoError(t, queue.Publish(ctx, &note))
	assert.Equal(t, 1, queue.Size())

	message, err := queue.Consume(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, queue.Size())
	assert.Equal(t, "m1", message.T().MessageID)
	assert.Equal(t, "warehouse", message.T().Destination)

	require.NoError(t, message.Ack())
	time.Sleep(20 * time.Millisecond)
	// a second ack of the same message is an error
	assert.Error(t, message.Ack())
}

func TestQueue_NackRedelivers(t *testing.T) {
	config := DefaultConfig()
	config.MaxRetries = 2
	config.RetryDelay = 10 * time.Millisecond
	queue := NewQueue[dispatchNote](config)
	ctx := context.Background()

	require.NoError(t, queue.Publish(ctx, &dispatchNote{MessageID: "m1"}))

	for attempt := 0; attempt <= config.MaxRetries; attempt++ {
		message, err := queue.Consume(ctx)
		require.NoError(t, err)
		require.NoError(t, message.Nack(nil))
		time.Sleep(20 * time.Millisecond)
	}

	// retries exhausted, nothing left to consume
	assert.Equal(t, 0, queue.Size())
	assert.Equal(t, 1, queue.DLQSize())
}

func TestQueue_DeadLetters(t *testing.T) {
	config := DefaultConfig()
	config.MaxRetries = 0
	queue := NewQueue[dispatchNote](config)
	ctx := context.Background()

	require.NoError(t, queue.Publish(ctx, &dispatchNote{MessageID: "m1", Destination: "warehouse"}))
	message, err := queue.Consume(ctx)
	require.NoError(t, err)
	require.NoError(t, message.Nack(fmt.Errorf("consumer unavailable")))

	letters := queue.DeadLetters()
	require.Len(t, letters, 1)
	assert.Equal(t, "m1", letters[0].MessageID)
	assert.Equal(t, "warehouse", letters[0].Destination)

	// the snapshot is detached from the retained payload
	letters[0].Destination = "mutated"
	assert.Equal(t, "warehouse", queue.DeadLetters()[0].Destination)
}

func TestQueue_NackDisabledDeadLetter(t *testing.T) {
	config := DefaultConfig()
	config.MaxRetries = 0
	config.DeadLetter = false
	queue := NewQueue[dispatchNote](config)
	ctx := context.Background()

	require.NoError(t, queue.Publish(ctx, &dispatchNote{MessageID: "m1"}))
	message, err := queue.Consume(ctx)
	require.NoError(t, err)
	require.NoError(t, message.Nack(nil))
	assert.Equal(t, 0, queue.DLQSize())
}

func TestQueue_Concurrency(t *testing.T) {
	config := DefaultConfig()
	config.RetryDelay = 10 * time.Millisecond
	queue := NewQueue[dispatchNote](config)
	ctx := context.Background()

	producers := 10
	perProducer := 10

	var wg sync.WaitGroup
	wg.Add(producers * 2)

	var consumed int
	var mu sync.Mutex
	for i := 0; i < producers; i++ {
		go func() {
			defer wg.Done()
			for j := 0; j < perProducer; j++ {
				message, err := queue.Consume(ctx)
				if err != nil {
					t.Errorf("consume: %v", err)
					continue
				}
				assert.NoError(t, message.Ack())
				mu.Lock()
				consumed++
				mu.Unlock()
			}
		}()
	}
	for i := 0; i < producers; i++ {
		go func(producer int) {
			defer wg.Done()
			for j := 0; j < perProducer; j++ {
				note := dispatchNote{MessageID: fmt.Sprintf("p%d-m%d", producer, j), Attempt: j}
				if err := queue.Publish(ctx, &note); err != nil {
					t.Errorf("publish: %v", err)
				}
			}
		}(i)
	}

	done := make(chan struct{})
	go func() {
		wg.Wait()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for producers and consumers")
	}
	assert.Equal(t, producers*perProducer, consumed)
}

func TestQueue_ConsumeHonoursContext(t *testing.T) {
	queue := NewQueue[dispatchNote](DefaultConfig())
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	_, err := queue.Consume(ctx)
	assert.Error(t, err)
}
