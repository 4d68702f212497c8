// Package memory provides the channel backed queue used for the kickoff and
// dispatch paths. Nacked deliveries are redelivered after a delay until their
// retry budget is exhausted; exhausted payloads are retained on a dead-letter
// list so they can be inspected through the audit surface.
package memory

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/viant/conduit/service/messaging"
)

// Config controls buffering and redelivery of nacked messages.
type Config struct {
	MaxRetries  int
	RetryDelay  time.Duration
	DeadLetter  bool
	QueueBuffer int
}

// DefaultConfig returns the standard queue configuration.
func DefaultConfig() Config {
	return Config{
		MaxRetries:  3,
		RetryDelay:  100 * time.Millisecond,
		DeadLetter:  true,
		QueueBuffer: 100,
	}
}

// Queue is an in-memory messaging.Queue.
type Queue[T any] struct {
	deliveries chan *delivery[T]
	config     Config

	mu   sync.Mutex
	dead []T
}

// delivery is one in-flight message; Ack and Nack settle it exactly once.
type delivery[T any] struct {
	payload  T
	queue    *Queue[T]
	attempts int

	mu      sync.Mutex
	settled bool
}

// T returns the message payload.
func (d *delivery[T]) T() *T {
	return &d.payload
}

// Ack marks the delivery as processed.
func (d *delivery[T]) Ack() error {
	return d.settle()
}

// Nack schedules a redelivery after the configured delay; once the retry
// budget is exhausted the payload moves to the dead-letter list instead.
func (d *delivery[T]) Nack(error) error {
	if err := d.settle(); err != nil {
		return err
	}
	if d.attempts >= d.queue.config.MaxRetries {
		d.queue.bury(d.payload)
		return nil
	}
	go d.queue.redeliver(d)
	return nil
}

func (d *delivery[T]) settle() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.settled {
		return fmt.Errorf("message already processed")
	}
	d.settled = true
	return nil
}

// NewQueue creates an in-memory queue.
func NewQueue[T any](config Config) *Queue[T] {
	if config.QueueBuffer <= 0 {
		config.QueueBuffer = DefaultConfig().QueueBuffer
	}
	return &Queue[T]{
		deliveries: make(chan *delivery[T], config.QueueBuffer),
		config:     config,
	}
}

// Publish enqueues a copy of the payload.
func (q *Queue[T]) Publish(ctx context.Context, t *T) error {
	select {
	case q.deliveries <- &delivery[T]{payload: *t, queue: q}:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Consume blocks until a delivery arrives or the context is cancelled.
func (q *Queue[T]) Consume(ctx context.Context) (messaging.Message[T], error) {
	select {
	case d := <-q.deliveries:
		return d, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// redeliver re-enqueues a fresh delivery carrying the accumulated attempt
// count.
func (q *Queue[T]) redeliver(d *delivery[T]) {
	time.Sleep(q.config.RetryDelay)
	q.deliveries <- &delivery[T]{payload: d.payload, queue: q, attempts: d.attempts + 1}
}

// bury retains an exhausted payload when dead-lettering is enabled.
func (q *Queue[T]) bury(payload T) {
	if !q.config.DeadLetter {
		return
	}
	q.mu.Lock()
	q.dead = append(q.dead, payload)
	q.mu.Unlock()
}

// Size returns the number of deliveries waiting to be consumed.
func (q *Queue[T]) Size() int {
	return len(q.deliveries)
}

// DLQSize returns the number of dead-lettered payloads.
func (q *Queue[T]) DLQSize() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.dead)
}

// DeadLetters returns a snapshot of the payloads that exhausted redelivery.
func (q *Queue[T]) DeadLetters() []*T {
	q.mu.Lock()
	defer q.mu.Unlock()
	ret := make([]*T, 0, len(q.dead))
	for i := range q.dead {
		payload := q.dead[i]
		ret = append(ret, &payload)
	}
	return ret
}

// ensure Queue implements messaging.Queue
var _ messaging.Queue[any] = (*Queue[any])(nil)
