// Package relay provides the in-process event relay: two independent
// unbounded FIFO queues decoupling message producers from the responder and
// the broadcaster.
package relay

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"

	"github.com/relaylabs/chatrelay/internal/models"
)

// ErrClosed is returned by Dequeue once the queue is closed and drained.
var ErrClosed = errors.New("relay: queue closed")

// Queue is an unbounded FIFO of events. Enqueue never blocks the producer;
// Dequeue suspends the caller until an item is available. Designed for a
// single consumer.
type Queue struct {
	mu        sync.Mutex
	items     []models.Event
	wake      chan struct{}
	done      chan struct{}
	closed    bool
	processed atomic.Int64
}

// NewQueue creates an empty queue.
func NewQueue() *Queue {
	return &Queue{
		wake: make(chan struct{}, 1),
		done: make(chan struct{}),
	}
}

// Enqueue appends an event to the queue. It never blocks. Events enqueued
// after Close are dropped.
func (q *Queue) Enqueue(ev models.Event) {
	q.mu.Lock()
	if q.closed {
		q.mu.Unlock()
		return
	}
	q.items = append(q.items, ev)
	q.mu.Unlock()

	select {
	case q.wake <- struct{}{}:
	default:
	}
}

// Dequeue removes and returns the oldest event, blocking until one is
// available, the context is canceled, or the queue is closed and empty.
func (q *Queue) Dequeue(ctx context.Context) (models.Event, error) {
	for {
		q.mu.Lock()
		if len(q.items) > 0 {
			ev := q.items[0]
			q.items = q.items[1:]
			q.mu.Unlock()
			return ev, nil
		}
		closed := q.closed
		q.mu.Unlock()
		if closed {
			return models.Event{}, ErrClosed
		}

		select {
		case <-ctx.Done():
			return models.Event{}, ctx.Err()
		case <-q.wake:
		case <-q.done:
		}
	}
}

// Done marks one dequeued event as processed. It is a completion signal only:
// there is no redelivery, and it has no effect on ordering.
func (q *Queue) Done() {
	q.processed.Add(1)
}

// Processed reports how many events have been acknowledged via Done.
func (q *Queue) Processed() int64 {
	return q.processed.Load()
}

// Len reports the number of events currently waiting.
func (q *Queue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.items)
}

// Close stops the queue accepting new events and wakes any blocked consumer.
// Items already enqueued can still be dequeued.
func (q *Queue) Close() {
	q.mu.Lock()
	defer q.mu.Unlock()
	if !q.closed {
		q.closed = true
		close(q.done)
	}
}

// Relay bundles the inbound queue (client messages awaiting the responder)
// and the outbound queue (responses awaiting persistence and broadcast).
// Lifetime is the process lifetime; it is constructed once at startup and
// handed to each component.
type Relay struct {
	Inbound  *Queue
	Outbound *Queue
}

// New creates a relay with empty inbound and outbound queues.
func New() *Relay {
	return &Relay{
		Inbound:  NewQueue(),
		Outbound: NewQueue(),
	}
}

// Close closes both queues. Consumers observe ErrClosed once drained.
func (r *Relay) Close() {
	r.Inbound.Close()
	r.Outbound.Close()
}
