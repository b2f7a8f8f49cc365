package message

import (
	"context"
	"sync"

	"github.com/Carmen-Shannon/millennium-run/engine/apperr"
)

// Queue is an unbounded FIFO safe for many producers and consumers.
// Send never blocks; Recv blocks until a value arrives, the queue closes, or ctx ends.
type Queue[T any] struct {
	mu     sync.Mutex
	items  []T
	notify chan struct{} // capacity 1, signalled whenever items becomes non-empty
	closed bool
}

// NewQueue creates an empty Queue.
//
// Returns:
//   - *Queue[T]: the new queue
func NewQueue[T any]() *Queue[T] {
	return &Queue[T]{notify: make(chan struct{}, 1)}
}

// Send appends v to the queue. Returns a ChannelClosed error after Close.
func (q *Queue[T]) Send(v T) error {
	q.mu.Lock()
	if q.closed {
		q.mu.Unlock()
		return apperr.New(apperr.ChannelClosed, "queue.send", "")
	}
	q.items = append(q.items, v)
	q.mu.Unlock()
	q.signal()
	return nil
}

func (q *Queue[T]) signal() {
	select {
	case q.notify <- struct{}{}:
	default:
	}
}

// Recv removes and returns the oldest value, blocking while the queue is empty.
// Values queued before Close are still delivered; once drained a closed queue
// returns ChannelClosed.
func (q *Queue[T]) Recv(ctx context.Context) (T, error) {
	for {
		if v, ok, closed := q.pop(); ok {
			return v, nil
		} else if closed {
			q.signal() // wake the next blocked receiver
			var zero T
			return zero, apperr.New(apperr.ChannelClosed, "queue.recv", "")
		}
		select {
		case <-ctx.Done():
			var zero T
			return zero, ctx.Err()
		case <-q.notify:
		}
	}
}

// TryRecv removes and returns the oldest value without blocking.
func (q *Queue[T]) TryRecv() (T, bool) {
	v, ok, _ := q.pop()
	return v, ok
}

func (q *Queue[T]) pop() (T, bool, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()
	var zero T
	if len(q.items) == 0 {
		return zero, false, q.closed
	}
	v := q.items[0]
	q.items[0] = zero
	q.items = q.items[1:]
	if len(q.items) > 0 {
		q.signal()
	}
	return v, true, q.closed
}

// Drain removes and returns every queued value in FIFO order.
func (q *Queue[T]) Drain() []T {
	q.mu.Lock()
	defer q.mu.Unlock()
	out := q.items
	q.items = nil
	return out
}

// Len returns the number of queued values.
func (q *Queue[T]) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.items)
}

// Close stops the queue from accepting values and wakes blocked receivers.
// Safe to call multiple times.
func (q *Queue[T]) Close() {
	q.mu.Lock()
	q.closed = true
	q.mu.Unlock()
	q.signal()
}
