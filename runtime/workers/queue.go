package workers

import (
	"chat-client/errors"
	"context"
	"sync"
)

// Queue is an unbounded FIFO with many producers and one consumer.
// Close forbids further Push calls; the consumer keeps popping until the
// remaining items are gone and then gets ErrQueueDrained, which is how it
// tells natural completion apart from cancellation.
type Queue[T any] struct {
	mu     sync.Mutex
	items  []T
	closed bool
	ready  chan struct{}
}

func NewQueue[T any]() *Queue[T] {
	return &Queue[T]{ready: make(chan struct{}, 1)}
}

// Push never blocks. It returns ErrQueueClosed once Close was called.
func (q *Queue[T]) Push(item T) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.closed {
		return errors.ErrQueueClosed
	}
	q.items = append(q.items, item)
	q.signal()
	return nil
}

// PushAndClose appends a last item and closes the queue atomically,
// so no producer can slip in behind it.
func (q *Queue[T]) PushAndClose(item T) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.closed {
		return errors.ErrQueueClosed
	}
	q.items = append(q.items, item)
	q.closed = true
	q.signal()
	return nil
}

// Close is idempotent.
func (q *Queue[T]) Close() {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.closed = true
	q.signal()
}

// Pop blocks until an item is available, the queue is closed and empty
// (ErrQueueDrained) or ctx is done (ctx.Err()).
// Only one goroutine may call Pop.
func (q *Queue[T]) Pop(ctx context.Context) (T, error) {
	var zero T
	for {
		q.mu.Lock()
		if len(q.items) > 0 {
			item := q.items[0]
			q.items[0] = zero
			q.items = q.items[1:]
			q.mu.Unlock()
			return item, nil
		}
		closed := q.closed
		q.mu.Unlock()
		if closed {
			return zero, errors.ErrQueueDrained
		}

		select {
		case <-q.ready:
		case <-ctx.Done():
			return zero, ctx.Err()
		}
	}
}

func (q *Queue[T]) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.items)
}

func (q *Queue[T]) IsClosed() bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.closed
}

// signal must be called with mu held.
func (q *Queue[T]) signal() {
	select {
	case q.ready <- struct{}{}:
	default:
	}
}
