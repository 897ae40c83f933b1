package audiobuf

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"

	"github.com/satriahrh/farsisub/domain/entities"
)

// ErrQueueClosed is returned by Pop once the queue is closed and drained.
var ErrQueueClosed = errors.New("chunk queue closed")

// Queue is a bounded FIFO of audio chunks. Push never blocks: when the queue is
// full the oldest chunk is discarded to make room for the newest one.
type Queue struct {
	ch        chan *entities.AudioChunk
	done      chan struct{}
	closeOnce sync.Once
	dropped   atomic.Uint64
}

// NewQueue creates a queue holding at most capacity chunks
func NewQueue(capacity int) *Queue {
	if capacity < 1 {
		capacity = 1
	}
	return &Queue{
		ch:   make(chan *entities.AudioChunk, capacity),
		done: make(chan struct{}),
	}
}

// Push enqueues chunk, evicting the oldest entry if the queue is full.
// It reports false when the queue has been closed.
func (q *Queue) Push(chunk *entities.AudioChunk) bool {
	select {
	case <-q.done:
		return false
	default:
	}

	for {
		select {
		case q.ch <- chunk:
			return true
		default:
		}

		// Full: make room by discarding the head.
		select {
		case <-q.ch:
			q.dropped.Add(1)
		default:
		}
	}
}

// PushWait enqueues chunk, waiting for space instead of evicting.
// It reports false if ctx ends or the queue is closed first.
func (q *Queue) PushWait(ctx context.Context, chunk *entities.AudioChunk) bool {
	select {
	case <-q.done:
		return false
	default:
	}

	select {
	case q.ch <- chunk:
		return true
	case <-ctx.Done():
		return false
	case <-q.done:
		return false
	}
}

// Pop blocks until a chunk is available, ctx is done or the queue is closed.
func (q *Queue) Pop(ctx context.Context) (*entities.AudioChunk, error) {
	select {
	case chunk := <-q.ch:
		return chunk, nil
	default:
	}

	select {
	case chunk := <-q.ch:
		return chunk, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	case <-q.done:
		select {
		case chunk := <-q.ch:
			return chunk, nil
		default:
			return nil, ErrQueueClosed
		}
	}
}

// Close stops accepting chunks and wakes blocked consumers. Safe to call more than once.
func (q *Queue) Close() {
	q.closeOnce.Do(func() { close(q.done) })
}

// Len returns the number of queued chunks
func (q *Queue) Len() int {
	return len(q.ch)
}

// Cap returns the queue capacity
func (q *Queue) Cap() int {
	return cap(q.ch)
}

// Dropped returns how many chunks were evicted because the queue was full
func (q *Queue) Dropped() uint64 {
	return q.dropped.Load()
}
