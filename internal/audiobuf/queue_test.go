package audiobuf

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/satriahrh/farsisub/domain/entities"
)

func chunk(seq uint64) *entities.AudioChunk {
	return &entities.AudioChunk{Seq: seq, Samples: []float32{float32(seq)}, SampleRate: 16000}
}

func TestQueue_FIFO(t *testing.T) {
	q := NewQueue(3)
	for i := uint64(0); i < 3; i++ {
		q.Push(chunk(i))
	}

	ctx := context.Background()
	for i := uint64(0); i < 3; i++ {
		c, err := q.Pop(ctx)
		if err != nil {
			t.Fatalf("Pop returned error: %v", err)
		}
		if c.Seq != i {
			t.Errorf("Expected seq %d, got %d", i, c.Seq)
		}
	}
}

func TestQueue_DropsOldestWhenFull(t *testing.T) {
	q := NewQueue(2)
	for i := uint64(0); i < 5; i++ {
		if !q.Push(chunk(i)) {
			t.Fatalf("Push %d rejected", i)
		}
	}

	if q.Len() != 2 {
		t.Errorf("Expected length 2, got %d", q.Len())
	}
	if q.Dropped() != 3 {
		t.Errorf("Expected 3 dropped chunks, got %d", q.Dropped())
	}

	ctx := context.Background()
	first, _ := q.Pop(ctx)
	second, _ := q.Pop(ctx)
	if first.Seq != 3 || second.Seq != 4 {
		t.Errorf("Expected newest chunks 3 and 4, got %d and %d", first.Seq, second.Seq)
	}
}

func TestQueue_PushNeverBlocks(t *testing.T) {
	q := NewQueue(1)
	done := make(chan struct{})
	go func() {
		for i := uint64(0); i < 10000; i++ {
			q.Push(chunk(i))
		}
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Push blocked with no consumer")
	}
}

func TestQueue_PopWaitsForContext(t *testing.T) {
	q := NewQueue(1)
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	_, err := q.Pop(ctx)
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("Expected deadline exceeded, got %v", err)
	}
}

func TestQueue_CloseWakesConsumer(t *testing.T) {
	q := NewQueue(1)
	errCh := make(chan error, 1)
	go func() {
		_, err := q.Pop(context.Background())
		errCh <- err
	}()

	time.Sleep(10 * time.Millisecond)
	q.Close()
	q.Close()

	select {
	case err := <-errCh:
		if !errors.Is(err, ErrQueueClosed) {
			t.Errorf("Expected ErrQueueClosed, got %v", err)
		}
	case <-time.After(time.Second):
		t.Fatal("Consumer was not woken by Close")
	}

	if q.Push(chunk(1)) {
		t.Error("Push should be rejected after Close")
	}
}

func TestQueue_CloseDrainsRemaining(t *testing.T) {
	q := NewQueue(2)
	q.Push(chunk(7))
	q.Close()

	c, err := q.Pop(context.Background())
	if err != nil {
		t.Fatalf("Expected queued chunk after close, got error %v", err)
	}
	if c.Seq != 7 {
		t.Errorf("Expected seq 7, got %d", c.Seq)
	}

	if _, err := q.Pop(context.Background()); !errors.Is(err, ErrQueueClosed) {
		t.Errorf("Expected ErrQueueClosed, got %v", err)
	}
}

func TestQueue_ConcurrentProducerConsumerKeepsOrder(t *testing.T) {
	q := NewQueue(4)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var wg sync.WaitGroup
	wg.Add(1)
	var received []uint64
	go func() {
		defer wg.Done()
		for {
			c, err := q.Pop(ctx)
			if err != nil {
				return
			}
			received = append(received, c.Seq)
		}
	}()

	for i := uint64(0); i < 1000; i++ {
		q.Push(chunk(i))
	}
	q.Close()
	wg.Wait()

	for i := 1; i < len(received); i++ {
		if received[i] <= received[i-1] {
			t.Fatalf("Chunks out of order at %d: %d after %d", i, received[i], received[i-1])
		}
	}
	if uint64(len(received))+q.Dropped() != 1000 {
		t.Errorf("Expected received+dropped = 1000, got %d+%d", len(received), q.Dropped())
	}
}

func TestQueue_PushWaitBlocksUntilSpace(t *testing.T) {
	q := NewQueue(1)
	q.Push(chunk(0))

	pushed := make(chan bool, 1)
	go func() { pushed <- q.PushWait(context.Background(), chunk(1)) }()

	select {
	case <-pushed:
		t.Fatal("Expected PushWait to wait while the queue is full")
	case <-time.After(50 * time.Millisecond):
	}

	if c, _ := q.Pop(context.Background()); c.Seq != 0 {
		t.Errorf("Expected seq 0 first, got %d", c.Seq)
	}
	if ok := <-pushed; !ok {
		t.Error("Expected PushWait to succeed once space was freed")
	}
	if c, _ := q.Pop(context.Background()); c.Seq != 1 {
		t.Errorf("Expected seq 1 second, got %d", c.Seq)
	}
	if q.Dropped() != 0 {
		t.Errorf("Expected no drops, got %d", q.Dropped())
	}
}

func TestQueue_PushWaitUnblocksOnCloseAndContext(t *testing.T) {
	q := NewQueue(1)
	q.Push(chunk(0))

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	if q.PushWait(ctx, chunk(1)) {
		t.Error("Expected PushWait to fail when ctx ends")
	}

	done := make(chan bool, 1)
	go func() { done <- q.PushWait(context.Background(), chunk(2)) }()
	q.Close()
	select {
	case ok := <-done:
		if ok {
			t.Error("Expected PushWait to fail on a closed queue")
		}
	case <-time.After(time.Second):
		t.Fatal("PushWait did not return after Close")
	}
}
