package audiobuf

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/satriahrh/farsisub/domain/entities"
)

// Chunker accumulates samples from the audio callback and emits fixed-size
// chunks into a Queue. Write must only be called from a single goroutine
// (the audio thread); it performs no I/O and never blocks unless BlockWhenFull
// was called.
type Chunker struct {
	sampleRate   int
	chunkSamples int
	buf          []float32
	seq          uint64
	queue        *Queue
	emitted      atomic.Uint64
	now          func() time.Time
	wait         context.Context
}

// NewChunker creates a chunker producing chunks of chunkSamples samples
func NewChunker(sampleRate, chunkSamples int, queue *Queue) *Chunker {
	if chunkSamples < 1 {
		chunkSamples = 1
	}
	return &Chunker{
		sampleRate:   sampleRate,
		chunkSamples: chunkSamples,
		buf:          make([]float32, 0, chunkSamples),
		queue:        queue,
		now:          time.Now,
	}
}

// Write appends samples. The slice is copied, so callers may reuse it.
// Every full chunk is pushed to the queue; a remainder waits for the next call.
func (c *Chunker) Write(samples []float32) {
	for len(samples) > 0 {
		n := c.chunkSamples - len(c.buf)
		if n > len(samples) {
			n = len(samples)
		}
		c.buf = append(c.buf, samples[:n]...)
		samples = samples[n:]

		if len(c.buf) == c.chunkSamples {
			c.emit()
		}
	}
}

func (c *Chunker) emit() {
	chunk := &entities.AudioChunk{
		Seq:        c.seq,
		Samples:    c.buf,
		SampleRate: c.sampleRate,
		CapturedAt: c.now(),
	}
	c.seq++
	c.buf = make([]float32, 0, c.chunkSamples)
	c.emitted.Add(1)
	if c.wait != nil {
		c.queue.PushWait(c.wait, chunk)
		return
	}
	c.queue.Push(chunk)
}

// BlockWhenFull makes emitted chunks wait for queue space until ctx ends,
// instead of evicting the oldest chunk. Call before the first Write.
func (c *Chunker) BlockWhenFull(ctx context.Context) {
	c.wait = ctx
}

// Flush emits the buffered remainder as a short final chunk, if any.
// Used when a finite source ends. Not safe to call concurrently with Write.
func (c *Chunker) Flush() bool {
	if len(c.buf) == 0 {
		return false
	}
	c.emit()
	return true
}

// Buffered returns the number of samples waiting for the next chunk.
// Not safe to call concurrently with Write.
func (c *Chunker) Buffered() int {
	return len(c.buf)
}

// Emitted returns how many chunks have been produced
func (c *Chunker) Emitted() uint64 {
	return c.emitted.Load()
}

// ChunkSamples returns the configured chunk length in samples
func (c *Chunker) ChunkSamples() int {
	return c.chunkSamples
}
