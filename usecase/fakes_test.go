package usecase

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/satriahrh/farsisub/domain/entities"
	"github.com/satriahrh/farsisub/domain/repositories"
)

type fakeSTT struct {
	mu     sync.Mutex
	result repositories.Transcription
	err    error
	delay  time.Duration
	calls  int
}

func (f *fakeSTT) Transcribe(ctx context.Context, samples []float32, config repositories.AudioConfig) (repositories.Transcription, error) {
	f.mu.Lock()
	f.calls++
	result, err, delay := f.result, f.err, f.delay
	f.mu.Unlock()

	if delay > 0 {
		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return repositories.Transcription{}, ctx.Err()
		}
	}
	return result, err
}

func (f *fakeSTT) Calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

type fakeTranslator struct {
	err   error
	calls int
}

func (f *fakeTranslator) Translate(ctx context.Context, text string) (string, error) {
	f.calls++
	if f.err != nil {
		return "", f.err
	}
	return "fa:" + text, nil
}

type fakePublisher struct {
	mu        sync.Mutex
	subtitles []*entities.Subtitle
	err       error
}

func (f *fakePublisher) Publish(ctx context.Context, subtitle *entities.Subtitle) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.subtitles = append(f.subtitles, subtitle)
	return nil
}

func (f *fakePublisher) Published() []*entities.Subtitle {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]*entities.Subtitle(nil), f.subtitles...)
}

type fakeTranscriptRepo struct {
	mu          sync.Mutex
	transcripts []*entities.Transcript
	createErr   error
	deleteErr   error
	cutoffs     []time.Time
}

func (f *fakeTranscriptRepo) Create(ctx context.Context, t *entities.Transcript) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.createErr != nil {
		return f.createErr
	}
	f.transcripts = append(f.transcripts, t)
	return nil
}

func (f *fakeTranscriptRepo) ListRecent(ctx context.Context, limit int) ([]*entities.Transcript, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.transcripts, nil
}

func (f *fakeTranscriptRepo) DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.cutoffs = append(f.cutoffs, cutoff)
	if f.deleteErr != nil {
		return 0, f.deleteErr
	}
	return 2, nil
}

func (f *fakeTranscriptRepo) Cutoffs() []time.Time {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]time.Time(nil), f.cutoffs...)
}

// fakeSource hands its callback to the test so audio can be injected directly
type fakeSource struct {
	mu        sync.Mutex
	callback  repositories.SampleCallback
	startErr  error
	stopped   bool
	overflows uint64
	started   chan struct{}
}

func newFakeSource() *fakeSource {
	return &fakeSource{started: make(chan struct{})}
}

func (f *fakeSource) Start(ctx context.Context, callback repositories.SampleCallback) error {
	if f.startErr != nil {
		return f.startErr
	}
	f.mu.Lock()
	f.callback = callback
	f.mu.Unlock()
	close(f.started)
	return nil
}

func (f *fakeSource) Stop() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.stopped = true
	return nil
}

func (f *fakeSource) Overflows() uint64 { return f.overflows }

func (f *fakeSource) Feed(samples []float32) {
	f.mu.Lock()
	cb := f.callback
	f.mu.Unlock()
	cb(samples)
}

func (f *fakeSource) Stopped() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.stopped
}

// finiteSource feeds fixed samples then reports Done
type finiteSource struct {
	samples []float32
	block   int
	done    chan struct{}
}

func (f *finiteSource) Start(ctx context.Context, callback repositories.SampleCallback) error {
	go func() {
		defer close(f.done)
		for off := 0; off < len(f.samples); off += f.block {
			end := off + f.block
			if end > len(f.samples) {
				end = len(f.samples)
			}
			callback(f.samples[off:end])
		}
	}()
	return nil
}

func (f *finiteSource) Stop() error { return nil }

func (f *finiteSource) Done() <-chan struct{} { return f.done }

// losslessSource is a finite source that asks for backpressure
type losslessSource struct {
	finiteSource
}

func (f *losslessSource) Lossless() bool { return true }

var errBoom = errors.New("boom")
