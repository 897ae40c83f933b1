package capture

import (
	"context"
	"fmt"
	"os"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/satriahrh/farsisub/domain/repositories"
	"github.com/satriahrh/farsisub/internal/pcm"
)

// WAVFileSource replays a WAV file through the sample callback in fixed blocks.
// When paced, blocks are delivered at real-time speed.
type WAVFileSource struct {
	path       string
	sampleRate int
	blockSize  int
	paced      bool
	logger     *zap.Logger

	mu     sync.Mutex
	cancel context.CancelFunc
	done   chan struct{}
	err    error
}

var (
	_ repositories.AudioSource    = (*WAVFileSource)(nil)
	_ repositories.FiniteSource   = (*WAVFileSource)(nil)
	_ repositories.LosslessSource = (*WAVFileSource)(nil)
)

// NewWAVFileSource creates a file source. sampleRate is the pipeline rate the file must match.
func NewWAVFileSource(path string, sampleRate, blockSize int, paced bool, logger *zap.Logger) *WAVFileSource {
	if blockSize < 1 {
		blockSize = 1
	}
	return &WAVFileSource{
		path:       path,
		sampleRate: sampleRate,
		blockSize:  blockSize,
		paced:      paced,
		logger:     logger,
	}
}

// Start decodes the file and replays it on a background goroutine
func (w *WAVFileSource) Start(ctx context.Context, callback repositories.SampleCallback) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.done != nil {
		return ErrAlreadyStarted
	}

	f, err := os.Open(w.path)
	if err != nil {
		return fmt.Errorf("open audio file: %w", err)
	}
	samples, rate, err := pcm.DecodeWAV(f)
	f.Close()
	if err != nil {
		return fmt.Errorf("decode %s: %w", w.path, err)
	}
	if rate != w.sampleRate {
		return fmt.Errorf("%s has sample rate %d Hz, pipeline expects %d Hz", w.path, rate, w.sampleRate)
	}

	ctx, cancel := context.WithCancel(ctx)
	w.cancel = cancel
	w.done = make(chan struct{})

	w.logger.Info("Replaying audio file",
		zap.String("path", w.path),
		zap.Int("samples", len(samples)),
		zap.Bool("paced", w.paced))

	go w.replay(ctx, samples, callback)
	return nil
}

func (w *WAVFileSource) replay(ctx context.Context, samples []float32, callback repositories.SampleCallback) {
	defer close(w.done)

	interval := time.Duration(w.blockSize) * time.Second / time.Duration(w.sampleRate)
	var ticker *time.Ticker
	if w.paced {
		ticker = time.NewTicker(interval)
		defer ticker.Stop()
	}

	for off := 0; off < len(samples); off += w.blockSize {
		end := off + w.blockSize
		if end > len(samples) {
			end = len(samples)
		}

		if ticker != nil {
			select {
			case <-ctx.Done():
				w.setErr(ctx.Err())
				return
			case <-ticker.C:
			}
		} else if ctx.Err() != nil {
			w.setErr(ctx.Err())
			return
		}

		callback(samples[off:end])
	}
	w.logger.Info("Audio file replay finished", zap.String("path", w.path))
}

// Lossless reports true for unpaced replay, which should never lose blocks to a
// slow consumer.
func (w *WAVFileSource) Lossless() bool {
	return !w.paced
}

// Stop cancels an in-progress replay and waits for it to exit
func (w *WAVFileSource) Stop() error {
	w.mu.Lock()
	cancel, done := w.cancel, w.done
	w.mu.Unlock()

	if cancel == nil {
		return nil
	}
	cancel()
	<-done
	return nil
}

// Done is closed when the replay has delivered every block or was stopped
func (w *WAVFileSource) Done() <-chan struct{} {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.done
}

// Err reports why the replay ended early, if it did
func (w *WAVFileSource) Err() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.err
}

func (w *WAVFileSource) setErr(err error) {
	w.mu.Lock()
	w.err = err
	w.mu.Unlock()
}
