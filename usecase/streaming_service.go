package usecase

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/satriahrh/farsisub/domain/entities"
	"github.com/satriahrh/farsisub/domain/repositories"
	"github.com/satriahrh/farsisub/internal/audiobuf"
)

// StreamingService connects an audio source to the translation worker through
// a bounded drop-oldest queue. The audio callback never waits on inference.
type StreamingService struct {
	source      repositories.AudioSource
	queue       *audiobuf.Queue
	chunker     *audiobuf.Chunker
	translation *TranslationService
	timeout     time.Duration
	logger      *zap.Logger

	recording atomic.Bool
	processed atomic.Uint64
	failures  atomic.Uint64
}

// NewStreamingService creates a new streaming service
func NewStreamingService(
	source repositories.AudioSource,
	queue *audiobuf.Queue,
	chunker *audiobuf.Chunker,
	translation *TranslationService,
	timeout time.Duration,
	logger *zap.Logger,
) *StreamingService {
	return &StreamingService{
		source:      source,
		queue:       queue,
		chunker:     chunker,
		translation: translation,
		timeout:     timeout,
		logger:      logger,
	}
}

// Run captures and translates until ctx is cancelled or a finite source ends.
// Chunks still queued at cancellation are discarded. Lossless sources wait for
// queue space so a replayed file is translated in full.
func (s *StreamingService) Run(ctx context.Context) error {
	lossless := false
	if l, ok := s.source.(repositories.LosslessSource); ok && l.Lossless() {
		lossless = true
		s.chunker.BlockWhenFull(ctx)
	}

	if err := s.source.Start(ctx, s.chunker.Write); err != nil {
		s.queue.Close()
		return fmt.Errorf("start audio source: %w", err)
	}
	s.recording.Store(true)
	s.logger.Info("Streaming started",
		zap.Int("queueSize", s.queue.Cap()),
		zap.Bool("lossless", lossless))

	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	g, gctx := errgroup.WithContext(runCtx)

	g.Go(func() error {
		defer cancel()
		s.worker(gctx)
		return nil
	})

	if finite, ok := s.source.(repositories.FiniteSource); ok {
		g.Go(func() error {
			select {
			case <-finite.Done():
				if gctx.Err() == nil {
					s.chunker.Flush()
					s.logger.Info("Audio source finished, draining queue", zap.Int("pending", s.queue.Len()))
				}
				s.queue.Close()
			case <-gctx.Done():
			}
			return nil
		})
	}

	g.Go(func() error {
		<-gctx.Done()
		s.recording.Store(false)
		s.queue.Close()
		if err := s.source.Stop(); err != nil {
			return fmt.Errorf("stop audio source: %w", err)
		}
		return nil
	})

	err := g.Wait()
	s.logger.Info("Streaming stopped",
		zap.Uint64("processed", s.processed.Load()),
		zap.Uint64("failures", s.failures.Load()),
		zap.Uint64("dropped", s.queue.Dropped()))
	return err
}

func (s *StreamingService) worker(ctx context.Context) {
	for ctx.Err() == nil {
		chunk, err := s.queue.Pop(ctx)
		if err != nil {
			if !errors.Is(err, audiobuf.ErrQueueClosed) && !errors.Is(err, context.Canceled) {
				s.logger.Warn("Worker stopped", zap.Error(err))
			}
			return
		}
		s.handle(ctx, chunk)
	}
}

func (s *StreamingService) handle(ctx context.Context, chunk *entities.AudioChunk) {
	chunkCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	lag := time.Since(chunk.CapturedAt)
	_, err := s.translation.ProcessChunk(chunkCtx, chunk)
	switch {
	case err == nil:
		s.processed.Add(1)
	case errors.Is(err, ErrNoSpeech):
		s.processed.Add(1)
		s.logger.Debug("Skipping chunk", zap.Uint64("seq", chunk.Seq), zap.Error(err))
	default:
		s.failures.Add(1)
		s.logger.Error("Failed to process chunk",
			zap.Uint64("seq", chunk.Seq),
			zap.Duration("lag", lag),
			zap.Error(err))
	}
}

// Stats returns a snapshot of pipeline counters
func (s *StreamingService) Stats() entities.PipelineStats {
	stats := entities.PipelineStats{
		TranslationCount:      s.translation.TranslationCount(),
		LastTranslationSecAgo: -1,
		IsRecording:           s.recording.Load(),
		ChunksCaptured:        s.chunker.Emitted(),
		ChunksDropped:         s.queue.Dropped(),
		ChunksProcessed:       s.processed.Load(),
		Failures:              s.failures.Load(),
		QueueLength:           s.queue.Len(),
	}
	if last := s.translation.LastTranslation(); !last.IsZero() {
		stats.LastTranslationSecAgo = time.Since(last).Seconds()
	}
	if r, ok := s.source.(repositories.OverflowReporter); ok {
		stats.InputOverflows = r.Overflows()
	}
	return stats
}
