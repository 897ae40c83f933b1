package usecase

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/satriahrh/farsisub/domain/repositories"
)

// TranscriptCleanupService periodically deletes transcripts past retention
type TranscriptCleanupService struct {
	repo         repositories.TranscriptRepository
	retention    time.Duration
	interval     time.Duration
	initialDelay time.Duration
	logger       *zap.Logger
	now          func() time.Time

	stopOnce sync.Once
	stopChan chan struct{}
	doneChan chan struct{}
}

// NewTranscriptCleanupService runs every 30 minutes, first after one minute
func NewTranscriptCleanupService(repo repositories.TranscriptRepository, retention time.Duration, logger *zap.Logger) *TranscriptCleanupService {
	return &TranscriptCleanupService{
		repo:         repo,
		retention:    retention,
		interval:     30 * time.Minute,
		initialDelay: time.Minute,
		logger:       logger,
		now:          time.Now,
		stopChan:     make(chan struct{}),
		doneChan:     make(chan struct{}),
	}
}

// Start begins the background cleanup process
func (s *TranscriptCleanupService) Start() {
	go s.cleanupLoop()
	s.logger.Info("Transcript cleanup service started", zap.Duration("retention", s.retention))
}

// Stop stops the cleanup loop and waits for it to exit
func (s *TranscriptCleanupService) Stop() {
	s.stopOnce.Do(func() {
		close(s.stopChan)
		<-s.doneChan
		s.logger.Info("Transcript cleanup service stopped")
	})
}

func (s *TranscriptCleanupService) cleanupLoop() {
	defer close(s.doneChan)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	initialTimer := time.NewTimer(s.initialDelay)
	defer initialTimer.Stop()

	for {
		select {
		case <-s.stopChan:
			return
		case <-initialTimer.C:
			s.RunOnce()
		case <-ticker.C:
			s.RunOnce()
		}
	}
}

// RunOnce deletes transcripts older than the retention window
func (s *TranscriptCleanupService) RunOnce() {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	cutoff := s.now().Add(-s.retention)
	deleted, err := s.repo.DeleteOlderThan(ctx, cutoff)
	if err != nil {
		s.logger.Error("Failed to delete old transcripts", zap.Error(err))
		return
	}

	s.logger.Info("Transcript cleanup completed", zap.Int64("deleted", deleted))
}
