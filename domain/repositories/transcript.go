package repositories

import (
	"context"
	"time"

	"github.com/satriahrh/farsisub/domain/entities"
)

// TranscriptRepository stores the history of translated chunks
type TranscriptRepository interface {
	Create(ctx context.Context, transcript *entities.Transcript) error
	ListRecent(ctx context.Context, limit int) ([]*entities.Transcript, error)
	// DeleteOlderThan removes entries created before cutoff and returns how many were removed
	DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error)
}
