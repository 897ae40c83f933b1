package repositories

import (
	"context"

	"github.com/satriahrh/farsisub/domain/entities"
)

// SubtitlePublisher hands the latest subtitle to overlay consumers
type SubtitlePublisher interface {
	Publish(ctx context.Context, subtitle *entities.Subtitle) error
}
