package subtitle

import (
	"context"
	"errors"

	"github.com/satriahrh/farsisub/domain/entities"
	"github.com/satriahrh/farsisub/domain/repositories"
)

// MultiPublisher fans a subtitle out to several sinks. Every sink is attempted.
type MultiPublisher []repositories.SubtitlePublisher

// Publish implements repositories.SubtitlePublisher
func (m MultiPublisher) Publish(ctx context.Context, subtitle *entities.Subtitle) error {
	var errs []error
	for _, p := range m {
		if p == nil {
			continue
		}
		if err := p.Publish(ctx, subtitle); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
