package subtitle

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/satriahrh/farsisub/domain/entities"
)

type recordingPublisher struct {
	calls int
	err   error
}

func (r *recordingPublisher) Publish(ctx context.Context, s *entities.Subtitle) error {
	r.calls++
	return r.err
}

func TestMultiPublisher_AttemptsEverySink(t *testing.T) {
	failing := &recordingPublisher{err: errors.New("disk full")}
	ok := &recordingPublisher{}

	err := MultiPublisher{failing, nil, ok}.Publish(context.Background(), entities.NewSubtitle("a", "a", time.Second))
	if err == nil || err.Error() != "disk full" {
		t.Errorf("Expected joined sink error, got %v", err)
	}
	if failing.calls != 1 || ok.calls != 1 {
		t.Errorf("Expected every sink to be called once, got %d and %d", failing.calls, ok.calls)
	}
}
