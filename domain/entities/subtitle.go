package entities

import (
	"errors"
	"math"
	"time"

	"github.com/google/uuid"
)

// Subtitle is the latest caption handed to overlay consumers
type Subtitle struct {
	ID        string
	Text      string // translated text shown by the overlay
	English   string // source transcript
	CreatedAt time.Time
	Duration  time.Duration
}

// SubtitleDocument is the polling file format. Timestamp and duration are seconds.
type SubtitleDocument struct {
	ID        string  `json:"id,omitempty"`
	Text      string  `json:"text"`
	English   string  `json:"english"`
	Timestamp float64 `json:"timestamp"`
	Duration  float64 `json:"duration"`
}

// NewSubtitle creates a subtitle stamped with the current time
func NewSubtitle(text, english string, duration time.Duration) *Subtitle {
	return &Subtitle{
		ID:        uuid.NewString(),
		Text:      text,
		English:   english,
		CreatedAt: time.Now(),
		Duration:  duration,
	}
}

// Document converts the subtitle into its on-disk representation
func (s *Subtitle) Document() SubtitleDocument {
	return SubtitleDocument{
		ID:        s.ID,
		Text:      s.Text,
		English:   s.English,
		Timestamp: float64(s.CreatedAt.UnixNano()) / float64(time.Second),
		Duration:  s.Duration.Seconds(),
	}
}

// ExpiresAt reports when the overlay should stop showing the subtitle
func (s *Subtitle) ExpiresAt() time.Time {
	return s.CreatedAt.Add(s.Duration)
}

// Validate validates the subtitle data
func (s *Subtitle) Validate() error {
	if s.Text == "" {
		return errors.New("subtitle text is required")
	}
	if s.Duration <= 0 {
		return errors.New("subtitle duration must be positive")
	}
	return nil
}

// Subtitle converts a decoded document back into a subtitle
func (d SubtitleDocument) Subtitle() *Subtitle {
	sec, frac := math.Modf(d.Timestamp)
	return &Subtitle{
		ID:        d.ID,
		Text:      d.Text,
		English:   d.English,
		CreatedAt: time.Unix(int64(sec), int64(frac*float64(time.Second))),
		Duration:  time.Duration(d.Duration * float64(time.Second)),
	}
}
