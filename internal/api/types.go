package api

import (
	"time"

	"github.com/satriahrh/farsisub/domain/entities"
)

// HealthResponse is returned by GET /health
type HealthResponse struct {
	Status    string `json:"status"`
	Service   string `json:"service"`
	Recording bool   `json:"recording"`
	Overlays  int    `json:"overlays"`
}

// SubtitleResponse is the latest subtitle in the polling file format plus its expiry
type SubtitleResponse struct {
	entities.SubtitleDocument
	ExpiresAt time.Time `json:"expires_at"`
	Active    bool      `json:"active"`
}

// TranscriptsResponse lists recent transcripts, newest first
type TranscriptsResponse struct {
	Transcripts []*entities.Transcript `json:"transcripts"`
	Count       int                    `json:"count"`
}

// ErrorResponse represents an error response
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}
