package repositories

import "context"

// SpeechToText abstracts speech recognition services
type SpeechToText interface {
	// Transcribe converts mono float32 samples to text
	Transcribe(ctx context.Context, samples []float32, config AudioConfig) (Transcription, error)
}

// AudioConfig represents audio configuration for speech recognition
type AudioConfig struct {
	SampleRate int    `json:"sample_rate"`
	Language   string `json:"language"`
}

// Transcription is the recognized text of a chunk
type Transcription struct {
	Text string `json:"text"`
	// Confidence is in [0,1]; providers that do not report one use 1.
	Confidence float64 `json:"confidence"`
	Language   string  `json:"language,omitempty"`
}
