package stt

import (
	"context"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"github.com/satriahrh/farsisub/domain/repositories"
)

// MockSpeechToText returns a fixed transcript for every chunk
type MockSpeechToText struct {
	logger     *zap.Logger
	text       string
	confidence float64

	mu    sync.Mutex
	calls int
}

// NewMockSpeechToText creates a new mock speech-to-text service
func NewMockSpeechToText(text string, logger *zap.Logger) *MockSpeechToText {
	if text == "" {
		text = "Hello, this is a test of the live subtitle stream."
	}
	return &MockSpeechToText{
		logger:     logger,
		text:       text,
		confidence: 1,
	}
}

// Transcribe implements repositories.SpeechToText
func (m *MockSpeechToText) Transcribe(ctx context.Context, samples []float32, config repositories.AudioConfig) (repositories.Transcription, error) {
	m.logger.Debug("Processing mock audio chunk",
		zap.Int("samples", len(samples)),
		zap.Int("sampleRate", config.SampleRate))

	if len(samples) == 0 {
		return repositories.Transcription{}, fmt.Errorf("no audio data received")
	}

	m.mu.Lock()
	m.calls++
	m.mu.Unlock()

	return repositories.Transcription{
		Text:       m.text,
		Confidence: m.confidence,
		Language:   config.Language,
	}, nil
}

// Calls returns how many chunks were transcribed
func (m *MockSpeechToText) Calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}
