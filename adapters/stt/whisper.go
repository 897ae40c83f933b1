package stt

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/sashabaranov/go-openai"
	"go.uber.org/zap"

	"github.com/satriahrh/farsisub/domain/repositories"
	"github.com/satriahrh/farsisub/internal/pcm"
)

const (
	defaultWhisperModel   = openai.Whisper1
	defaultNoSpeechThresh = 0.6
)

// WhisperConfig configures an OpenAI-compatible transcription endpoint.
// BaseURL may point at a self-hosted faster-whisper server.
type WhisperConfig struct {
	APIKey         string
	BaseURL        string
	Model          string
	NoSpeechThresh float64
	Prompt         string
}

// WhisperSpeechToText implements SpeechToText with the OpenAI audio transcription API
type WhisperSpeechToText struct {
	client         *openai.Client
	model          string
	noSpeechThresh float64
	prompt         string
	logger         *zap.Logger
}

var _ repositories.SpeechToText = (*WhisperSpeechToText)(nil)

// ValidateWhisperConfig validates the WhisperConfig
func ValidateWhisperConfig(config WhisperConfig) error {
	if config.APIKey == "" && config.BaseURL == "" {
		return errors.New("OpenAI API key is required unless a custom base URL is set")
	}
	if config.NoSpeechThresh < 0 || config.NoSpeechThresh > 1 {
		return fmt.Errorf("no-speech threshold must be between 0 and 1, got %f", config.NoSpeechThresh)
	}
	return nil
}

// NewWhisperSpeechToText creates a new Whisper transcriber
func NewWhisperSpeechToText(config WhisperConfig, logger *zap.Logger) (*WhisperSpeechToText, error) {
	if err := ValidateWhisperConfig(config); err != nil {
		return nil, err
	}

	clientConfig := openai.DefaultConfig(config.APIKey)
	if config.BaseURL != "" {
		clientConfig.BaseURL = config.BaseURL
	}

	model := config.Model
	if model == "" {
		model = defaultWhisperModel
		logger.Info("Using default whisper model", zap.String("model", model))
	}

	thresh := config.NoSpeechThresh
	if thresh == 0 {
		thresh = defaultNoSpeechThresh
	}

	return &WhisperSpeechToText{
		client:         openai.NewClientWithConfig(clientConfig),
		model:          model,
		noSpeechThresh: thresh,
		prompt:         config.Prompt,
		logger:         logger,
	}, nil
}

// Transcribe uploads the chunk as a WAV file and joins the speech segments
func (w *WhisperSpeechToText) Transcribe(ctx context.Context, samples []float32, config repositories.AudioConfig) (repositories.Transcription, error) {
	if len(samples) == 0 {
		return repositories.Transcription{}, fmt.Errorf("no audio data received")
	}

	wav, err := pcm.EncodeWAV(samples, config.SampleRate)
	if err != nil {
		return repositories.Transcription{}, err
	}

	resp, err := w.client.CreateTranscription(ctx, openai.AudioRequest{
		Model:       w.model,
		FilePath:    "chunk.wav",
		Reader:      bytes.NewReader(wav),
		Prompt:      w.prompt,
		Temperature: 0,
		Language:    config.Language,
		Format:      openai.AudioResponseFormatVerboseJSON,
	})
	if err != nil {
		return repositories.Transcription{}, fmt.Errorf("create transcription: %w", err)
	}

	out := w.collectSegments(resp)
	if out.Language == "" {
		out.Language = config.Language
	}
	return out, nil
}

func (w *WhisperSpeechToText) collectSegments(resp openai.AudioResponse) repositories.Transcription {
	if len(resp.Segments) == 0 {
		return repositories.Transcription{
			Text:       strings.TrimSpace(resp.Text),
			Confidence: 1,
			Language:   resp.Language,
		}
	}

	var (
		parts   []string
		logprob float64
	)
	for _, seg := range resp.Segments {
		text := strings.TrimSpace(seg.Text)
		if text == "" {
			continue
		}
		if seg.NoSpeechProb > w.noSpeechThresh {
			w.logger.Debug("Dropping non-speech segment",
				zap.String("text", text),
				zap.Float64("noSpeechProb", seg.NoSpeechProb))
			continue
		}
		parts = append(parts, text)
		logprob += seg.AvgLogprob
	}

	out := repositories.Transcription{
		Text:       strings.Join(parts, " "),
		Confidence: 1,
		Language:   resp.Language,
	}
	if len(parts) > 0 {
		out.Confidence = math.Min(1, math.Exp(logprob/float64(len(parts))))
	}
	return out
}
