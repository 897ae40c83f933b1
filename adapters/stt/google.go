package stt

import (
	"context"
	"fmt"
	"strings"

	speech "cloud.google.com/go/speech/apiv1"
	"cloud.google.com/go/speech/apiv1/speechpb"
	"go.uber.org/zap"

	"github.com/satriahrh/farsisub/domain/repositories"
	"github.com/satriahrh/farsisub/internal/pcm"
)

// GoogleSpeechToText implements SpeechToText with Google Cloud Speech-to-Text.
// Credentials come from Application Default Credentials.
type GoogleSpeechToText struct {
	client *speech.Client
	model  string
	logger *zap.Logger
}

// NewGoogleSpeechToText creates a Google Cloud Speech client
func NewGoogleSpeechToText(ctx context.Context, model string, logger *zap.Logger) (*GoogleSpeechToText, error) {
	client, err := speech.NewClient(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to create speech client: %w", err)
	}
	return &GoogleSpeechToText{
		client: client,
		model:  model,
		logger: logger,
	}, nil
}

// Transcribe sends the chunk as LINEAR16 and returns the best alternative of each result
func (g *GoogleSpeechToText) Transcribe(ctx context.Context, samples []float32, config repositories.AudioConfig) (repositories.Transcription, error) {
	if len(samples) == 0 {
		return repositories.Transcription{}, fmt.Errorf("no audio data received")
	}

	resp, err := g.client.Recognize(ctx, &speechpb.RecognizeRequest{
		Config: &speechpb.RecognitionConfig{
			Encoding:        speechpb.RecognitionConfig_LINEAR16,
			SampleRateHertz: int32(config.SampleRate),
			LanguageCode:    languageCode(config.Language),
			Model:           g.model,
		},
		Audio: &speechpb.RecognitionAudio{
			AudioSource: &speechpb.RecognitionAudio_Content{
				Content: pcm.Linear16(samples),
			},
		},
	})
	if err != nil {
		return repositories.Transcription{}, fmt.Errorf("recognize: %w", err)
	}

	return collectResults(resp.GetResults(), config.Language), nil
}

// Close releases the underlying gRPC connection
func (g *GoogleSpeechToText) Close() error {
	return g.client.Close()
}

func collectResults(results []*speechpb.SpeechRecognitionResult, language string) repositories.Transcription {
	var (
		parts      []string
		confidence float64
		counted    int
	)
	for _, result := range results {
		alts := result.GetAlternatives()
		if len(alts) == 0 {
			continue
		}
		best := alts[0]
		text := strings.TrimSpace(best.GetTranscript())
		if text == "" {
			continue
		}
		parts = append(parts, text)
		confidence += float64(best.GetConfidence())
		counted++
	}

	out := repositories.Transcription{
		Text:       strings.Join(parts, " "),
		Confidence: 1,
		Language:   language,
	}
	if counted > 0 && confidence > 0 {
		out.Confidence = confidence / float64(counted)
	}
	return out
}

// languageCode expands bare language tags to the regional codes the API expects
func languageCode(language string) string {
	switch language {
	case "", "en":
		return "en-US"
	case "fa":
		return "fa-IR"
	default:
		return language
	}
}
