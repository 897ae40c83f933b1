package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync/atomic"
	"time"
	"unicode/utf8"

	"go.uber.org/zap"

	"github.com/satriahrh/farsisub/domain/entities"
	"github.com/satriahrh/farsisub/domain/repositories"
	"github.com/satriahrh/farsisub/internal/config"
)

// ErrNoSpeech marks chunks that produced no usable text. It is not a failure.
var ErrNoSpeech = errors.New("no usable speech in chunk")

// TranslationOptions controls filtering and output of recognized chunks
type TranslationOptions struct {
	Language          string
	TargetLanguage    string
	EnableTranslation bool
	EnableSubtitles   bool
	MinTextLength     int
	MinConfidence     float64
	SubtitleDuration  time.Duration
}

// TranslationOptionsFromConfig extracts the options from the loaded configuration
func TranslationOptionsFromConfig(cfg *config.Config) TranslationOptions {
	return TranslationOptions{
		Language:          cfg.Language,
		TargetLanguage:    cfg.TargetLanguage,
		EnableTranslation: cfg.EnableTranslation,
		EnableSubtitles:   cfg.EnableSubtitles,
		MinTextLength:     cfg.MinTextLength,
		MinConfidence:     cfg.MinConfidence,
		SubtitleDuration:  cfg.SubtitleTTL(),
	}
}

// TranslationService turns one audio chunk into a published subtitle
type TranslationService struct {
	speechToText repositories.SpeechToText
	translator   repositories.Translator
	publisher    repositories.SubtitlePublisher
	transcripts  repositories.TranscriptRepository
	opts         TranslationOptions
	logger       *zap.Logger

	translationCount atomic.Int64
	lastTranslation  atomic.Int64
}

// NewTranslationService creates a new translation service.
// translator may be nil when translation is disabled; transcripts may be nil.
func NewTranslationService(
	stt repositories.SpeechToText,
	translator repositories.Translator,
	publisher repositories.SubtitlePublisher,
	transcripts repositories.TranscriptRepository,
	opts TranslationOptions,
	logger *zap.Logger,
) *TranslationService {
	return &TranslationService{
		speechToText: stt,
		translator:   translator,
		publisher:    publisher,
		transcripts:  transcripts,
		opts:         opts,
		logger:       logger,
	}
}

// ProcessChunk runs recognition and translation for a chunk and publishes the result.
// Chunks without usable speech return ErrNoSpeech.
func (s *TranslationService) ProcessChunk(ctx context.Context, chunk *entities.AudioChunk) (*entities.Subtitle, error) {
	asrStart := time.Now()
	transcription, err := s.speechToText.Transcribe(ctx, chunk.Samples, repositories.AudioConfig{
		SampleRate: chunk.SampleRate,
		Language:   s.opts.Language,
	})
	if err != nil {
		return nil, fmt.Errorf("transcription failed: %w", err)
	}
	asrLatency := time.Since(asrStart)

	english := strings.Join(strings.Fields(transcription.Text), " ")
	if utf8.RuneCountInString(english) <= s.opts.MinTextLength {
		return nil, fmt.Errorf("%w: text %q too short", ErrNoSpeech, english)
	}
	if transcription.Confidence < s.opts.MinConfidence {
		return nil, fmt.Errorf("%w: confidence %.2f below %.2f", ErrNoSpeech, transcription.Confidence, s.opts.MinConfidence)
	}

	s.logger.Info("Transcription completed",
		zap.Uint64("seq", chunk.Seq),
		zap.String("text", english),
		zap.Float64("confidence", transcription.Confidence),
		zap.Duration("latency", asrLatency))

	text := english
	var mtLatency time.Duration
	if s.opts.EnableTranslation && s.translator != nil {
		mtStart := time.Now()
		text, err = s.translator.Translate(ctx, english)
		if err != nil {
			return nil, fmt.Errorf("translation failed: %w", err)
		}
		mtLatency = time.Since(mtStart)

		s.logger.Info("Translation completed",
			zap.Uint64("seq", chunk.Seq),
			zap.String("text", text),
			zap.Duration("latency", mtLatency))
	}

	subtitle := entities.NewSubtitle(text, english, s.opts.SubtitleDuration)

	if s.opts.EnableSubtitles && s.publisher != nil {
		if err := s.publisher.Publish(ctx, subtitle); err != nil {
			return nil, fmt.Errorf("publish subtitle: %w", err)
		}
	}

	if s.transcripts != nil {
		s.recordTranscript(ctx, chunk, subtitle, transcription, asrLatency, mtLatency)
	}

	s.translationCount.Add(1)
	s.lastTranslation.Store(subtitle.CreatedAt.UnixNano())
	return subtitle, nil
}

// recordTranscript failures are logged; history is best effort
func (s *TranslationService) recordTranscript(
	ctx context.Context,
	chunk *entities.AudioChunk,
	subtitle *entities.Subtitle,
	transcription repositories.Transcription,
	asrLatency, mtLatency time.Duration,
) {
	target := s.opts.TargetLanguage
	if !s.opts.EnableTranslation {
		target = s.opts.Language
	}

	err := s.transcripts.Create(ctx, &entities.Transcript{
		SubtitleID:     subtitle.ID,
		English:        subtitle.English,
		Translated:     subtitle.Text,
		Language:       s.opts.Language,
		TargetLanguage: target,
		Confidence:     transcription.Confidence,
		ChunkSeq:       chunk.Seq,
		CapturedAt:     chunk.CapturedAt,
		CreatedAt:      subtitle.CreatedAt,
		ASRLatencyMs:   asrLatency.Milliseconds(),
		MTLatencyMs:    mtLatency.Milliseconds(),
	})
	if err != nil {
		s.logger.Warn("Failed to record transcript",
			zap.String("subtitleID", subtitle.ID),
			zap.Error(err))
	}
}

// TranslationCount returns how many subtitles were produced
func (s *TranslationService) TranslationCount() int64 {
	return s.translationCount.Load()
}

// LastTranslation returns when the last subtitle was produced, or the zero time
func (s *TranslationService) LastTranslation() time.Time {
	ns := s.lastTranslation.Load()
	if ns == 0 {
		return time.Time{}
	}
	return time.Unix(0, ns)
}
