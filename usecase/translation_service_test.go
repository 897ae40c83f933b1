package usecase

import (
	"context"
	"errors"
	"testing"
	"time"

	"go.uber.org/zap/zaptest"

	"github.com/satriahrh/farsisub/domain/entities"
	"github.com/satriahrh/farsisub/domain/repositories"
	"github.com/satriahrh/farsisub/internal/config"
)

func testOptions() TranslationOptions {
	return TranslationOptionsFromConfig(config.Default())
}

func testChunk() *entities.AudioChunk {
	return &entities.AudioChunk{
		Seq:        7,
		Samples:    make([]float32, 160),
		SampleRate: 16000,
		CapturedAt: time.Now(),
	}
}

func TestTranslationService_ProcessChunk(t *testing.T) {
	stt := &fakeSTT{result: repositories.Transcription{Text: "  hello \n  world ", Confidence: 0.9}}
	tr := &fakeTranslator{}
	pub := &fakePublisher{}
	repo := &fakeTranscriptRepo{}
	svc := NewTranslationService(stt, tr, pub, repo, testOptions(), zaptest.NewLogger(t))

	sub, err := svc.ProcessChunk(context.Background(), testChunk())
	if err != nil {
		t.Fatalf("ProcessChunk failed: %v", err)
	}
	if sub.English != "hello world" {
		t.Errorf("Expected normalized english text, got %q", sub.English)
	}
	if sub.Text != "fa:hello world" {
		t.Errorf("Expected translated text, got %q", sub.Text)
	}
	if sub.Duration != 3*time.Second {
		t.Errorf("Expected default 3s duration, got %v", sub.Duration)
	}
	if len(pub.Published()) != 1 {
		t.Errorf("Expected 1 published subtitle, got %d", len(pub.Published()))
	}
	if len(repo.transcripts) != 1 {
		t.Fatalf("Expected 1 transcript, got %d", len(repo.transcripts))
	}
	rec := repo.transcripts[0]
	if rec.SubtitleID != sub.ID || rec.ChunkSeq != 7 || rec.TargetLanguage != "fa" || rec.Confidence != 0.9 {
		t.Errorf("Unexpected transcript %+v", rec)
	}
	if svc.TranslationCount() != 1 || svc.LastTranslation().IsZero() {
		t.Error("Expected stats to be updated")
	}
}

func TestTranslationService_FiltersChunks(t *testing.T) {
	tests := []struct {
		name   string
		result repositories.Transcription
	}{
		{"empty", repositories.Transcription{Text: "", Confidence: 1}},
		{"at min length", repositories.Transcription{Text: "uh.", Confidence: 1}},
		{"low confidence", repositories.Transcription{Text: "hello there", Confidence: 0.3}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tr := &fakeTranslator{}
			pub := &fakePublisher{}
			svc := NewTranslationService(&fakeSTT{result: tt.result}, tr, pub, nil, testOptions(), zaptest.NewLogger(t))

			sub, err := svc.ProcessChunk(context.Background(), testChunk())
			if !errors.Is(err, ErrNoSpeech) {
				t.Fatalf("Expected ErrNoSpeech, got %v", err)
			}
			if sub != nil || tr.calls != 0 || len(pub.Published()) != 0 {
				t.Error("Expected filtered chunk to stop before translation")
			}
			if svc.TranslationCount() != 0 {
				t.Error("Expected no translation counted")
			}
		})
	}
}

func TestTranslationService_TranslationDisabledPublishesEnglish(t *testing.T) {
	opts := testOptions()
	opts.EnableTranslation = false
	tr := &fakeTranslator{}
	pub := &fakePublisher{}
	repo := &fakeTranscriptRepo{}
	svc := NewTranslationService(&fakeSTT{result: repositories.Transcription{Text: "good evening", Confidence: 1}}, tr, pub, repo, opts, zaptest.NewLogger(t))

	sub, err := svc.ProcessChunk(context.Background(), testChunk())
	if err != nil {
		t.Fatalf("ProcessChunk failed: %v", err)
	}
	if sub.Text != "good evening" || tr.calls != 0 {
		t.Errorf("Expected english passthrough, got %q (translator calls %d)", sub.Text, tr.calls)
	}
	if repo.transcripts[0].TargetLanguage != "en" {
		t.Errorf("Expected source language as target, got %q", repo.transcripts[0].TargetLanguage)
	}
}

func TestTranslationService_SubtitlesDisabledSkipsPublish(t *testing.T) {
	opts := testOptions()
	opts.EnableSubtitles = false
	pub := &fakePublisher{}
	svc := NewTranslationService(&fakeSTT{result: repositories.Transcription{Text: "good evening", Confidence: 1}}, &fakeTranslator{}, pub, nil, opts, zaptest.NewLogger(t))

	if _, err := svc.ProcessChunk(context.Background(), testChunk()); err != nil {
		t.Fatalf("ProcessChunk failed: %v", err)
	}
	if len(pub.Published()) != 0 {
		t.Error("Expected nothing published")
	}
	if svc.TranslationCount() != 1 {
		t.Error("Expected translation counted")
	}
}

func TestTranslationService_ErrorsNeverReachSubtitles(t *testing.T) {
	pub := &fakePublisher{}
	svc := NewTranslationService(
		&fakeSTT{result: repositories.Transcription{Text: "good evening", Confidence: 1}},
		&fakeTranslator{err: errBoom},
		pub, nil, testOptions(), zaptest.NewLogger(t))

	_, err := svc.ProcessChunk(context.Background(), testChunk())
	if !errors.Is(err, errBoom) {
		t.Fatalf("Expected translator error, got %v", err)
	}
	if len(pub.Published()) != 0 {
		t.Error("Expected no subtitle for failed translation")
	}
}

func TestTranslationService_TranscriptionError(t *testing.T) {
	svc := NewTranslationService(&fakeSTT{err: errBoom}, &fakeTranslator{}, &fakePublisher{}, nil, testOptions(), zaptest.NewLogger(t))
	if _, err := svc.ProcessChunk(context.Background(), testChunk()); !errors.Is(err, errBoom) {
		t.Errorf("Expected transcription error, got %v", err)
	}
}

func TestTranslationService_TranscriptFailureIsNotFatal(t *testing.T) {
	repo := &fakeTranscriptRepo{createErr: errBoom}
	svc := NewTranslationService(
		&fakeSTT{result: repositories.Transcription{Text: "good evening", Confidence: 1}},
		&fakeTranslator{}, &fakePublisher{}, repo, testOptions(), zaptest.NewLogger(t))

	if _, err := svc.ProcessChunk(context.Background(), testChunk()); err != nil {
		t.Errorf("Expected success despite history failure, got %v", err)
	}
}
