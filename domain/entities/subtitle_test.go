package entities

import (
	"math"
	"testing"
	"time"
)

func TestSubtitleCreation(t *testing.T) {
	sub := NewSubtitle("سلام", "hello", 3*time.Second)

	if sub.ID == "" {
		t.Error("Expected generated ID")
	}
	if sub.Text != "سلام" || sub.English != "hello" {
		t.Errorf("Unexpected texts %q / %q", sub.Text, sub.English)
	}
	if time.Since(sub.CreatedAt) > time.Second {
		t.Error("Expected CreatedAt to be now")
	}
	if !sub.ExpiresAt().Equal(sub.CreatedAt.Add(3 * time.Second)) {
		t.Error("Expected expiry 3s after creation")
	}
}

func TestSubtitleDocument(t *testing.T) {
	created := time.Unix(1700000000, 250_000_000)
	sub := &Subtitle{ID: "abc", Text: "سلام", English: "hello", CreatedAt: created, Duration: 3 * time.Second}

	doc := sub.Document()
	if math.Abs(doc.Timestamp-1700000000.25) > 1e-6 {
		t.Errorf("Expected fractional unix timestamp, got %v", doc.Timestamp)
	}
	if doc.Duration != 3 {
		t.Errorf("Expected duration in seconds, got %v", doc.Duration)
	}

	back := doc.Subtitle()
	if back.ID != "abc" || back.Text != sub.Text || back.Duration != sub.Duration {
		t.Errorf("Unexpected round trip %+v", back)
	}
	if d := back.CreatedAt.Sub(created); d > time.Millisecond || d < -time.Millisecond {
		t.Errorf("Expected timestamps within a millisecond, diff %v", d)
	}
}

func TestSubtitleValidate(t *testing.T) {
	tests := []struct {
		name    string
		sub     Subtitle
		wantErr bool
	}{
		{"valid", Subtitle{Text: "hi", Duration: time.Second}, false},
		{"empty text", Subtitle{Duration: time.Second}, true},
		{"zero duration", Subtitle{Text: "hi"}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := tt.sub.Validate(); (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestAudioChunkDuration(t *testing.T) {
	chunk := &AudioChunk{Samples: make([]float32, 8000), SampleRate: 16000}
	if chunk.Duration() != 500*time.Millisecond {
		t.Errorf("Expected 500ms, got %v", chunk.Duration())
	}
	if (&AudioChunk{Samples: make([]float32, 10)}).Duration() != 0 {
		t.Error("Expected zero duration without sample rate")
	}
}

func TestTranscriptValidate(t *testing.T) {
	if err := (&Transcript{SubtitleID: "a", English: "hi"}).Validate(); err != nil {
		t.Errorf("Unexpected error: %v", err)
	}
	if err := (&Transcript{English: "hi"}).Validate(); err == nil {
		t.Error("Expected error without subtitle id")
	}
	if err := (&Transcript{SubtitleID: "a"}).Validate(); err == nil {
		t.Error("Expected error without english text")
	}
}
