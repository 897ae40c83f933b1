package entities

import (
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Transcript is a persisted record of one recognized and translated chunk
type Transcript struct {
	ID             primitive.ObjectID `json:"id" bson:"_id,omitempty"`
	SubtitleID     string             `json:"subtitle_id" bson:"subtitle_id"`
	English        string             `json:"english" bson:"english"`
	Translated     string             `json:"translated" bson:"translated"`
	Language       string             `json:"language" bson:"language"`
	TargetLanguage string             `json:"target_language" bson:"target_language"`
	Confidence     float64            `json:"confidence" bson:"confidence"`
	ChunkSeq       uint64             `json:"chunk_seq" bson:"chunk_seq"`
	CapturedAt     time.Time          `json:"captured_at" bson:"captured_at"`
	CreatedAt      time.Time          `json:"created_at" bson:"created_at"`
	ASRLatencyMs   int64              `json:"asr_latency_ms" bson:"asr_latency_ms"`
	MTLatencyMs    int64              `json:"mt_latency_ms" bson:"mt_latency_ms"`
}

// Validate validates the transcript data
func (t *Transcript) Validate() error {
	if t.English == "" {
		return errors.New("english text is required")
	}
	if t.SubtitleID == "" {
		return errors.New("subtitle_id is required")
	}
	return nil
}
