package entities

// PipelineStats is a point-in-time snapshot of the streaming pipeline
type PipelineStats struct {
	TranslationCount      int64   `json:"translation_count"`
	LastTranslationSecAgo float64 `json:"last_translation"`
	IsRecording           bool    `json:"is_recording"`
	ChunksCaptured        uint64  `json:"chunks_captured"`
	ChunksDropped         uint64  `json:"chunks_dropped"`
	ChunksProcessed       uint64  `json:"chunks_processed"`
	Failures              uint64  `json:"failures"`
	InputOverflows        uint64  `json:"input_overflows"`
	QueueLength           int     `json:"queue_length"`
}
