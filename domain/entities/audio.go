package entities

import "time"

// AudioChunk is a fixed-length window of mono samples handed from capture to inference
type AudioChunk struct {
	Seq        uint64
	Samples    []float32
	SampleRate int
	CapturedAt time.Time
}

// Duration returns the playback length of the chunk
func (c *AudioChunk) Duration() time.Duration {
	if c.SampleRate <= 0 {
		return 0
	}
	return time.Duration(len(c.Samples)) * time.Second / time.Duration(c.SampleRate)
}

// AudioDevice describes a capture device reported by the audio backend
type AudioDevice struct {
	Index             int     `json:"index"`
	Name              string  `json:"name"`
	MaxInputChannels  int     `json:"max_input_channels"`
	MaxOutputChannels int     `json:"max_output_channels"`
	DefaultSampleRate float64 `json:"default_sample_rate"`
}
