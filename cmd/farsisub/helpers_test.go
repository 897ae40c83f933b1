package main

import (
	"os"
	"testing"

	"github.com/satriahrh/farsisub/internal/pcm"
)

func writeSilenceWAV(t *testing.T, path string, samples, sampleRate int) {
	t.Helper()
	data, err := pcm.EncodeWAV(make([]float32, samples), sampleRate)
	if err != nil {
		t.Fatalf("EncodeWAV failed: %v", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}
}
