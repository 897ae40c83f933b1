//go:build noportaudio

package capture

import (
	"context"

	"go.uber.org/zap"

	"github.com/satriahrh/farsisub/domain/entities"
	"github.com/satriahrh/farsisub/domain/repositories"
)

// PortAudioSource is unavailable in builds tagged noportaudio
type PortAudioSource struct{}

// NewPortAudioSource returns a source whose Start always fails
func NewPortAudioSource(deviceName string, sampleRate, framesPerBuffer int, logger *zap.Logger) *PortAudioSource {
	return &PortAudioSource{}
}

func (p *PortAudioSource) Start(ctx context.Context, callback repositories.SampleCallback) error {
	return ErrPortAudioUnavailable
}

func (p *PortAudioSource) Stop() error { return nil }

func (p *PortAudioSource) Overflows() uint64 { return 0 }

func (p *PortAudioSource) ListDevices() ([]entities.AudioDevice, error) {
	return ListDevices()
}

// ListDevices always fails without PortAudio
func ListDevices() ([]entities.AudioDevice, error) {
	return nil, ErrPortAudioUnavailable
}
