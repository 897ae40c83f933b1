//go:build !noportaudio

package capture

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/gordonklaus/portaudio"
	"go.uber.org/zap"

	"github.com/satriahrh/farsisub/domain/entities"
	"github.com/satriahrh/farsisub/domain/repositories"
)

// PortAudioSource captures mono float32 audio from an input device
type PortAudioSource struct {
	deviceName      string
	sampleRate      int
	framesPerBuffer int
	logger          *zap.Logger

	mu        sync.Mutex
	stream    *portaudio.Stream
	overflows atomic.Uint64
}

var (
	_ repositories.AudioSource      = (*PortAudioSource)(nil)
	_ repositories.OverflowReporter = (*PortAudioSource)(nil)
	_ repositories.DeviceLister     = (*PortAudioSource)(nil)
)

// NewPortAudioSource creates a source for the first input device whose name
// contains deviceName (case-insensitive). An empty name selects the default input.
func NewPortAudioSource(deviceName string, sampleRate, framesPerBuffer int, logger *zap.Logger) *PortAudioSource {
	return &PortAudioSource{
		deviceName:      deviceName,
		sampleRate:      sampleRate,
		framesPerBuffer: framesPerBuffer,
		logger:          logger,
	}
}

// Start opens the stream and returns once the device is delivering audio.
// The callback runs on the PortAudio thread.
func (p *PortAudioSource) Start(ctx context.Context, callback repositories.SampleCallback) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.stream != nil {
		return ErrAlreadyStarted
	}

	if err := portaudio.Initialize(); err != nil {
		return fmt.Errorf("failed to initialize PortAudio: %w", err)
	}

	device, err := p.findDevice()
	if err != nil {
		portaudio.Terminate()
		return err
	}

	params := portaudio.LowLatencyParameters(device, nil)
	params.Input.Channels = 1
	params.SampleRate = float64(p.sampleRate)
	params.FramesPerBuffer = p.framesPerBuffer

	stream, err := portaudio.OpenStream(params, func(in []float32, _ portaudio.StreamCallbackTimeInfo, flags portaudio.StreamCallbackFlags) {
		if flags&(portaudio.InputOverflow|portaudio.InputUnderflow) != 0 {
			p.overflows.Add(1)
		}
		callback(in)
	})
	if err != nil {
		portaudio.Terminate()
		return fmt.Errorf("failed to open stream: %w", err)
	}

	if err := stream.Start(); err != nil {
		stream.Close()
		portaudio.Terminate()
		return fmt.Errorf("failed to start stream: %w", err)
	}
	p.stream = stream

	p.logger.Info("Audio capture started",
		zap.String("device", device.Name),
		zap.Int("sampleRate", p.sampleRate),
		zap.Int("framesPerBuffer", p.framesPerBuffer))
	return nil
}

// Stop closes the stream and releases PortAudio. Safe to call when not started.
func (p *PortAudioSource) Stop() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.stream == nil {
		return nil
	}

	var firstErr error
	if err := p.stream.Stop(); err != nil {
		firstErr = fmt.Errorf("failed to stop stream: %w", err)
	}
	if err := p.stream.Close(); err != nil && firstErr == nil {
		firstErr = fmt.Errorf("failed to close stream: %w", err)
	}
	p.stream = nil

	if err := portaudio.Terminate(); err != nil && firstErr == nil {
		firstErr = fmt.Errorf("failed to terminate PortAudio: %w", err)
	}

	p.logger.Info("Audio capture stopped", zap.Uint64("overflows", p.overflows.Load()))
	return firstErr
}

// Overflows returns how many callbacks reported input overflow or underflow
func (p *PortAudioSource) Overflows() uint64 {
	return p.overflows.Load()
}

// ListDevices implements repositories.DeviceLister
func (p *PortAudioSource) ListDevices() ([]entities.AudioDevice, error) {
	return ListDevices()
}

// findDevice must be called between Initialize and Terminate
func (p *PortAudioSource) findDevice() (*portaudio.DeviceInfo, error) {
	if p.deviceName == "" {
		device, err := portaudio.DefaultInputDevice()
		if err != nil {
			return nil, fmt.Errorf("failed to get default input device: %w", err)
		}
		return device, nil
	}

	all, err := portaudio.Devices()
	if err != nil {
		return nil, fmt.Errorf("failed to get devices: %w", err)
	}

	devices := toAudioDevices(all)
	idx, err := MatchDevice(devices, p.deviceName)
	if err != nil {
		return nil, err
	}
	return all[idx], nil
}

// ListDevices enumerates every device PortAudio reports
func ListDevices() ([]entities.AudioDevice, error) {
	if err := portaudio.Initialize(); err != nil {
		return nil, fmt.Errorf("failed to initialize PortAudio: %w", err)
	}
	defer portaudio.Terminate()

	all, err := portaudio.Devices()
	if err != nil {
		return nil, fmt.Errorf("failed to get devices: %w", err)
	}
	return toAudioDevices(all), nil
}

func toAudioDevices(all []*portaudio.DeviceInfo) []entities.AudioDevice {
	devices := make([]entities.AudioDevice, 0, len(all))
	for i, info := range all {
		devices = append(devices, entities.AudioDevice{
			Index:             i,
			Name:              info.Name,
			MaxInputChannels:  info.MaxInputChannels,
			MaxOutputChannels: info.MaxOutputChannels,
			DefaultSampleRate: info.DefaultSampleRate,
		})
	}
	return devices
}
