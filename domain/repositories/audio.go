package repositories

import (
	"context"

	"github.com/satriahrh/farsisub/domain/entities"
)

// SampleCallback receives mono samples from the capture backend.
// It runs on the audio thread and must not block, unless the source is a
// LosslessSource reporting true.
type SampleCallback func(samples []float32)

// AudioSource delivers captured audio to a callback
type AudioSource interface {
	Start(ctx context.Context, callback SampleCallback) error
	Stop() error
}

// OverflowReporter is implemented by sources that track device overflow/underflow flags
type OverflowReporter interface {
	Overflows() uint64
}

// DeviceLister enumerates capture devices
type DeviceLister interface {
	ListDevices() ([]entities.AudioDevice, error)
}

// FiniteSource is implemented by sources that end on their own, such as file replay
type FiniteSource interface {
	Done() <-chan struct{}
}

// LosslessSource is implemented by sources that are not tied to a wall clock.
// When Lossless reports true the callback may wait for queue space instead of
// evicting older chunks.
type LosslessSource interface {
	Lossless() bool
}
