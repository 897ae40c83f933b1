// Package capture provides audio sources feeding the subtitle pipeline:
// a PortAudio input device and a WAV file replayer.
package capture

import "errors"

var (
	// ErrDeviceNotFound is returned when no input device matches the configured name
	ErrDeviceNotFound = errors.New("audio input device not found")
	// ErrPortAudioUnavailable is returned by builds without PortAudio support
	ErrPortAudioUnavailable = errors.New("portaudio support not compiled in (built with noportaudio)")
	// ErrAlreadyStarted is returned when Start is called twice
	ErrAlreadyStarted = errors.New("audio source already started")
)
