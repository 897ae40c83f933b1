// Package pcm converts between float32 sample buffers and the integer/WAV
// encodings expected by recognition backends.
package pcm

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"math"

	"github.com/go-audio/audio"
	"github.com/go-audio/wav"
	"github.com/orcaman/writerseeker"
)

// ErrInvalidWAV is returned when a stream is not a readable WAV file.
var ErrInvalidWAV = errors.New("invalid wav file")

// Float32ToInt16 converts normalized samples to 16-bit PCM, clamping out-of-range values.
func Float32ToInt16(samples []float32) []int16 {
	out := make([]int16, len(samples))
	for i, s := range samples {
		out[i] = floatToInt16(s)
	}
	return out
}

func floatToInt16(s float32) int16 {
	switch {
	case s >= 1:
		return math.MaxInt16
	case s <= -1:
		return -math.MaxInt16
	default:
		return int16(s * math.MaxInt16)
	}
}

// Linear16 encodes samples as little-endian signed 16-bit PCM (LINEAR16).
func Linear16(samples []float32) []byte {
	ints := Float32ToInt16(samples)
	out := make([]byte, 2*len(ints))
	for i, v := range ints {
		binary.LittleEndian.PutUint16(out[2*i:], uint16(v))
	}
	return out
}

// FirstChannel extracts channel 0 from interleaved samples.
func FirstChannel(interleaved []float32, channels int) []float32 {
	if channels <= 1 {
		return interleaved
	}
	out := make([]float32, 0, len(interleaved)/channels)
	for i := 0; i < len(interleaved); i += channels {
		out = append(out, interleaved[i])
	}
	return out
}

// EncodeWAV renders mono samples as a 16-bit PCM RIFF/WAV file in memory.
func EncodeWAV(samples []float32, sampleRate int) ([]byte, error) {
	pcm16 := Float32ToInt16(samples)
	ints := make([]int, len(pcm16))
	for i, v := range pcm16 {
		ints[i] = int(v)
	}
	buf := &audio.IntBuffer{
		Format:         &audio.Format{NumChannels: 1, SampleRate: sampleRate},
		Data:           ints,
		SourceBitDepth: 16,
	}

	wavFile := &writerseeker.WriterSeeker{}
	encoder := wav.NewEncoder(wavFile, sampleRate, 16, 1, 1)
	if err := encoder.Write(buf); err != nil {
		return nil, fmt.Errorf("encoder write buffer: %w", err)
	}
	if err := encoder.Close(); err != nil {
		return nil, fmt.Errorf("encoder close: %w", err)
	}

	riffWav, err := io.ReadAll(wavFile.Reader())
	if err != nil {
		return nil, fmt.Errorf("reading wav into memory: %w", err)
	}
	return riffWav, nil
}

// DecodeWAV reads an integer PCM WAV stream and returns channel 0 as
// normalized float32 samples together with the file's sample rate.
func DecodeWAV(r io.ReadSeeker) ([]float32, int, error) {
	decoder := wav.NewDecoder(r)
	if !decoder.IsValidFile() {
		return nil, 0, ErrInvalidWAV
	}

	buf, err := decoder.FullPCMBuffer()
	if err != nil {
		return nil, 0, fmt.Errorf("decode pcm: %w", err)
	}

	bitDepth := buf.SourceBitDepth
	if bitDepth == 0 {
		bitDepth = int(decoder.BitDepth)
	}
	if bitDepth <= 0 || bitDepth > 32 {
		return nil, 0, fmt.Errorf("%w: unsupported bit depth %d", ErrInvalidWAV, bitDepth)
	}

	channels := buf.Format.NumChannels
	if channels < 1 {
		channels = 1
	}
	scale := float32(int64(1) << (bitDepth - 1))

	interleaved := make([]float32, len(buf.Data))
	for i, v := range buf.Data {
		interleaved[i] = float32(v) / scale
	}
	return FirstChannel(interleaved, channels), int(decoder.SampleRate), nil
}
