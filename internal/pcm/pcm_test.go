package pcm

import (
	"bytes"
	"errors"
	"io"
	"math"
	"testing"

	"github.com/go-audio/audio"
	"github.com/go-audio/wav"
	"github.com/orcaman/writerseeker"
)

func TestFloat32ToInt16_Clamps(t *testing.T) {
	got := Float32ToInt16([]float32{0, 1.5, -2, 0.5})
	want := []int16{0, math.MaxInt16, -math.MaxInt16, math.MaxInt16 / 2}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("Sample %d: expected %d, got %d", i, want[i], got[i])
		}
	}
}

func TestLinear16_LittleEndian(t *testing.T) {
	got := Linear16([]float32{1})
	if len(got) != 2 {
		t.Fatalf("Expected 2 bytes, got %d", len(got))
	}
	if got[0] != 0xff || got[1] != 0x7f {
		t.Errorf("Expected ff 7f, got %x %x", got[0], got[1])
	}
}

func TestFirstChannel(t *testing.T) {
	got := FirstChannel([]float32{1, -1, 2, -2, 3, -3}, 2)
	want := []float32{1, 2, 3}
	if len(got) != len(want) {
		t.Fatalf("Expected %d samples, got %d", len(want), len(got))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("Sample %d: expected %v, got %v", i, want[i], got[i])
		}
	}
}

func TestEncodeWAV_DecodesBack(t *testing.T) {
	in := []float32{0, 0.5, -0.5, 0.25}
	data, err := EncodeWAV(in, 16000)
	if err != nil {
		t.Fatalf("EncodeWAV failed: %v", err)
	}
	if !bytes.HasPrefix(data, []byte("RIFF")) {
		t.Fatalf("Expected RIFF header, got %q", data[:4])
	}

	out, rate, err := DecodeWAV(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("DecodeWAV failed: %v", err)
	}
	if rate != 16000 {
		t.Errorf("Expected sample rate 16000, got %d", rate)
	}
	if len(out) != len(in) {
		t.Fatalf("Expected %d samples, got %d", len(in), len(out))
	}
	for i := range in {
		if math.Abs(float64(out[i]-in[i])) > 0.001 {
			t.Errorf("Sample %d: expected ~%v, got %v", i, in[i], out[i])
		}
	}
}

func TestDecodeWAV_RejectsGarbage(t *testing.T) {
	_, _, err := DecodeWAV(bytes.NewReader([]byte("definitely not a wav file")))
	if !errors.Is(err, ErrInvalidWAV) {
		t.Errorf("Expected ErrInvalidWAV, got %v", err)
	}
}

func TestDecodeWAV_StereoKeepsFirstChannel(t *testing.T) {
	ws := &writerseeker.WriterSeeker{}
	enc := wav.NewEncoder(ws, 8000, 16, 2, 1)
	buf := &audio.IntBuffer{
		Format:         &audio.Format{NumChannels: 2, SampleRate: 8000},
		Data:           []int{16384, -16384, 8192, -8192},
		SourceBitDepth: 16,
	}
	if err := enc.Write(buf); err != nil {
		t.Fatalf("Write failed: %v", err)
	}
	if err := enc.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}
	data, err := io.ReadAll(ws.Reader())
	if err != nil {
		t.Fatalf("ReadAll failed: %v", err)
	}

	out, rate, err := DecodeWAV(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("DecodeWAV failed: %v", err)
	}
	if rate != 8000 {
		t.Errorf("Expected sample rate 8000, got %d", rate)
	}
	want := []float32{0.5, 0.25}
	if len(out) != len(want) {
		t.Fatalf("Expected %d samples, got %d", len(want), len(out))
	}
	for i := range want {
		if math.Abs(float64(out[i]-want[i])) > 0.001 {
			t.Errorf("Sample %d: expected ~%v, got %v", i, want[i], out[i])
		}
	}
}
