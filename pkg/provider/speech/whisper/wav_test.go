package whisper

import (
	"encoding/binary"
	"errors"
	"math"
	"testing"
)

// buildWAV constructs a minimal RIFF/WAVE byte slice with the given format
// and raw 16-bit PCM samples.
func buildWAV(channels, rate, bits int, samples []int16) []byte {
	le := binary.LittleEndian
	pcm := make([]byte, 2*len(samples))
	for i, s := range samples {
		le.PutUint16(pcm[2*i:], uint16(s))
	}

	fmtSize := uint32(16)
	dataSize := uint32(len(pcm))
	fileSize := 4 + (8 + fmtSize) + (8 + dataSize)

	buf := make([]byte, 0, 12+8+int(fmtSize)+8+len(pcm))
	putU32 := func(v uint32) {
		var b [4]byte
		le.PutUint32(b[:], v)
		buf = append(buf, b[:]...)
	}
	putU16 := func(v uint16) {
		var b [2]byte
		le.PutUint16(b[:], v)
		buf = append(buf, b[:]...)
	}

	buf = append(buf, []byte("RIFF")...)
	putU32(fileSize)
	buf = append(buf, []byte("WAVE")...)

	buf = append(buf, []byte("fmt ")...)
	putU32(fmtSize)
	putU16(1) // PCM
	putU16(uint16(channels))
	putU32(uint32(rate))
	putU32(uint32(rate * channels * bits / 8))
	putU16(uint16(channels * bits / 8))
	putU16(uint16(bits))

	buf = append(buf, []byte("data")...)
	putU32(dataSize)
	buf = append(buf, pcm...)

	return buf
}

func TestDecodeWAV_Mono(t *testing.T) {
	wav := buildWAV(1, 16000, 16, []int16{0, 16384, -16384, 32767})

	samples, err := decodeWAV(wav)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(samples) != 4 {
		t.Fatalf("samples: got %d, want 4", len(samples))
	}

	want := []float32{0, 0.5, -0.5, 32767.0 / 32768.0}
	for i, w := range want {
		if math.Abs(float64(samples[i]-w)) > 1e-6 {
			t.Errorf("samples[%d] = %v, want %v", i, samples[i], w)
		}
	}
}

func TestDecodeWAV_StereoDownmix(t *testing.T) {
	// Interleaved L/R frames: (16384, 0) and (-16384, -16384).
	wav := buildWAV(2, 16000, 16, []int16{16384, 0, -16384, -16384})

	samples, err := decodeWAV(wav)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(samples) != 2 {
		t.Fatalf("samples: got %d, want 2", len(samples))
	}
	if math.Abs(float64(samples[0]-0.25)) > 1e-6 {
		t.Errorf("samples[0] = %v, want 0.25", samples[0])
	}
	if math.Abs(float64(samples[1]+0.5)) > 1e-6 {
		t.Errorf("samples[1] = %v, want -0.5", samples[1])
	}
}

func TestDecodeWAV_RejectsNonWAV(t *testing.T) {
	_, err := decodeWAV([]byte("OggS this is not a wav"))
	if !errors.Is(err, errNotWAV) {
		t.Errorf("expected errNotWAV, got: %v", err)
	}
}

func TestDecodeWAV_RejectsWrongRate(t *testing.T) {
	wav := buildWAV(1, 44100, 16, []int16{0, 0})
	_, err := decodeWAV(wav)
	if err == nil {
		t.Fatal("expected error for 44.1 kHz audio, got nil")
	}
}

func TestDecodeWAV_RejectsWrongBitDepth(t *testing.T) {
	// Claim 8-bit in the fmt chunk; the data payload layout does not matter
	// for the rejection path.
	wav := buildWAV(1, 16000, 8, []int16{0, 0})
	_, err := decodeWAV(wav)
	if err == nil {
		t.Fatal("expected error for 8-bit audio, got nil")
	}
}

func TestDecodeWAV_TruncatedChunk(t *testing.T) {
	wav := buildWAV(1, 16000, 16, []int16{0, 0, 0, 0})
	_, err := decodeWAV(wav[:len(wav)-3])
	if err == nil {
		t.Fatal("expected error for truncated data chunk, got nil")
	}
}
