package whisper

import (
	"encoding/binary"
	"errors"
	"fmt"
)

// sampleRate is the only sample rate whisper.cpp accepts. Callers must
// resample before submitting audio.
const sampleRate = 16000

var errNotWAV = errors.New("whisper: payload is not a RIFF/WAVE file")

// decodeWAV parses a 16-bit PCM WAV payload and returns mono float32 samples
// normalised to [-1.0, 1.0]. Multi-channel audio is down-mixed by averaging
// channels per frame. Sample rates other than 16 kHz are rejected.
func decodeWAV(data []byte) ([]float32, error) {
	if len(data) < 12 || string(data[0:4]) != "RIFF" || string(data[8:12]) != "WAVE" {
		return nil, errNotWAV
	}

	var (
		channels int
		rate     int
		bits     int
		pcm      []byte
	)

	// Walk the RIFF chunks; we only need "fmt " and "data".
	for off := 12; off+8 <= len(data); {
		id := string(data[off : off+4])
		size := int(binary.LittleEndian.Uint32(data[off+4 : off+8]))
		body := off + 8
		if body+size > len(data) {
			return nil, fmt.Errorf("whisper: truncated %q chunk", id)
		}

		switch id {
		case "fmt ":
			if size < 16 {
				return nil, errors.New("whisper: malformed fmt chunk")
			}
			channels = int(binary.LittleEndian.Uint16(data[body+2 : body+4]))
			rate = int(binary.LittleEndian.Uint32(data[body+4 : body+8]))
			bits = int(binary.LittleEndian.Uint16(data[body+14 : body+16]))
		case "data":
			pcm = data[body : body+size]
		}

		// Chunks are word-aligned.
		off = body + size + size%2
	}

	if pcm == nil || channels == 0 {
		return nil, errNotWAV
	}
	if bits != 16 {
		return nil, fmt.Errorf("whisper: unsupported bit depth %d, want 16-bit PCM", bits)
	}
	if rate != sampleRate {
		return nil, fmt.Errorf("whisper: unsupported sample rate %d, want %d", rate, sampleRate)
	}

	frames := len(pcm) / (2 * channels)
	mono := make([]float32, frames)
	for i := range frames {
		var sum float32
		for ch := range channels {
			idx := (i*channels + ch) * 2
			sum += float32(int16(binary.LittleEndian.Uint16(pcm[idx:idx+2]))) / 32768.0
		}
		mono[i] = sum / float32(channels)
	}
	return mono, nil
}
