// Package speech defines the Aligner interface for speech-alignment backends.
//
// A speech aligner wraps a speech-to-text model with word-level timestamping
// (e.g., a WhisperX forced-alignment service or a local whisper.cpp build) and
// exposes a uniform one-shot interface: audio in, time-stamped word segments
// out. The engine treats the segments as noisy — they may contain extra,
// missing, or misrecognized words relative to the expected transcript — and
// reconciles them downstream.
//
// Implementations must be safe for concurrent use.
package speech

import "context"

// WordSegment is a single recognized word with its time boundary in audio
// seconds and the backend's recognition score.
type WordSegment struct {
	// Text is the recognized word, verbatim from the backend.
	Text string

	// Start and End delimit the word in seconds from the beginning of the
	// audio. Start <= End.
	Start float64
	End   float64

	// Score is the backend's recognition confidence in [0, 1]. May be zero
	// when the backend does not report per-word scores.
	Score float64
}

// Aligner is the abstraction over any word-alignment backend.
type Aligner interface {
	// AlignWords transcribes audio and returns recognized words in
	// chronological order with time boundaries. transcript is the expected
	// text; backends that support forced alignment use it as the alignment
	// target, others may ignore it.
	//
	// The audio payload is an encoded audio file (WAV, 16 kHz mono PCM
	// recommended). A failed call returns a nil slice and a non-nil error;
	// callers must treat that as fatal for the enclosing request.
	AlignWords(ctx context.Context, audio []byte, transcript string) ([]WordSegment, error)
}
