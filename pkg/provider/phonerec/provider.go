// Package phonerec defines the Recognizer interface for phoneme-recognition
// backends.
//
// A phoneme recognizer wraps a frame-level acoustic model (e.g., a wav2vec2
// CTC model fine-tuned on espeak phonemes) and returns the global phoneme
// event timeline of an utterance: every recognized IPA symbol with its time
// boundary and confidence, in chronological order. The engine slices this
// timeline per word using the word aligner's time boundaries.
//
// Implementations must be safe for concurrent use.
package phonerec

import "context"

// PhonemeEvent is one recognized phoneme occurrence on the audio timeline.
type PhonemeEvent struct {
	// Symbol is the IPA unit the model emitted. May be multi-character
	// (affricates, diphthongs).
	Symbol string

	// Start and End delimit the event in seconds from the beginning of the
	// audio. Start <= End.
	Start float64
	End   float64

	// Confidence is the model's mean frame probability for this event,
	// in [0, 1].
	Confidence float64
}

// Recognizer is the abstraction over any phoneme-recognition backend.
type Recognizer interface {
	// RecognizePhonemes transcribes audio into a chronological phoneme event
	// timeline. The audio payload is an encoded audio file (WAV, 16 kHz mono
	// PCM recommended). A failed call returns a nil slice and a non-nil
	// error; callers must treat that as fatal for the enclosing request.
	RecognizePhonemes(ctx context.Context, audio []byte) ([]PhonemeEvent, error)
}
