// Package mock provides a configurable in-memory [phonerec.Recognizer] for
// tests.
package mock

import (
	"context"
	"sync"

	"github.com/twilight39/IPA-Navigator/pkg/provider/phonerec"
)

// Recognizer is a mock [phonerec.Recognizer]. Set Events and Err to control
// the outcome; the call count is recorded for later inspection.
type Recognizer struct {
	mu    sync.Mutex
	calls int

	// Events is returned by each RecognizePhonemes call.
	Events []phonerec.PhonemeEvent

	// Err, when non-nil, is returned instead of Events.
	Err error
}

// Compile-time assertion that Recognizer satisfies phonerec.Recognizer.
var _ phonerec.Recognizer = (*Recognizer)(nil)

// RecognizePhonemes returns the configured events or error.
func (r *Recognizer) RecognizePhonemes(ctx context.Context, _ []byte) ([]phonerec.PhonemeEvent, error) {
	r.mu.Lock()
	r.calls++
	r.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if r.Err != nil {
		return nil, r.Err
	}
	out := make([]phonerec.PhonemeEvent, len(r.Events))
	copy(out, r.Events)
	return out, nil
}

// CallCount returns how many times RecognizePhonemes has been invoked.
func (r *Recognizer) CallCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.calls
}
