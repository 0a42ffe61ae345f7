// Package mock provides a configurable in-memory [speech.Aligner] for tests.
package mock

import (
	"context"
	"sync"

	"github.com/twilight39/IPA-Navigator/pkg/provider/speech"
)

// Aligner is a mock [speech.Aligner]. Set Segments and Err to control the
// outcome; calls are recorded for later inspection.
type Aligner struct {
	mu sync.Mutex

	// Segments is returned by each AlignWords call.
	Segments []speech.WordSegment

	// Err, when non-nil, is returned instead of Segments.
	Err error

	// Calls records the transcript of every AlignWords invocation.
	Calls []string
}

// Compile-time assertion that Aligner satisfies speech.Aligner.
var _ speech.Aligner = (*Aligner)(nil)

// AlignWords returns the configured segments or error and records the call.
func (a *Aligner) AlignWords(ctx context.Context, _ []byte, transcript string) ([]speech.WordSegment, error) {
	a.mu.Lock()
	a.Calls = append(a.Calls, transcript)
	a.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if a.Err != nil {
		return nil, a.Err
	}
	out := make([]speech.WordSegment, len(a.Segments))
	copy(out, a.Segments)
	return out, nil
}

// CallCount returns how many times AlignWords has been invoked.
func (a *Aligner) CallCount() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return len(a.Calls)
}
