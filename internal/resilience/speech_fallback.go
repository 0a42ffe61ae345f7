package resilience

import (
	"context"

	"github.com/twilight39/IPA-Navigator/pkg/provider/speech"
)

// SpeechFallback implements [speech.Aligner] with automatic failover across
// multiple alignment backends. Each backend has its own circuit breaker. The
// typical pairing is a WhisperX sidecar as primary with in-process whisper.cpp
// as fallback, so alignment survives a sidecar outage at reduced quality.
type SpeechFallback struct {
	group *FallbackGroup[speech.Aligner]
}

// Compile-time interface assertion.
var _ speech.Aligner = (*SpeechFallback)(nil)

// NewSpeechFallback creates a [SpeechFallback] with primary as the preferred
// backend.
func NewSpeechFallback(primary speech.Aligner, primaryName string, cfg FallbackConfig) *SpeechFallback {
	return &SpeechFallback{
		group: NewFallbackGroup(primary, primaryName, cfg),
	}
}

// AddFallback registers an additional aligner as a fallback.
func (f *SpeechFallback) AddFallback(name string, aligner speech.Aligner) {
	f.group.AddFallback(name, aligner)
}

// AlignWords aligns against the first healthy backend. If the primary fails,
// subsequent fallbacks are tried in registration order.
func (f *SpeechFallback) AlignWords(ctx context.Context, audio []byte, transcript string) ([]speech.WordSegment, error) {
	return ExecuteWithResult(f.group, func(a speech.Aligner) ([]speech.WordSegment, error) {
		return a.AlignWords(ctx, audio, transcript)
	})
}
