// Package whisper implements [speech.Aligner] using the whisper.cpp CGO
// bindings, eliminating the HTTP model-server hop entirely. The whisper.cpp
// static library (libwhisper.a) and headers (whisper.h) must be available at
// link time via LIBRARY_PATH and C_INCLUDE_PATH environment variables.
//
// The model is loaded once at construction and shared across all requests;
// each [Provider.AlignWords] call creates its own whisper context, so
// concurrent calls do not interfere.
package whisper

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	whisperlib "github.com/ggerganov/whisper.cpp/bindings/go/pkg/whisper"

	"github.com/twilight39/IPA-Navigator/pkg/provider/speech"
)

// Provider is a local [speech.Aligner] backed by whisper.cpp with token-level
// timestamps enabled.
type Provider struct {
	model    whisperlib.Model
	language string
}

// Compile-time assertion that Provider satisfies speech.Aligner.
var _ speech.Aligner = (*Provider)(nil)

// Option is a functional option for configuring a Provider.
type Option func(*Provider)

// WithLanguage sets the transcription language code (e.g., "en").
// Defaults to "en".
func WithLanguage(lang string) Option {
	return func(p *Provider) { p.language = lang }
}

// New creates a Provider that loads the whisper.cpp model from the given
// file path. The caller must call Close when the provider is no longer
// needed.
func New(modelPath string, opts ...Option) (*Provider, error) {
	if modelPath == "" {
		return nil, errors.New("whisper: modelPath must not be empty")
	}
	model, err := whisperlib.New(modelPath)
	if err != nil {
		return nil, fmt.Errorf("whisper: load model %q: %w", modelPath, err)
	}

	p := &Provider{
		model:    model,
		language: "en",
	}
	for _, o := range opts {
		o(p)
	}
	return p, nil
}

// Close releases the whisper model.
func (p *Provider) Close() error {
	if p.model != nil {
		return p.model.Close()
	}
	return nil
}

// AlignWords decodes the WAV payload, runs whisper.cpp inference with token
// timestamps, and groups token pieces into time-stamped word segments.
//
// The transcript parameter is unused: whisper.cpp performs free transcription
// rather than forced alignment, and the engine's word aligner reconciles the
// output against the expected transcript downstream.
func (p *Provider) AlignWords(ctx context.Context, audio []byte, _ string) ([]speech.WordSegment, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("whisper: context already cancelled: %w", err)
	}

	samples, err := decodeWAV(audio)
	if err != nil {
		return nil, err
	}

	// Each whisper context is NOT thread-safe, but the model can be shared
	// across goroutines.
	wctx, err := p.model.NewContext()
	if err != nil {
		return nil, fmt.Errorf("whisper: create context: %w", err)
	}
	if err := wctx.SetLanguage(p.language); err != nil {
		slog.Warn("whisper: failed to set language, using default", "language", p.language, "err", err)
	}
	wctx.SetTokenTimestamps(true)

	if err := wctx.Process(samples, nil, nil, nil); err != nil {
		return nil, fmt.Errorf("whisper: process audio: %w", err)
	}

	var segments []speech.WordSegment
	for {
		segment, err := wctx.NextSegment()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("whisper: read segment: %w", err)
		}
		segments = appendWordSegments(segments, wctx, segment)
	}
	return segments, nil
}

// appendWordSegments groups a whisper segment's token pieces into words. A
// token whose text begins with a space opens a new word; special tokens
// (BEG, EOT, timestamps) are skipped. Word scores are the mean token
// probability.
func appendWordSegments(out []speech.WordSegment, wctx whisperlib.Context, segment whisperlib.Segment) []speech.WordSegment {
	var (
		text       strings.Builder
		start, end time.Duration
		scoreSum   float64
		tokens     int
	)

	flush := func() {
		word := strings.TrimSpace(text.String())
		if word != "" && tokens > 0 {
			out = append(out, speech.WordSegment{
				Text:  word,
				Start: start.Seconds(),
				End:   end.Seconds(),
				Score: scoreSum / float64(tokens),
			})
		}
		text.Reset()
		scoreSum = 0
		tokens = 0
	}

	for _, tok := range segment.Tokens {
		if !wctx.IsText(tok) {
			continue
		}
		if strings.HasPrefix(tok.Text, " ") && text.Len() > 0 {
			flush()
		}
		if tokens == 0 {
			start = tok.Start
		}
		end = tok.End
		text.WriteString(tok.Text)
		scoreSum += float64(tok.P)
		tokens++
	}
	flush()
	return out
}
