// Package assess orchestrates a full pronunciation assessment: it fans out to
// the speech aligner and the phoneme recognizer concurrently, fetches reference
// phonemes from the grapheme-to-phoneme converter, and then scores each
// transcript word through the alignment pipeline in [internal/align].
//
// An [Engine] gates concurrent assessments with a bounded worker pool so that
// the external model services are never hit by more requests than they can
// serve. Requests beyond the pool size queue in FIFO order on the semaphore.
//
// This package lives under internal/ because it encapsulates application-private
// processing logic and is not intended to be imported by external code.
package assess

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/semaphore"

	"github.com/twilight39/IPA-Navigator/internal/align"
	"github.com/twilight39/IPA-Navigator/internal/observe"
	"github.com/twilight39/IPA-Navigator/internal/phonetic"
	"github.com/twilight39/IPA-Navigator/pkg/ipa"
	"github.com/twilight39/IPA-Navigator/pkg/provider/artic"
	"github.com/twilight39/IPA-Navigator/pkg/provider/g2p"
	"github.com/twilight39/IPA-Navigator/pkg/provider/phonerec"
	"github.com/twilight39/IPA-Navigator/pkg/provider/speech"
)

// ErrInvalidAccent is returned by [Engine.Assess] when the requested accent is
// not one of the supported locales. The check happens before any collaborator
// call, so a request with a bad accent never consumes a worker slot.
var ErrInvalidAccent = errors.New("accent must be one of: us, uk")

// defaultMaxConcurrent is the default size of the worker pool gating
// concurrent collaborator invocations.
const defaultMaxConcurrent = 3

// Request is one assessment job: the learner's recording plus the text they
// were asked to read.
type Request struct {
	// Audio is the raw recording, in whatever container the configured
	// collaborators accept (16 kHz mono WAV for the bundled providers).
	Audio []byte

	// Transcript is the text the learner read.
	Transcript string

	// Accent selects the reference pronunciation locale.
	Accent g2p.Locale
}

// WordResult is the scored outcome for a single transcript word.
type WordResult struct {
	// Word is the expected transcript word.
	Word string `json:"word"`

	// TranscribedText is the recognized word matched to this position, empty
	// when alignment found no acceptable match.
	TranscribedText string `json:"transcribed_text,omitempty"`

	// Confidence is the word-alignment confidence, nil when unmatched.
	Confidence *float64 `json:"confidence,omitempty"`

	// Timing is the matched segment's time boundary, nil when unmatched.
	Timing *align.TimeInterval `json:"time_boundary,omitempty"`

	// TargetPhonemes is the normalized reference phoneme sequence.
	TargetPhonemes []string `json:"target_phonemes"`

	// DetectedPhonemes is the recognized phoneme sequence scored against the
	// reference, after alphabet filtering.
	DetectedPhonemes []string `json:"detected_phonemes"`

	// Phonemes holds the per-phoneme classification.
	Phonemes []align.PhonemeResult `json:"phonemes"`

	// Accuracy is the word-level pronunciation accuracy in [0, 1].
	Accuracy float64 `json:"word_accuracy"`
}

// Result is the outcome of one [Engine.Assess] call.
type Result struct {
	// ID uniquely identifies the assessment. It doubles as the storage key
	// when a recorder is configured.
	ID string `json:"id"`

	// Transcript echoes the assessed text.
	Transcript string `json:"transcript"`

	// Accent echoes the reference locale.
	Accent g2p.Locale `json:"accent"`

	// OverallAccuracy is the mean word accuracy over words with a nonempty
	// reference sequence, 0.0 when no word qualifies.
	OverallAccuracy float64 `json:"overall_accuracy"`

	// OverallConfidence is the mean word-alignment confidence over matched
	// words, 0.0 when no word was matched.
	OverallConfidence float64 `json:"overall_confidence"`

	// TotalWords is the number of scored words.
	TotalWords int `json:"total_words"`

	// Words holds one entry per scored transcript word, in transcript order.
	Words []WordResult `json:"word_results"`

	// CreatedAt is the assessment completion time in UTC.
	CreatedAt time.Time `json:"created_at"`
}

// Recorder persists finished assessments. Implementations must tolerate
// concurrent calls. A nil Recorder on the engine disables persistence.
type Recorder interface {
	SaveAssessment(ctx context.Context, res *Result) error
}

// Engine runs pronunciation assessments against a fixed set of collaborator
// providers. It is safe for concurrent use; concurrent [Engine.Assess] calls
// beyond the configured pool size queue on an internal semaphore.
type Engine struct {
	aligner    speech.Aligner
	recognizer phonerec.Recognizer
	converter  g2p.Converter

	scorer   *ipa.Scorer
	analyzer *align.Analyzer
	sem      *semaphore.Weighted
	recorder Recorder
	metrics  *observe.Metrics
	logger   *slog.Logger
}

// Option customises an [Engine] created by [NewEngine].
type Option func(*Engine)

// WithMeasure routes phoneme similarity through the given articulatory
// distance measure. Without it (or when a per-pair call fails) the scorer
// falls back to its built-in feature comparison.
func WithMeasure(m artic.Measure) Option {
	return func(e *Engine) {
		e.scorer = ipa.NewScorer(ipa.WithDistanceMeasure(m))
	}
}

// WithMaxConcurrent sets the worker pool size gating concurrent collaborator
// invocations. Values below 1 are ignored.
func WithMaxConcurrent(n int64) Option {
	return func(e *Engine) {
		if n >= 1 {
			e.sem = semaphore.NewWeighted(n)
		}
	}
}

// WithRecorder persists every finished assessment through r. A persistence
// failure is logged and does not fail the assessment.
func WithRecorder(r Recorder) Option {
	return func(e *Engine) {
		e.recorder = r
	}
}

// WithMetrics overrides the metrics instance. Intended for tests that need an
// isolated meter provider.
func WithMetrics(m *observe.Metrics) Option {
	return func(e *Engine) {
		e.metrics = m
	}
}

// WithLogger overrides the logger, which defaults to [slog.Default].
func WithLogger(l *slog.Logger) Option {
	return func(e *Engine) {
		e.logger = l
	}
}

// NewEngine creates an assessment engine wired to the three mandatory
// collaborators. See the With* options for the optional articulatory measure,
// persistence, and pool sizing.
func NewEngine(aligner speech.Aligner, recognizer phonerec.Recognizer, converter g2p.Converter, opts ...Option) *Engine {
	e := &Engine{
		aligner:    aligner,
		recognizer: recognizer,
		converter:  converter,
		scorer:     ipa.NewScorer(),
		sem:        semaphore.NewWeighted(defaultMaxConcurrent),
		metrics:    observe.DefaultMetrics(),
		logger:     slog.Default(),
	}
	for _, o := range opts {
		o(e)
	}
	e.analyzer = align.NewAnalyzer(e.scorer)
	return e
}

// Assess runs the full pipeline for one request.
//
// The speech aligner and the phoneme recognizer run concurrently; either
// failure aborts the request. The grapheme-to-phoneme lookup follows, and each
// transcript word is then normalized, windowed against the phoneme timeline,
// and scored. A degraded alignment (unmatched words, short spans) is not an
// error — it simply scores low.
//
// Assess respects context cancellation while queueing for a worker slot and on
// all collaborator calls.
func (e *Engine) Assess(ctx context.Context, req Request) (*Result, error) {
	if !req.Accent.IsValid() {
		return nil, fmt.Errorf("assess: accent %q: %w", req.Accent, ErrInvalidAccent)
	}

	if err := e.sem.Acquire(ctx, 1); err != nil {
		return nil, fmt.Errorf("assess: acquire worker slot: %w", err)
	}
	defer e.sem.Release(1)

	e.metrics.ActiveAssessments.Add(ctx, 1)
	defer e.metrics.ActiveAssessments.Add(ctx, -1)
	start := time.Now()

	var (
		segments []speech.WordSegment
		timeline []phonerec.PhonemeEvent
	)

	eg, egCtx := errgroup.WithContext(ctx)

	// ── goroutine 1: word-level alignment ────────────────────────────────────
	eg.Go(func() error {
		t0 := time.Now()
		segs, err := e.aligner.AlignWords(egCtx, req.Audio, req.Transcript)
		e.metrics.ObserveCollaborator(egCtx, "speech", time.Since(t0), err)
		if err != nil {
			return fmt.Errorf("assess: align words: %w", err)
		}
		segments = segs
		return nil
	})

	// ── goroutine 2: phoneme timeline ────────────────────────────────────────
	eg.Go(func() error {
		t0 := time.Now()
		events, err := e.recognizer.RecognizePhonemes(egCtx, req.Audio)
		e.metrics.ObserveCollaborator(egCtx, "phonerec", time.Since(t0), err)
		if err != nil {
			return fmt.Errorf("assess: recognize phonemes: %w", err)
		}
		timeline = events
		return nil
	})

	if err := eg.Wait(); err != nil {
		return nil, err
	}

	t0 := time.Now()
	refs, err := e.converter.WordPhonemes(ctx, req.Transcript, req.Accent)
	e.metrics.ObserveCollaborator(ctx, "g2p", time.Since(t0), err)
	if err != nil {
		return nil, fmt.Errorf("assess: reference phonemes: %w", err)
	}

	res := e.score(ctx, req, segments, timeline, refs)

	if e.recorder != nil {
		if err := e.recorder.SaveAssessment(ctx, res); err != nil {
			e.logger.Error("failed to persist assessment",
				"assessment_id", res.ID,
				"error", err,
			)
		}
	}

	e.metrics.AssessDuration.Record(ctx, time.Since(start).Seconds())
	return res, nil
}

// score runs the per-word pipeline over the gathered collaborator outputs and
// aggregates the result. It performs no I/O.
func (e *Engine) score(ctx context.Context, req Request, segments []speech.WordSegment, timeline []phonerec.PhonemeEvent, refs []g2p.WordPhonemes) *Result {
	expected := strings.Fields(req.Transcript)
	tokens := align.AlignWords(expected, segments)

	words := make([]WordResult, 0, len(tokens))
	for i, tok := range tokens {
		if i >= len(refs) {
			e.logger.Warn("no reference phonemes for trailing words",
				"word", tok.Expected,
				"index", tok.Index,
			)
			break
		}
		ref := refs[i]
		if !phonetic.Equivalent(strings.Trim(tok.Expected, ".,?;"), ref.Word) {
			e.logger.Warn("reference word differs from transcript word",
				"index", tok.Index,
				"transcript_word", tok.Expected,
				"reference_word", ref.Word,
			)
		}

		target := ipa.Normalize(ipa.ParsePhonemes(ref.Phonemes))

		var span []phonerec.PhonemeEvent
		if tok.Matched() {
			span = align.ExtractSpan(timeline, tok.Interval, len(target))
		}
		analysis := e.analyzer.AnalyzeWord(target, span)

		wr := WordResult{
			Word:             tok.Expected,
			TargetPhonemes:   analysis.Target,
			DetectedPhonemes: analysis.Detected,
			Phonemes:         analysis.Phonemes,
			Accuracy:         analysis.Accuracy,
		}
		if tok.Matched() {
			conf := tok.Confidence
			wr.TranscribedText = tok.Transcribed
			wr.Confidence = &conf
			wr.Timing = tok.Interval
		}
		words = append(words, wr)
		e.metrics.WordsScored.Add(ctx, 1)
	}

	res := &Result{
		ID:         uuid.NewString(),
		Transcript: req.Transcript,
		Accent:     req.Accent,
		TotalWords: len(words),
		Words:      words,
		CreatedAt:  time.Now().UTC(),
	}

	var accuracySum, confidenceSum float64
	var scored, matched int
	for _, w := range words {
		if len(w.TargetPhonemes) > 0 {
			accuracySum += w.Accuracy
			scored++
		}
		if w.Confidence != nil {
			confidenceSum += *w.Confidence
			matched++
		}
	}
	if scored > 0 {
		res.OverallAccuracy = accuracySum / float64(scored)
	}
	if matched > 0 {
		res.OverallConfidence = confidenceSum / float64(matched)
	}
	return res
}
