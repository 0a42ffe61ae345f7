package align

import (
	"github.com/twilight39/IPA-Navigator/pkg/ipa"
	"github.com/twilight39/IPA-Navigator/pkg/provider/phonerec"
)

// PhonemeStatus classifies one unit of a word's phoneme diff.
type PhonemeStatus string

const (
	// StatusCorrect means the detected phoneme equals the target phoneme.
	StatusCorrect PhonemeStatus = "correct"

	// StatusSubstitution means a different phoneme was detected in the
	// target's position; its accuracy is the articulatory similarity.
	StatusSubstitution PhonemeStatus = "substitution"

	// StatusInsertion means a phoneme was detected with no target
	// counterpart.
	StatusInsertion PhonemeStatus = "insertion"

	// StatusDeletion means a target phoneme was not detected at all.
	StatusDeletion PhonemeStatus = "deletion"
)

// PhonemeResult is the classification of a single diff unit. It is immutable
// and owned by its [WordAnalysis].
type PhonemeResult struct {
	// Position is the index in the target sequence; nil for insertions,
	// which have no target counterpart.
	Position *int `json:"position,omitempty"`

	// Target is the reference symbol, empty for insertions.
	Target string `json:"target,omitempty"`

	// Detected is the recognized symbol, empty for deletions.
	Detected string `json:"detected,omitempty"`

	// Status classifies the unit.
	Status PhonemeStatus `json:"status"`

	// Accuracy is 1.0 for correct units, the articulatory similarity for
	// substitutions, and 0 for insertions and deletions.
	Accuracy float64 `json:"accuracy"`

	// Confidence is the recognizer's confidence for the detected event; nil
	// when no event backs this unit.
	Confidence *float64 `json:"confidence,omitempty"`

	// Timing is the detected event's time boundary; nil when no event backs
	// this unit.
	Timing *TimeInterval `json:"timing,omitempty"`
}

// WordAnalysis is the per-phoneme scoring of one word.
type WordAnalysis struct {
	// Target is the normalized reference phoneme sequence.
	Target []string

	// Detected is the filtered detected symbol sequence that was diffed
	// against Target.
	Detected []string

	// Phonemes holds one result per diff unit. Every index of Target and
	// Detected is accounted for exactly once.
	Phonemes []PhonemeResult

	// Accuracy is (correct + Σ substitution similarity) / len(Target),
	// or 0 when Target is empty.
	Accuracy float64
}

// Analyzer classifies detected phonemes against reference sequences using
// the shared similarity scorer. It is stateless apart from the scorer's
// memoization cache and safe for concurrent use.
type Analyzer struct {
	scorer *ipa.Scorer
}

// NewAnalyzer returns an [Analyzer] scoring substitutions with scorer.
func NewAnalyzer(scorer *ipa.Scorer) *Analyzer {
	return &Analyzer{scorer: scorer}
}

// AnalyzeWord diffs the normalized target sequence of a word against the
// detected events extracted for it and classifies every unit.
//
// Detected events whose symbol is outside the valid phoneme alphabet are
// recognizer noise: they are dropped before the diff and never scored as
// insertions. Within a substituted run, target and detected symbols pair
// positionally; the shorter side's surplus becomes deletions or insertions.
func (a *Analyzer) AnalyzeWord(target []string, detected []phonerec.PhonemeEvent) WordAnalysis {
	events := make([]phonerec.PhonemeEvent, 0, len(detected))
	symbols := make([]string, 0, len(detected))
	for _, ev := range detected {
		if ipa.IsValidSymbol(ev.Symbol) {
			events = append(events, ev)
			symbols = append(symbols, ev.Symbol)
		}
	}

	var results []PhonemeResult
	for _, op := range Diff(target, symbols) {
		switch op.Tag {
		case OpEqual:
			for k := 0; k < op.AEnd-op.AStart; k++ {
				results = append(results, detectedResult(
					op.AStart+k, target[op.AStart+k], events[op.BStart+k], StatusCorrect, 1.0,
				))
			}

		case OpReplace:
			nTarget := op.AEnd - op.AStart
			nDetected := op.BEnd - op.BStart
			paired := min(nTarget, nDetected)

			for k := 0; k < paired; k++ {
				tsym := target[op.AStart+k]
				ev := events[op.BStart+k]
				results = append(results, detectedResult(
					op.AStart+k, tsym, ev, StatusSubstitution, a.scorer.Similarity(tsym, ev.Symbol),
				))
			}
			for k := paired; k < nDetected; k++ {
				results = append(results, insertionResult(events[op.BStart+k]))
			}
			for k := paired; k < nTarget; k++ {
				results = append(results, deletionResult(op.AStart+k, target[op.AStart+k]))
			}

		case OpInsert:
			for k := op.BStart; k < op.BEnd; k++ {
				results = append(results, insertionResult(events[k]))
			}

		case OpDelete:
			for k := op.AStart; k < op.AEnd; k++ {
				results = append(results, deletionResult(k, target[k]))
			}
		}
	}

	return WordAnalysis{
		Target:   target,
		Detected: symbols,
		Phonemes: results,
		Accuracy: wordAccuracy(target, results),
	}
}

// wordAccuracy reduces the classified units to a single word score.
func wordAccuracy(target []string, results []PhonemeResult) float64 {
	if len(target) == 0 {
		return 0
	}
	var sum float64
	for _, r := range results {
		switch r.Status {
		case StatusCorrect, StatusSubstitution:
			sum += r.Accuracy
		}
	}
	return sum / float64(len(target))
}

func detectedResult(pos int, target string, ev phonerec.PhonemeEvent, status PhonemeStatus, accuracy float64) PhonemeResult {
	confidence := ev.Confidence
	return PhonemeResult{
		Position:   &pos,
		Target:     target,
		Detected:   ev.Symbol,
		Status:     status,
		Accuracy:   accuracy,
		Confidence: &confidence,
		Timing:     &TimeInterval{Start: ev.Start, End: ev.End},
	}
}

func insertionResult(ev phonerec.PhonemeEvent) PhonemeResult {
	confidence := ev.Confidence
	return PhonemeResult{
		Detected:   ev.Symbol,
		Status:     StatusInsertion,
		Confidence: &confidence,
		Timing:     &TimeInterval{Start: ev.Start, End: ev.End},
	}
}

func deletionResult(pos int, target string) PhonemeResult {
	return PhonemeResult{
		Position: &pos,
		Target:   target,
		Status:   StatusDeletion,
	}
}
