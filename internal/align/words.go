package align

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/antzucaro/matchr"

	"github.com/twilight39/IPA-Navigator/pkg/provider/speech"
)

// matchThreshold is the minimum word-similarity ratio required before a
// substituted segment is accepted as the realisation of an expected word.
const matchThreshold = 0.5

// TimeInterval is a [start, end] span in audio seconds, start <= end.
type TimeInterval struct {
	Start float64 `json:"start"`
	End   float64 `json:"end"`
}

// Midpoint returns the centre of the interval.
func (t TimeInterval) Midpoint() float64 {
	return (t.Start + t.End) / 2
}

// WordToken is one expected transcript word together with the recognized
// segment matched to it, if any. WordTokens are filled during alignment and
// immutable afterwards.
type WordToken struct {
	// Expected is the transcript word at Index.
	Expected string

	// Index is the word's stable position in the expected transcript.
	Index int

	// Transcribed is the matched recognized word, empty when unmatched.
	Transcribed string

	// Confidence is 1.0 for exact matches, the similarity ratio for fuzzy
	// matches, and 0 when unmatched.
	Confidence float64

	// Interval is the matched segment's time boundary, nil when unmatched.
	Interval *TimeInterval
}

// Matched reports whether a recognized segment was aligned to this word.
func (w *WordToken) Matched() bool {
	return w.Interval != nil
}

// AlignWords aligns recognized word segments to the expected transcript
// words. The result always has exactly one token per expected word, in
// transcript order; words the recognizer missed (or matched too poorly) are
// left unmatched with confidence 0.
//
// Both sequences are compared in normalized form (lowercase, alphanumeric
// runes only). Exact runs map 1:1 with confidence 1.0. Within substituted
// runs, each expected word takes the best-scoring opposing segment — the
// earliest on ties — provided the similarity ratio exceeds 0.5. Surplus
// recognized words are ignored; duplicate expected words are handled
// positionally by the diff and never deduplicated.
func AlignWords(expected []string, segments []speech.WordSegment) []WordToken {
	tokens := make([]WordToken, len(expected))
	for i, word := range expected {
		tokens[i] = WordToken{Expected: word, Index: i}
	}

	normExpected := make([]string, len(expected))
	for i, w := range expected {
		normExpected[i] = normalizeWord(w)
	}
	normSegments := make([]string, len(segments))
	for j, s := range segments {
		normSegments[j] = normalizeWord(s.Text)
	}

	for _, op := range Diff(normExpected, normSegments) {
		switch op.Tag {
		case OpEqual:
			for k := 0; k < op.AEnd-op.AStart; k++ {
				seg := segments[op.BStart+k]
				tokens[op.AStart+k].Transcribed = seg.Text
				tokens[op.AStart+k].Confidence = 1.0
				tokens[op.AStart+k].Interval = &TimeInterval{Start: seg.Start, End: seg.End}
			}

		case OpReplace:
			for i := op.AStart; i < op.AEnd; i++ {
				bestJ := -1
				bestScore := 0.0
				for j := op.BStart; j < op.BEnd; j++ {
					if score := WordSimilarity(normExpected[i], normSegments[j]); score > bestScore {
						bestScore = score
						bestJ = j
					}
				}
				if bestJ >= 0 && bestScore > matchThreshold {
					seg := segments[bestJ]
					tokens[i].Transcribed = seg.Text
					tokens[i].Confidence = bestScore
					tokens[i].Interval = &TimeInterval{Start: seg.Start, End: seg.End}
				}
			}

			// OpInsert: surplus recognized words, no expected word to fill.
			// OpDelete: missing expected words stay unmatched.
		}
	}

	return tokens
}

// WordSimilarity returns a symmetric similarity ratio in [0, 1] between two
// normalized words: 1 minus the Levenshtein distance over the longer rune
// length. It is 1.0 exactly when the strings are equal.
func WordSimilarity(a, b string) float64 {
	if a == b {
		return 1.0
	}
	la := utf8.RuneCountInString(a)
	lb := utf8.RuneCountInString(b)
	if la == 0 || lb == 0 {
		return 0
	}
	dist := matchr.Levenshtein(a, b)
	return 1 - float64(dist)/float64(max(la, lb))
}

// normalizeWord lowercases a word and strips every non-alphanumeric rune, so
// punctuation and casing never affect alignment.
func normalizeWord(word string) string {
	var sb strings.Builder
	for _, r := range strings.ToLower(word) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			sb.WriteRune(r)
		}
	}
	return sb.String()
}
