// Package phonetic provides sound-alike comparison for English word tokens
// using Double Metaphone phonetic encoding combined with Jaro-Winkler string
// similarity.
//
// The assessment engine uses it to reconcile word tokens that arrive from
// different collaborators: a speech backend may emit "their" where the
// transcript says "there", and the two should be treated as the same spoken
// word rather than flagged as a mismatch.
package phonetic

import (
	"strings"

	"github.com/antzucaro/matchr"
)

// Equivalent reports whether a and b plausibly denote the same spoken word.
// Two words are equivalent when they are equal ignoring case, or when their
// Double Metaphone code sets overlap (homophones such as "there"/"their").
// Comparison is case-insensitive; leading and trailing whitespace is ignored.
func Equivalent(a, b string) bool {
	a = strings.ToLower(strings.TrimSpace(a))
	b = strings.ToLower(strings.TrimSpace(b))
	if a == b {
		return true
	}
	if a == "" || b == "" {
		return false
	}
	return codesOverlap(codes(a), codes(b))
}

// Similarity returns the Jaro-Winkler similarity of a and b in [0, 1],
// case-insensitive. Useful for ranking near-misses once Equivalent has ruled
// out a sound-alike match.
func Similarity(a, b string) float64 {
	a = strings.ToLower(strings.TrimSpace(a))
	b = strings.ToLower(strings.TrimSpace(b))
	return matchr.JaroWinkler(a, b, false)
}

// codes returns the set of Double Metaphone codes for word. Empty codes
// (produced when the word is too short or contains no consonants) are
// excluded.
func codes(word string) map[string]struct{} {
	out := make(map[string]struct{}, 2)
	p, s := matchr.DoubleMetaphone(word)
	if p != "" {
		out[p] = struct{}{}
	}
	if s != "" {
		out[s] = struct{}{}
	}
	return out
}

// codesOverlap returns true if the two code sets share at least one code.
func codesOverlap(a, b map[string]struct{}) bool {
	if len(a) > len(b) {
		a, b = b, a
	}
	for code := range a {
		if _, ok := b[code]; ok {
			return true
		}
	}
	return false
}
