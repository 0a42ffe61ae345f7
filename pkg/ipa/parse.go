// Package ipa provides utilities for working with International Phonetic
// Alphabet symbol streams: parsing raw phoneme strings into discrete symbol
// tokens, normalizing espeak-style token streams into canonical phonological
// symbols, and scoring the articulatory similarity of symbol pairs.
//
// The package is the phonological foundation of the alignment engine. It is
// self-contained and has no knowledge of audio timing or word alignment —
// callers feed it symbol sequences and interpret the results.
package ipa

// combiningDiacritics is the fixed set of diacritic runes that attach to the
// preceding base character during parsing: the length mark, the half-length
// mark, and the tie bar used for affricates.
var combiningDiacritics = map[rune]struct{}{
	'ː': {},
	'ˑ': {},
	'͡': {},
}

// LengthMarker is the IPA long-vowel suffix. [Normalize] attaches standalone
// occurrences to the preceding vowel and drops ones it cannot attach.
const LengthMarker = "ː"

// ParsePhonemes splits a raw phoneme string (as produced by an espeak-style
// grapheme-to-phoneme collaborator) into symbol tokens. Each token is a base
// character plus any immediately following diacritic from the combining set,
// so "ɔːl" parses to ["ɔː", "l"] while "aɪ" parses to ["a", "ɪ"] — diphthong
// merging is deferred to [Normalize].
//
// A diacritic with no preceding base character becomes its own token;
// [Normalize] decides whether to keep or drop it.
func ParsePhonemes(raw string) []string {
	var tokens []string
	for _, r := range raw {
		if _, ok := combiningDiacritics[r]; ok && len(tokens) > 0 {
			tokens[len(tokens)-1] += string(r)
			continue
		}
		tokens = append(tokens, string(r))
	}
	return tokens
}
