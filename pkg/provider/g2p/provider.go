// Package g2p defines the Converter interface for grapheme-to-phoneme
// backends.
//
// A G2P converter turns written text into the reference phoneme sequence a
// native speaker would produce — one raw IPA string per word, in word order.
// The engine normalizes these strings via [pkg/ipa] before scoring, so
// converters may emit espeak-style output verbatim.
//
// Implementations must be safe for concurrent use.
package g2p

import "context"

// Locale selects the accent used for phoneme generation.
type Locale string

const (
	// LocaleUS is General American English ("en-us").
	LocaleUS Locale = "us"

	// LocaleUK is British Received Pronunciation ("uk").
	LocaleUK Locale = "uk"
)

// IsValid reports whether l is a recognised locale.
func (l Locale) IsValid() bool {
	return l == LocaleUS || l == LocaleUK
}

// WordPhonemes pairs a transcript word with its raw reference phoneme string.
type WordPhonemes struct {
	// Word is the transcript word, punctuation-stripped.
	Word string

	// Phonemes is the raw IPA string for the word (e.g., "kæt").
	Phonemes string
}

// Converter is the abstraction over any grapheme-to-phoneme backend.
type Converter interface {
	// WordPhonemes converts text into per-word reference phoneme strings in
	// word order. The result is positionally aligned with the whitespace
	// split of text.
	WordPhonemes(ctx context.Context, text string, locale Locale) ([]WordPhonemes, error)
}
