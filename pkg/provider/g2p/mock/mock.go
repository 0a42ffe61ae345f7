// Package mock provides a configurable in-memory [g2p.Converter] for tests.
package mock

import (
	"context"
	"strings"
	"sync"

	"github.com/twilight39/IPA-Navigator/pkg/provider/g2p"
)

// Converter is a mock [g2p.Converter]. Entries maps lowercase words to raw
// phoneme strings; unknown words fall back to the word itself so positional
// alignment is preserved.
type Converter struct {
	mu    sync.Mutex
	calls int

	// Entries maps a lowercase word to its raw phoneme string.
	Entries map[string]string

	// Err, when non-nil, is returned by every call.
	Err error
}

// Compile-time assertion that Converter satisfies g2p.Converter.
var _ g2p.Converter = (*Converter)(nil)

// WordPhonemes splits text into words and looks each up in Entries.
func (c *Converter) WordPhonemes(ctx context.Context, text string, _ g2p.Locale) ([]g2p.WordPhonemes, error) {
	c.mu.Lock()
	c.calls++
	c.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if c.Err != nil {
		return nil, c.Err
	}

	words := strings.Fields(strings.Trim(text, `.,?;`))
	out := make([]g2p.WordPhonemes, 0, len(words))
	for _, word := range words {
		phonemes, ok := c.Entries[strings.ToLower(word)]
		if !ok {
			phonemes = strings.ToLower(word)
		}
		out = append(out, g2p.WordPhonemes{Word: word, Phonemes: phonemes})
	}
	return out, nil
}

// CallCount returns how many times WordPhonemes has been invoked.
func (c *Converter) CallCount() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.calls
}
