// Package espeak implements [g2p.Converter] against an espeak-ng phonemizer
// service: the transcript is posted together with a BCP-47 language tag and
// the response carries one space-separated phoneme string per word.
package espeak

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/twilight39/IPA-Navigator/pkg/provider/g2p"
)

const defaultTimeout = 15 * time.Second

// Client is an HTTP [g2p.Converter] backed by an espeak-ng phonemizer
// service. It is safe for concurrent use.
type Client struct {
	baseURL string
	httpc   *http.Client
}

// Compile-time assertion that Client satisfies g2p.Converter.
var _ g2p.Converter = (*Client)(nil)

// Option is a functional option for configuring a [Client].
type Option func(*Client)

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(c *http.Client) Option {
	return func(e *Client) { e.httpc = c }
}

// New returns a [Client] that posts phonemize requests to baseURL.
func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL: baseURL,
		httpc:   &http.Client{Timeout: defaultTimeout},
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

type phonemizeRequest struct {
	Text     string `json:"text"`
	Language string `json:"language"`
}

type phonemizeResponse struct {
	Phonemes string `json:"phonemes"`
}

// WordPhonemes posts the cleaned transcript to the phonemizer and pairs each
// returned phoneme word with its transcript word positionally, mirroring the
// espeak convention of one space-separated phoneme group per input word.
func (c *Client) WordPhonemes(ctx context.Context, text string, locale g2p.Locale) ([]g2p.WordPhonemes, error) {
	lang := "en-us"
	if locale == g2p.LocaleUK {
		lang = "en-gb"
	}

	cleaned := strings.ToLower(strings.Trim(text, `.,?";`))
	body, err := json.Marshal(phonemizeRequest{Text: cleaned, Language: lang})
	if err != nil {
		return nil, fmt.Errorf("espeak: marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/phonemize", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("espeak: build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpc.Do(req)
	if err != nil {
		return nil, fmt.Errorf("espeak: call phonemizer: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("espeak: phonemizer returned status %d", resp.StatusCode)
	}

	var decoded phonemizeResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return nil, fmt.Errorf("espeak: decode response: %w", err)
	}

	words := strings.Fields(strings.Trim(text, `.,?;`))
	phonemeWords := strings.Fields(decoded.Phonemes)

	out := make([]g2p.WordPhonemes, 0, len(words))
	for i, word := range words {
		wp := g2p.WordPhonemes{Word: word}
		if i < len(phonemeWords) {
			wp.Phonemes = phonemeWords[i]
		}
		out = append(out, wp)
	}
	return out, nil
}
