// Package wav2vec implements [phonerec.Recognizer] against a wav2vec2 model
// server speaking the JSON-over-HTTP protocol of the phoneme-alignment
// sidecar: audio is posted base64-encoded and the response carries the CTC
// phoneme timeline.
package wav2vec

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/twilight39/IPA-Navigator/pkg/provider/phonerec"
)

const defaultTimeout = 60 * time.Second

// Client is an HTTP [phonerec.Recognizer] backed by a wav2vec2 model server.
// It is safe for concurrent use.
type Client struct {
	baseURL string
	httpc   *http.Client
}

// Compile-time assertion that Client satisfies phonerec.Recognizer.
var _ phonerec.Recognizer = (*Client)(nil)

// Option is a functional option for configuring a [Client].
type Option func(*Client)

// WithHTTPClient replaces the underlying HTTP client. The default uses a
// 60 second timeout sized for model inference on CPU hosts.
func WithHTTPClient(c *http.Client) Option {
	return func(w *Client) { w.httpc = c }
}

// New returns a [Client] that posts recognition requests to baseURL
// (e.g., "http://localhost:8002").
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

type recognizeRequest struct {
	AudioData string `json:"audio_data"`
}

type recognizeResponse struct {
	Phonemes []struct {
		Phoneme    string  `json:"phoneme"`
		Start      float64 `json:"start"`
		End        float64 `json:"end"`
		Confidence float64 `json:"confidence"`
	} `json:"phonemes"`
}

// RecognizePhonemes posts the audio to the model server and decodes the
// returned phoneme timeline. Any non-200 response is an error.
func (c *Client) RecognizePhonemes(ctx context.Context, audio []byte) ([]phonerec.PhonemeEvent, error) {
	body, err := json.Marshal(recognizeRequest{
		AudioData: base64.StdEncoding.EncodeToString(audio),
	})
	if err != nil {
		return nil, fmt.Errorf("wav2vec: marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/phoneme_align", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("wav2vec: build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpc.Do(req)
	if err != nil {
		return nil, fmt.Errorf("wav2vec: call model server: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("wav2vec: model server returned status %d", resp.StatusCode)
	}

	var decoded recognizeResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return nil, fmt.Errorf("wav2vec: decode response: %w", err)
	}

	events := make([]phonerec.PhonemeEvent, len(decoded.Phonemes))
	for i, p := range decoded.Phonemes {
		events[i] = phonerec.PhonemeEvent{
			Symbol:     p.Phoneme,
			Start:      p.Start,
			End:        p.End,
			Confidence: p.Confidence,
		}
	}
	return events, nil
}
