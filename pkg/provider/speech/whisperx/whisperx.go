// Package whisperx implements [speech.Aligner] against a WhisperX model
// server speaking the JSON-over-HTTP protocol of the aligner sidecar: the
// audio is posted base64-encoded together with the expected transcript, and
// the response carries word segments with start/end times and scores.
package whisperx

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/twilight39/IPA-Navigator/pkg/provider/speech"
)

const defaultTimeout = 60 * time.Second

// Client is an HTTP [speech.Aligner] backed by a WhisperX model server.
// It is safe for concurrent use.
type Client struct {
	baseURL string
	httpc   *http.Client
}

// Compile-time assertion that Client satisfies speech.Aligner.
var _ speech.Aligner = (*Client)(nil)

// Option is a functional option for configuring a [Client].
type Option func(*Client)

// WithHTTPClient replaces the underlying HTTP client. The default uses a
// 60 second timeout sized for model inference on CPU hosts.
func WithHTTPClient(c *http.Client) Option {
	return func(w *Client) { w.httpc = c }
}

// New returns a [Client] that posts alignment requests to baseURL
// (e.g., "http://localhost:8001").
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

type alignRequest struct {
	AudioData  string `json:"audio_data"`
	Transcript string `json:"transcript"`
}

type alignResponse struct {
	WordSegments []struct {
		Word  string  `json:"word"`
		Start float64 `json:"start"`
		End   float64 `json:"end"`
		Score float64 `json:"score"`
	} `json:"word_segments"`
}

// AlignWords posts the audio and transcript to the model server and decodes
// the returned word segments. Any non-200 response is an error.
func (c *Client) AlignWords(ctx context.Context, audio []byte, transcript string) ([]speech.WordSegment, error) {
	body, err := json.Marshal(alignRequest{
		AudioData:  base64.StdEncoding.EncodeToString(audio),
		Transcript: transcript,
	})
	if err != nil {
		return nil, fmt.Errorf("whisperx: marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/word_align", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("whisperx: build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpc.Do(req)
	if err != nil {
		return nil, fmt.Errorf("whisperx: call model server: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("whisperx: model server returned status %d", resp.StatusCode)
	}

	var decoded alignResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return nil, fmt.Errorf("whisperx: decode response: %w", err)
	}

	segments := make([]speech.WordSegment, len(decoded.WordSegments))
	for i, ws := range decoded.WordSegments {
		segments[i] = speech.WordSegment{
			Text:  ws.Word,
			Start: ws.Start,
			End:   ws.End,
			Score: ws.Score,
		}
	}
	return segments, nil
}
