// Package panphon implements [artic.Measure] against a panphon feature-table
// service exposing weighted feature-edit distances over HTTP.
package panphon

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/twilight39/IPA-Navigator/pkg/provider/artic"
)

const defaultTimeout = 5 * time.Second

// defaultTotalWeight is the sum of panphon's standard feature weights — the
// maximum weighted edit distance between two single segments.
const defaultTotalWeight = 15.5

// Client is an HTTP [artic.Measure] backed by a panphon service. It is safe
// for concurrent use.
type Client struct {
	baseURL     string
	httpc       *http.Client
	totalWeight float64
}

// Compile-time assertion that Client satisfies artic.Measure.
var _ artic.Measure = (*Client)(nil)

// Option is a functional option for configuring a [Client].
type Option func(*Client)

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(c *http.Client) Option {
	return func(p *Client) { p.httpc = c }
}

// WithTotalWeight overrides the measure's total feature weight. Use this when
// the service is configured with non-standard feature weights.
func WithTotalWeight(w float64) Option {
	return func(p *Client) { p.totalWeight = w }
}

// New returns a [Client] that queries the panphon service at baseURL.
func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL:     baseURL,
		httpc:       &http.Client{Timeout: defaultTimeout},
		totalWeight: defaultTotalWeight,
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

type distanceRequest struct {
	A string `json:"a"`
	B string `json:"b"`
}

type distanceResponse struct {
	Distance float64 `json:"distance"`
}

// Distance queries the service for the weighted feature-edit distance between
// a and b.
func (c *Client) Distance(a, b string) (float64, error) {
	body, err := json.Marshal(distanceRequest{A: a, B: b})
	if err != nil {
		return 0, fmt.Errorf("panphon: marshal request: %w", err)
	}

	resp, err := c.httpc.Post(c.baseURL+"/distance", "application/json", bytes.NewReader(body))
	if err != nil {
		return 0, fmt.Errorf("panphon: call service: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return 0, fmt.Errorf("panphon: service returned status %d", resp.StatusCode)
	}

	var decoded distanceResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return 0, fmt.Errorf("panphon: decode response: %w", err)
	}
	if decoded.Distance < 0 {
		return 0, fmt.Errorf("panphon: service returned negative distance %f", decoded.Distance)
	}
	return decoded.Distance, nil
}

// TotalWeight returns the configured total feature weight.
func (c *Client) TotalWeight() float64 { return c.totalWeight }
