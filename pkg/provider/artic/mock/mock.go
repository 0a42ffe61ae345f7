// Package mock provides a configurable in-memory [artic.Measure] for tests.
package mock

import (
	"sync"

	"github.com/twilight39/IPA-Navigator/pkg/provider/artic"
)

// Measure is a mock [artic.Measure]. Distances maps unordered symbol pairs
// (lexicographically ordered keys) to distances; unlisted pairs return
// Default.
type Measure struct {
	mu    sync.Mutex
	calls int

	// Distances maps [a, b] with a <= b to a distance.
	Distances map[[2]string]float64

	// Default is returned for pairs not present in Distances.
	Default float64

	// Total is the value returned by TotalWeight.
	Total float64

	// Err, when non-nil, is returned by every Distance call.
	Err error
}

// Compile-time assertion that Measure satisfies artic.Measure.
var _ artic.Measure = (*Measure)(nil)

// Distance returns the configured distance for the unordered pair (a, b).
func (m *Measure) Distance(a, b string) (float64, error) {
	m.mu.Lock()
	m.calls++
	m.mu.Unlock()

	if m.Err != nil {
		return 0, m.Err
	}
	if a > b {
		a, b = b, a
	}
	if d, ok := m.Distances[[2]string{a, b}]; ok {
		return d, nil
	}
	return m.Default, nil
}

// TotalWeight returns the configured total weight.
func (m *Measure) TotalWeight() float64 { return m.Total }

// CallCount returns how many times Distance has been invoked.
func (m *Measure) CallCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}
