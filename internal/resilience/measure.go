package resilience

import (
	"github.com/twilight39/IPA-Navigator/pkg/provider/artic"
)

// BreakerMeasure wraps an [artic.Measure] with a [CircuitBreaker]. When the
// backend trips the breaker, Distance fails fast with [ErrCircuitOpen] instead
// of waiting out timeouts on every phoneme pair; callers are expected to fall
// back to their built-in feature comparison on error.
type BreakerMeasure struct {
	inner   artic.Measure
	breaker *CircuitBreaker
}

// Compile-time interface assertion.
var _ artic.Measure = (*BreakerMeasure)(nil)

// NewBreakerMeasure wraps inner with a circuit breaker.
func NewBreakerMeasure(inner artic.Measure, cfg CircuitBreakerConfig) *BreakerMeasure {
	return &BreakerMeasure{
		inner:   inner,
		breaker: NewCircuitBreaker(cfg),
	}
}

// Distance forwards to the wrapped measure through the circuit breaker.
func (m *BreakerMeasure) Distance(a, b string) (float64, error) {
	var d float64
	err := m.breaker.Execute(func() error {
		var innerErr error
		d, innerErr = m.inner.Distance(a, b)
		return innerErr
	})
	if err != nil {
		return 0, err
	}
	return d, nil
}

// TotalWeight forwards to the wrapped measure. The value is static per
// backend, so it bypasses the breaker.
func (m *BreakerMeasure) TotalWeight() float64 {
	return m.inner.TotalWeight()
}
