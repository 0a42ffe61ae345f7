package ipa_test

import (
	"errors"
	"sync"
	"testing"

	"github.com/twilight39/IPA-Navigator/pkg/ipa"
)

func TestSimilarity_IdentityOverAlphabet(t *testing.T) {
	t.Parallel()

	s := ipa.NewScorer()
	for symbol := range ipa.Alphabet() {
		if got := s.Similarity(symbol, symbol); got != 1.0 {
			t.Errorf("Similarity(%q, %q) = %v, want 1.0", symbol, symbol, got)
		}
	}
}

func TestSimilarity_Symmetric(t *testing.T) {
	t.Parallel()

	s := ipa.NewScorer()
	alphabet := ipa.Alphabet()
	for a := range alphabet {
		for b := range alphabet {
			ab := s.Similarity(a, b)
			ba := s.Similarity(b, a)
			if ab != ba {
				t.Fatalf("Similarity(%q, %q) = %v but Similarity(%q, %q) = %v", a, b, ab, b, a, ba)
			}
			if ab < 0 || ab > 1 {
				t.Fatalf("Similarity(%q, %q) = %v, want within [0, 1]", a, b, ab)
			}
			if a != b && ab > 0.95 {
				t.Fatalf("Similarity(%q, %q) = %v, want <= 0.95 for distinct symbols", a, b, ab)
			}
		}
	}
}

func TestSimilarity_FallbackBands(t *testing.T) {
	t.Parallel()

	s := ipa.NewScorer()

	// Voicing pairs share place, manner, and airstream: high band.
	if got := s.Similarity("b", "p"); got < 0.6 {
		t.Errorf("Similarity(b, p) = %v, want >= 0.6", got)
	}

	// Same place, different manner keeps a mid/low band score.
	if got := s.Similarity("b", "m"); got < 0.3 {
		t.Errorf("Similarity(b, m) = %v, want >= 0.3", got)
	}

	// Vowel vs consonant is nearly zero.
	if got := s.Similarity("a", "p"); got != 0.05 {
		t.Errorf("Similarity(a, p) = %v, want 0.05", got)
	}

	// Unknown symbols bottom out at 0.1.
	if got := s.Similarity("<unk>", "p"); got != 0.1 {
		t.Errorf("Similarity(<unk>, p) = %v, want 0.1", got)
	}

	// Close vowels beat distant vowels.
	if s.Similarity("i", "ɪ") <= s.Similarity("i", "ɑ") {
		t.Errorf("Similarity(i, ɪ) = %v should exceed Similarity(i, ɑ) = %v",
			s.Similarity("i", "ɪ"), s.Similarity("i", "ɑ"))
	}
}

// countingMeasure is a DistanceMeasure that records how many Distance calls
// it receives.
type countingMeasure struct {
	mu    sync.Mutex
	calls int
	dist  float64
	err   error
}

func (m *countingMeasure) Distance(a, b string) (float64, error) {
	m.mu.Lock()
	m.calls++
	m.mu.Unlock()
	return m.dist, m.err
}

func (m *countingMeasure) TotalWeight() float64 { return 10 }

func TestSimilarity_DistanceMeasurePrimaryPath(t *testing.T) {
	t.Parallel()

	m := &countingMeasure{dist: 2}
	s := ipa.NewScorer(ipa.WithDistanceMeasure(m))

	// distance 2 over total weight 10 → similarity 0.8.
	if got := s.Similarity("b", "p"); got != 0.8 {
		t.Errorf("Similarity(b, p) = %v, want 0.8", got)
	}

	// Identical symbols never consult the measure.
	if got := s.Similarity("b", "b"); got != 1.0 {
		t.Errorf("Similarity(b, b) = %v, want 1.0", got)
	}

	// Distances beyond the total weight clamp to 0; tiny distances cap at 0.95.
	m2 := &countingMeasure{dist: 25}
	s2 := ipa.NewScorer(ipa.WithDistanceMeasure(m2))
	if got := s2.Similarity("b", "p"); got != 0 {
		t.Errorf("Similarity with distance > total = %v, want 0", got)
	}
	m3 := &countingMeasure{dist: 0.1}
	s3 := ipa.NewScorer(ipa.WithDistanceMeasure(m3))
	if got := s3.Similarity("b", "p"); got != 0.95 {
		t.Errorf("Similarity with near-zero distance = %v, want 0.95", got)
	}
}

func TestSimilarity_MeasureFailureFallsBack(t *testing.T) {
	t.Parallel()

	m := &countingMeasure{err: errors.New("collaborator down")}
	withMeasure := ipa.NewScorer(ipa.WithDistanceMeasure(m))
	fallbackOnly := ipa.NewScorer()

	if got, want := withMeasure.Similarity("b", "p"), fallbackOnly.Similarity("b", "p"); got != want {
		t.Errorf("Similarity(b, p) with failing measure = %v, want fallback value %v", got, want)
	}
}

func TestSimilarity_Memoized(t *testing.T) {
	t.Parallel()

	m := &countingMeasure{dist: 2}
	s := ipa.NewScorer(ipa.WithDistanceMeasure(m))

	var wg sync.WaitGroup
	for range 16 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for range 100 {
				s.Similarity("b", "p")
				s.Similarity("p", "b")
			}
		}()
	}
	wg.Wait()

	m.mu.Lock()
	calls := m.calls
	m.mu.Unlock()

	// Unordered memoization: concurrent first calls may race, but the measure
	// must not be consulted anywhere near once per lookup.
	if calls > 16 {
		t.Errorf("Distance called %d times for a single unordered pair, want <= 16", calls)
	}
}
