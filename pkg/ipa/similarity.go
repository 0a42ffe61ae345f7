package ipa

import (
	"log/slog"
	"sync"
)

// maxNonExactSimilarity caps every non-identical pair so that 1.0 is reserved
// for exact symbol matches.
const maxNonExactSimilarity = 0.95

// DistanceMeasure is the contract for an external articulatory-distance
// collaborator. Distance returns a nonnegative weighted feature-edit distance
// between two symbols; TotalWeight is the maximum possible distance, used to
// convert distances into similarities.
//
// [pkg/provider/artic] implementations satisfy this interface.
type DistanceMeasure interface {
	Distance(a, b string) (float64, error)
	TotalWeight() float64
}

// Scorer computes articulatory similarity scores for phoneme symbol pairs.
//
// When constructed with a [DistanceMeasure], the scorer converts the
// collaborator's weighted feature-edit distance into a similarity. Without
// one — or when an individual Distance call fails — it falls back to a
// weighted Jaccard similarity over the package's own feature tables.
//
// Scores are memoized per unordered symbol pair; the analyzer calls
// [Scorer.Similarity] up to |target|×|detected| times per word, over a small
// closed alphabet. A Scorer is safe for concurrent use.
type Scorer struct {
	measure DistanceMeasure

	mu   sync.RWMutex
	memo map[[2]string]float64
}

// ScorerOption is a functional option for configuring a [Scorer].
type ScorerOption func(*Scorer)

// WithDistanceMeasure sets the external articulatory-distance collaborator.
// When nil (the default), the scorer always uses the feature fallback.
func WithDistanceMeasure(m DistanceMeasure) ScorerOption {
	return func(s *Scorer) { s.measure = m }
}

// NewScorer returns a ready-to-use [Scorer].
func NewScorer(opts ...ScorerOption) *Scorer {
	s := &Scorer{memo: make(map[[2]string]float64)}
	for _, o := range opts {
		o(s)
	}
	return s
}

// Similarity returns a score in [0, 1] for the pair (a, b). The result is
// symmetric and equals 1.0 exactly when a == b.
func (s *Scorer) Similarity(a, b string) float64 {
	if a == b {
		return 1.0
	}

	key := pairKey(a, b)

	s.mu.RLock()
	score, ok := s.memo[key]
	s.mu.RUnlock()
	if ok {
		return score
	}

	score = s.compute(a, b)

	s.mu.Lock()
	s.memo[key] = score
	s.mu.Unlock()
	return score
}

// compute scores a non-identical pair, preferring the external distance
// measure and falling back to the feature model on absence or failure.
func (s *Scorer) compute(a, b string) float64 {
	if s.measure != nil {
		d, err := s.measure.Distance(a, b)
		if err == nil {
			total := s.measure.TotalWeight()
			if total > 0 {
				return clamp(1-d/total, 0, maxNonExactSimilarity)
			}
		} else {
			slog.Debug("articulatory distance unavailable, using feature fallback",
				"a", a, "b", b, "err", err)
		}
	}
	return featureSimilarity(a, b)
}

// featureSimilarity scores a pair using the package feature tables: a
// weighted Jaccard index where core features count double, followed by a
// banded rescale that maps raw overlap onto perceptual similarity floors.
func featureSimilarity(a, b string) float64 {
	fa := featuresFor(a)
	fb := featuresFor(b)

	if len(fa) == 0 || len(fb) == 0 {
		return 0.1
	}

	_, aVowel := fa["vowel"]
	_, bVowel := fb["vowel"]
	if aVowel != bVowel {
		return 0.05
	}

	var shared, total float64
	for f := range fa {
		w := featureWeight(f)
		total += w
		if _, ok := fb[f]; ok {
			shared += w
		}
	}
	for f := range fb {
		if _, ok := fa[f]; !ok {
			total += featureWeight(f)
		}
	}
	if total == 0 {
		return 0.1
	}

	raw := shared / total
	if raw > maxNonExactSimilarity {
		raw = maxNonExactSimilarity
	}

	// Band floors: strong feature overlap should never score below the
	// perceptual tier it belongs to, however the raw ratio lands.
	switch {
	case raw > 0.7:
		return max(0.8, raw)
	case raw > 0.4:
		return max(0.6, raw)
	case raw > 0.2:
		return max(0.3, raw)
	default:
		return max(0.1, raw)
	}
}

func featureWeight(f string) float64 {
	if _, ok := coreFeatures[f]; ok {
		return 2
	}
	return 1
}

// pairKey returns the canonical unordered memoization key for (a, b).
func pairKey(a, b string) [2]string {
	if a > b {
		a, b = b, a
	}
	return [2]string{a, b}
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
