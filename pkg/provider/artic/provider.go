// Package artic defines the Measure interface for articulatory-distance
// backends.
//
// An articulatory-distance measure computes a weighted feature-edit distance
// between two IPA symbols, as implemented by feature systems such as panphon.
// The measure is an optional collaborator: when absent or failing, the
// similarity scorer in [pkg/ipa] falls back to its built-in feature model.
package artic

// Measure is the abstraction over any articulatory-distance backend.
//
// The interface is deliberately context-free: distances over the small closed
// phoneme alphabet are memoized by the caller, so per-call deadlines belong
// to the implementation (e.g., an HTTP client timeout), not the signature.
// Implementations must be safe for concurrent use.
type Measure interface {
	// Distance returns the nonnegative weighted feature-edit distance
	// between the symbols a and b. Identical symbols have distance 0.
	Distance(a, b string) (float64, error)

	// TotalWeight returns the maximum possible distance under this measure,
	// used to rescale distances into similarity scores.
	TotalWeight() float64
}
