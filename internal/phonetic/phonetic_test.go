package phonetic_test

import (
	"testing"

	"github.com/twilight39/IPA-Navigator/internal/phonetic"
)

func TestEquivalent(t *testing.T) {
	t.Parallel()

	tests := []struct {
		a, b string
		want bool
	}{
		{"cat", "cat", true},
		{"Cat", "cat", true},
		{"  cat ", "cat", true},
		{"there", "their", true},
		{"to", "two", true},
		{"night", "knight", true},
		{"cat", "dog", false},
		{"cat", "mat", false},
		{"", "cat", false},
		{"", "", true},
	}

	for _, tc := range tests {
		if got := phonetic.Equivalent(tc.a, tc.b); got != tc.want {
			t.Errorf("Equivalent(%q, %q) = %v, want %v", tc.a, tc.b, got, tc.want)
		}
	}
}

func TestSimilarity_Ordering(t *testing.T) {
	t.Parallel()

	// A single-letter substitution should score higher than an unrelated word.
	near := phonetic.Similarity("sat", "mat")
	far := phonetic.Similarity("sat", "elephant")
	if near <= far {
		t.Errorf("Similarity(sat, mat) = %v should exceed Similarity(sat, elephant) = %v", near, far)
	}

	if got := phonetic.Similarity("cat", "CAT"); got != 1 {
		t.Errorf("Similarity should be case-insensitive, got %v", got)
	}
}
