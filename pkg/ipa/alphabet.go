package ipa

// alphabet is the closed set of symbols the analyzer accepts from the phoneme
// recognizer: every symbol known to the feature tables plus the long variant
// of each monophthong. Recognizer output outside this set is treated as noise
// and filtered before diffing, never scored as an insertion.
var alphabet = buildAlphabet()

func buildAlphabet() map[string]struct{} {
	a := make(map[string]struct{})
	for s := range consonantIndex {
		a[s] = struct{}{}
	}
	for s := range diphthongIndex {
		a[s] = struct{}{}
	}
	for s := range vowelIndex {
		a[s] = struct{}{}
		a[s+LengthMarker] = struct{}{}
	}
	return a
}

// IsValidSymbol reports whether symbol belongs to the engine's phoneme
// alphabet.
func IsValidSymbol(symbol string) bool {
	_, ok := alphabet[symbol]
	return ok
}

// Alphabet returns a copy of the valid phoneme alphabet. The returned map is
// owned by the caller.
func Alphabet() map[string]struct{} {
	cp := make(map[string]struct{}, len(alphabet))
	for s := range alphabet {
		cp[s] = struct{}{}
	}
	return cp
}
