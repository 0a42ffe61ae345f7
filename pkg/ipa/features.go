package ipa

import "strings"

// The articulatory feature model is table-driven: each named feature owns the
// set of symbols that carry it, and a symbol's feature set is the union of
// every feature whose set contains it. The tables cover the espeak English
// phoneme inventory plus the most common cross-linguistic IPA consonants so
// that recognizer noise still lands on a meaningful feature set.

// consonantFeatures maps place, manner, and voicing features to the symbols
// that carry them.
var consonantFeatures = map[string][]string{
	// Place of articulation.
	"bilabial":     {"p", "b", "m", "ʙ", "ɸ", "β"},
	"labiodental":  {"f", "v", "ʋ", "ɱ"},
	"dental":       {"θ", "ð"},
	"alveolar":     {"t", "d", "s", "z", "n", "l", "r", "ɾ", "ɹ", "ɬ", "ɮ", "ts", "dz"},
	"postalveolar": {"ʃ", "ʒ", "tʃ", "dʒ"},
	"retroflex":    {"ʈ", "ɖ", "ʂ", "ʐ", "ɳ", "ɻ", "ɽ", "ɭ"},
	"palatal":      {"c", "ɟ", "ç", "ʝ", "ɲ", "j", "ʎ"},
	"velar":        {"k", "ɡ", "g", "x", "ɣ", "ŋ", "ɰ"},
	"uvular":       {"q", "ɢ", "χ", "ʁ", "ɴ", "ʀ"},
	"glottal":      {"ʔ", "h", "ɦ"},
	"pharyngeal":   {"ħ", "ʕ"},
	"labiovelar":   {"w", "ʍ"},

	// Manner of articulation.
	"plosive":     {"p", "b", "t", "d", "ʈ", "ɖ", "c", "ɟ", "k", "ɡ", "g", "q", "ɢ", "ʔ"},
	"nasal":       {"m", "ɱ", "n", "ɳ", "ɲ", "ŋ", "ɴ"},
	"trill":       {"ʙ", "r", "ʀ"},
	"tap":         {"ɾ", "ɽ"},
	"fricative":   {"ɸ", "β", "f", "v", "θ", "ð", "s", "z", "ʃ", "ʒ", "ʂ", "ʐ", "ç", "ʝ", "x", "ɣ", "χ", "ʁ", "ħ", "ʕ", "h", "ɦ", "ɬ", "ɮ", "ʍ"},
	"affricate":   {"tʃ", "dʒ", "ts", "dz"},
	"approximant": {"ʋ", "ɹ", "ɻ", "j", "ɰ", "w"},
	"lateral":     {"l", "ɭ", "ʎ", "ɬ", "ɮ"},
	"sibilant":    {"s", "z", "ʃ", "ʒ", "ʂ", "ʐ", "tʃ", "dʒ", "ts", "dz"},

	// Voicing.
	"voiced": {
		"b", "d", "ɖ", "ɟ", "ɡ", "g", "ɢ", "m", "ɱ", "n", "ɳ", "ɲ", "ŋ", "ɴ",
		"ʙ", "r", "ʀ", "ɾ", "ɽ", "β", "v", "ð", "z", "ʒ", "ʐ", "ʝ", "ɣ", "ʁ",
		"ʕ", "ɦ", "ɮ", "ʋ", "ɹ", "ɻ", "j", "ɰ", "w", "l", "ɭ", "ʎ", "dʒ", "dz",
	},
	"voiceless": {
		"p", "t", "ʈ", "c", "k", "q", "ʔ", "ɸ", "f", "θ", "s", "ʃ", "ʂ", "ç",
		"x", "χ", "ħ", "h", "ɬ", "tʃ", "ts", "ʍ",
	},
}

// vowelFeatures maps height, backness, rounding, tenseness, and rhotic
// features to the monophthong symbols that carry them. Length is not listed
// here: featuresFor derives long/short from a trailing length marker.
var vowelFeatures = map[string][]string{
	// Height.
	"close":     {"i", "y", "ɨ", "ʉ", "ɯ", "u"},
	"nearclose": {"ɪ", "ʏ", "ʊ"},
	"closemid":  {"e", "ø", "ɘ", "ɵ", "ɤ", "o"},
	"mid":       {"ə", "ɚ"},
	"openmid":   {"ɛ", "œ", "ɜ", "ɝ", "ɞ", "ʌ", "ɔ"},
	"nearopen":  {"æ", "ɐ"},
	"open":      {"a", "ɶ", "ɑ", "ɒ"},

	// Backness.
	"front":   {"i", "y", "ɪ", "ʏ", "e", "ø", "ɛ", "œ", "æ", "a", "ɶ"},
	"central": {"ɨ", "ʉ", "ɘ", "ɵ", "ə", "ɚ", "ɜ", "ɝ", "ɞ", "ɐ"},
	"back":    {"ɯ", "u", "ʊ", "ɤ", "o", "ʌ", "ɔ", "ɑ", "ɒ"},

	// Rounding.
	"rounded":   {"y", "ʉ", "ʏ", "ʊ", "ø", "ɵ", "œ", "ɞ", "u", "o", "ɔ", "ɒ", "ɶ"},
	"unrounded": {"i", "ɨ", "ɯ", "ɪ", "e", "ɘ", "ɤ", "ə", "ɚ", "ɛ", "ɜ", "ɝ", "ʌ", "æ", "ɐ", "a", "ɑ"},

	// Tenseness.
	"tense": {"i", "y", "u", "e", "o", "ɑ"},
	"lax":   {"ɪ", "ʏ", "ʊ", "ɛ", "ʌ", "ɔ", "ə", "æ", "ɐ"},

	// Rhoticity and reduction.
	"rhotic":  {"ɚ", "ɝ"},
	"reduced": {"ə", "ɚ", "ɨ"},
}

// diphthongFeatures classifies the merged diphthong symbols by glide
// direction.
var diphthongFeatures = map[string][]string{
	"closing":   {"aɪ", "aʊ", "eɪ", "ɔɪ", "oʊ", "əʊ"},
	"centering": {"ɪə", "eə", "ʊə"},
}

// coreFeatures are the features that count double in the weighted Jaccard
// similarity: the major manner classes, the primary place axes, the vowel
// position axes, and voicing. Everything else carries weight 1.
var coreFeatures = map[string]struct{}{
	"plosive":     {},
	"nasal":       {},
	"fricative":   {},
	"affricate":   {},
	"approximant": {},
	"lateral":     {},
	"bilabial":    {},
	"alveolar":    {},
	"velar":       {},
	"close":       {},
	"open":        {},
	"front":       {},
	"back":        {},
	"voiced":      {},
	"voiceless":   {},
}

// featureSet is a set of named articulatory features.
type featureSet map[string]struct{}

// symbol→feature indexes built once from the tables above.
var (
	consonantIndex = invertTable(consonantFeatures)
	vowelIndex     = invertTable(vowelFeatures)
	diphthongIndex = invertTable(diphthongFeatures)
)

func invertTable(table map[string][]string) map[string]featureSet {
	index := make(map[string]featureSet)
	for feature, symbols := range table {
		for _, s := range symbols {
			if index[s] == nil {
				index[s] = make(featureSet)
			}
			index[s][feature] = struct{}{}
		}
	}
	return index
}

// featuresFor returns the articulatory feature set of symbol, including the
// coarse "consonant" or "vowel" tag when any table membership is found. A
// trailing length marker on a vowel contributes the "long" feature; plain
// vowels get "short". Unknown symbols yield an empty set.
func featuresFor(symbol string) featureSet {
	fs := make(featureSet)

	if cf, ok := consonantIndex[symbol]; ok {
		for f := range cf {
			fs[f] = struct{}{}
		}
		fs["pulmonic"] = struct{}{}
		fs["consonant"] = struct{}{}
		return fs
	}

	if df, ok := diphthongIndex[symbol]; ok {
		for f := range df {
			fs[f] = struct{}{}
		}
		fs["diphthong"] = struct{}{}
		fs["vowel"] = struct{}{}
		return fs
	}

	base, long := strings.CutSuffix(symbol, LengthMarker)
	if vf, ok := vowelIndex[base]; ok {
		for f := range vf {
			fs[f] = struct{}{}
		}
		if long {
			fs["long"] = struct{}{}
		} else {
			fs["short"] = struct{}{}
		}
		fs["vowel"] = struct{}{}
	}
	return fs
}

// IsVowel reports whether symbol is a monophthong (with or without a length
// marker) or a merged diphthong.
func IsVowel(symbol string) bool {
	if _, ok := diphthongIndex[symbol]; ok {
		return true
	}
	base, _ := strings.CutSuffix(symbol, LengthMarker)
	_, ok := vowelIndex[base]
	return ok
}

// IsConsonant reports whether symbol appears in the consonant feature tables.
func IsConsonant(symbol string) bool {
	_, ok := consonantIndex[symbol]
	return ok
}
