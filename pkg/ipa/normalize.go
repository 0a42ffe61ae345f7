package ipa

// diphthongMerges maps adjacent token pairs onto the single diphthong symbol
// they represent. Espeak emits diphthongs as two separate characters; the
// recognizer vocabulary and the feature tables treat them as one unit.
var diphthongMerges = map[[2]string]string{
	{"a", "ɪ"}: "aɪ",
	{"a", "ʊ"}: "aʊ",
	{"e", "ɪ"}: "eɪ",
	{"ɔ", "ɪ"}: "ɔɪ",
	{"o", "ʊ"}: "oʊ",
	{"ə", "ʊ"}: "əʊ",
	{"ɪ", "ə"}: "ɪə",
	{"ʊ", "ə"}: "ʊə",
}

// Normalize rewrites a parsed token stream into canonical phonological
// symbols. It walks the stream left to right, consuming one or two tokens per
// step in priority order:
//
//  1. Current + next form a known diphthong pair → emit the merged symbol.
//  2. Next is a standalone length marker and current is a vowel → emit
//     current with the marker attached.
//  3. Current is itself a standalone length marker → drop it.
//  4. Otherwise emit current unchanged.
//
// A final post-pass applies English unstressed word-final /i/ lengthening:
// a trailing "i" directly preceded by another vowel is rewritten to "iː".
func Normalize(tokens []string) []string {
	out := make([]string, 0, len(tokens))
	for i := 0; i < len(tokens); {
		cur := tokens[i]

		if i+1 < len(tokens) {
			next := tokens[i+1]
			if merged, ok := diphthongMerges[[2]string{cur, next}]; ok {
				out = append(out, merged)
				i += 2
				continue
			}
			if next == LengthMarker && IsVowel(cur) {
				out = append(out, cur+LengthMarker)
				i += 2
				continue
			}
		}

		if cur == LengthMarker {
			i++
			continue
		}

		out = append(out, cur)
		i++
	}

	if n := len(out); n >= 2 && out[n-1] == "i" && IsVowel(out[n-2]) {
		out[n-1] = "iː"
	}

	return out
}
