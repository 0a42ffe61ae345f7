package align

import (
	"math"
	"slices"

	"github.com/twilight39/IPA-Navigator/pkg/provider/phonerec"
)

// midpointWindow is the distance from the word midpoint (in seconds) within
// which a fallback candidate counts as in-bounds. Recognizer phoneme
// boundaries drift relative to word boundaries, so candidates this close are
// preferred wholesale over better-ranked ones further out.
const midpointWindow = 0.1

// ExtractSpan slices the global phoneme timeline down to the detected
// phonemes of one word. targetCount is the word's expected phoneme count;
// the result is chronologically ordered and never longer than targetCount.
//
// Selection is count-based: events overlapping the word interval are ranked
// by overlap duration (earliest start on ties) and the top targetCount win.
// When too few events overlap — boundary drift, clipped audio — the whole
// timeline is reconsidered by distance from the word's midpoint, preferring
// events within the in-bounds window. A nil interval, an empty timeline, or
// a non-positive targetCount yields an empty result.
func ExtractSpan(timeline []phonerec.PhonemeEvent, interval *TimeInterval, targetCount int) []phonerec.PhonemeEvent {
	if targetCount <= 0 || len(timeline) == 0 || interval == nil {
		return nil
	}

	// candidate carries a timeline position plus the sort key of the active
	// policy: overlap duration for the primary path, midpoint distance for
	// the fallback.
	type candidate struct {
		pos int
		key float64
	}

	var candidates []candidate
	for i, ev := range timeline {
		if ev.End > interval.Start && ev.Start < interval.End {
			overlap := math.Min(ev.End, interval.End) - math.Max(ev.Start, interval.Start)
			candidates = append(candidates, candidate{pos: i, key: overlap})
		}
	}

	var chosen []candidate
	if len(candidates) >= targetCount {
		// Enough overlapping events: keep the targetCount with the greatest
		// overlap, breaking ties towards the earliest start.
		slices.SortStableFunc(candidates, func(x, y candidate) int {
			if x.key != y.key {
				return cmpFloat(y.key, x.key)
			}
			return cmpFloat(timeline[x.pos].Start, timeline[y.pos].Start)
		})
		chosen = candidates[:targetCount]
	} else {
		// Fallback: rank the entire timeline by distance from the word
		// midpoint, in-bounds events first.
		mid := interval.Midpoint()
		scored := make([]candidate, len(timeline))
		for i, ev := range timeline {
			scored[i] = candidate{pos: i, key: math.Abs(ev.Start - mid)}
		}
		slices.SortStableFunc(scored, func(x, y candidate) int {
			xIn := x.key < midpointWindow
			yIn := y.key < midpointWindow
			if xIn != yIn {
				if xIn {
					return -1
				}
				return 1
			}
			return cmpFloat(x.key, y.key)
		})
		chosen = scored[:min(targetCount, len(scored))]
	}

	// Restore chronological order via the original timeline positions.
	slices.SortFunc(chosen, func(x, y candidate) int { return x.pos - y.pos })

	out := make([]phonerec.PhonemeEvent, len(chosen))
	for i, c := range chosen {
		out[i] = timeline[c.pos]
	}
	return out
}

func cmpFloat(a, b float64) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	}
	return 0
}
