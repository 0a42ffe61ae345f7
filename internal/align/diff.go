// Package align implements the reconciliation core of the pronunciation
// engine: a generic sequence-diff primitive, fuzzy word alignment of
// recognized segments against an expected transcript, count-based phoneme
// span extraction from the recognizer timeline, and per-phoneme
// classification of a word's detected phonemes against its reference
// sequence.
//
// All functions in this package are pure over their inputs and safe for
// concurrent use; every data structure is request-scoped.
package align

import "sort"

// OpTag identifies the kind of an [EditOp].
type OpTag string

const (
	// OpEqual marks a run of identical elements in both sequences.
	OpEqual OpTag = "equal"

	// OpReplace marks a run where sequence A's elements were substituted by
	// sequence B's.
	OpReplace OpTag = "replace"

	// OpInsert marks elements present only in sequence B.
	OpInsert OpTag = "insert"

	// OpDelete marks elements present only in sequence A.
	OpDelete OpTag = "delete"
)

// EditOp is one contiguous alignment unit between two sequences. The element
// ranges are half-open: A[AStart:AEnd] aligns with B[BStart:BEnd].
type EditOp struct {
	Tag    OpTag
	AStart int
	AEnd   int
	BStart int
	BEnd   int
}

// Diff computes the edit operations that transform a into b, with the
// greedy longest-matching-block strategy of Ratcliff/Obershelp style
// matchers: the longest common run is fixed first, then the regions to its
// left and right are matched recursively. The returned ops are ordered,
// non-overlapping, and together cover every index of both sequences exactly
// once.
func Diff(a, b []string) []EditOp {
	blocks := matchingBlocks(a, b)

	var ops []EditOp
	ai, bi := 0, 0
	for _, blk := range blocks {
		switch {
		case ai < blk.a && bi < blk.b:
			ops = append(ops, EditOp{Tag: OpReplace, AStart: ai, AEnd: blk.a, BStart: bi, BEnd: blk.b})
		case ai < blk.a:
			ops = append(ops, EditOp{Tag: OpDelete, AStart: ai, AEnd: blk.a, BStart: bi, BEnd: bi})
		case bi < blk.b:
			ops = append(ops, EditOp{Tag: OpInsert, AStart: ai, AEnd: ai, BStart: bi, BEnd: blk.b})
		}
		if blk.size > 0 {
			ops = append(ops, EditOp{Tag: OpEqual, AStart: blk.a, AEnd: blk.a + blk.size, BStart: blk.b, BEnd: blk.b + blk.size})
		}
		ai = blk.a + blk.size
		bi = blk.b + blk.size
	}
	return ops
}

// block is a maximal run of size identical elements starting at a in
// sequence A and b in sequence B.
type block struct {
	a, b, size int
}

// matchingBlocks returns the non-overlapping matching runs between a and b
// in ascending order, terminated by a zero-size sentinel at (len(a), len(b)).
func matchingBlocks(a, b []string) []block {
	// Index of each element value to its positions in b.
	b2j := make(map[string][]int, len(b))
	for j, s := range b {
		b2j[s] = append(b2j[s], j)
	}

	type region struct {
		alo, ahi, blo, bhi int
	}
	queue := []region{{0, len(a), 0, len(b)}}

	var blocks []block
	for len(queue) > 0 {
		r := queue[len(queue)-1]
		queue = queue[:len(queue)-1]

		best := longestMatch(a, b2j, r.alo, r.ahi, r.blo, r.bhi)
		if best.size == 0 {
			continue
		}
		blocks = append(blocks, best)
		if r.alo < best.a && r.blo < best.b {
			queue = append(queue, region{r.alo, best.a, r.blo, best.b})
		}
		if best.a+best.size < r.ahi && best.b+best.size < r.bhi {
			queue = append(queue, region{best.a + best.size, r.ahi, best.b + best.size, r.bhi})
		}
	}

	sort.Slice(blocks, func(i, j int) bool {
		if blocks[i].a != blocks[j].a {
			return blocks[i].a < blocks[j].a
		}
		return blocks[i].b < blocks[j].b
	})

	// Merge adjacent blocks so each run is maximal.
	merged := blocks[:0]
	for _, blk := range blocks {
		if n := len(merged); n > 0 &&
			merged[n-1].a+merged[n-1].size == blk.a &&
			merged[n-1].b+merged[n-1].size == blk.b {
			merged[n-1].size += blk.size
			continue
		}
		merged = append(merged, blk)
	}

	return append(merged, block{len(a), len(b), 0})
}

// longestMatch finds the longest run of matching elements within
// a[alo:ahi] × b[blo:bhi]. Ties prefer the earliest position in a, then the
// earliest in b.
func longestMatch(a []string, b2j map[string][]int, alo, ahi, blo, bhi int) block {
	best := block{a: alo, b: blo}

	// j2len[j] is the length of the longest match ending with a[i-1], b[j].
	j2len := make(map[int]int)
	for i := alo; i < ahi; i++ {
		newJ2len := make(map[int]int)
		for _, j := range b2j[a[i]] {
			if j < blo {
				continue
			}
			if j >= bhi {
				break
			}
			k := j2len[j-1] + 1
			newJ2len[j] = k
			if k > best.size {
				best = block{a: i - k + 1, b: j - k + 1, size: k}
			}
		}
		j2len = newJ2len
	}
	return best
}
