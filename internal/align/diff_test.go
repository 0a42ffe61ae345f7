package align_test

import (
	"reflect"
	"testing"

	"github.com/twilight39/IPA-Navigator/internal/align"
)

func TestDiff_Identical(t *testing.T) {
	t.Parallel()

	a := []string{"k", "æ", "t"}
	ops := align.Diff(a, a)

	want := []align.EditOp{{Tag: align.OpEqual, AStart: 0, AEnd: 3, BStart: 0, BEnd: 3}}
	if !reflect.DeepEqual(ops, want) {
		t.Errorf("Diff(identical) = %+v, want %+v", ops, want)
	}
}

func TestDiff_Classic(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		a, b []string
		want []align.EditOp
	}{
		{
			name: "replace middle",
			a:    []string{"k", "æ", "t"},
			b:    []string{"k", "ɑ", "t"},
			want: []align.EditOp{
				{Tag: align.OpEqual, AStart: 0, AEnd: 1, BStart: 0, BEnd: 1},
				{Tag: align.OpReplace, AStart: 1, AEnd: 2, BStart: 1, BEnd: 2},
				{Tag: align.OpEqual, AStart: 2, AEnd: 3, BStart: 2, BEnd: 3},
			},
		},
		{
			name: "delete from a",
			a:    []string{"s", "k", "ɹ"},
			b:    []string{"s", "ɹ"},
			want: []align.EditOp{
				{Tag: align.OpEqual, AStart: 0, AEnd: 1, BStart: 0, BEnd: 1},
				{Tag: align.OpDelete, AStart: 1, AEnd: 2, BStart: 1, BEnd: 1},
				{Tag: align.OpEqual, AStart: 2, AEnd: 3, BStart: 1, BEnd: 2},
			},
		},
		{
			name: "insert into b",
			a:    []string{"s", "ɹ"},
			b:    []string{"s", "k", "ɹ"},
			want: []align.EditOp{
				{Tag: align.OpEqual, AStart: 0, AEnd: 1, BStart: 0, BEnd: 1},
				{Tag: align.OpInsert, AStart: 1, AEnd: 1, BStart: 1, BEnd: 2},
				{Tag: align.OpEqual, AStart: 1, AEnd: 2, BStart: 2, BEnd: 3},
			},
		},
		{
			name: "empty a",
			a:    nil,
			b:    []string{"x"},
			want: []align.EditOp{
				{Tag: align.OpInsert, AStart: 0, AEnd: 0, BStart: 0, BEnd: 1},
			},
		},
		{
			name: "empty b",
			a:    []string{"x"},
			b:    nil,
			want: []align.EditOp{
				{Tag: align.OpDelete, AStart: 0, AEnd: 1, BStart: 0, BEnd: 0},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			ops := align.Diff(tt.a, tt.b)
			if !reflect.DeepEqual(ops, tt.want) {
				t.Errorf("Diff(%v, %v) = %+v, want %+v", tt.a, tt.b, ops, tt.want)
			}
		})
	}
}

// TestDiff_CoversEveryIndexOnce checks the core invariant the analyzer
// depends on: the ops partition both sequences without gaps or overlaps.
func TestDiff_CoversEveryIndexOnce(t *testing.T) {
	t.Parallel()

	cases := [][2][]string{
		{{"a", "b", "c", "d"}, {"b", "c", "x", "d"}},
		{{"h", "ə", "l", "oʊ"}, {"h", "ɛ", "l", "l", "oʊ"}},
		{{"a", "a", "a"}, {"a", "a"}},
		{{}, {}},
		{{"q"}, {"z"}},
	}

	for _, c := range cases {
		a, b := c[0], c[1]
		ai, bi := 0, 0
		for _, op := range align.Diff(a, b) {
			if op.AStart != ai || op.BStart != bi {
				t.Fatalf("Diff(%v, %v): op %+v does not continue at (%d, %d)", a, b, op, ai, bi)
			}
			if op.AEnd < op.AStart || op.BEnd < op.BStart {
				t.Fatalf("Diff(%v, %v): op %+v has negative range", a, b, op)
			}
			ai, bi = op.AEnd, op.BEnd
		}
		if ai != len(a) || bi != len(b) {
			t.Fatalf("Diff(%v, %v): ops end at (%d, %d), want (%d, %d)", a, b, ai, bi, len(a), len(b))
		}
	}
}
