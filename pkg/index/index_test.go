package index

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/sebastiansztangierski/ancestral-scribe/pkg/family"
)

func persons(ids ...string) []family.Person {
	out := make([]family.Person, len(ids))
	for i, id := range ids {
		out[i] = family.Person{ID: id}
	}
	return out
}

func spouse(a, b string) family.Edge {
	return family.Edge{From: a, To: b, Relation: family.RelationSpouse}
}

func parent(p, c string) family.Edge {
	return family.Edge{From: p, To: c, Relation: family.RelationParentChild}
}

func TestSpouseSymmetric(t *testing.T) {
	ix := Build(persons("a", "b", "c"), []family.Edge{spouse("b", "a")})

	if s, ok := ix.SpouseOf("a"); !ok || s != "b" {
		t.Errorf("SpouseOf(a) = %q, %v, want b", s, ok)
	}
	if s, ok := ix.SpouseOf("b"); !ok || s != "a" {
		t.Errorf("SpouseOf(b) = %q, %v, want a", s, ok)
	}
	if _, ok := ix.SpouseOf("c"); ok {
		t.Error("SpouseOf(c) should be unset")
	}
	if MakeCoupleKey("a", "b") != MakeCoupleKey("b", "a") {
		t.Error("MakeCoupleKey is not order independent")
	}
}

func TestFirstSpouseWins(t *testing.T) {
	ix := Build(persons("a", "b", "c"), []family.Edge{
		spouse("a", "b"),
		spouse("a", "c"),
		spouse("c", "b"),
		spouse("b", "a"),
	})
	if s, _ := ix.SpouseOf("a"); s != "b" {
		t.Errorf("SpouseOf(a) = %q, want b", s)
	}
	if _, ok := ix.SpouseOf("c"); ok {
		t.Error("c should stay unpartnered")
	}
	if n := len(ix.Couples()); n != 1 {
		t.Errorf("len(Couples()) = %d, want 1", n)
	}
}

func TestMalformedEdgesIgnored(t *testing.T) {
	ix := Build(persons("a", "b"), []family.Edge{
		spouse("a", "ghost"),
		spouse("a", "a"),
		parent("a", "ghost"),
		parent("b", "b"),
		parent("a", "b"),
		parent("a", "b"),
		{From: "a", To: "b", Relation: "cousin"},
	})
	if _, ok := ix.SpouseOf("a"); ok {
		t.Error("dangling or self spouse edge registered")
	}
	if diff := cmp.Diff([]string{"b"}, ix.Children("a")); diff != "" {
		t.Errorf("Children(a) mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{"a"}, ix.Parents("b")); diff != "" {
		t.Errorf("Parents(b) mismatch (-want +got):\n%s", diff)
	}
}

func TestCoupleChildren(t *testing.T) {
	ix := Build(persons("f", "m", "c1", "c2", "c3", "x", "c4", "solo", "c5"), []family.Edge{
		spouse("f", "m"),
		parent("f", "c1"), parent("m", "c1"),
		parent("m", "c2"), parent("f", "c2"),
		parent("f", "c3"),
		parent("f", "c4"), parent("x", "c4"),
		parent("solo", "c5"),
	})

	tests := []struct {
		name string
		a, b string
		want []string
	}{
		{"both parents and single parent", "f", "m", []string{"c1", "c2", "c3"}},
		{"reversed key", "m", "f", []string{"c1", "c2", "c3"}},
		{"not a couple", "solo", "x", nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if diff := cmp.Diff(tt.want, ix.CoupleChildren(tt.a, tt.b)); diff != "" {
				t.Errorf("CoupleChildren(%s,%s) mismatch (-want +got):\n%s", tt.a, tt.b, diff)
			}
		})
	}

	want := []Couple{{Person1: "f", Person2: "m", Children: []string{"c1", "c2", "c3"}}}
	if diff := cmp.Diff(want, ix.Couples()); diff != "" {
		t.Errorf("Couples() mismatch (-want +got):\n%s", diff)
	}
}

func TestGenerations(t *testing.T) {
	ix := Build([]family.Person{
		{ID: "a", Generation: 2},
		{ID: "b", Generation: 0},
		{ID: "c", Generation: 2},
		{ID: "a", Generation: 5},
	}, nil)

	if diff := cmp.Diff([]int{0, 2}, ix.Generations()); diff != "" {
		t.Errorf("Generations() mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{"a", "c"}, ix.ByGeneration(2)); diff != "" {
		t.Errorf("ByGeneration(2) mismatch (-want +got):\n%s", diff)
	}
	if g, _ := ix.Generation("a"); g != 2 {
		t.Errorf("Generation(a) = %d, want 2 (first record wins)", g)
	}
	if ix.Len() != 3 || ix.InputIndex("c") != 2 || ix.InputIndex("zzz") != -1 {
		t.Errorf("Len/InputIndex mismatch: %d %d", ix.Len(), ix.InputIndex("c"))
	}
}
