package visibility

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/sebastiansztangierski/ancestral-scribe/pkg/family"
	"github.com/sebastiansztangierski/ancestral-scribe/pkg/index"
)

// threeGenerations builds:
//
//	f = m
//	  |
//	a = as      b     c
//	  |
//	g1  g2  g3
func threeGenerations() *family.Tree {
	p := func(id string, gen int) family.Person { return family.Person{ID: id, Generation: gen} }
	sp := func(a, b string) family.Edge { return family.Edge{From: a, To: b, Relation: family.RelationSpouse} }
	pc := func(a, b string) family.Edge { return family.Edge{From: a, To: b, Relation: family.RelationParentChild} }
	return &family.Tree{
		Persons: []family.Person{
			p("f", 0), p("m", 0),
			p("a", 1), p("as", 1), p("b", 1), p("c", 1),
			p("g1", 2), p("g2", 2), p("g3", 2),
		},
		FamilyEdges: []family.Edge{
			sp("f", "m"),
			pc("f", "a"), pc("m", "a"),
			pc("f", "b"), pc("m", "b"),
			pc("f", "c"), pc("m", "c"),
			sp("a", "as"),
			pc("a", "g1"), pc("as", "g1"),
			pc("a", "g2"), pc("as", "g2"),
			pc("a", "g3"), pc("as", "g3"),
		},
	}
}

func TestCollapseHidesDescendants(t *testing.T) {
	tree := threeGenerations()
	ix := index.FromTree(tree)

	before := New(ix, nil)
	f := New(ix, []string{"f"})

	if got := f.DescendantCount("f"); got != 6 {
		t.Fatalf("DescendantCount(f) = %d, want 6", got)
	}
	if got := f.DescendantCount("a"); got != 3 {
		t.Errorf("DescendantCount(a) = %d, want 3", got)
	}

	// Collapsing a hides its three children only.
	f2 := New(ix, []string{"a"})
	if diff := cmp.Diff([]string{"g1", "g2", "g3"}, f2.HiddenIDs()); diff != "" {
		t.Errorf("HiddenIDs() mismatch (-want +got):\n%s", diff)
	}

	if len(before.VisibleIDs())-len(f.VisibleIDs()) != 6 {
		t.Errorf("visible shrank by %d, want 6", len(before.VisibleIDs())-len(f.VisibleIDs()))
	}
	if f.IsHidden("f") {
		t.Error("collapsed person must stay visible")
	}
	if f.IsHidden("m") {
		t.Error("spouse of collapsed person must stay visible")
	}
	// as is a married-in spouse, not a descendant of f.
	if f.IsHidden("as") {
		t.Error("married-in spouse hidden")
	}
}

func TestScenarioFiveHidden(t *testing.T) {
	// Person with exactly five descendants: 2 children, 3 grandchildren.
	p := func(id string) family.Person { return family.Person{ID: id} }
	pc := func(a, b string) family.Edge { return family.Edge{From: a, To: b, Relation: family.RelationParentChild} }
	tree := &family.Tree{
		Persons: []family.Person{p("r"), p("x"), p("y"), p("x1"), p("x2"), p("y1"), p("other")},
		FamilyEdges: []family.Edge{
			pc("r", "x"), pc("r", "y"),
			pc("x", "x1"), pc("x", "x2"), pc("y", "y1"),
		},
	}
	ix := index.FromTree(tree)
	all := New(ix, nil)
	f := New(ix, []string{"r"})

	if got := len(all.VisibleIDs()) - len(f.VisibleIDs()); got != 5 {
		t.Errorf("visible shrank by %d, want 5", got)
	}
	if got := f.DescendantCount("r"); got != 5 {
		t.Errorf("DescendantCount(r) = %d, want 5", got)
	}
	for _, id := range f.HiddenIDs() {
		if id == "r" {
			t.Error("HiddenIDs() includes the collapsed person")
		}
	}
	if diff := cmp.Diff([]family.Person{p("r"), p("other")}, f.VisiblePersons(tree)); diff != "" {
		t.Errorf("VisiblePersons() mismatch (-want +got):\n%s", diff)
	}
}

func TestNestedCollapseIdempotent(t *testing.T) {
	ix := index.FromTree(threeGenerations())
	outer := New(ix, []string{"f"})
	both := New(ix, []string{"f", "a"})
	if diff := cmp.Diff(outer.VisibleIDs(), both.VisibleIDs()); diff != "" {
		t.Errorf("nested collapse changed visibility (-outer +both):\n%s", diff)
	}
}

func TestLeafCollapse(t *testing.T) {
	ix := index.FromTree(threeGenerations())
	f := New(ix, []string{"g1", "ghost"})
	if f.HasChildren("g1") {
		t.Error("HasChildren(g1) = true, want false")
	}
	if got := f.DescendantCount("g1"); got != 0 {
		t.Errorf("DescendantCount(g1) = %d, want 0", got)
	}
	if len(f.VisibleIDs()) != ix.Len() {
		t.Error("collapsing a leaf hid persons")
	}
	if diff := cmp.Diff([]string{"g1"}, f.Collapsed()); diff != "" {
		t.Errorf("Collapsed() mismatch (-want +got):\n%s", diff)
	}
	if !f.IsCollapsed("g1") || f.IsCollapsed("ghost") {
		t.Error("IsCollapsed mismatch")
	}
}

func TestDescendantsCycle(t *testing.T) {
	pc := func(a, b string) family.Edge { return family.Edge{From: a, To: b, Relation: family.RelationParentChild} }
	ix := index.Build(
		[]family.Person{{ID: "a"}, {ID: "b"}, {ID: "c"}},
		[]family.Edge{pc("a", "b"), pc("b", "c"), pc("c", "a")},
	)
	if diff := cmp.Diff([]string{"b", "c"}, Descendants(ix, "a")); diff != "" {
		t.Errorf("Descendants(a) mismatch (-want +got):\n%s", diff)
	}
}

func TestToggle(t *testing.T) {
	in := []string{"a", "b"}
	if diff := cmp.Diff([]string{"a", "b", "c"}, Toggle(in, "c")); diff != "" {
		t.Errorf("Toggle add mismatch:\n%s", diff)
	}
	if diff := cmp.Diff([]string{"b"}, Toggle(in, "a")); diff != "" {
		t.Errorf("Toggle remove mismatch:\n%s", diff)
	}
	if diff := cmp.Diff([]string{"a", "b"}, in); diff != "" {
		t.Errorf("Toggle mutated input:\n%s", diff)
	}
}
