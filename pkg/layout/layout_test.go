package layout

import (
	"math"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/sebastiansztangierski/ancestral-scribe/pkg/family"
	"github.com/sebastiansztangierski/ancestral-scribe/pkg/index"
)

const tol = 1e-9

func person(id string, gen int) family.Person { return family.Person{ID: id, Generation: gen} }

func spouse(a, b string) family.Edge {
	return family.Edge{From: a, To: b, Relation: family.RelationSpouse}
}

func parentOf(p, c string) family.Edge {
	return family.Edge{From: p, To: c, Relation: family.RelationParentChild}
}

func both(a, b, c string) []family.Edge { return []family.Edge{parentOf(a, c), parentOf(b, c)} }

func computeAll(t *family.Tree, opts ...Option) *Layout {
	return Compute(t, t.Persons, opts...)
}

func TestScenarioFounderCouple(t *testing.T) {
	tree := &family.Tree{
		Persons:     []family.Person{person("f", 0), person("m", 0)},
		FamilyEdges: []family.Edge{spouse("f", "m")},
	}
	l := computeAll(tree)

	want := map[string]Position{
		"f": {X: 0, Y: 0, CenterX: 40, CenterY: 48},
		"m": {X: CoupleSpacing, Y: 0, CenterX: CoupleSpacing + 40, CenterY: 48},
	}
	if diff := cmp.Diff(want, l.Positions); diff != "" {
		t.Errorf("Positions mismatch (-want +got):\n%s", diff)
	}
	wantCouples := []Couple{{Person1: "f", Person2: "m", Children: []string{}}}
	if diff := cmp.Diff(wantCouples, l.Couples); diff != "" {
		t.Errorf("Couples mismatch (-want +got):\n%s", diff)
	}
	wantBounds := Bounds{MinX: 0, MaxX: CoupleSpacing + NodeWidth, MinY: 0, MaxY: NodeHeight}
	if l.Bounds != wantBounds {
		t.Errorf("Bounds = %+v, want %+v", l.Bounds, wantBounds)
	}
}

func TestScenarioThreeChildren(t *testing.T) {
	edges := []family.Edge{spouse("f", "m")}
	edges = append(edges, both("f", "m", "a")...)
	edges = append(edges, both("f", "m", "b")...)
	edges = append(edges, both("f", "m", "c")...)
	tree := &family.Tree{
		Persons: []family.Person{
			person("f", 0), person("m", 0),
			person("a", 1), person("b", 1), person("c", 1),
		},
		FamilyEdges: edges,
	}
	l := computeAll(tree)

	for i, id := range []string{"a", "b", "c"} {
		p := l.Positions[id]
		wantX := float64(i) * (NodeWidth + SiblingSpacing)
		if p.X != wantX || p.Y != GenerationSpacing {
			t.Errorf("%s at (%v,%v), want (%v,%v)", id, p.X, p.Y, wantX, GenerationSpacing)
		}
	}

	childMean := (l.Positions["a"].CenterX + l.Positions["b"].CenterX + l.Positions["c"].CenterX) / 3
	mx, _, ok := l.MarriagePoint(l.Couples[0])
	if !ok {
		t.Fatal("MarriagePoint() not resolved")
	}
	if math.Abs(mx-childMean) > tol {
		t.Errorf("couple center = %v, want %v", mx, childMean)
	}
	if got := l.Positions["f"]; got.X != 110 || got.Y != 0 {
		t.Errorf("f at (%v,%v), want (110,0)", got.X, got.Y)
	}
	if got := l.Positions["m"]; got.X != 250 {
		t.Errorf("m.X = %v, want 250", got.X)
	}
	if diff := cmp.Diff([]string{"a", "b", "c"}, l.Couples[0].Children); diff != "" {
		t.Errorf("Children mismatch (-want +got):\n%s", diff)
	}
}

func TestScenarioDisconnectedFamilies(t *testing.T) {
	tree := &family.Tree{
		Persons: []family.Person{
			person("a1", 0), person("a2", 0),
			person("b1", 0), person("b2", 0),
		},
		FamilyEdges: []family.Edge{spouse("a1", "a2"), spouse("b1", "b2")},
	}
	l := computeAll(tree)

	left, _ := l.BoundsOf([]string{"a1", "a2"})
	right, _ := l.BoundsOf([]string{"b1", "b2"})
	if left.Overlaps(right) {
		t.Fatalf("component boxes overlap: %+v %+v", left, right)
	}
	if gap := right.MinX - left.MaxX; math.Abs(gap-ComponentGap) > tol {
		t.Errorf("component gap = %v, want %v", gap, ComponentGap)
	}
}

func TestUnevenSubtreesCenterOnMean(t *testing.T) {
	// a has two children of its own, b and c are leaves. The founders center
	// on the mean of a, b, c centers, not the midpoint of the span.
	edges := []family.Edge{spouse("f", "m"), spouse("a", "as")}
	edges = append(edges, both("f", "m", "a")...)
	edges = append(edges, both("f", "m", "b")...)
	edges = append(edges, both("f", "m", "c")...)
	edges = append(edges, both("a", "as", "g1")...)
	edges = append(edges, both("a", "as", "g2")...)
	edges = append(edges, both("a", "as", "g3")...)
	tree := &family.Tree{
		Persons: []family.Person{
			person("f", 0), person("m", 0),
			person("a", 1), person("as", 1), person("b", 1), person("c", 1),
			person("g1", 2), person("g2", 2), person("g3", 2),
		},
		FamilyEdges: edges,
	}
	l := computeAll(tree)

	mean := (l.Positions["a"].CenterX + l.Positions["b"].CenterX + l.Positions["c"].CenterX) / 3
	f, m := l.Positions["f"], l.Positions["m"]
	if got := (f.CenterX + m.CenterX) / 2; math.Abs(got-mean) > tol {
		t.Errorf("founder midpoint = %v, want mean %v", got, mean)
	}
	if l.Positions["as"].Y != l.Positions["a"].Y {
		t.Error("married-in spouse not on partner's row")
	}
	if got := l.Positions["as"].X - l.Positions["a"].X; got != CoupleSpacing {
		t.Errorf("partner spacing = %v, want %v", got, CoupleSpacing)
	}
	assertNoRowOverlap(t, l)
}

func TestSingleChildCoupleShiftsRight(t *testing.T) {
	edges := []family.Edge{spouse("f", "m")}
	edges = append(edges, both("f", "m", "c")...)
	tree := &family.Tree{
		Persons:     []family.Person{person("f", 0), person("m", 0), person("c", 1)},
		FamilyEdges: edges,
	}
	l := computeAll(tree)

	for id, p := range l.Positions {
		if p.X < 0 {
			t.Errorf("%s.X = %v, want >= 0", id, p.X)
		}
	}
	mx, _, _ := l.MarriagePoint(l.Couples[0])
	if c := l.Positions["c"].CenterX; math.Abs(mx-c) > tol {
		t.Errorf("couple center = %v, want child center %v", mx, c)
	}
}

func TestMalformedInputDegrades(t *testing.T) {
	tree := &family.Tree{
		Persons: []family.Person{
			person("a", 0), person("b", 1), person("c", 1), person("lonely", 3), person("x", 0),
		},
		FamilyEdges: []family.Edge{
			parentOf("a", "b"),
			parentOf("b", "c"),
			parentOf("c", "b"),
			spouse("a", "ghost"),
			parentOf("ghost", "a"),
			spouse("x", "x"),
		},
	}
	l := computeAll(tree)
	for _, p := range tree.Persons {
		if _, ok := l.Positions[p.ID]; !ok {
			t.Errorf("%s has no position", p.ID)
		}
	}
	assertNoRowOverlap(t, l)
}

func TestTrueCycleTerminates(t *testing.T) {
	tree := &family.Tree{
		Persons:     []family.Person{person("a", 0), person("b", 0)},
		FamilyEdges: []family.Edge{parentOf("a", "b"), parentOf("b", "a")},
	}
	l := computeAll(tree)
	if len(l.Positions) != 2 {
		t.Errorf("len(Positions) = %d, want 2", len(l.Positions))
	}
}

func TestSingleParentCentersChildren(t *testing.T) {
	tree := &family.Tree{
		Persons:     []family.Person{person("p", 0), person("c1", 1), person("c2", 1)},
		FamilyEdges: []family.Edge{parentOf("p", "c1"), parentOf("p", "c2")},
	}
	l := computeAll(tree)
	mean := (l.Positions["c1"].CenterX + l.Positions["c2"].CenterX) / 2
	if got := l.Positions["p"].CenterX; math.Abs(got-mean) > tol {
		t.Errorf("parent center = %v, want %v", got, mean)
	}
}

func TestRootsByVisibleParent(t *testing.T) {
	// Generation hints do not start at zero: the root is found by the
	// absence of a visible parent.
	edges := []family.Edge{spouse("f", "m")}
	edges = append(edges, both("f", "m", "c")...)
	tree := &family.Tree{
		Persons:     []family.Person{person("c", 4), person("f", 3), person("m", 3)},
		FamilyEdges: edges,
	}
	l := computeAll(tree)
	if l.Positions["f"].Y != 0 || l.Positions["c"].Y != GenerationSpacing {
		t.Errorf("rows = f:%v c:%v, want 0 and %v", l.Positions["f"].Y, l.Positions["c"].Y, GenerationSpacing)
	}
}

func TestEmptyTree(t *testing.T) {
	l := computeAll(&family.Tree{})
	if len(l.Positions) != 0 || l.Bounds != (Bounds{}) {
		t.Errorf("empty layout = %+v", l)
	}
}

func TestVisibleSubset(t *testing.T) {
	edges := []family.Edge{spouse("f", "m")}
	edges = append(edges, both("f", "m", "a")...)
	tree := &family.Tree{
		Persons:     []family.Person{person("f", 0), person("m", 0), person("a", 1)},
		FamilyEdges: edges,
	}
	l := Compute(tree, tree.Persons[:2])
	if _, ok := l.Positions["a"]; ok {
		t.Error("hidden person positioned")
	}
	if diff := cmp.Diff([]string{}, l.Couples[0].Children); diff != "" {
		t.Errorf("hidden child listed on couple:\n%s", diff)
	}
}

func TestCompactionTightensRows(t *testing.T) {
	// Two roots with a wide gap; compaction pulls the second family left.
	edges := []family.Edge{spouse("f", "m")}
	for _, c := range []string{"c1", "c2", "c3", "c4"} {
		edges = append(edges, both("f", "m", c)...)
	}
	tree := &family.Tree{
		Persons: []family.Person{
			person("f", 0), person("m", 0),
			person("c1", 1), person("c2", 1), person("c3", 1), person("c4", 1),
			person("solo", 0),
		},
		FamilyEdges: edges,
	}
	loose := computeAll(tree)
	tight := computeAll(tree, WithCompaction())

	if tight.Positions["solo"].X >= loose.Positions["solo"].X {
		t.Errorf("solo.X = %v, want < %v", tight.Positions["solo"].X, loose.Positions["solo"].X)
	}
	if got := tight.Positions["m"].X - tight.Positions["f"].X; got != CoupleSpacing {
		t.Errorf("partner spacing after compaction = %v, want %v", got, CoupleSpacing)
	}
	assertNoRowOverlap(t, tight)
}

func TestComponents(t *testing.T) {
	tree := &family.Tree{
		Persons:     []family.Person{person("a", 0), person("b", 0), person("c", 0)},
		FamilyEdges: []family.Edge{spouse("a", "c")},
	}
	ix := index.FromTree(tree)
	l := ComputeIndexed(ix, tree.PersonIDs())
	want := [][]string{{"a", "c"}, {"b"}}
	if diff := cmp.Diff(want, Components(l, ix)); diff != "" {
		t.Errorf("Components() mismatch (-want +got):\n%s", diff)
	}
}

func TestCustomGeometry(t *testing.T) {
	tree := &family.Tree{
		Persons:     []family.Person{person("f", 0), person("m", 0)},
		FamilyEdges: []family.Edge{spouse("f", "m")},
	}
	l := computeAll(tree, WithNodeSize(50, 60), WithCoupleSpacing(20))
	// Couple spacing is raised to the node width so partners never overlap.
	if got := l.Positions["m"].X; got != 50 {
		t.Errorf("m.X = %v, want 50", got)
	}
	if l.NodeWidth != 50 || l.NodeHeight != 60 {
		t.Errorf("node size = %vx%v, want 50x60", l.NodeWidth, l.NodeHeight)
	}
}

func assertNoRowOverlap(t *testing.T, l *Layout) {
	t.Helper()
	for i, a := range l.Order {
		for _, b := range l.Order[i+1:] {
			pa, pb := l.Positions[a], l.Positions[b]
			if pa.Y == pb.Y && math.Abs(pa.X-pb.X) < l.NodeWidth-tol {
				t.Errorf("%s and %s overlap at y=%v: x=%v x=%v", a, b, pa.Y, pa.X, pb.X)
			}
		}
	}
}

func TestCrossFamilyMarriageCentersOnOwnChildren(t *testing.T) {
	// c (of a1/a2) marries s (of b1/b2); s is placed beside c, so b1/b2 is
	// centered over sib alone.
	edges := []family.Edge{spouse("a1", "a2"), spouse("b1", "b2"), spouse("c", "s")}
	edges = append(edges, both("a1", "a2", "c")...)
	edges = append(edges, both("b1", "b2", "s")...)
	edges = append(edges, both("b1", "b2", "sib")...)
	tree := &family.Tree{
		Persons: []family.Person{
			person("a1", 0), person("a2", 0), person("b1", 0), person("b2", 0),
			person("c", 1), person("s", 1), person("sib", 1),
		},
		FamilyEdges: edges,
	}
	l := computeAll(tree)

	var b Couple
	for _, c := range l.Couples {
		if c.Person1 == "b1" {
			b = c
		}
	}
	if diff := cmp.Diff([]string{"sib"}, b.Children); diff != "" {
		t.Errorf("Children mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{"s"}, b.Elsewhere); diff != "" {
		t.Errorf("Elsewhere mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{"sib", "s"}, b.AllChildren()); diff != "" {
		t.Errorf("AllChildren mismatch (-want +got):\n%s", diff)
	}

	for _, c := range l.Couples {
		if len(c.Children) == 0 {
			continue
		}
		var sum float64
		for _, kid := range c.Children {
			sum += l.Positions[kid].CenterX
		}
		mx, _, _ := l.MarriagePoint(c)
		if want := sum / float64(len(c.Children)); math.Abs(mx-want) > tol {
			t.Errorf("couple %s/%s center = %v, want %v", c.Person1, c.Person2, mx, want)
		}
	}
}
