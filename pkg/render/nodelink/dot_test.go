package nodelink

import (
	"context"
	"strings"
	"testing"

	"github.com/sebastiansztangierski/ancestral-scribe/pkg/family"
)

func tree() *family.Tree {
	pc := func(a, b string) family.Edge { return family.Edge{From: a, To: b, Relation: family.RelationParentChild} }
	return &family.Tree{
		Persons: []family.Person{
			{ID: "rickard", Name: "Rickard", Title: "Lord", Gender: "male", BirthYear: "230"},
			{ID: "lyarra", Name: "Lyarra", Gender: "female"},
			{ID: "eddard", Name: "Eddard", Generation: 1},
			{ID: "jon", Name: "Jon", Generation: 2},
			{ID: "x", Generation: 1, IsUnknown: true},
		},
		FamilyEdges: []family.Edge{
			{From: "rickard", To: "lyarra", Relation: family.RelationSpouse},
			pc("rickard", "eddard"), pc("lyarra", "eddard"),
			pc("eddard", "jon"),
		},
		SpecialRelations: []family.SpecialRelation{
			{From: "eddard", To: "x", Relation: family.SpecialMentor},
		},
	}
}

func TestToDOT(t *testing.T) {
	dot := ToDOT(tree(), nil, Options{Special: true})

	for _, want := range []string{
		"digraph G {",
		`"rickard" [label="Rickard"`,
		`"x" [label="?"`,
		`"m0" [shape=point`,
		`{ rank=same; "rickard"; "m0"; "lyarra"; }`,
		`"m0" -> "eddard";`,
		`"eddard" -> "jon";`,
		`"eddard" -> "x" [style=dashed, constraint=false, label="mentor"];`,
	} {
		if !strings.Contains(dot, want) {
			t.Errorf("DOT missing %q\n%s", want, dot)
		}
	}
	if strings.Contains(dot, `"rickard" -> "eddard"`) {
		t.Error("child of a couple should hang from the marriage point")
	}
}

func TestToDOTVisibleSubset(t *testing.T) {
	dot := ToDOT(tree(), []string{"rickard", "eddard", "jon", "ghost"}, Options{})

	if strings.Contains(dot, `"lyarra"`) || strings.Contains(dot, "m0") {
		t.Error("hidden spouse and its couple should be omitted")
	}
	if !strings.Contains(dot, `"rickard" -> "eddard";`) {
		t.Error("child with one visible parent should link directly")
	}
	if strings.Contains(dot, "ghost") {
		t.Error("unknown ids should be ignored")
	}
	if strings.Contains(dot, "dashed, constraint") {
		t.Error("special relations drawn without Options.Special")
	}
}

func TestFmtLabelDetailed(t *testing.T) {
	p := family.Person{ID: "r", Name: "Rickard", Title: "Lord", BirthYear: "230", DeathYear: "282", Generation: 0}
	got := fmtLabel(p, true)
	want := "Rickard\nLord\n230 - 282\ngen 0"
	if got != want {
		t.Errorf("fmtLabel() = %q, want %q", got, want)
	}
}

func TestRenderSVG(t *testing.T) {
	svg, err := RenderSVG(context.Background(), ToDOT(tree(), nil, Options{}))
	if err != nil {
		t.Fatalf("RenderSVG() error = %v", err)
	}
	s := string(svg)
	if !strings.Contains(s, `<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 `) {
		t.Errorf("root element not normalized: %.200s", s)
	}
	if !strings.Contains(s, "Rickard") {
		t.Error("SVG missing node label")
	}
}
