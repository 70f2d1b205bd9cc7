package sink

import (
	"bytes"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/sebastiansztangierski/ancestral-scribe/pkg/family"
	"github.com/sebastiansztangierski/ancestral-scribe/pkg/index"
	"github.com/sebastiansztangierski/ancestral-scribe/pkg/layout"
	"github.com/sebastiansztangierski/ancestral-scribe/pkg/render/connector"
	"github.com/sebastiansztangierski/ancestral-scribe/pkg/visibility"
)

func starkTree() *family.Tree {
	pc := func(a, b string) family.Edge { return family.Edge{From: a, To: b, Relation: family.RelationParentChild} }
	return &family.Tree{
		HouseName: "Stark",
		Persons: []family.Person{
			{ID: "rickard", Name: "Rickard", Title: "Lord of Winterfell", Gender: "male", BirthYear: "230", DeathYear: "282"},
			{ID: "lyarra", Name: "Lyarra <Stark>", Gender: "female"},
			{ID: "eddard", Name: "Eddard", Generation: 1, Gender: "male"},
			{ID: "benjen", Name: "Benjen", Generation: 1, IsUnknown: true},
		},
		FamilyEdges: []family.Edge{
			{From: "rickard", To: "lyarra", Relation: family.RelationSpouse},
			pc("rickard", "eddard"), pc("lyarra", "eddard"),
			pc("rickard", "benjen"), pc("lyarra", "benjen"),
		},
		SpecialRelations: []family.SpecialRelation{
			{From: "eddard", To: "benjen", Relation: family.SpecialMentor},
		},
	}
}

func TestRenderSVG(t *testing.T) {
	tree := starkTree()
	l := layout.Compute(tree, tree.Persons)
	svg := string(RenderSVG(l, WithTree(tree), WithSelected("eddard")))

	for _, want := range []string{
		`<svg xmlns="http://www.w3.org/2000/svg"`,
		`<g id="connectors">`,
		`<g id="persons">`,
		`id="person-rickard"`,
		`Lord of Winterfell`,
		`230 - 282`,
		`Lyarra &lt;Stark&gt;`,
		`class="person unknown"`,
		`stroke="` + colorSelected + `"`,
		`class="special"`,
		`stroke-dasharray="6 4"`,
		`class="marriage_marker"`,
		"</svg>",
	} {
		if !strings.Contains(svg, want) {
			t.Errorf("SVG missing %q", want)
		}
	}
	if strings.Contains(svg, ">benjen<") {
		t.Error("unknown person should be labelled ?")
	}
}

func TestRenderSVGNoSelection(t *testing.T) {
	tree := starkTree()
	l := layout.Compute(tree, tree.Persons)
	svg := string(RenderSVG(l, WithTree(tree), WithTransparentBackground()))

	if strings.Contains(svg, `class="special"`) {
		t.Error("special relations drawn without a selection")
	}
	if strings.Contains(svg, `fill="`+colorBackground+`"`) {
		t.Error("background drawn despite WithTransparentBackground")
	}
}

func TestRenderSVGCollapseBadge(t *testing.T) {
	tree := starkTree()
	f := visibility.New(index.FromTree(tree), []string{"rickard"})
	l := layout.Compute(tree, f.VisiblePersons(tree))
	svg := string(RenderSVG(l, WithTree(tree), WithMarks(f)))

	if !strings.Contains(svg, `class="badge"`) || !strings.Contains(svg, ">+2<") {
		t.Error("collapsed person should carry a +2 badge")
	}
	if strings.Contains(svg, `id="person-eddard"`) {
		t.Error("hidden person drawn")
	}
}

func TestRenderSVGWithoutTree(t *testing.T) {
	tree := starkTree()
	l := layout.Compute(tree, tree.Persons)
	svg := string(RenderSVG(l, WithConnectorOptions(connector.WithMarkerSize(4))))
	if !strings.Contains(svg, ">eddard<") {
		t.Error("cards should fall back to ids without a tree")
	}
}

func TestRenderJSONRoundTrip(t *testing.T) {
	tree := starkTree()
	f := visibility.New(index.FromTree(tree), nil)
	l := layout.Compute(tree, f.VisiblePersons(tree))

	data, err := RenderJSON(l,
		WithJSONTree(tree),
		WithJSONTreeID("tree-stark"),
		WithJSONCollapsed(nil, f),
		WithJSONSelected("eddard"),
	)
	if err != nil {
		t.Fatalf("RenderJSON() error = %v", err)
	}

	scene, err := ReadJSON(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("ReadJSON() error = %v", err)
	}
	if scene.TreeID != "tree-stark" || scene.HouseName != "Stark" || scene.Selected != "eddard" {
		t.Errorf("scene header = %q %q %q", scene.TreeID, scene.HouseName, scene.Selected)
	}
	if len(scene.Persons) != 4 {
		t.Fatalf("persons = %d, want 4", len(scene.Persons))
	}
	if scene.Persons[0].Name != "Rickard" {
		t.Errorf("first person = %+v", scene.Persons[0])
	}

	back := scene.Layout()
	if diff := cmp.Diff(l.Positions, back.Positions); diff != "" {
		t.Errorf("Layout() positions mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff(l.Order, back.Order); diff != "" {
		t.Errorf("Layout() order mismatch (-want +got):\n%s", diff)
	}

	special := 0
	for _, c := range scene.Connectors {
		if c.Kind == connector.KindSpecial {
			special++
		}
	}
	if special != 1 {
		t.Errorf("special connectors = %d, want 1", special)
	}
}

func TestBuildSceneEmpty(t *testing.T) {
	l := layout.Compute(&family.Tree{}, nil)
	s := BuildScene(l)
	if s.Persons == nil || s.Couples == nil || s.Connectors == nil {
		t.Error("empty scene slices should be non-nil so they encode as []")
	}
}

func TestReadJSONInvalid(t *testing.T) {
	if _, err := ReadJSON(strings.NewReader("{")); err == nil {
		t.Error("ReadJSON() should fail on truncated input")
	}
}
