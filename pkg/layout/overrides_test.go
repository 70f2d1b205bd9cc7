package layout

import (
	"testing"

	"github.com/sebastiansztangierski/ancestral-scribe/pkg/family"
)

func TestWithOverrides(t *testing.T) {
	tree := &family.Tree{
		Persons:     []family.Person{person("f", 0), person("m", 0)},
		FamilyEdges: []family.Edge{spouse("f", "m")},
	}
	l := computeAll(tree)

	o := Overrides{}
	o.Set("m", 500, 20)
	o.Set("ghost", 1, 1)

	merged := l.WithOverrides(o)
	if got := merged.Positions["m"]; got.X != 500 || got.Y != 20 || got.CenterX != 540 || got.CenterY != 68 {
		t.Errorf("overridden m = %+v", got)
	}
	if _, ok := merged.Positions["ghost"]; ok {
		t.Error("override resurrected an unplaced person")
	}
	if merged.Bounds.MaxX != 580 || merged.Bounds.MaxY != 116 {
		t.Errorf("merged Bounds = %+v", merged.Bounds)
	}
	if l.Positions["m"].X != CoupleSpacing {
		t.Error("WithOverrides mutated the computed layout")
	}

	if p, _ := l.PositionWith(o, "f"); p != l.Positions["f"] {
		t.Errorf("PositionWith(f) = %+v, want computed", p)
	}
	o.Clear("m")
	if p, _ := l.PositionWith(o, "m"); p.X != CoupleSpacing {
		t.Errorf("PositionWith(m) after Clear = %+v", p)
	}
}
