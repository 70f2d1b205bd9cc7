package layout

import (
	"math"
	"slices"
)

// Default geometry, shared by layout, connectors and the overview.
const (
	NodeWidth         = 80.0
	NodeHeight        = 96.0
	CoupleSpacing     = 140.0
	SiblingSpacing    = 100.0
	GenerationSpacing = 250.0
	ComponentGap      = 60.0
)

// Position is a placed person. X and Y are the top-left anchor; CenterX and
// CenterY are the node center.
type Position struct {
	X       float64 `json:"x" bson:"x"`
	Y       float64 `json:"y" bson:"y"`
	CenterX float64 `json:"center_x" bson:"center_x"`
	CenterY float64 `json:"center_y" bson:"center_y"`
}

// Couple is a placed spouse pair and its visible children. Children are the
// ones laid out under the couple, which it is centered over. Elsewhere holds
// visible children already placed under another family, such as a child who
// married into an earlier lineage.
type Couple struct {
	Person1   string   `json:"person1" bson:"person1"`
	Person2   string   `json:"person2" bson:"person2"`
	Children  []string `json:"children" bson:"children"`
	Elsewhere []string `json:"elsewhere,omitempty" bson:"elsewhere,omitempty"`
}

// AllChildren returns Children followed by Elsewhere.
func (c Couple) AllChildren() []string {
	if len(c.Elsewhere) == 0 {
		return c.Children
	}
	return append(slices.Clip(c.Children), c.Elsewhere...)
}

// Bounds is an axis-aligned bounding box.
type Bounds struct {
	MinX float64 `json:"min_x" bson:"min_x"`
	MaxX float64 `json:"max_x" bson:"max_x"`
	MinY float64 `json:"min_y" bson:"min_y"`
	MaxY float64 `json:"max_y" bson:"max_y"`
}

// Width returns the horizontal extent.
func (b Bounds) Width() float64 { return b.MaxX - b.MinX }

// Height returns the vertical extent.
func (b Bounds) Height() float64 { return b.MaxY - b.MinY }

// Overlaps reports whether b and o share interior area.
func (b Bounds) Overlaps(o Bounds) bool {
	return b.MinX < o.MaxX && o.MinX < b.MaxX && b.MinY < o.MaxY && o.MinY < b.MaxY
}

// Layout is the engine output.
type Layout struct {
	Positions  map[string]Position `json:"positions" bson:"positions"`
	Order      []string            `json:"order" bson:"order"`
	Couples    []Couple            `json:"couples" bson:"couples"`
	Bounds     Bounds              `json:"bounds" bson:"bounds"`
	NodeWidth  float64             `json:"node_width" bson:"node_width"`
	NodeHeight float64             `json:"node_height" bson:"node_height"`
}

// Position returns the placed position of id.
func (l *Layout) Position(id string) (Position, bool) {
	p, ok := l.Positions[id]
	return p, ok
}

// MarriagePoint returns the anchor between a couple's two centers. The
// second result is false when either partner has no position.
func (l *Layout) MarriagePoint(c Couple) (x, y float64, ok bool) {
	p1, ok1 := l.Positions[c.Person1]
	p2, ok2 := l.Positions[c.Person2]
	if !ok1 || !ok2 {
		return 0, 0, false
	}
	return (p1.CenterX + p2.CenterX) / 2, (p1.CenterY + p2.CenterY) / 2, true
}

// BoundsOf returns the bounding box of the given ids, skipping unplaced ones.
func (l *Layout) BoundsOf(ids []string) (Bounds, bool) {
	b := Bounds{MinX: math.Inf(1), MinY: math.Inf(1), MaxX: math.Inf(-1), MaxY: math.Inf(-1)}
	found := false
	for _, id := range ids {
		p, ok := l.Positions[id]
		if !ok {
			continue
		}
		found = true
		b.MinX = math.Min(b.MinX, p.X)
		b.MinY = math.Min(b.MinY, p.Y)
		b.MaxX = math.Max(b.MaxX, p.X+l.NodeWidth)
		b.MaxY = math.Max(b.MaxY, p.Y+l.NodeHeight)
	}
	if !found {
		return Bounds{}, false
	}
	return b, true
}

func (l *Layout) computeBounds() {
	if b, ok := l.BoundsOf(l.Order); ok {
		l.Bounds = b
	} else {
		l.Bounds = Bounds{}
	}
}

// positionAt builds a Position from a top-left anchor.
func positionAt(x, y, w, h float64) Position {
	return Position{X: x, Y: y, CenterX: x + w/2, CenterY: y + h/2}
}
