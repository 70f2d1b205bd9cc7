// Package connector derives the line and rectangle primitives that join
// placed persons: partner links, marriage markers, parent → children trees
// and dashed special-relation overlays.
//
// [Build] is a pure function of a layout. Endpoints without a position
// (hidden or unknown persons) are skipped silently.
package connector

import (
	"math"

	"github.com/sebastiansztangierski/ancestral-scribe/pkg/family"
	"github.com/sebastiansztangierski/ancestral-scribe/pkg/layout"
)

// Kind classifies a primitive.
type Kind string

const (
	KindPartnerLink    Kind = "partner_link"
	KindMarriageMarker Kind = "marriage_marker"
	KindTrunk          Kind = "trunk"
	KindChildBar       Kind = "child_bar"
	KindChildDrop      Kind = "child_drop"
	KindSpecial        Kind = "special"
)

// Shape is the drawing primitive.
type Shape string

const (
	ShapeLine Shape = "line"
	ShapeRect Shape = "rect"
)

// Colors.
const (
	ColorLineage        = "#b45309"
	ColorMarkerFill     = "#dc2626"
	ColorMarkerStroke   = "#fbbf24"
	ColorSpecialNeutral = "#9ca3af"
)

// Palette maps special relation types to stroke colors.
var Palette = map[string]string{
	family.SpecialRival:      "#ef4444",
	family.SpecialMentor:     "#60a5fa",
	family.SpecialSwornEnemy: "#b91c1c",
	family.SpecialLover:      "#ec4899",
	family.SpecialOathBound:  "#f59e0b",
	family.SpecialBetrayer:   "#a855f7",
}

// ColorFor returns the palette color for a relation type, gray if unknown.
func ColorFor(relation string) string {
	if c, ok := Palette[relation]; ok {
		return c
	}
	return ColorSpecialNeutral
}

// Primitive is a line (X1,Y1)-(X2,Y2) or a rect with top-left (X1,Y1) and
// bottom-right (X2,Y2).
type Primitive struct {
	Kind     Kind    `json:"kind"`
	Shape    Shape   `json:"shape"`
	X1       float64 `json:"x1"`
	Y1       float64 `json:"y1"`
	X2       float64 `json:"x2"`
	Y2       float64 `json:"y2"`
	Stroke   string  `json:"stroke"`
	Fill     string  `json:"fill,omitempty"`
	Dashed   bool    `json:"dashed,omitempty"`
	Relation string  `json:"relation,omitempty"`
	From     string  `json:"from,omitempty"`
	To       string  `json:"to,omitempty"`
}

// Defaults for connector geometry.
const (
	DefaultMarkerSize = 8.0
	DefaultBarDrop    = 20.0
)

type builder struct {
	markerSize float64
	barDrop    float64
	noSpecial  bool
}

// Option configures Build.
type Option func(*builder)

// WithMarkerSize sets the side of the square marriage marker.
func WithMarkerSize(s float64) Option { return func(b *builder) { b.markerSize = s } }

// WithBarDrop sets how far below the midpoint between a parent row's bottom
// edge and the children's top edge the child bar sits.
func WithBarDrop(d float64) Option { return func(b *builder) { b.barDrop = d } }

// WithoutSpecialRelations suppresses the dashed overlay.
func WithoutSpecialRelations() Option { return func(b *builder) { b.noSpecial = true } }

// Build returns connector primitives for every couple in l, followed by the
// special relations touching selectedID.
func Build(l *layout.Layout, relations []family.SpecialRelation, selectedID string, opts ...Option) []Primitive {
	b := builder{markerSize: DefaultMarkerSize, barDrop: DefaultBarDrop}
	for _, opt := range opts {
		opt(&b)
	}

	var out []Primitive
	for _, c := range l.Couples {
		out = append(out, b.couple(l, c)...)
	}
	if !b.noSpecial {
		out = append(out, Special(l, relations, selectedID)...)
	}
	return out
}

func (b builder) couple(l *layout.Layout, c layout.Couple) []Primitive {
	mx, my, ok := l.MarriagePoint(c)
	if !ok {
		return nil
	}
	p1, p2 := l.Positions[c.Person1], l.Positions[c.Person2]

	out := []Primitive{
		line(KindPartnerLink, p1.CenterX, p1.CenterY, mx, my, c.Person1, ""),
		line(KindPartnerLink, p2.CenterX, p2.CenterY, mx, my, c.Person2, ""),
	}
	h := b.markerSize / 2
	out = append(out, Primitive{
		Kind: KindMarriageMarker, Shape: ShapeRect,
		X1: mx - h, Y1: my - h, X2: mx + h, Y2: my + h,
		Stroke: ColorMarkerStroke, Fill: ColorMarkerFill,
		From: c.Person1, To: c.Person2,
	})

	var kids []layout.Position
	var kidIDs []string
	for _, id := range c.AllChildren() {
		if p, ok := l.Positions[id]; ok {
			kids = append(kids, p)
			kidIDs = append(kidIDs, id)
		}
	}
	if len(kids) == 0 {
		return out
	}

	top, minX, maxX := math.Inf(1), mx, mx
	for _, k := range kids {
		top = math.Min(top, k.Y)
		minX = math.Min(minX, k.CenterX)
		maxX = math.Max(maxX, k.CenterX)
	}
	parentBottom := math.Max(p1.Y, p2.Y) + l.NodeHeight
	barY := (parentBottom+top)/2 + b.barDrop
	if barY >= top {
		barY = (my + top) / 2
	}

	out = append(out,
		line(KindTrunk, mx, my, mx, barY, c.Person1, c.Person2),
		line(KindChildBar, minX, barY, maxX, barY, c.Person1, c.Person2),
	)
	for i, k := range kids {
		out = append(out, line(KindChildDrop, k.CenterX, barY, k.CenterX, k.Y, "", kidIDs[i]))
	}
	return out
}

// Special returns dashed center-to-center lines for the relations touching
// selectedID. Nothing is returned when no person is selected.
func Special(l *layout.Layout, relations []family.SpecialRelation, selectedID string) []Primitive {
	if selectedID == "" {
		return nil
	}
	var out []Primitive
	for _, r := range relations {
		if !r.Touches(selectedID) {
			continue
		}
		a, okA := l.Positions[r.From]
		z, okZ := l.Positions[r.To]
		if !okA || !okZ {
			continue
		}
		out = append(out, Primitive{
			Kind: KindSpecial, Shape: ShapeLine,
			X1: a.CenterX, Y1: a.CenterY, X2: z.CenterX, Y2: z.CenterY,
			Stroke: ColorFor(r.Relation), Dashed: true,
			Relation: r.Relation, From: r.From, To: r.To,
		})
	}
	return out
}

func line(kind Kind, x1, y1, x2, y2 float64, from, to string) Primitive {
	return Primitive{
		Kind: kind, Shape: ShapeLine,
		X1: x1, Y1: y1, X2: x2, Y2: y2,
		Stroke: ColorLineage,
		From: from, To: to,
	}
}
