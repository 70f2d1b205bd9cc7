package layout

import (
	"encoding/json"
	"fmt"
	"io"
	"maps"
	"slices"
)

// Point is a top-left anchor in world units.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Overrides is a sparse overlay of manually dragged positions. It is owned by
// the interaction layer; the engine only reads it.
type Overrides map[string]Point

// Set records a manual position for id.
func (o Overrides) Set(id string, x, y float64) { o[id] = Point{X: x, Y: y} }

// Clear forgets the manual position for id.
func (o Overrides) Clear(id string) { delete(o, id) }

// ReadOverrides decodes a JSON object of person id to {"x", "y"}.
func ReadOverrides(r io.Reader) (Overrides, error) {
	var o Overrides
	if err := json.NewDecoder(r).Decode(&o); err != nil {
		return nil, fmt.Errorf("decode overrides: %w", err)
	}
	return o, nil
}

// PositionWith returns the effective position of id: the override when one
// exists for a placed person, otherwise the computed position.
func (l *Layout) PositionWith(o Overrides, id string) (Position, bool) {
	p, ok := l.Positions[id]
	if !ok {
		return Position{}, false
	}
	if pt, moved := o[id]; moved {
		return positionAt(pt.X, pt.Y, l.NodeWidth, l.NodeHeight), true
	}
	return p, true
}

// WithOverrides returns a copy of l with o merged in and bounds recomputed.
// Overrides for persons without a computed position are ignored, so a drag
// on a now hidden person never resurrects it.
func (l *Layout) WithOverrides(o Overrides) *Layout {
	out := &Layout{
		Positions:  maps.Clone(l.Positions),
		Order:      slices.Clone(l.Order),
		Couples:    slices.Clone(l.Couples),
		Bounds:     l.Bounds,
		NodeWidth:  l.NodeWidth,
		NodeHeight: l.NodeHeight,
	}
	if len(o) == 0 {
		return out
	}
	for id := range o {
		if p, ok := l.PositionWith(o, id); ok {
			out.Positions[id] = p
		}
	}
	out.computeBounds()
	return out
}
