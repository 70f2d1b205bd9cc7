// Package overview down-projects a layout into a small fixed-size minimap
// and maps minimap clicks and drags back to camera moves.
//
// The projection fits the layout's node extent into the minimap minus
// padding with a single uniform scale. The camera's visible region is drawn
// as a rectangle; clicking outside it centers the clicked world point,
// dragging it pans the camera immediately.
package overview

import (
	"math"

	"github.com/sebastiansztangierski/ancestral-scribe/pkg/layout"
	"github.com/sebastiansztangierski/ancestral-scribe/pkg/viewport"
)

// Default minimap geometry in minimap pixels.
const (
	DefaultWidth   = 200.0
	DefaultHeight  = 150.0
	DefaultPadding = 10.0
)

// Size is the minimap canvas.
type Size struct {
	Width   float64 `json:"width" toml:"width"`
	Height  float64 `json:"height" toml:"height"`
	Padding float64 `json:"padding" toml:"padding"`
}

// DefaultSize returns the standard 200×150 minimap with 10px padding.
func DefaultSize() Size {
	return Size{Width: DefaultWidth, Height: DefaultHeight, Padding: DefaultPadding}
}

// Rect is an axis-aligned rectangle in minimap pixels.
type Rect struct {
	X, Y, W, H float64
}

// Contains reports whether (x, y) lies inside r, edges included.
func (r Rect) Contains(x, y float64) bool {
	return x >= r.X && x <= r.X+r.W && y >= r.Y && y <= r.Y+r.H
}

// Projection maps world coordinates onto the minimap.
type Projection struct {
	MinX, MinY float64
	Scale      float64
	Padding    float64
}

// NewProjection fits l's node extent into size. It returns false for an
// empty layout.
func NewProjection(l *layout.Layout, size Size) (Projection, bool) {
	if len(l.Positions) == 0 {
		return Projection{}, false
	}
	minX, minY := math.Inf(1), math.Inf(1)
	maxX, maxY := math.Inf(-1), math.Inf(-1)
	for _, p := range l.Positions {
		minX = math.Min(minX, p.X)
		minY = math.Min(minY, p.Y)
		maxX = math.Max(maxX, p.X)
		maxY = math.Max(maxY, p.Y)
	}
	maxX += l.NodeWidth
	maxY += l.NodeHeight

	sx := (size.Width - 2*size.Padding) / (maxX - minX)
	sy := (size.Height - 2*size.Padding) / (maxY - minY)
	return Projection{MinX: minX, MinY: minY, Scale: math.Min(sx, sy), Padding: size.Padding}, true
}

// ToMinimap maps a world point to minimap pixels.
func (p Projection) ToMinimap(wx, wy float64) (float64, float64) {
	return p.Padding + (wx-p.MinX)*p.Scale, p.Padding + (wy-p.MinY)*p.Scale
}

// ToWorld maps minimap pixels to a world point.
func (p Projection) ToWorld(mx, my float64) (float64, float64) {
	return (mx-p.Padding)/p.Scale + p.MinX, (my-p.Padding)/p.Scale + p.MinY
}

// ViewportRect returns the camera's visible region for a cw×ch container.
func (p Projection) ViewportRect(t viewport.Transform, cw, ch float64) Rect {
	x0, y0 := t.ToWorld(0, 0)
	x1, y1 := t.ToWorld(cw, ch)
	mx0, my0 := p.ToMinimap(x0, y0)
	mx1, my1 := p.ToMinimap(x1, y1)
	return Rect{X: mx0, Y: my0, W: mx1 - mx0, H: my1 - my0}
}

// CenterOn returns the camera offset that centers the world point under
// minimap pixel (mx, my) in a cw×ch container at the camera's scale.
func (p Projection) CenterOn(mx, my float64, t viewport.Transform, cw, ch float64) (x, y float64) {
	wx, wy := p.ToWorld(mx, my)
	return cw/2 - wx*t.Scale, ch/2 - wy*t.Scale
}

// DragBy returns the camera offset after dragging the viewport rectangle by
// (dx, dy) minimap pixels.
func (p Projection) DragBy(dx, dy float64, t viewport.Transform) (x, y float64) {
	return t.X - dx/p.Scale*t.Scale, t.Y - dy/p.Scale*t.Scale
}
