package overview

import (
	"bytes"
	"fmt"
	"math"

	svg "github.com/ajstarks/svgo"

	"github.com/sebastiansztangierski/ancestral-scribe/pkg/layout"
	"github.com/sebastiansztangierski/ancestral-scribe/pkg/viewport"
)

// Minimap colors.
const (
	colorBackground = "#1c1917"
	colorConnector  = "rgb(180,83,9)"
	colorNode       = "rgb(251,191,36)"
	colorHidden     = "rgb(120,113,108)"
	colorRing       = "rgb(59,130,246)"
	colorViewport   = "rgb(59,130,246)"
)

// Marks supplies collapse state for node styling. *visibility.Filter
// satisfies it.
type Marks interface {
	IsHidden(id string) bool
	IsCollapsed(id string) bool
	DescendantCount(id string) int
}

// SVGOption configures RenderSVG.
type SVGOption func(*svgRenderer)

type svgRenderer struct {
	size   Size
	marks  Marks
	camera *viewport.Transform
	cw, ch float64
	pings  []Ping
}

// WithSize overrides the minimap size.
func WithSize(s Size) SVGOption { return func(r *svgRenderer) { r.size = s } }

// WithMarks dims hidden persons and rings collapsed ones.
func WithMarks(m Marks) SVGOption { return func(r *svgRenderer) { r.marks = m } }

// WithViewport draws the camera rectangle for a cw×ch container.
func WithViewport(t viewport.Transform, cw, ch float64) SVGOption {
	return func(r *svgRenderer) {
		r.camera = &t
		r.cw, r.ch = cw, ch
	}
}

// WithPings draws double-click markers.
func WithPings(p []Ping) SVGOption { return func(r *svgRenderer) { r.pings = p } }

// RenderSVG draws l as a minimap snapshot.
func RenderSVG(l *layout.Layout, opts ...SVGOption) []byte {
	r := svgRenderer{size: DefaultSize()}
	for _, opt := range opts {
		opt(&r)
	}

	var buf bytes.Buffer
	w, h := px(r.size.Width), px(r.size.Height)
	canvas := svg.New(&buf)
	canvas.Start(w, h)
	canvas.Rect(0, 0, w, h, "fill:"+colorBackground)

	proj, ok := NewProjection(l, r.size)
	if !ok {
		canvas.End()
		return buf.Bytes()
	}

	canvas.Gid("connectors")
	for _, c := range l.Couples {
		p1, ok1 := l.Positions[c.Person1]
		p2, ok2 := l.Positions[c.Person2]
		if !ok1 || !ok2 {
			continue
		}
		x1, y1 := proj.ToMinimap(p1.CenterX, p1.CenterY)
		x2, y2 := proj.ToMinimap(p2.CenterX, p2.CenterY)
		style := fmt.Sprintf("stroke:%s;stroke-opacity:0.3;stroke-width:1", colorConnector)
		canvas.Line(px(x1), px(y1), px(x2), px(y2), style)
		midX, midY := (x1+x2)/2, (y1+y2)/2
		for _, kid := range c.AllChildren() {
			kp, ok := l.Positions[kid]
			if !ok {
				continue
			}
			kx, ky := proj.ToMinimap(kp.CenterX, kp.CenterY)
			canvas.Line(px(midX), px(midY), px(kx), px(ky), style)
		}
	}
	canvas.Gend()

	canvas.Gid("nodes")
	for _, id := range l.Order {
		p := l.Positions[id]
		x, y := proj.ToMinimap(p.CenterX, p.CenterY)
		if r.marks != nil && r.marks.IsHidden(id) {
			canvas.Circle(px(x), px(y), 2, fmt.Sprintf("fill:%s;fill-opacity:0.3", colorHidden))
			continue
		}
		canvas.Circle(px(x), px(y), 2, fmt.Sprintf("fill:%s;fill-opacity:0.8", colorNode))
		if r.marks != nil && r.marks.IsCollapsed(id) && r.marks.DescendantCount(id) > 0 {
			canvas.Circle(px(x), px(y), 4, fmt.Sprintf("fill:none;stroke:%s;stroke-opacity:0.7;stroke-width:1", colorRing))
		}
	}
	canvas.Gend()

	if r.camera != nil && r.cw > 0 && r.ch > 0 {
		vr := proj.ViewportRect(*r.camera, r.cw, r.ch)
		canvas.Rect(px(vr.X), px(vr.Y), px(vr.W), px(vr.H),
			fmt.Sprintf("fill:%s;fill-opacity:0.1;stroke:%s;stroke-opacity:0.8;stroke-width:2", colorViewport, colorViewport))
	}
	for _, p := range r.pings {
		canvas.Circle(px(p.X), px(p.Y), 8, fmt.Sprintf("fill:none;stroke:%s;stroke-width:2", colorRing))
	}

	canvas.End()
	return buf.Bytes()
}

func px(v float64) int { return int(math.Round(v)) }
