package sink

import (
	"bytes"
	"fmt"
	"html"
	"math"
	"strconv"

	"github.com/sebastiansztangierski/ancestral-scribe/pkg/family"
	"github.com/sebastiansztangierski/ancestral-scribe/pkg/layout"
	"github.com/sebastiansztangierski/ancestral-scribe/pkg/render/connector"
)

// DefaultPadding surrounds the layout bounds in the SVG viewBox.
const DefaultPadding = 40.0

// Card colors.
const (
	colorBackground = "#1c1917"
	colorCard       = "#292524"
	colorCardMale   = "#1e3a5f"
	colorCardFemale = "#4a1d3f"
	colorBorder     = "#a8a29e"
	colorSelected   = "#facc15"
	colorText       = "#f5f5f4"
	colorMuted      = "#a8a29e"
	colorBadge      = "#b45309"
)

const nodeCSS = `
    .person { cursor: pointer; }
    .person:hover rect.card { stroke-width: 3; }
    .unknown rect.card { stroke-dasharray: 4 3; opacity: 0.7; }`

// Marks reports collapse state for badge rendering. [visibility.Filter]
// satisfies it.
type Marks interface {
	IsCollapsed(id string) bool
	DescendantCount(id string) int
}

// SVGOption configures RenderSVG.
type SVGOption func(*svgRenderer)

type svgRenderer struct {
	tree       *family.Tree
	marks      Marks
	selected   string
	padding    float64
	background bool
	connOpts   []connector.Option
}

// WithTree supplies person details and special relations. Without it cards
// show ids only and no special relations are drawn.
func WithTree(t *family.Tree) SVGOption { return func(r *svgRenderer) { r.tree = t } }

// WithMarks enables collapse badges.
func WithMarks(m Marks) SVGOption { return func(r *svgRenderer) { r.marks = m } }

// WithSelected outlines id and overlays its special relations.
func WithSelected(id string) SVGOption { return func(r *svgRenderer) { r.selected = id } }

// WithPadding sets the margin around the layout bounds.
func WithPadding(p float64) SVGOption { return func(r *svgRenderer) { r.padding = p } }

// WithTransparentBackground omits the background rect.
func WithTransparentBackground() SVGOption { return func(r *svgRenderer) { r.background = false } }

// WithConnectorOptions forwards options to connector.Build.
func WithConnectorOptions(opts ...connector.Option) SVGOption {
	return func(r *svgRenderer) { r.connOpts = append(r.connOpts, opts...) }
}

// RenderSVG draws l as a standalone SVG document.
func RenderSVG(l *layout.Layout, opts ...SVGOption) []byte {
	r := svgRenderer{padding: DefaultPadding, background: true}
	for _, opt := range opts {
		opt(&r)
	}

	var relations []family.SpecialRelation
	if r.tree != nil {
		relations = r.tree.SpecialRelations
	}
	prims := connector.Build(l, relations, r.selected, r.connOpts...)

	minX, minY := l.Bounds.MinX-r.padding, l.Bounds.MinY-r.padding
	w, h := l.Bounds.Width()+2*r.padding, l.Bounds.Height()+2*r.padding

	var buf bytes.Buffer
	fmt.Fprintf(&buf, `<svg xmlns="http://www.w3.org/2000/svg" viewBox="%s %s %s %s" width="%.0f" height="%.0f">`+"\n",
		num(minX), num(minY), num(w), num(h), w, h)
	fmt.Fprintf(&buf, "  <style>%s\n  </style>\n", nodeCSS)
	if r.background {
		fmt.Fprintf(&buf, `  <rect x="%s" y="%s" width="%s" height="%s" fill="%s"/>`+"\n",
			num(minX), num(minY), num(w), num(h), colorBackground)
	}

	buf.WriteString(`  <g id="connectors">` + "\n")
	for _, p := range prims {
		renderPrimitive(&buf, p)
	}
	buf.WriteString("  </g>\n")

	buf.WriteString(`  <g id="persons">` + "\n")
	for _, id := range l.Order {
		pos := l.Positions[id]
		r.renderPerson(&buf, l, id, pos)
	}
	buf.WriteString("  </g>\n")

	buf.WriteString("</svg>\n")
	return buf.Bytes()
}

func renderPrimitive(buf *bytes.Buffer, p connector.Primitive) {
	switch p.Shape {
	case connector.ShapeRect:
		fmt.Fprintf(buf, `    <rect class="%s" x="%s" y="%s" width="%s" height="%s" fill="%s" stroke="%s" stroke-width="1.5"/>`+"\n",
			p.Kind, num(p.X1), num(p.Y1), num(p.X2-p.X1), num(p.Y2-p.Y1), p.Fill, p.Stroke)
	default:
		dash := ""
		if p.Dashed {
			dash = ` stroke-dasharray="6 4"`
		}
		fmt.Fprintf(buf, `    <line class="%s" x1="%s" y1="%s" x2="%s" y2="%s" stroke="%s" stroke-width="2"%s/>`+"\n",
			p.Kind, num(p.X1), num(p.Y1), num(p.X2), num(p.Y2), p.Stroke, dash)
	}
}

func (r *svgRenderer) renderPerson(buf *bytes.Buffer, l *layout.Layout, id string, pos layout.Position) {
	person := family.Person{ID: id, Name: id}
	if r.tree != nil {
		if p, ok := r.tree.Person(id); ok {
			person = p
		}
	}

	class := "person"
	if person.IsUnknown {
		class += " unknown"
	}
	stroke, width := colorBorder, "1.5"
	if id == r.selected {
		stroke, width = colorSelected, "3"
	}

	fmt.Fprintf(buf, `    <g id="person-%s" class="%s">`+"\n", html.EscapeString(id), class)
	fmt.Fprintf(buf, `      <rect class="card" x="%s" y="%s" width="%s" height="%s" rx="6" fill="%s" stroke="%s" stroke-width="%s"/>`+"\n",
		num(pos.X), num(pos.Y), num(l.NodeWidth), num(l.NodeHeight), cardFill(person), stroke, width)

	name := person.Name
	if name == "" {
		name = id
	}
	if person.IsUnknown {
		name = "?"
	}
	textAt(buf, pos.CenterX, pos.Y+l.NodeHeight*0.42, 11, colorText, name)
	if person.Title != "" {
		textAt(buf, pos.CenterX, pos.Y+l.NodeHeight*0.60, 8, colorMuted, person.Title)
	}
	if years := lifeSpan(person); years != "" {
		textAt(buf, pos.CenterX, pos.Y+l.NodeHeight*0.80, 8, colorMuted, years)
	}

	if r.marks != nil && r.marks.IsCollapsed(id) {
		if n := r.marks.DescendantCount(id); n > 0 {
			bx, by := pos.X+l.NodeWidth-10, pos.Y+l.NodeHeight
			fmt.Fprintf(buf, `      <circle class="badge" cx="%s" cy="%s" r="10" fill="%s"/>`+"\n", num(bx), num(by), colorBadge)
			textAt(buf, bx, by+3, 8, colorText, "+"+strconv.Itoa(n))
		}
	}
	buf.WriteString("    </g>\n")
}

func textAt(buf *bytes.Buffer, x, y, size float64, fill, s string) {
	fmt.Fprintf(buf, `      <text x="%s" y="%s" font-size="%s" fill="%s" text-anchor="middle" font-family="serif">%s</text>`+"\n",
		num(x), num(y), num(size), fill, html.EscapeString(s))
}

func cardFill(p family.Person) string {
	switch p.Gender {
	case "male":
		return colorCardMale
	case "female":
		return colorCardFemale
	default:
		return colorCard
	}
}

func lifeSpan(p family.Person) string {
	switch {
	case p.BirthYear != "" && p.DeathYear != "":
		return p.BirthYear + " - " + p.DeathYear
	case p.BirthYear != "":
		return "b. " + p.BirthYear
	case p.DeathYear != "":
		return "d. " + p.DeathYear
	}
	return ""
}

// num formats a coordinate rounded to two decimals without trailing zeros.
func num(v float64) string {
	return strconv.FormatFloat(math.Round(v*100)/100, 'f', -1, 64)
}
