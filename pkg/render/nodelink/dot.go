package nodelink

import (
	"bytes"
	"context"
	"fmt"
	"regexp"
	"slices"
	"strconv"
	"strings"

	"github.com/goccy/go-graphviz"

	"github.com/sebastiansztangierski/ancestral-scribe/pkg/family"
	"github.com/sebastiansztangierski/ancestral-scribe/pkg/index"
)

// Options configures node-link diagram rendering.
type Options struct {
	// Detailed adds title and life years to node labels.
	Detailed bool
	// Special draws special relations as dashed, unconstrained edges.
	Special bool
}

// ToDOT converts the visible part of t to Graphviz DOT. A nil visible
// slice means every person.
func ToDOT(t *family.Tree, visible []string, opts Options) string {
	ix := index.FromTree(t)
	show := make(map[string]bool)
	if visible == nil {
		for _, id := range ix.Order() {
			show[id] = true
		}
	} else {
		for _, id := range visible {
			if ix.Has(id) {
				show[id] = true
			}
		}
	}

	var buf bytes.Buffer
	buf.WriteString("digraph G {\n")
	buf.WriteString("  rankdir=TB;\n")
	buf.WriteString("  bgcolor=\"transparent\";\n")
	buf.WriteString("  node [shape=box, style=\"rounded,filled\", fillcolor=white, fontsize=14, margin=\"0.2,0.1\"];\n")
	buf.WriteString("  edge [arrowhead=none];\n")
	buf.WriteString("  ranksep=0.6;\n")
	buf.WriteString("  nodesep=0.3;\n")
	buf.WriteString("\n")

	for _, id := range ix.Order() {
		if !show[id] {
			continue
		}
		p, _ := t.Person(id)
		fmt.Fprintf(&buf, "  %q [%s];\n", id, strings.Join(fmtAttrs(p, opts.Detailed), ", "))
	}

	buf.WriteString("\n")
	for i, c := range ix.Couples() {
		if !show[c.Person1] || !show[c.Person2] {
			continue
		}
		m := fmt.Sprintf("m%d", i)
		fmt.Fprintf(&buf, "  %q [shape=point, width=0.08, label=\"\"];\n", m)
		fmt.Fprintf(&buf, "  { rank=same; %q; %q; %q; }\n", c.Person1, m, c.Person2)
		fmt.Fprintf(&buf, "  %q -> %q [color=\"#dc2626\"];\n", c.Person1, m)
		fmt.Fprintf(&buf, "  %q -> %q [color=\"#dc2626\"];\n", m, c.Person2)
		for _, kid := range c.Children {
			if show[kid] {
				fmt.Fprintf(&buf, "  %q -> %q;\n", m, kid)
			}
		}
	}

	// Parent links not already drawn through a marriage point.
	for _, id := range ix.Order() {
		if !show[id] {
			continue
		}
		for _, p := range ix.Parents(id) {
			if !show[p] {
				continue
			}
			if sp, ok := ix.SpouseOf(p); ok && show[sp] && slices.Contains(ix.CoupleChildren(p, sp), id) {
				continue
			}
			fmt.Fprintf(&buf, "  %q -> %q;\n", p, id)
		}
	}

	if opts.Special {
		for _, r := range t.SpecialRelations {
			if show[r.From] && show[r.To] && r.From != r.To {
				fmt.Fprintf(&buf, "  %q -> %q [style=dashed, constraint=false, label=%q];\n", r.From, r.To, r.Relation)
			}
		}
	}

	buf.WriteString("}\n")
	return buf.String()
}

func fmtLabel(p family.Person, detailed bool) string {
	name := p.Name
	if name == "" {
		name = p.ID
	}
	if p.IsUnknown {
		name = "?"
	}
	if !detailed {
		return name
	}
	parts := []string{name}
	if p.Title != "" {
		parts = append(parts, p.Title)
	}
	if p.BirthYear != "" || p.DeathYear != "" {
		parts = append(parts, p.BirthYear+" - "+p.DeathYear)
	}
	parts = append(parts, fmt.Sprintf("gen %d", p.Generation))
	return strings.Join(parts, "\n")
}

func fmtAttrs(p family.Person, detailed bool) []string {
	attrs := []string{fmt.Sprintf("label=%q", fmtLabel(p, detailed))}
	switch {
	case p.IsUnknown:
		attrs = append(attrs, "style=\"rounded,filled,dashed\"", "fillcolor=lightgrey")
	case p.Gender == "male":
		attrs = append(attrs, "fillcolor=\"#dbeafe\"")
	case p.Gender == "female":
		attrs = append(attrs, "fillcolor=\"#fce7f3\"")
	}
	return attrs
}

// RenderSVG renders a DOT graph to SVG using Graphviz.
func RenderSVG(ctx context.Context, dot string) ([]byte, error) {
	gv, err := graphviz.New(ctx)
	if err != nil {
		return nil, fmt.Errorf("init graphviz: %w", err)
	}
	defer gv.Close()

	g, err := graphviz.ParseBytes([]byte(dot))
	if err != nil {
		return nil, fmt.Errorf("parse DOT: %w", err)
	}
	defer g.Close()

	var buf bytes.Buffer
	if err := gv.Render(ctx, g, graphviz.SVG, &buf); err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	return normalizeViewBox(buf.Bytes()), nil
}

var (
	svgTagRe  = regexp.MustCompile(`<svg[^>]*>`)
	viewBoxRe = regexp.MustCompile(`viewBox="([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)"`)
)

// normalizeViewBox replaces Graphviz's point-sized root element with one
// whose width and height match the viewBox.
func normalizeViewBox(svg []byte) []byte {
	match := viewBoxRe.FindSubmatch(svg)
	if match == nil {
		return svg
	}

	w, _ := strconv.ParseFloat(string(match[3]), 64)
	h, _ := strconv.ParseFloat(string(match[4]), 64)
	if w == 0 || h == 0 {
		return svg
	}

	root := fmt.Sprintf(`<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 %.2f %.2f" width="%.0f" height="%.0f">`,
		w, h, w, h)
	return svgTagRe.ReplaceAll(svg, []byte(root))
}
