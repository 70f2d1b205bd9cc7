package layout

import (
	"cmp"
	"math"
	"slices"

	"gonum.org/v1/gonum/graph/simple"
	"gonum.org/v1/gonum/graph/topo"

	"github.com/sebastiansztangierski/ancestral-scribe/pkg/index"
)

// component is a connected family with its horizontal extent.
type component struct {
	ids        []string
	first      int
	minX, maxX float64
}

// Components returns the connected components of the placed persons over
// visible spouse and parent edges, ordered by leftmost x then input order.
func Components(l *Layout, ix *index.Index) [][]string {
	comps := components(l, ix)
	out := make([][]string, len(comps))
	for i, c := range comps {
		out[i] = c.ids
	}
	return out
}

func components(l *Layout, ix *index.Index) []component {
	if len(l.Order) == 0 {
		return nil
	}
	nodeOf := make(map[string]int64, len(l.Order))
	g := simple.NewUndirectedGraph()
	for i, id := range l.Order {
		nodeOf[id] = int64(i)
		g.AddNode(simple.Node(i))
	}
	link := func(a, b string) {
		na, okA := nodeOf[a]
		nb, okB := nodeOf[b]
		if !okA || !okB || na == nb {
			return
		}
		g.SetEdge(g.NewEdge(simple.Node(na), simple.Node(nb)))
	}
	for _, id := range l.Order {
		if s, ok := ix.SpouseOf(id); ok {
			link(id, s)
		}
		for _, c := range ix.Children(id) {
			link(id, c)
		}
	}

	var comps []component
	for _, nodes := range topo.ConnectedComponents(g) {
		c := component{first: math.MaxInt, minX: math.Inf(1), maxX: math.Inf(-1)}
		idx := make([]int, 0, len(nodes))
		for _, n := range nodes {
			idx = append(idx, int(n.ID()))
		}
		slices.Sort(idx)
		for _, i := range idx {
			id := l.Order[i]
			p := l.Positions[id]
			c.ids = append(c.ids, id)
			c.first = min(c.first, i)
			c.minX = math.Min(c.minX, p.X)
			c.maxX = math.Max(c.maxX, p.X+l.NodeWidth)
		}
		comps = append(comps, c)
	}
	slices.SortFunc(comps, func(a, b component) int {
		if r := cmp.Compare(a.minX, b.minX); r != 0 {
			return r
		}
		return cmp.Compare(a.first, b.first)
	})
	return comps
}

// packComponents re-packs components left to right, starting at the
// leftmost component's current x, with ComponentGap between bounding boxes.
func packComponents(l *Layout, ix *index.Index, o Options) {
	comps := components(l, ix)
	if len(comps) == 0 {
		return
	}
	cursor := comps[0].minX
	for _, c := range comps {
		dx := cursor - c.minX
		if dx != 0 {
			for _, id := range c.ids {
				p := l.Positions[id]
				l.Positions[id] = positionAt(p.X+dx, p.Y, o.NodeWidth, o.NodeHeight)
			}
		}
		cursor += (c.maxX - c.minX) + o.ComponentGap
	}
}
