package layout

import (
	"math"
	"slices"

	"github.com/sebastiansztangierski/ancestral-scribe/pkg/family"
	"github.com/sebastiansztangierski/ancestral-scribe/pkg/index"
)

// Compute lays out the visible persons of t. Persons in visible that are
// not part of t are ignored.
func Compute(t *family.Tree, visible []family.Person, opts ...Option) *Layout {
	ids := make([]string, len(visible))
	for i, p := range visible {
		ids[i] = p.ID
	}
	return ComputeIndexed(index.FromTree(t), ids, opts...)
}

// ComputeIndexed lays out the given visible ids over a prebuilt index.
func ComputeIndexed(ix *index.Index, visible []string, opts ...Option) *Layout {
	o := newOptions(opts...)
	p := newPlacer(ix, visible, o)
	p.run()

	l := &Layout{
		Positions:  p.pos,
		Couples:    p.couples,
		NodeWidth:  o.NodeWidth,
		NodeHeight: o.NodeHeight,
	}
	for _, id := range p.order {
		if _, ok := p.pos[id]; ok {
			l.Order = append(l.Order, id)
		}
	}
	if l.Couples == nil {
		l.Couples = []Couple{}
	}

	packComponents(l, ix, o)
	if o.Compact {
		compactRows(l, ix, o)
	}
	l.computeBounds()
	return l
}

// placer is the accumulator threaded through the recursive pass. placed
// records placement order so a freshly laid out subtree can be translated
// as a unit.
type placer struct {
	ix      *index.Index
	opts    Options
	order   []string
	visible map[string]struct{}

	pos      map[string]Position
	placed   []string
	couples  []Couple
	visiting map[string]struct{}
}

func newPlacer(ix *index.Index, visible []string, o Options) *placer {
	p := &placer{
		ix:       ix,
		opts:     o,
		visible:  make(map[string]struct{}, len(visible)),
		pos:      make(map[string]Position, len(visible)),
		visiting: make(map[string]struct{}),
	}
	for _, id := range visible {
		if !ix.Has(id) {
			continue
		}
		if _, dup := p.visible[id]; dup {
			continue
		}
		p.visible[id] = struct{}{}
	}
	// Input order of the tree, not of the caller's slice.
	for _, id := range ix.Order() {
		if _, ok := p.visible[id]; ok {
			p.order = append(p.order, id)
		}
	}
	return p
}

func (p *placer) isVisible(id string) bool {
	_, ok := p.visible[id]
	return ok
}

func (p *placer) isPlaced(id string) bool {
	_, ok := p.pos[id]
	return ok
}

// claim marks ids as being laid out so parent cycles cannot recurse back
// into them.
func (p *placer) claim(ids ...string) bool {
	for _, id := range ids {
		if p.isPlaced(id) {
			return false
		}
		if _, busy := p.visiting[id]; busy {
			return false
		}
	}
	for _, id := range ids {
		p.visiting[id] = struct{}{}
	}
	return true
}

func (p *placer) place(id string, x, y float64) {
	p.pos[id] = positionAt(x, y, p.opts.NodeWidth, p.opts.NodeHeight)
	p.placed = append(p.placed, id)
	delete(p.visiting, id)
}

// translate shifts every person placed since mark.
func (p *placer) translate(mark int, dx float64) {
	if dx == 0 {
		return
	}
	for _, id := range p.placed[mark:] {
		pos := p.pos[id]
		p.pos[id] = positionAt(pos.X+dx, pos.Y, p.opts.NodeWidth, p.opts.NodeHeight)
	}
}

// visibleSpouse returns the partner of id when both are visible.
func (p *placer) visibleSpouse(id string) (string, bool) {
	s, ok := p.ix.SpouseOf(id)
	if !ok || !p.isVisible(s) {
		return "", false
	}
	return s, true
}

func (p *placer) hasVisibleParent(id string) bool {
	return slices.ContainsFunc(p.ix.Parents(id), p.isVisible)
}

func (p *placer) visibleCoupleChildren(a, b string) []string {
	var out []string
	for _, c := range p.ix.CoupleChildren(a, b) {
		if p.isVisible(c) {
			out = append(out, c)
		}
	}
	return out
}

// soloChildren returns visible children whose only visible parent is id.
func (p *placer) soloChildren(id string) []string {
	var out []string
	for _, c := range p.ix.Children(id) {
		if !p.isVisible(c) {
			continue
		}
		n := 0
		for _, par := range p.ix.Parents(c) {
			if p.isVisible(par) {
				n++
			}
		}
		if n == 1 {
			out = append(out, c)
		}
	}
	return out
}

func (p *placer) run() {
	if len(p.order) == 0 {
		return
	}
	minGen := math.MaxInt
	for _, id := range p.order {
		if g, _ := p.ix.Generation(id); g < minGen {
			minGen = g
		}
	}

	cursor := 0.0
	layoutRoot := func(id string) {
		g, _ := p.ix.Generation(id)
		y := float64(max(g-minGen, 0)) * p.opts.GenerationSpacing
		if w, _ := p.subtree(id, cursor, y); w > 0 {
			cursor += w + 2*p.opts.SiblingSpacing
		}
	}

	for _, id := range p.order {
		if p.hasVisibleParent(id) {
			continue
		}
		// A married-in partner is placed next to the spouse who descends
		// from a visible parent.
		if s, ok := p.visibleSpouse(id); ok && p.hasVisibleParent(s) {
			continue
		}
		layoutRoot(id)
	}

	// Anything not reachable from a root (parent cycles, orphaned married-in
	// partners) still gets a position.
	for _, id := range p.order {
		if !p.isPlaced(id) {
			layoutRoot(id)
		}
	}
}

// subtree lays out id and its descendants starting at (x, y). It returns the
// horizontal extent claimed from x and the center-x of id's own node, which
// the parent level averages over. A person already placed, or one whose
// layout is in progress further up a cycle, claims nothing.
func (p *placer) subtree(id string, x, y float64) (width, center float64) {
	if !p.claim(id) {
		return 0, 0
	}
	o := p.opts

	if s, ok := p.visibleSpouse(id); ok && p.claim(s) {
		slot := len(p.couples)
		p.couples = append(p.couples, Couple{Person1: id, Person2: s})

		mark := len(p.placed)
		kids := p.visibleCoupleChildren(id, s)
		end, centers, own := p.children(kids, x, y+o.GenerationSpacing)
		p.couples[slot].Children = nonNil(own)
		p.couples[slot].Elsewhere = without(kids, own)
		if len(centers) == 0 {
			p.place(id, x, y)
			p.place(s, x+o.CoupleSpacing, y)
			w := o.CoupleSpacing + o.NodeWidth
			return w, x + o.NodeWidth/2
		}

		mid := mean(centers)
		left := mid - o.CoupleSpacing/2 - o.NodeWidth/2
		if left < x {
			shift := x - left
			p.translate(mark, shift)
			left += shift
			end += shift
		}
		p.place(id, left, y)
		p.place(s, left+o.CoupleSpacing, y)
		return math.Max(end, left+o.CoupleSpacing+o.NodeWidth) - x, left + o.NodeWidth/2
	}

	// Single parent: center the person over children nobody else claims.
	mark := len(p.placed)
	end, centers, _ := p.children(p.soloChildren(id), x, y+o.GenerationSpacing)
	if len(centers) == 0 {
		p.place(id, x, y)
		return o.NodeWidth, x + o.NodeWidth/2
	}
	mid := mean(centers)
	left := mid - o.NodeWidth/2
	if left < x {
		shift := x - left
		p.translate(mark, shift)
		left += shift
		end += shift
	}
	p.place(id, left, y)
	return math.Max(end, left+o.NodeWidth) - x, left + o.NodeWidth/2
}

// children lays out kids left to right from x and returns the right edge
// of the span plus the centers and ids of the children placed by this call.
// Kids already placed under another family are skipped.
func (p *placer) children(kids []string, x, y float64) (end float64, centers []float64, placed []string) {
	cursor := x
	end = x
	for _, c := range kids {
		w, cx := p.subtree(c, cursor, y)
		if w == 0 {
			continue
		}
		centers = append(centers, cx)
		placed = append(placed, c)
		end = cursor + w
		cursor += w + p.opts.SiblingSpacing
	}
	return end, centers, placed
}

// without returns the ids of all not in some, or nil.
func without(all, some []string) []string {
	var out []string
	for _, id := range all {
		if !slices.Contains(some, id) {
			out = append(out, id)
		}
	}
	return out
}

func mean(xs []float64) float64 {
	var sum float64
	for _, v := range xs {
		sum += v
	}
	return sum / float64(len(xs))
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
