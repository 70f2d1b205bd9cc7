// Package index builds the lookup structures the layout engine and the
// visibility filter query: symmetric spouse pairs, parent → children lists,
// children grouped by couple and generation membership.
//
// Building an index never fails. Edges that reference unknown persons, self
// loops and duplicate edges are dropped; a person whose spouse edges conflict
// keeps the first partner seen in edge order.
package index

import (
	"slices"

	"github.com/sebastiansztangierski/ancestral-scribe/pkg/family"
)

// CoupleKey identifies a couple independent of edge direction. A is always
// the lexically smaller id, so (a,b) and (b,a) produce the same key.
type CoupleKey struct {
	A, B string
}

// MakeCoupleKey returns the canonical key for two partners.
func MakeCoupleKey(a, b string) CoupleKey {
	if b < a {
		a, b = b, a
	}
	return CoupleKey{A: a, B: b}
}

// Couple is a registered spouse pair in edge order.
type Couple struct {
	Person1  string
	Person2  string
	Children []string
}

// Index is an immutable lookup view over a tree's persons and family edges.
type Index struct {
	order      []string
	position   map[string]int
	generation map[string]int

	spouse   map[string]string
	children map[string][]string
	parents  map[string][]string

	couples        []CoupleKey
	coupleFirst    map[CoupleKey]string
	coupleChildren map[CoupleKey][]string

	byGeneration map[int][]string
}

// FromTree indexes a tree's persons and family edges.
func FromTree(t *family.Tree) *Index {
	return Build(t.Persons, t.FamilyEdges)
}

// Build indexes persons and edges.
func Build(persons []family.Person, edges []family.Edge) *Index {
	ix := &Index{
		position:       make(map[string]int, len(persons)),
		generation:     make(map[string]int, len(persons)),
		spouse:         make(map[string]string),
		children:       make(map[string][]string),
		parents:        make(map[string][]string),
		coupleFirst:    make(map[CoupleKey]string),
		coupleChildren: make(map[CoupleKey][]string),
		byGeneration:   make(map[int][]string),
	}
	for _, p := range persons {
		if _, dup := ix.position[p.ID]; dup {
			continue
		}
		ix.position[p.ID] = len(ix.order)
		ix.order = append(ix.order, p.ID)
		ix.generation[p.ID] = p.Generation
		ix.byGeneration[p.Generation] = append(ix.byGeneration[p.Generation], p.ID)
	}

	for _, e := range edges {
		if !ix.Has(e.From) || !ix.Has(e.To) || e.From == e.To {
			continue
		}
		switch e.Relation {
		case family.RelationSpouse:
			ix.addSpouse(e.From, e.To)
		case family.RelationParentChild:
			if !slices.Contains(ix.children[e.From], e.To) {
				ix.children[e.From] = append(ix.children[e.From], e.To)
				ix.parents[e.To] = append(ix.parents[e.To], e.From)
			}
		}
	}

	ix.groupChildren()
	return ix
}

func (ix *Index) addSpouse(a, b string) {
	if _, taken := ix.spouse[a]; taken {
		return
	}
	if _, taken := ix.spouse[b]; taken {
		return
	}
	ix.spouse[a] = b
	ix.spouse[b] = a
	key := MakeCoupleKey(a, b)
	ix.couples = append(ix.couples, key)
	ix.coupleFirst[key] = a
}

// groupChildren assigns each child to its parents' couple. A child belongs
// to couple (p,s) when p is a parent and either s is also a parent or p is
// the only parent on record. Children of unpartnered parents stay ungrouped.
func (ix *Index) groupChildren() {
	for _, key := range ix.couples {
		first := ix.coupleFirst[key]
		second := ix.spouse[first]
		var kids []string
		add := func(c string) {
			if !slices.Contains(kids, c) {
				kids = append(kids, c)
			}
		}
		for _, parent := range []string{first, second} {
			other := ix.spouse[parent]
			for _, c := range ix.children[parent] {
				ps := ix.parents[c]
				if len(ps) == 1 || slices.Contains(ps, other) {
					add(c)
				}
			}
		}
		ix.coupleChildren[key] = kids
	}
}

// Has reports whether id is an indexed person.
func (ix *Index) Has(id string) bool {
	_, ok := ix.position[id]
	return ok
}

// Order returns person ids in input order.
func (ix *Index) Order() []string { return ix.order }

// Len returns the number of indexed persons.
func (ix *Index) Len() int { return len(ix.order) }

// InputIndex returns the input position of id, or -1.
func (ix *Index) InputIndex(id string) int {
	if i, ok := ix.position[id]; ok {
		return i
	}
	return -1
}

// Generation returns the caller-supplied generation hint for id.
func (ix *Index) Generation(id string) (int, bool) {
	g, ok := ix.generation[id]
	return g, ok
}

// SpouseOf returns the registered partner of id.
func (ix *Index) SpouseOf(id string) (string, bool) {
	s, ok := ix.spouse[id]
	return s, ok
}

// Children returns the children of a single parent in edge order.
func (ix *Index) Children(id string) []string { return ix.children[id] }

// Parents returns the parents of id in edge order.
func (ix *Index) Parents(id string) []string { return ix.parents[id] }

// CoupleChildren returns the children grouped under the couple (a,b).
// The argument order does not matter.
func (ix *Index) CoupleChildren(a, b string) []string {
	return ix.coupleChildren[MakeCoupleKey(a, b)]
}

// Couples returns every registered couple in spouse-edge order. Person1 is
// the from side of the first spouse edge that formed the pair.
func (ix *Index) Couples() []Couple {
	out := make([]Couple, 0, len(ix.couples))
	for _, key := range ix.couples {
		first := ix.coupleFirst[key]
		out = append(out, Couple{
			Person1:  first,
			Person2:  ix.spouse[first],
			Children: ix.coupleChildren[key],
		})
	}
	return out
}

// Generations returns the distinct generation levels in ascending order.
func (ix *Index) Generations() []int {
	levels := make([]int, 0, len(ix.byGeneration))
	for g := range ix.byGeneration {
		levels = append(levels, g)
	}
	slices.Sort(levels)
	return levels
}

// ByGeneration returns the persons at generation g in input order.
func (ix *Index) ByGeneration(g int) []string { return ix.byGeneration[g] }
