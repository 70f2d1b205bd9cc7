// Package visibility derives which persons are shown given a set of
// collapsed person ids.
//
// Collapsing a person hides that person's full descendant closure over
// parent → child edges. The collapsed person stays visible, as do its
// ancestors and any married-in spouse of a descendant who is not itself a
// descendant.
package visibility

import (
	"slices"

	"github.com/sebastiansztangierski/ancestral-scribe/pkg/family"
	"github.com/sebastiansztangierski/ancestral-scribe/pkg/index"
)

// Filter is the visibility state for one tree and one collapse set.
// It is immutable; a new collapse set means a new Filter.
type Filter struct {
	ix        *index.Index
	collapsed map[string]struct{}
	hidden    map[string]struct{}
	visible   []string
}

// New computes visibility for ix under the given collapsed ids. Unknown ids
// in collapsed are ignored.
func New(ix *index.Index, collapsed []string) *Filter {
	f := &Filter{
		ix:        ix,
		collapsed: make(map[string]struct{}, len(collapsed)),
		hidden:    make(map[string]struct{}),
	}
	for _, id := range collapsed {
		if !ix.Has(id) {
			continue
		}
		f.collapsed[id] = struct{}{}
		for _, d := range Descendants(ix, id) {
			f.hidden[d] = struct{}{}
		}
	}
	for _, id := range ix.Order() {
		if _, h := f.hidden[id]; !h {
			f.visible = append(f.visible, id)
		}
	}
	return f
}

// Descendants returns every descendant of id in breadth-first order, not
// including id itself. Cycles in the parent edges are tolerated.
func Descendants(ix *index.Index, id string) []string {
	seen := map[string]struct{}{id: {}}
	var out []string
	queue := []string{id}
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		for _, c := range ix.Children(cur) {
			if _, ok := seen[c]; ok {
				continue
			}
			seen[c] = struct{}{}
			out = append(out, c)
			queue = append(queue, c)
		}
	}
	return out
}

// GetDescendants returns the descendants of id.
func (f *Filter) GetDescendants(id string) []string {
	return Descendants(f.ix, id)
}

// IsHidden reports whether id is hidden by some collapsed ancestor.
func (f *Filter) IsHidden(id string) bool {
	_, ok := f.hidden[id]
	return ok
}

// IsCollapsed reports whether id is in the collapse set.
func (f *Filter) IsCollapsed(id string) bool {
	_, ok := f.collapsed[id]
	return ok
}

// DescendantCount returns the size of id's own descendant set, used for the
// "+N hidden" badge. It does not depend on the collapse set.
func (f *Filter) DescendantCount(id string) int {
	return len(Descendants(f.ix, id))
}

// HasChildren reports whether id has at least one child.
func (f *Filter) HasChildren(id string) bool {
	return len(f.ix.Children(id)) > 0
}

// HiddenIDs returns the hidden ids in input order.
func (f *Filter) HiddenIDs() []string {
	out := make([]string, 0, len(f.hidden))
	for _, id := range f.ix.Order() {
		if _, ok := f.hidden[id]; ok {
			out = append(out, id)
		}
	}
	return out
}

// Collapsed returns the effective collapse set, sorted.
func (f *Filter) Collapsed() []string {
	out := make([]string, 0, len(f.collapsed))
	for id := range f.collapsed {
		out = append(out, id)
	}
	slices.Sort(out)
	return out
}

// VisibleIDs returns visible person ids in input order.
func (f *Filter) VisibleIDs() []string { return f.visible }

// VisiblePersons filters t.Persons down to the visible set, preserving order.
func (f *Filter) VisiblePersons(t *family.Tree) []family.Person {
	out := make([]family.Person, 0, len(f.visible))
	for _, p := range t.Persons {
		if f.ix.Has(p.ID) && !f.IsHidden(p.ID) {
			out = append(out, p)
		}
	}
	return out
}

// Toggle returns collapsed with id added or removed. The input is not
// modified. Toggling a person without children is allowed and has no
// visible effect.
func Toggle(collapsed []string, id string) []string {
	out := slices.Clone(collapsed)
	if i := slices.Index(out, id); i >= 0 {
		return slices.Delete(out, i, i+1)
	}
	return append(out, id)
}
