// Package search finds persons by name or title and moves the camera to
// them.
package search

import (
	"strings"

	"github.com/sebastiansztangierski/ancestral-scribe/pkg/family"
	"github.com/sebastiansztangierski/ancestral-scribe/pkg/layout"
	"github.com/sebastiansztangierski/ancestral-scribe/pkg/viewport"
)

// DefaultLimit caps the number of results.
const DefaultLimit = 8

// Find returns persons whose name or title contains query, case
// insensitively, in input order and at most limit of them. A blank query
// matches nothing. A limit <= 0 means DefaultLimit.
func Find(persons []family.Person, query string, limit int) []family.Person {
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return nil
	}
	if limit <= 0 {
		limit = DefaultLimit
	}
	var out []family.Person
	for _, p := range persons {
		if strings.Contains(strings.ToLower(p.Name), q) || strings.Contains(strings.ToLower(p.Title), q) {
			out = append(out, p)
			if len(out) == limit {
				break
			}
		}
	}
	return out
}

// First returns the first match, which is what Enter selects.
func First(persons []family.Person, query string) (family.Person, bool) {
	res := Find(persons, query, 1)
	if len(res) == 0 {
		return family.Person{}, false
	}
	return res[0], true
}

// Jump stops any fling and eases the camera so id is centered in a w×h
// screen. It returns false when id has no position, for example because it
// is hidden under a collapsed ancestor.
func Jump(vc *viewport.Controller, l *layout.Layout, id string, w, h float64) bool {
	p, ok := l.Positions[id]
	if !ok {
		return false
	}
	vc.FocusPerson(p, w, h, viewport.FocusSearch)
	return true
}
