package family

import (
	"github.com/sebastiansztangierski/ancestral-scribe/pkg/errors"
)

// Validate reports structural problems an importer should refuse: empty or
// duplicate person ids, negative generations and unknown relation types.
//
// Dangling edge endpoints are not errors. The layout engine skips them, so a
// tree with a removed person still renders.
func Validate(t *Tree) error {
	if t == nil {
		return errors.New(errors.ErrCodeInvalidTree, "tree is nil")
	}
	seen := make(map[string]struct{}, len(t.Persons))
	for i, p := range t.Persons {
		if err := errors.ValidatePersonID(p.ID); err != nil {
			return errors.Wrap(errors.ErrCodeInvalidTree, err, "person #%d", i)
		}
		if _, dup := seen[p.ID]; dup {
			return errors.New(errors.ErrCodeInvalidTree, "duplicate person id %q", p.ID)
		}
		seen[p.ID] = struct{}{}
		if p.Generation < 0 {
			return errors.New(errors.ErrCodeInvalidTree, "person %q has negative generation %d", p.ID, p.Generation)
		}
	}
	for i, e := range t.FamilyEdges {
		if !e.IsSpouse() && !e.IsParentChild() {
			return errors.New(errors.ErrCodeInvalidTree, "family edge #%d (%s -> %s): unknown relation %q", i, e.From, e.To, e.Relation)
		}
	}
	return nil
}

// Dangling returns the family edges that reference a missing person or
// point at themselves. Useful for import warnings.
func Dangling(t *Tree) []Edge {
	ids := make(map[string]struct{}, len(t.Persons))
	for _, p := range t.Persons {
		ids[p.ID] = struct{}{}
	}
	var out []Edge
	for _, e := range t.FamilyEdges {
		_, okFrom := ids[e.From]
		_, okTo := ids[e.To]
		if !okFrom || !okTo || e.From == e.To {
			out = append(out, e)
		}
	}
	return out
}
