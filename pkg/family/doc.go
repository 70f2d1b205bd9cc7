// Package family defines the family tree data contract consumed by the
// layout engine and the rest of ancestral-scribe.
//
// A [Tree] is a flat list of [Person] records plus typed edges:
//
//   - [Edge] with [RelationSpouse] links two persons as a couple. Spouse
//     edges are symmetric: (a,b) and (b,a) denote the same couple.
//   - [Edge] with [RelationParentChild] is directed parent → child.
//   - [SpecialRelation] edges are decorative overlays (rival, mentor, ...)
//     and never influence layout.
//
// Trees are usually read from disk with [ReadFile], which picks JSON or
// YAML by extension:
//
//	tree, err := family.ReadFile("house-stark.json")
//	if err != nil {
//	    return err
//	}
//
// Decoding is strict about syntax and lenient about structure: malformed
// edges (dangling ids, self loops) survive decoding because the layout
// engine degrades around them. [Validate] reports the structural problems
// an importer should refuse.
package family
