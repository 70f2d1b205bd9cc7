// Package layout converts a family graph into non-overlapping 2-D
// coordinates.
//
// # Overview
//
// The engine is a recursive tidy-tree layout that treats couples as
// compound units. Given a tree and the currently visible persons it
// produces a [Layout]:
//
//   - Positions: one [Position] per visible person (top-left anchor plus
//     the center used for connector math)
//   - Couples: every visible spouse pair with its resolved children, in
//     placement order
//   - Bounds: the bounding box of all nodes, used to fit the camera
//
// # Algorithm
//
// Roots are visible persons without a visible parent. Each root is laid
// out depth-first: a person with an unplaced visible spouse is placed as a
// couple; the couple's children are laid out left to right and the couple
// is centered over the arithmetic mean of the children's center-x. Roots
// are placed left to right with twice the sibling gap between them.
//
// A packing pass then groups persons into connected components over the
// visible spouse and parent edges and re-packs the components left to
// right with [Options.ComponentGap] between their bounding boxes, so
// independent families never collide.
//
// An optional row compaction pass ([WithCompaction]) tightens each row so
// no node sits further than one node width plus the sibling gap to the
// right of its left neighbour. Compaction removes slack but can pull a
// couple off the center of its children.
//
// # Purity
//
// [Compute] is a pure function of its inputs. It never mutates the tree,
// never fails on malformed data (dangling edges, conflicting spouses and
// parent cycles are skipped) and returns identical coordinates for
// identical inputs. Manual drag positions live in an [Overrides] overlay
// that is merged at read time with [Layout.WithOverrides].
//
// # Usage
//
//	ix := index.FromTree(tree)
//	vis := visibility.New(ix, collapsed)
//	l := layout.ComputeIndexed(ix, vis.VisibleIDs(), layout.WithCompaction())
//	pos, ok := l.Positions["p1"]
package layout
