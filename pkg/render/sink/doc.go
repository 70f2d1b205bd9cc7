// Package sink writes a computed family layout to output formats.
//
// [RenderSVG] draws the full tree: connector primitives from
// [connector.Build] underneath, then one card per placed person with name,
// title and life years. Collapsed persons with hidden descendants get a
// "+N" badge, and the selected person is outlined.
//
// [RenderJSON] serializes the same scene (positions, couples, connectors,
// bounds) for web front-ends that draw it themselves. [ReadJSON] reads it
// back.
//
// # Usage
//
//	l := layout.Compute(tree, visible)
//	svg := sink.RenderSVG(l,
//	    sink.WithTree(tree),
//	    sink.WithMarks(filter),
//	    sink.WithSelected("eddard"),
//	)
package sink
