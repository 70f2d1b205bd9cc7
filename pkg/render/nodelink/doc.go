// Package nodelink renders family trees as Graphviz node-link diagrams.
//
// This is an alternative to the generation-row layout of package layout:
// Graphviz chooses the positions. Each couple gets a small point node that
// both partners link to, children hang from that point, and partners are
// kept on the same rank.
//
// # Usage
//
//	dot := nodelink.ToDOT(tree, filter.VisibleIDs(), nodelink.Options{Detailed: true})
//	svg, err := nodelink.RenderSVG(ctx, dot)
//
// The DOT source can also be saved and processed with external Graphviz
// tools.
//
// # Dependencies
//
// [github.com/goccy/go-graphviz] renders DOT to SVG in process.
package nodelink
