// Package pkg holds the ancestral-scribe libraries.
//
// # Overview
//
// Ancestral Scribe lays out genealogical family trees in generation rows,
// lets readers collapse branches, and drives a camera with smooth pan, zoom
// and fling over the result. The pkg directory is organized as:
//
//  1. Domain: [family], [index], [visibility], [layout], [generator]
//  2. Interaction: [viewport], [overview], [search], [collapse]
//  3. Output: [render/connector], [render/sink], [render/nodelink]
//  4. Orchestration: [pipeline], [server]
//  5. Infrastructure: [cache], [config], [watch], [errors],
//     [observability], [buildinfo]
//
// # Data Flow
//
//	tree file (JSON/YAML) or generator
//	         ↓
//	    [family] parse + validate
//	         ↓
//	    [index] + [visibility] (who is shown, given the collapsed set)
//	         ↓
//	    [layout] (generation rows, couples, sibling groups)
//	         ↓
//	    [render/connector] → [render/sink] / [render/nodelink]
//	         ↓
//	    SVG, scene JSON, Graphviz DOT, minimap SVG
//
// # Quick Start
//
//	t, _ := family.ReadFile("stark.json")
//	_, l := pipeline.GenerateLayout(t, pipeline.Options{Collapsed: []string{"rickard"}})
//	svg := sink.RenderSVG(l, sink.WithTree(t), sink.WithSelected("eddard"))
//
// The same flow with caching and artifact rendering is [pipeline.Runner],
// shared by the CLI and the HTTP server.
package pkg
