// Package render groups the output stages of a laid-out tree.
//
//   - [connector]: the lines and markers between persons, as primitives
//   - [sink]: the tree SVG and the scene JSON built from those primitives
//   - [nodelink]: Graphviz DOT source and Graphviz-positioned SVG
//
// Every stage takes the layout and visibility filter produced by the
// pipeline and never changes them.
package render
