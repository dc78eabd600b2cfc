// Package nodelink renders store graphs as node-link diagrams.
//
// # Overview
//
// This package produces directed graph visualizations using Graphviz, where
// store paths appear as boxes connected by reference arrows. It backs the
// dot and svg formats of nixtree export.
//
// # Usage
//
// Convert a graph to DOT format, then render to SVG:
//
//	dot := nodelink.ToDOT(g, table, nodelink.Options{MaxDepth: 2})
//	svg, err := nodelink.RenderSVG(ctx, dot)
//
// # Options
//
// The [Options] struct controls diagram generation:
//
//   - Detailed: node labels include NAR, closure and added sizes
//   - MaxDepth: only paths this close to a root are drawn
//   - Roots: start from these paths instead of the graph's roots
//
// A full system closure has thousands of paths; without MaxDepth the
// resulting diagram is rarely readable.
//
// # Dependencies
//
// This package uses [github.com/goccy/go-graphviz] for in-process SVG
// rendering, so no Graphviz installation is required.
package nodelink
