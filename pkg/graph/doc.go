// Package graph provides the in-memory Nix store dependency graph that nixtree
// browses.
//
// # Overview
//
// A [Graph] holds one [StorePath] per store path identifier. Forward edges
// (a path's direct references) are explicit on each StorePath; reverse edges
// (its referrers, or immediate parents) are derived into an index the first
// time they are asked for.
//
// Upstream metadata is allowed to reference store paths outside the queried
// set, so lookups are total: an identifier that is not in the graph resolves
// to nothing rather than to an error. Traversals treat such identifiers as dead
// leaves.
//
// # Basic Usage
//
//	g := graph.New()
//	g.AddPath(&graph.StorePath{Path: "/nix/store/aaa-hello-2.12", NarSize: 1024,
//	    References: []string{"/nix/store/bbb-glibc-2.39"}})
//	g.AddPath(&graph.StorePath{Path: "/nix/store/bbb-glibc-2.39", NarSize: 4096})
//	g.Roots = []string{"/nix/store/aaa-hello-2.12"}
//	g.DisambiguateNames()
//
//	for _, ref := range g.References("/nix/store/aaa-hello-2.12") {
//	    fmt.Println(ref.Name)
//	}
//
// # Display Names
//
// Each StorePath carries a display name derived from its identifier by
// [ParseStorePath]. Different store paths frequently share a name (two builds
// of the same package), so [Graph.DisambiguateNames] rewrites every colliding
// name to include a fragment of its hash. It runs once after ingestion; the
// graph is treated as immutable afterwards.
package graph
