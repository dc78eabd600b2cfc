// Package io reads and writes JSON snapshots of a loaded store graph.
//
// # Overview
//
// A snapshot records what one ingestion produced: the roots, every store path
// with its sizes and references, and the reference edges between present
// paths. Snapshots serve two purposes:
//
//   - Reports for other tools (nixtree export --format json)
//   - Offline browsing: nixtree --import snapshot.json loads the graph without
//     running nix, e.g. on a machine without a Nix store
//
// # JSON Format
//
//	{
//	  "roots": ["/nix/store/aaa-hello-2.12"],
//	  "paths": [
//	    {
//	      "path": "/nix/store/aaa-hello-2.12",
//	      "name": "hello-2.12",
//	      "nar_size": 1024,
//	      "closure_size": 5120,
//	      "added_size": 1024,
//	      "references": ["/nix/store/bbb-glibc-2.39"],
//	      "signatures": ["cache.nixos.org-1:..."]
//	    }
//	  ],
//	  "edges": [
//	    {"from": "/nix/store/aaa-hello-2.12", "to": "/nix/store/bbb-glibc-2.39"}
//	  ]
//	}
//
// Sizes are in bytes. The edges array is derived from references and is
// ignored on import; references to paths outside the snapshot are kept.
//
// # Import
//
// [ReadJSON] rebuilds a [graph.Graph] from a snapshot. Closure sizes become
// the reported hint of each path, so [stats.Calculate] reproduces the
// exported values without walking the graph. Added sizes are recomputed.
//
// [graph.Graph]: github.com/matzehuels/nixtree/pkg/graph.Graph
// [stats.Calculate]: github.com/matzehuels/nixtree/pkg/stats.Calculate
package io
