package io

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/matzehuels/nixtree/pkg/graph"
	"github.com/matzehuels/nixtree/pkg/stats"
)

type snapshot struct {
	Roots []string `json:"roots"`
	Paths []path   `json:"paths"`
	Edges []edge   `json:"edges,omitempty"`
}

type path struct {
	Path        string   `json:"path"`
	Name        string   `json:"name"`
	NarSize     uint64   `json:"nar_size"`
	ClosureSize *uint64  `json:"closure_size,omitempty"`
	AddedSize   *uint64  `json:"added_size,omitempty"`
	References  []string `json:"references"`
	Signatures  []string `json:"signatures,omitempty"`
}

type edge struct {
	From string `json:"from"`
	To   string `json:"to"`
}

// WriteJSON encodes g and the sizes in t as a snapshot and writes it to w.
// t may be nil, in which case only the reported closure sizes are written.
// Added sizes that have not been computed yet are computed.
func WriteJSON(g *graph.Graph, t *stats.Table, w io.Writer) error {
	out := snapshot{
		Roots: g.Roots,
		Paths: make([]path, 0, g.Len()),
	}
	if out.Roots == nil {
		out.Roots = []string{}
	}

	for _, p := range g.Paths() {
		refs := p.References
		if refs == nil {
			refs = []string{}
		}
		entry := path{
			Path:        p.Path,
			Name:        p.Name,
			NarSize:     p.NarSize,
			ClosureSize: p.ClosureSize,
			References:  refs,
			Signatures:  p.Signatures,
		}
		if t != nil {
			closure := t.ClosureSize(p.Path)
			added := t.AddedSize(p.Path)
			entry.ClosureSize = &closure
			entry.AddedSize = &added
		}
		out.Paths = append(out.Paths, entry)

		for _, to := range g.ReferenceIDs(p.Path) {
			out.Edges = append(out.Edges, edge{From: p.Path, To: to})
		}
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(out); err != nil {
		return fmt.Errorf("encode: %w", err)
	}
	return nil
}

// ExportJSON writes a snapshot to a JSON file at path.
// This is a convenience wrapper around [WriteJSON] for file-based output.
func ExportJSON(g *graph.Graph, t *stats.Table, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer f.Close()
	return WriteJSON(g, t, f)
}
