package io

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/matzehuels/nixtree/pkg/errors"
	"github.com/matzehuels/nixtree/pkg/graph"
)

// ReadJSON decodes a snapshot from r into a graph.
//
// Each path must have a non-empty "path" field; a duplicate path overwrites
// the earlier entry. Names are re-derived from the identifiers and
// disambiguated, so a snapshot written by an older release still loads with
// unique display names. Roots that are not among the paths are dropped.
func ReadJSON(r io.Reader) (*graph.Graph, error) {
	var in snapshot
	dec := json.NewDecoder(r)
	if err := dec.Decode(&in); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidFormat, err, "decode snapshot")
	}

	g := graph.New()
	for i, p := range in.Paths {
		if p.Path == "" {
			return nil, errors.New(errors.ErrCodeInvalidFormat, "path %d: missing \"path\"", i)
		}
		sp := graph.NewStorePath(p.Path, p.NarSize, p.References)
		sp.ClosureSize = p.ClosureSize
		sp.Signatures = p.Signatures
		g.AddPath(sp)
	}

	for _, root := range in.Roots {
		if g.Has(root) {
			g.Roots = append(g.Roots, root)
		}
	}
	g.DisambiguateNames()
	return g, nil
}

// ImportJSON reads a snapshot from a JSON file at path.
// This is a convenience wrapper around [ReadJSON] for file-based input.
func ImportJSON(path string) (*graph.Graph, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()
	return ReadJSON(f)
}
