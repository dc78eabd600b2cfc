package graph

import (
	"fmt"
	"slices"
)

// minHashPrefix is the shortest hash fragment used to disambiguate names.
const minHashPrefix = 7

// Graph is an in-memory directed graph of store paths keyed by identifier.
//
// Forward edges are the References of each StorePath. Reverse edges
// (referrers) are derived into an index that is rebuilt lazily after any
// change to the set of paths.
//
// The zero value is not usable - use New to create a Graph.
// Graph is not safe for concurrent use without external synchronization.
type Graph struct {
	// Roots is the ordered list of identifiers the user asked to inspect.
	Roots []string

	paths  map[string]*StorePath
	order  []string            // insertion order of identifiers
	parent map[string][]string // id -> referrer ids; nil when stale
	byName map[string]string   // display name -> id; nil when stale
}

// New creates an empty Graph.
func New() *Graph {
	return &Graph{
		paths: make(map[string]*StorePath),
	}
}

// AddPath inserts p, overwriting any existing path with the same identifier
// (last write wins). An overwritten path keeps its original insertion
// position.
//
// References are de-duplicated preserving their order, and a reference from
// a path to itself is dropped: Nix reports self-references, but a node must
// not be its own parent or sibling.
func (g *Graph) AddPath(p *StorePath) {
	if p == nil || p.Path == "" {
		return
	}
	if p.Hash == "" && p.Name == "" {
		p.Hash, p.Name = ParseStorePath(p.Path)
	}
	p.References = cleanReferences(p.Path, p.References)

	if _, exists := g.paths[p.Path]; !exists {
		g.order = append(g.order, p.Path)
	}
	g.paths[p.Path] = p
	g.parent = nil
	g.byName = nil
}

func cleanReferences(self string, refs []string) []string {
	if len(refs) == 0 {
		return nil
	}
	seen := make(map[string]struct{}, len(refs))
	out := make([]string, 0, len(refs))
	for _, r := range refs {
		if r == self || r == "" {
			continue
		}
		if _, dup := seen[r]; dup {
			continue
		}
		seen[r] = struct{}{}
		out = append(out, r)
	}
	return out
}

// Path returns the store path with the given identifier and true, or nil and
// false if it is not in the graph.
func (g *Graph) Path(id string) (*StorePath, bool) {
	p, ok := g.paths[id]
	return p, ok
}

// Has reports whether id is in the graph.
func (g *Graph) Has(id string) bool {
	_, ok := g.paths[id]
	return ok
}

// Paths returns all store paths in insertion order.
func (g *Graph) Paths() []*StorePath {
	out := make([]*StorePath, 0, len(g.order))
	for _, id := range g.order {
		out = append(out, g.paths[id])
	}
	return out
}

// Len returns the number of store paths in the graph.
func (g *Graph) Len() int { return len(g.paths) }

// EdgeCount returns the number of reference edges whose target is present.
func (g *Graph) EdgeCount() int {
	n := 0
	for _, p := range g.paths {
		for _, r := range p.References {
			if _, ok := g.paths[r]; ok {
				n++
			}
		}
	}
	return n
}

// References resolves the direct references of id to store paths. Identifiers
// not present in the graph are silently dropped. Returns nil if id is unknown.
func (g *Graph) References(id string) []*StorePath {
	p, ok := g.paths[id]
	if !ok {
		return nil
	}
	return g.resolve(p.References)
}

// ReferenceIDs returns the identifiers of the present direct references of id.
func (g *Graph) ReferenceIDs(id string) []string {
	p, ok := g.paths[id]
	if !ok {
		return nil
	}
	out := make([]string, 0, len(p.References))
	for _, r := range p.References {
		if _, ok := g.paths[r]; ok {
			out = append(out, r)
		}
	}
	return out
}

// Referrers returns the store paths that directly reference id (its immediate
// parents), in insertion order of the referrers.
func (g *Graph) Referrers(id string) []*StorePath {
	return g.resolve(g.ReferrerIDs(id))
}

// ReferrerIDs returns the identifiers of the store paths that directly
// reference id. The returned slice is a copy.
func (g *Graph) ReferrerIDs(id string) []string {
	g.buildIndex()
	return slices.Clone(g.parent[id])
}

func (g *Graph) resolve(ids []string) []*StorePath {
	out := make([]*StorePath, 0, len(ids))
	for _, id := range ids {
		if p, ok := g.paths[id]; ok {
			out = append(out, p)
		}
	}
	return out
}

// buildIndex recomputes the reverse-edge index if it is stale.
func (g *Graph) buildIndex() {
	if g.parent != nil {
		return
	}
	g.parent = make(map[string][]string, len(g.paths))
	for _, id := range g.order {
		for _, r := range g.paths[id].References {
			if _, ok := g.paths[r]; ok {
				g.parent[r] = append(g.parent[r], id)
			}
		}
	}
}

// DisambiguateNames rewrites display names so that every name in the graph is
// unique. Paths sharing a name get a hash fragment appended, "name (hash)",
// using the shortest fragment (at least 7 characters) that separates the
// group. Names that still collide fall back to the full identifier.
func (g *Graph) DisambiguateNames() {
	groups := make(map[string][]*StorePath)
	for _, id := range g.order {
		p := g.paths[id]
		groups[p.Name] = append(groups[p.Name], p)
	}

	for name, group := range groups {
		if len(group) < 2 {
			continue
		}
		n := prefixLength(group)
		for _, p := range group {
			if p.Hash == "" {
				p.Name = p.Path
				continue
			}
			p.Name = fmt.Sprintf("%s (%s)", name, p.Hash[:min(n, len(p.Hash))])
		}
	}

	taken := make(map[string]string, len(g.paths))
	for _, id := range g.order {
		p := g.paths[id]
		if other, clash := taken[p.Name]; clash && other != id {
			p.Name = p.Path
		}
		taken[p.Name] = id
	}
	g.byName = nil
}

// prefixLength returns the shortest hash prefix length, starting at
// minHashPrefix, at which all hashes in group are distinct.
func prefixLength(group []*StorePath) int {
	longest := 0
	for _, p := range group {
		longest = max(longest, len(p.Hash))
	}
	for n := minHashPrefix; n < longest; n++ {
		seen := make(map[string]struct{}, len(group))
		unique := true
		for _, p := range group {
			prefix := p.Hash[:min(n, len(p.Hash))]
			if _, dup := seen[prefix]; dup {
				unique = false
				break
			}
			seen[prefix] = struct{}{}
		}
		if unique {
			return n
		}
	}
	return max(longest, minHashPrefix)
}

// ByName resolves a display name back to its store path.
func (g *Graph) ByName(name string) (*StorePath, bool) {
	if g.byName == nil {
		g.byName = make(map[string]string, len(g.paths))
		for _, id := range g.order {
			g.byName[g.paths[id].Name] = id
		}
	}
	id, ok := g.byName[name]
	if !ok {
		return nil, false
	}
	return g.paths[id], true
}
