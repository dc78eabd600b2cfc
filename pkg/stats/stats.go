package stats

import (
	"slices"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/matzehuels/nixtree/pkg/graph"
)

// DefaultMemoSize bounds the number of closure sets kept in memory.
const DefaultMemoSize = 1024

// Stats holds the derived sizes of a single store path.
type Stats struct {
	// ClosureSize is the total NarSize of every distinct path reachable from
	// this one, itself included.
	ClosureSize uint64

	// AddedSize is the number of bytes attributable to this path alone. Nil
	// until first computed; written at most once.
	AddedSize *uint64

	// ImmediateParents are the identifiers of the paths that directly
	// reference this one, captured at Calculate time.
	ImmediateParents []string
}

// Option configures Calculate.
type Option func(*options)

type options struct {
	eagerAdded bool
	ignoreHint bool
	memoSize   int
}

// WithEagerAddedSize computes AddedSize for every path up front instead of on
// first access.
func WithEagerAddedSize() Option {
	return func(o *options) { o.eagerAdded = true }
}

// WithoutHints ignores closure sizes reported by the ingestion source and
// always traverses.
func WithoutHints() Option {
	return func(o *options) { o.ignoreHint = true }
}

// WithMemoSize sets the capacity of the closure-set memo. Values <= 0 use
// DefaultMemoSize.
func WithMemoSize(n int) Option {
	return func(o *options) { o.memoSize = n }
}

// Table maps store path identifiers to their Stats.
//
// A Table is owned by a single goroutine; it is not safe for concurrent use.
type Table struct {
	g     *graph.Graph
	stats map[string]*Stats
	memo  *lru.Cache[string, map[string]struct{}]
}

// Calculate derives Stats for every path in g.
//
// ClosureSize uses the path's reported ClosureSize when present and computes
// it by traversal otherwise. ImmediateParents is a snapshot of the graph's
// referrer index. AddedSize is left unset unless WithEagerAddedSize is given.
func Calculate(g *graph.Graph, opts ...Option) *Table {
	o := options{memoSize: DefaultMemoSize}
	for _, opt := range opts {
		opt(&o)
	}
	if o.memoSize <= 0 {
		o.memoSize = DefaultMemoSize
	}

	// lru.New only fails for a non-positive size.
	memo, _ := lru.New[string, map[string]struct{}](o.memoSize)

	t := &Table{
		g:     g,
		stats: make(map[string]*Stats, g.Len()),
		memo:  memo,
	}

	for _, p := range g.Paths() {
		var closure uint64
		if p.ClosureSize != nil && !o.ignoreHint {
			closure = *p.ClosureSize
		} else {
			closure = t.ComputeClosureSize(p.Path)
		}
		t.stats[p.Path] = &Stats{
			ClosureSize:      closure,
			ImmediateParents: g.ReferrerIDs(p.Path),
		}
	}

	if o.eagerAdded {
		t.ComputeAddedSizes()
	}
	return t
}

// Graph returns the graph the table was calculated from.
func (t *Table) Graph() *graph.Graph { return t.g }

// Len returns the number of paths with stats.
func (t *Table) Len() int { return len(t.stats) }

// Get returns the stats for id.
func (t *Table) Get(id string) (*Stats, bool) {
	s, ok := t.stats[id]
	return s, ok
}

// ClosureSize returns the closure size of id, or 0 if id is unknown.
func (t *Table) ClosureSize(id string) uint64 {
	if s, ok := t.stats[id]; ok {
		return s.ClosureSize
	}
	return 0
}

// ImmediateParents returns a copy of the referrers of id.
func (t *Table) ImmediateParents(id string) []string {
	if s, ok := t.stats[id]; ok {
		return slices.Clone(s.ImmediateParents)
	}
	return nil
}

// Closure returns the set of identifiers reachable from id, id included.
// Identifiers not present in the graph are not part of any closure, so an
// unknown id yields an empty set.
//
// The traversal keeps an explicit stack and visited set and terminates on
// cyclic input. Results are memoized; a reachable node whose closure is
// already known is merged in without being walked again. The returned set is
// shared with the memo and must not be modified.
func (t *Table) Closure(id string) map[string]struct{} {
	if !t.g.Has(id) {
		return map[string]struct{}{}
	}
	if c, ok := t.memo.Get(id); ok {
		return c
	}

	closure := make(map[string]struct{})
	stack := []string{id}
	for len(stack) > 0 {
		cur := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		if _, seen := closure[cur]; seen {
			continue
		}
		p, ok := t.g.Path(cur)
		if !ok {
			continue
		}
		if cur != id {
			if sub, ok := t.memo.Peek(cur); ok {
				for k := range sub {
					closure[k] = struct{}{}
				}
				continue
			}
		}
		closure[cur] = struct{}{}
		for _, r := range p.References {
			if _, seen := closure[r]; !seen {
				stack = append(stack, r)
			}
		}
	}

	t.memo.Add(id, closure)
	return closure
}

// ComputeClosureSize sums NarSize over the closure of id.
func (t *Table) ComputeClosureSize(id string) uint64 {
	return t.sum(t.Closure(id))
}

func (t *Table) sum(set map[string]struct{}) uint64 {
	var total uint64
	for k := range set {
		if p, ok := t.g.Path(k); ok {
			total += p.NarSize
		}
	}
	return total
}

// AddedSize returns the bytes attributable to id alone, computing and caching
// the value on first use. Unknown identifiers report 0.
//
// The value is the closure of id minus the union of the closures of its
// siblings: every other path directly referenced by one of id's immediate
// parents. A path with two or more immediate parents is shared between them
// and reports 0.
func (t *Table) AddedSize(id string) uint64 {
	s, ok := t.stats[id]
	if !ok {
		return 0
	}
	if s.AddedSize != nil {
		return *s.AddedSize
	}
	v := t.addedSize(id, s)
	s.AddedSize = &v
	return v
}

func (t *Table) addedSize(id string, s *Stats) uint64 {
	// Every co-parent's closure contains id's closure.
	if len(s.ImmediateParents) > 1 {
		return 0
	}

	own := t.Closure(id)
	shared := make(map[string]struct{})
	for _, parent := range s.ImmediateParents {
		p, ok := t.g.Path(parent)
		if !ok {
			continue
		}
		for _, sib := range p.References {
			if sib == id || !t.g.Has(sib) {
				continue
			}
			other := t.Closure(sib)
			if len(other) < len(own) {
				for k := range other {
					if _, in := own[k]; in {
						shared[k] = struct{}{}
					}
				}
			} else {
				for k := range own {
					if _, in := other[k]; in {
						shared[k] = struct{}{}
					}
				}
			}
		}
	}

	var total uint64
	for k := range own {
		if _, gone := shared[k]; gone {
			continue
		}
		if p, ok := t.g.Path(k); ok {
			total += p.NarSize
		}
	}
	return total
}

// ComputeAddedSizes fills AddedSize for every path in the table.
func (t *Table) ComputeAddedSizes() {
	for _, p := range t.g.Paths() {
		t.AddedSize(p.Path)
	}
}
