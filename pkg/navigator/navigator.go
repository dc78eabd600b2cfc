// Package navigator implements the three-pane browsing state machine.
//
// The Current pane is the list being browsed. Previous holds the immediate
// parents of the focused path and Next holds its direct references; both are
// derived from the focus by [Refresh] whenever the focus changes. Descending
// into Next pushes the Current list onto a history stack that Back pops.
//
// A Navigator is owned by a single goroutine and never blocks.
package navigator

import (
	"slices"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/matzehuels/nixtree/pkg/graph"
	"github.com/matzehuels/nixtree/pkg/stats"
)

// Mode is the interaction mode. Searching and Help are modal overlays on top
// of browsing; at most one is active.
type Mode int

const (
	Browsing Mode = iota
	Searching
	Help
)

func (m Mode) String() string {
	switch m {
	case Searching:
		return "searching"
	case Help:
		return "help"
	default:
		return "browsing"
	}
}

// Pane addresses one of the three visible lists.
type Pane int

const (
	Previous Pane = iota
	Current
	Next
)

func (p Pane) String() string {
	switch p {
	case Previous:
		return "previous"
	case Next:
		return "next"
	default:
		return "current"
	}
}

// Unset is the cursor value of an empty list.
const Unset = -1

// List is an ordered list of store path identifiers with a cursor.
type List struct {
	Items  []string
	Cursor int
}

func newList(items []string) List {
	l := List{Items: items, Cursor: Unset}
	if len(items) > 0 {
		l.Cursor = 0
	}
	return l
}

// Selected returns the identifier under the cursor.
func (l List) Selected() (string, bool) {
	if l.Cursor < 0 || l.Cursor >= len(l.Items) {
		return "", false
	}
	return l.Items[l.Cursor], true
}

// Option configures New.
type Option func(*Navigator)

// WithSortOrder sets the initial sort order.
func WithSortOrder(o stats.SortOrder) Option {
	return func(n *Navigator) { n.order = o }
}

// Navigator holds the browsing state over a graph and its stats table.
type Navigator struct {
	g *graph.Graph
	t *stats.Table

	panes [3]List
	mode  Mode
	query string
	order stats.SortOrder
	hist  history

	focused string
}

// New creates a Navigator whose Current list is the graph's roots.
func New(g *graph.Graph, t *stats.Table, opts ...Option) *Navigator {
	n := &Navigator{g: g, t: t, order: stats.Alphabetical}
	for _, opt := range opts {
		opt(n)
	}

	roots := slices.Clone(g.Roots)
	stats.Sort(roots, t, n.order)
	n.panes[Current] = newList(roots)
	n.refresh()
	return n
}

// Refresh derives the side panes for id: its immediate parents and its direct
// references, each sorted by order. Unknown identifiers yield empty lists.
func Refresh(g *graph.Graph, t *stats.Table, order stats.SortOrder, id string) (previous, next []string) {
	previous = t.ImmediateParents(id)
	next = g.ReferenceIDs(id)
	stats.Sort(previous, t, order)
	stats.Sort(next, t, order)
	return previous, next
}

func (n *Navigator) refresh() {
	id, ok := n.panes[Current].Selected()
	if !ok {
		n.focused = ""
		n.panes[Previous] = newList(nil)
		n.panes[Next] = newList(nil)
		return
	}
	n.focused = id
	prev, next := Refresh(n.g, n.t, n.order, id)
	n.panes[Previous] = newList(prev)
	n.panes[Next] = newList(next)
}

// Down moves the Current cursor down one row.
func (n *Navigator) Down() {
	n.move(1)
}

// Up moves the Current cursor up one row.
func (n *Navigator) Up() {
	n.move(-1)
}

func (n *Navigator) move(delta int) {
	cur := &n.panes[Current]
	if len(cur.Items) == 0 {
		return
	}
	c := min(max(cur.Cursor+delta, 0), len(cur.Items)-1)
	if c == cur.Cursor {
		return
	}
	cur.Cursor = c
	n.refresh()
}

// Descend makes the Next list current, saving the Current list to history.
// It does nothing when Next is empty.
func (n *Navigator) Descend() {
	next := n.panes[Next].Items
	if len(next) == 0 {
		return
	}
	n.hist.push(n.panes[Current])
	n.panes[Current] = newList(slices.Clone(next))
	n.refresh()
}

// Back restores the Current list saved by the last Descend.
func (n *Navigator) Back() {
	s, ok := n.hist.pop()
	if !ok {
		return
	}
	n.panes[Current] = List{Items: s.Items, Cursor: s.Cursor}
	n.refresh()
}

// CycleSort advances the sort order and re-sorts all three lists in place.
// Cursors keep their index, so the item under a cursor may change. The side
// panes and the focus are not re-derived until the cursor next moves.
func (n *Navigator) CycleSort() {
	n.order = n.order.Next()
	for i := range n.panes {
		stats.Sort(n.panes[i].Items, n.t, n.order)
	}
}

// StartSearch enters Searching mode with an empty query.
func (n *Navigator) StartSearch() {
	n.mode = Searching
	n.query = ""
}

// SearchInput appends r to the query.
func (n *Navigator) SearchInput(r rune) {
	if n.mode != Searching {
		return
	}
	n.query += string(r)
}

// SearchBackspace removes the last character of the query.
func (n *Navigator) SearchBackspace() {
	if n.mode != Searching || n.query == "" {
		return
	}
	_, size := utf8.DecodeLastRuneInString(n.query)
	n.query = n.query[:len(n.query)-size]
}

// CancelSearch leaves Searching mode without touching the lists.
func (n *Navigator) CancelSearch() {
	if n.mode != Searching {
		return
	}
	n.mode = Browsing
	n.query = ""
}

// SubmitSearch leaves Searching mode and replaces the Current list with every
// path whose display name contains the query, ignoring case. An empty query or
// a query without matches leaves the lists unchanged. Search results are not
// recorded in history.
func (n *Navigator) SubmitSearch() {
	if n.mode != Searching {
		return
	}
	n.mode = Browsing
	matches := Search(n.g, n.query)
	if len(matches) == 0 {
		return
	}
	stats.Sort(matches, n.t, n.order)
	n.panes[Current] = newList(matches)
	n.refresh()
}

// Search returns the identifiers of all paths in g whose display name
// contains query, ignoring case, in graph order. An empty query matches
// nothing.
func Search(g *graph.Graph, query string) []string {
	if query == "" {
		return nil
	}
	q := strings.ToLower(query)
	var out []string
	for _, p := range g.Paths() {
		if strings.Contains(strings.ToLower(p.Name), q) {
			out = append(out, p.Path)
		}
	}
	return out
}

// ToggleHelp shows or hides the help overlay.
func (n *Navigator) ToggleHelp() {
	switch n.mode {
	case Help:
		n.mode = Browsing
	case Browsing:
		n.mode = Help
	}
}

// HandleKey applies the transition bound to key and reports whether the
// program should quit. Keys use the names produced by bubbletea's
// KeyMsg.String, e.g. "j", "down", "enter", "ctrl+c".
func (n *Navigator) HandleKey(key string) (quit bool) {
	if key == "ctrl+c" {
		return true
	}

	if n.mode == Searching {
		switch key {
		case "esc":
			n.CancelSearch()
		case "enter":
			n.SubmitSearch()
		case "backspace":
			n.SearchBackspace()
		default:
			if r, ok := printable(key); ok {
				n.SearchInput(r)
			}
		}
		return false
	}

	switch key {
	case "q", "esc":
		if n.mode == Help {
			n.mode = Browsing
			return false
		}
		return true
	case "?":
		n.ToggleHelp()
	case "/":
		n.StartSearch()
	case "s":
		n.CycleSort()
	case "j", "down":
		n.Down()
	case "k", "up":
		n.Up()
	case "h", "left":
		n.Back()
	case "l", "right", "enter":
		n.Descend()
	}
	return false
}

// printable reports whether key is a single printable rune.
func printable(key string) (rune, bool) {
	r, size := utf8.DecodeRuneInString(key)
	if size == 0 || size != len(key) || r == utf8.RuneError {
		return 0, false
	}
	return r, unicode.IsPrint(r)
}

// List returns a copy of the list in pane p.
func (n *Navigator) List(p Pane) List {
	l := n.panes[p]
	return List{Items: slices.Clone(l.Items), Cursor: l.Cursor}
}

// Selected returns the identifier under the cursor of pane p.
func (n *Navigator) Selected(p Pane) (string, bool) {
	return n.panes[p].Selected()
}

// Focused returns the identifier shown in the status line, or "" when the
// Current list is empty.
func (n *Navigator) Focused() string { return n.focused }

// Mode returns the active mode.
func (n *Navigator) Mode() Mode { return n.mode }

// Query returns the search buffer.
func (n *Navigator) Query() string { return n.query }

// SortOrder returns the active sort order.
func (n *Navigator) SortOrder() stats.SortOrder { return n.order }

// Depth returns the number of saved history entries.
func (n *Navigator) Depth() int { return n.hist.depth() }

// Graph returns the browsed graph.
func (n *Navigator) Graph() *graph.Graph { return n.g }

// Stats returns the stats table.
func (n *Navigator) Stats() *stats.Table { return n.t }
