package navigator

import "slices"

// Snapshot is a saved Current list, restored by Back.
type Snapshot struct {
	Items  []string
	Cursor int
}

// history is the stack of Current lists left behind by Descend.
type history struct {
	stack []Snapshot
}

// push saves a copy of l.
func (h *history) push(l List) {
	h.stack = append(h.stack, Snapshot{Items: slices.Clone(l.Items), Cursor: l.Cursor})
}

// pop removes and returns the most recent snapshot.
func (h *history) pop() (Snapshot, bool) {
	if len(h.stack) == 0 {
		return Snapshot{}, false
	}
	last := h.stack[len(h.stack)-1]
	h.stack = h.stack[:len(h.stack)-1]
	return last, true
}

func (h *history) depth() int { return len(h.stack) }
