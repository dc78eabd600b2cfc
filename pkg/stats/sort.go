package stats

import (
	"cmp"
	"fmt"
	"slices"
	"strings"
)

// SortOrder selects how lists of store paths are ordered.
type SortOrder int

const (
	// Alphabetical orders by identifier.
	Alphabetical SortOrder = iota
	// ClosureSize orders by closure size, largest first.
	ClosureSize
	// AddedSize orders by added size, largest first.
	AddedSize
)

// Next returns the order that follows o in the cycle
// Alphabetical, ClosureSize, AddedSize.
func (o SortOrder) Next() SortOrder {
	switch o {
	case Alphabetical:
		return ClosureSize
	case ClosureSize:
		return AddedSize
	default:
		return Alphabetical
	}
}

// String returns the label shown in the status line.
func (o SortOrder) String() string {
	switch o {
	case ClosureSize:
		return "closure size"
	case AddedSize:
		return "added size"
	default:
		return "name"
	}
}

// ParseSortOrder parses a configuration value. It accepts the short forms
// "name", "closure" and "added" as well as the String labels.
func ParseSortOrder(s string) (SortOrder, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "name", "alpha", "alphabetical":
		return Alphabetical, nil
	case "closure", "closure size", "closure-size":
		return ClosureSize, nil
	case "added", "added size", "added-size":
		return AddedSize, nil
	default:
		return Alphabetical, fmt.Errorf("unknown sort order %q (want name, closure or added)", s)
	}
}

// Sort orders ids in place.
//
// Alphabetical compares identifiers lexicographically. The size orders are
// descending, treat unknown identifiers as 0, and keep the input order of
// ties. Sorting by AddedSize computes any added sizes not yet known.
func Sort(ids []string, t *Table, order SortOrder) {
	switch order {
	case ClosureSize:
		slices.SortStableFunc(ids, func(a, b string) int {
			return cmp.Compare(t.ClosureSize(b), t.ClosureSize(a))
		})
	case AddedSize:
		sizes := make(map[string]uint64, len(ids))
		for _, id := range ids {
			sizes[id] = t.AddedSize(id)
		}
		slices.SortStableFunc(ids, func(a, b string) int {
			return cmp.Compare(sizes[b], sizes[a])
		})
	default:
		slices.Sort(ids)
	}
}

// Size returns the size of id that is relevant to order: the added size for
// AddedSize, the closure size otherwise.
func (t *Table) Size(id string, order SortOrder) uint64 {
	if order == AddedSize {
		return t.AddedSize(id)
	}
	return t.ClosureSize(id)
}
