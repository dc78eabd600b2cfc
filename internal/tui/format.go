package tui

import (
	"slices"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/mattn/go-runewidth"

	"github.com/matzehuels/nixtree/pkg/graph"
	"github.com/matzehuels/nixtree/pkg/stats"
)

// maxParentPreview is the number of parent names shown in the details line.
const maxParentPreview = 5

const ellipsis = "…"

// formatSize renders a byte count in IEC units, e.g. "1.5 MiB".
func formatSize(n uint64) string {
	return humanize.IBytes(n)
}

// columnSize is the size shown next to a row: the added size when sorting by
// added size, the closure size otherwise.
func columnSize(t *stats.Table, id string, order stats.SortOrder) string {
	if order == stats.AddedSize {
		return formatSize(t.AddedSize(id))
	}
	return formatSize(t.ClosureSize(id))
}

// displayName returns the name shown for id, falling back to the identifier.
func displayName(g *graph.Graph, id string) string {
	if p, ok := g.Path(id); ok {
		return p.Name
	}
	return id
}

// parentPreview lists up to maxParentPreview parent names in alphabetical
// order, followed by an ellipsis when there are more.
func parentPreview(g *graph.Graph, parents []string) string {
	names := make([]string, len(parents))
	for i, id := range parents {
		names[i] = displayName(g, id)
	}
	slices.Sort(names)

	if len(names) <= maxParentPreview {
		return strings.Join(names, ", ")
	}
	return strings.Join(names[:maxParentPreview], ", ") + ", " + ellipsis
}

// fitRow lays out name and size in exactly width cells: the name is
// truncated or padded on the left and the size is right-aligned.
func fitRow(name, size string, width int) string {
	if width <= 0 {
		return ""
	}
	sizeW := runewidth.StringWidth(size)
	if sizeW+2 > width {
		return runewidth.FillRight(runewidth.Truncate(name, width, ellipsis), width)
	}
	nameW := width - sizeW - 1
	name = runewidth.FillRight(runewidth.Truncate(name, nameW, ellipsis), nameW)
	return name + " " + size
}

// truncate cuts s to width cells.
func truncate(s string, width int) string {
	return runewidth.Truncate(s, width, ellipsis)
}

// scrollOffset returns the first visible row of a list of n rows shown in
// height rows so that cursor stays visible, keeping the cursor on the last
// row when scrolling down.
func scrollOffset(cursor, n, height int) int {
	if height <= 0 || n <= height || cursor < height {
		return 0
	}
	return min(cursor-height+1, n-height)
}
