package nodelink

import (
	"bytes"
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/goccy/go-graphviz"

	"github.com/matzehuels/nixtree/pkg/graph"
	"github.com/matzehuels/nixtree/pkg/stats"
)

// Options configures node-link diagram rendering.
type Options struct {
	// Detailed adds the NAR, closure and added sizes to node labels.
	// When false, only the display name is shown.
	Detailed bool

	// MaxDepth limits the diagram to paths at most this many references away
	// from a root. Zero means no limit.
	MaxDepth int

	// Roots are the paths the diagram starts from. Defaults to the graph's
	// roots.
	Roots []string
}

// ToDOT converts the store graph to Graphviz DOT format for node-link
// visualization. The resulting DOT string can be rendered using [RenderSVG].
//
// Only paths reachable from the roots within MaxDepth are emitted, in
// breadth-first order. Roots are drawn with a bold outline. References to
// paths missing from the graph are omitted. t is only consulted when
// Detailed is set and may be nil otherwise.
func ToDOT(g *graph.Graph, t *stats.Table, opts Options) string {
	var buf bytes.Buffer
	buf.WriteString("digraph G {\n")
	buf.WriteString("  rankdir=TB;\n")
	buf.WriteString("  bgcolor=\"transparent\";\n")
	buf.WriteString("  node [shape=box, style=\"rounded,filled\", fillcolor=white, fontsize=24, margin=\"0.2,0.1\"];\n")
	buf.WriteString("  ranksep=0.5;\n")
	buf.WriteString("  nodesep=0.3;\n")
	buf.WriteString("\n")

	roots := opts.Roots
	if roots == nil {
		roots = g.Roots
	}
	ids, isRoot := reachable(g, roots, opts.MaxDepth)

	for _, id := range ids {
		p, _ := g.Path(id)
		label := fmtLabel(p, t, opts.Detailed)
		attrs := fmtAttrs(label, isRoot[id])
		fmt.Fprintf(&buf, "  %q [%s];\n", id, strings.Join(attrs, ", "))
	}

	buf.WriteString("\n")
	included := make(map[string]bool, len(ids))
	for _, id := range ids {
		included[id] = true
	}
	for _, from := range ids {
		for _, to := range g.ReferenceIDs(from) {
			if included[to] {
				fmt.Fprintf(&buf, "  %q -> %q;\n", from, to)
			}
		}
	}

	buf.WriteString("}\n")
	return buf.String()
}

// reachable walks references breadth-first from roots and returns the visited
// identifiers in visit order.
func reachable(g *graph.Graph, roots []string, maxDepth int) ([]string, map[string]bool) {
	isRoot := make(map[string]bool, len(roots))
	depth := make(map[string]int)
	var order, queue []string

	for _, r := range roots {
		if !g.Has(r) || isRoot[r] {
			continue
		}
		isRoot[r] = true
		depth[r] = 0
		order = append(order, r)
		queue = append(queue, r)
	}

	for len(queue) > 0 {
		id := queue[0]
		queue = queue[1:]
		if maxDepth > 0 && depth[id] >= maxDepth {
			continue
		}
		for _, ref := range g.ReferenceIDs(id) {
			if _, seen := depth[ref]; seen {
				continue
			}
			depth[ref] = depth[id] + 1
			order = append(order, ref)
			queue = append(queue, ref)
		}
	}
	return order, isRoot
}

func fmtLabel(p *graph.StorePath, t *stats.Table, detailed bool) string {
	if !detailed || t == nil {
		return p.Name
	}

	parts := []string{
		"nar: " + humanize.IBytes(p.NarSize),
		"closure: " + humanize.IBytes(t.ClosureSize(p.Path)),
		"added: " + humanize.IBytes(t.AddedSize(p.Path)),
	}
	return p.Name + "\n" + strings.Join(parts, "\n")
}

func fmtAttrs(label string, root bool) []string {
	attrs := []string{fmt.Sprintf("label=%q", label)}
	if root {
		attrs = append(attrs, "penwidth=3", "fillcolor=lightblue")
	}
	return attrs
}

// RenderSVG renders a DOT graph to SVG using Graphviz.
func RenderSVG(ctx context.Context, dot string) ([]byte, error) {
	gv, err := graphviz.New(ctx)
	if err != nil {
		return nil, fmt.Errorf("init graphviz: %w", err)
	}
	defer gv.Close()

	g, err := graphviz.ParseBytes([]byte(dot))
	if err != nil {
		return nil, fmt.Errorf("parse DOT: %w", err)
	}
	defer g.Close()

	var buf bytes.Buffer
	if err := gv.Render(ctx, g, graphviz.SVG, &buf); err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	return normalizeViewBox(buf.Bytes()), nil
}

var (
	svgTagRe  = regexp.MustCompile(`<svg[^>]*>`)
	viewBoxRe = regexp.MustCompile(`viewBox="([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)"`)
)

func normalizeViewBox(svg []byte) []byte {
	match := viewBoxRe.FindSubmatch(svg)
	if match == nil {
		return svg
	}

	w, _ := strconv.ParseFloat(string(match[3]), 64)
	h, _ := strconv.ParseFloat(string(match[4]), 64)
	if w == 0 || h == 0 {
		return svg
	}

	newSvg := fmt.Sprintf(`<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 %.2f %.2f" width="%.0f" height="%.0f">`,
		w, h, w, h)

	return svgTagRe.ReplaceAll(svg, []byte(newSvg))
}
