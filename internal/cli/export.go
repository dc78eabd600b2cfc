package cli

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"slices"
	"strconv"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/matzehuels/nixtree/pkg/errors"
	nixio "github.com/matzehuels/nixtree/pkg/io"
	"github.com/matzehuels/nixtree/pkg/render/nodelink"
	"github.com/matzehuels/nixtree/pkg/stats"
)

const (
	formatTable = "table" // lipgloss table of the largest paths
	formatJSON  = "json"  // snapshot readable by --import
	formatDOT   = "dot"   // Graphviz source
	formatSVG   = "svg"   // rendered node-link diagram

	defaultTop = 20
)

var exportFormats = []string{formatTable, formatJSON, formatDOT, formatSVG}

// exportOpts holds the command-line flags for the export command.
type exportOpts struct {
	format   string // one of exportFormats
	output   string // output file; stdout when empty
	top      int    // table rows; 0 lists every path
	depth    int    // diagram depth limit; 0 is unlimited
	detailed bool   // sizes in diagram labels
}

// exportCommand creates the export command for non-interactive reports.
func (c *CLI) exportCommand() *cobra.Command {
	var load loadOpts
	opts := exportOpts{format: formatTable, top: defaultTop}

	cmd := &cobra.Command{
		Use:   "export [PATHS]...",
		Short: "Write a report of the dependency graph",
		Long: `Export loads the same graph as the browser and writes it as:

  table  the largest paths by the sort order (default)
  json   a snapshot that 'nixtree --import' can browse later
  dot    Graphviz source of the reference graph
  svg    the reference graph rendered with Graphviz`,
		Example: `  nixtree export /run/current-system --sort added --top 10
  nixtree export -f json -o system.json /run/current-system
  nixtree export -f svg --depth 2 -o hello.svg nixpkgs#hello`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if !slices.Contains(exportFormats, opts.format) {
				return errors.New(errors.ErrCodeInvalidInput, "unknown format %q (want one of %v)", opts.format, exportFormats)
			}
			ctx := cmd.Context()
			l, err := c.load(ctx, cmd, args, &load)
			if err != nil {
				return err
			}
			return c.runExport(ctx, cmd.OutOrStdout(), l, opts)
		},
	}

	load.bind(cmd)
	cmd.Flags().StringVarP(&opts.format, "format", "f", opts.format, "output format: table, json, dot, svg")
	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "output file (default stdout)")
	cmd.Flags().IntVar(&opts.top, "top", opts.top, "number of table rows, 0 for all")
	cmd.Flags().IntVar(&opts.depth, "depth", 0, "diagram depth limit, 0 for unlimited")
	cmd.Flags().BoolVar(&opts.detailed, "detailed", false, "show sizes in diagram labels")

	return cmd
}

// runExport renders the report in memory so that a failed render leaves no
// partial output file behind.
func (c *CLI) runExport(ctx context.Context, stdout io.Writer, l *loaded, opts exportOpts) error {
	var buf bytes.Buffer
	if err := writeReport(ctx, &buf, l, opts); err != nil {
		return err
	}

	if opts.output == "" {
		_, err := buf.WriteTo(stdout)
		return err
	}
	if err := os.WriteFile(opts.output, buf.Bytes(), 0o644); err != nil {
		return fmt.Errorf("write %s: %w", opts.output, err)
	}

	printSuccess("Exported %s", opts.format)
	printFile(opts.output)
	if opts.format == formatJSON {
		printNextStep("Browse it later", appName+" --import "+opts.output)
	}
	return nil
}

// writeReport writes l to w in the requested format.
func writeReport(ctx context.Context, w io.Writer, l *loaded, opts exportOpts) error {
	switch opts.format {
	case formatJSON:
		return nixio.WriteJSON(l.graph, l.stats, w)
	case formatDOT, formatSVG:
		dot := nodelink.ToDOT(l.graph, l.stats, nodelink.Options{
			Detailed: opts.detailed,
			MaxDepth: opts.depth,
		})
		if opts.format == formatDOT {
			_, err := io.WriteString(w, dot)
			return err
		}
		svg, err := nodelink.RenderSVG(ctx, dot)
		if err != nil {
			return err
		}
		_, err = w.Write(svg)
		return err
	case formatTable:
		_, err := fmt.Fprintln(w, sizeTable(l.stats, l.cfg.SortOrder(), opts.top))
		return err
	default:
		return errors.New(errors.ErrCodeInvalidInput, "unknown format %q (want one of %v)", opts.format, exportFormats)
	}
}

// sizeTable renders the top paths of t by order.
func sizeTable(t *stats.Table, order stats.SortOrder, top int) string {
	g := t.Graph()
	ids := make([]string, 0, g.Len())
	for _, p := range g.Paths() {
		ids = append(ids, p.Path)
	}
	stats.Sort(ids, t, order)
	if top > 0 && len(ids) > top {
		ids = ids[:top]
	}

	rows := make([][]string, 0, len(ids))
	for i, id := range ids {
		p, _ := g.Path(id)
		rows = append(rows, []string{
			strconv.Itoa(i + 1),
			p.Name,
			humanize.IBytes(p.NarSize),
			humanize.IBytes(t.ClosureSize(id)),
			humanize.IBytes(t.AddedSize(id)),
			strconv.Itoa(len(t.ImmediateParents(id))),
		})
	}

	headerStyle := lipgloss.NewStyle().Foreground(colorGray).Bold(true).Padding(0, 1)
	cellStyle := lipgloss.NewStyle().Padding(0, 1)
	sortedCol := map[stats.SortOrder]int{stats.Alphabetical: 1, stats.ClosureSize: 3, stats.AddedSize: 4}[order]

	return table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
		Headers("#", "Path", "NAR", "Closure", "Added", "Parents").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				if col == sortedCol {
					return headerStyle.Foreground(colorCyan)
				}
				return headerStyle
			}
			switch col {
			case 0:
				return cellStyle.Foreground(colorDim).Align(lipgloss.Right)
			case 1:
				return cellStyle.Foreground(colorWhite)
			default:
				return cellStyle.Align(lipgloss.Right)
			}
		}).
		Render()
}
