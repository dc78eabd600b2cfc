package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"

	"github.com/matzehuels/nixtree/pkg/navigator"
	"github.com/matzehuels/nixtree/pkg/stats"
)

const sep = " | "

func (m Model) View() string {
	if m.width <= 0 || m.height <= 0 {
		return ""
	}

	bodyH := max(m.height-2, 3)
	body := m.viewPanes(bodyH)

	switch m.nav.Mode() {
	case navigator.Help:
		body = overlay(body, m.viewHelp(), m.width)
	case navigator.Searching:
		body = overlay(body, m.viewSearch(), m.width)
	}

	return lipgloss.JoinVertical(lipgloss.Left, body, m.viewDetails(), m.viewStatus())
}

func (m Model) viewPanes(height int) string {
	side := m.width / 3
	mid := m.width - 2*side

	prev := m.nav.List(navigator.Previous)
	cur := m.nav.List(navigator.Current)
	next := m.nav.List(navigator.Next)

	return lipgloss.JoinHorizontal(lipgloss.Top,
		m.viewPane(fmt.Sprintf("Referrers (%d)", len(prev.Items)), prev, side, height, false),
		m.viewPane(fmt.Sprintf("Paths (%d)", len(cur.Items)), cur, mid, height, true),
		m.viewPane(fmt.Sprintf("References (%d)", len(next.Items)), next, side, height, false),
	)
}

// viewPane renders one bordered column of outer size width x height.
func (m Model) viewPane(title string, l navigator.List, width, height int, focused bool) string {
	innerW := max(width-2, 1)
	innerH := max(height-2, 1)
	g, t, order := m.nav.Graph(), m.nav.Stats(), m.nav.SortOrder()

	box, titleStyle := stylePane, stylePaneTitle
	if focused {
		box, titleStyle = stylePaneFocused, styleFocusTitle
	}

	lines := []string{titleStyle.Render(runewidth.FillRight(truncate(title, innerW), innerW))}
	rows := innerH - 1

	if len(l.Items) == 0 {
		lines = append(lines, styleEmpty.Render(runewidth.FillRight(truncate("(empty)", innerW), innerW)))
	}

	offset := scrollOffset(l.Cursor, len(l.Items), rows)
	for i := offset; i < len(l.Items) && i < offset+rows; i++ {
		id := l.Items[i]
		row := fitRow(displayName(g, id), columnSize(t, id, order), innerW)
		switch {
		case i == l.Cursor && focused:
			row = styleRowSelected.Render(row)
		case i == l.Cursor:
			row = styleRowCursor.Render(row)
		default:
			row = styleRow.Render(row)
		}
		lines = append(lines, row)
	}

	for len(lines) < innerH {
		lines = append(lines, strings.Repeat(" ", innerW))
	}
	return box.Width(innerW).Render(strings.Join(lines, "\n"))
}

// viewDetails renders the sizes and parents of the focused path.
func (m Model) viewDetails() string {
	id := m.nav.Focused()
	if id == "" {
		return styleLabel.Render(truncate("No selection", m.width))
	}

	g, t := m.nav.Graph(), m.nav.Stats()
	var narSize uint64
	var sigs int
	if p, ok := g.Path(id); ok {
		narSize = p.NarSize
		sigs = len(p.Signatures)
	}
	parents := t.ImmediateParents(id)

	parts := []string{
		"NAR Size: " + formatSize(narSize),
		"Closure Size: " + formatSize(t.ClosureSize(id)),
		"Added Size: " + formatSize(t.AddedSize(id)),
		fmt.Sprintf("Signatures: %d", sigs),
		fmt.Sprintf("Immediate Parents (%d): %s", len(parents), parentPreview(g, parents)),
	}
	if len(parents) == 0 {
		parts[len(parts)-1] = "Immediate Parents: none"
	}
	return styleValue.Render(truncate(strings.Join(parts, sep), m.width))
}

// viewStatus renders the focused identifier, the sort order, a help hint
// and the transient message, if any.
func (m Model) viewStatus() string {
	focused := m.nav.Focused()
	if focused == "" {
		focused = "No selection"
	}
	line := strings.Join([]string{
		focused,
		"Sort: " + m.nav.SortOrder().String(),
		"Press ? for help",
	}, sep)

	if m.status == "" {
		return styleLabel.Render(truncate(line, m.width))
	}

	msgStyle := styleOK
	if m.statusErr {
		msgStyle = styleFailure
	}
	msg := truncate(m.status, m.width)
	rest := m.width - runewidth.StringWidth(msg) - len(sep)
	if rest <= 0 {
		return msgStyle.Render(msg)
	}
	return styleLabel.Render(truncate(line, rest)) + styleSep.Render(sep) + msgStyle.Render(msg)
}

func (m Model) viewHelp() string {
	var b strings.Builder
	b.WriteString(styleModalTitle.Render("Keys"))
	b.WriteString("\n")
	for _, kb := range m.keys.Bindings() {
		h := kb.Help()
		b.WriteString(styleHelpKey.Render(h.Key) + styleValue.Render(h.Desc) + "\n")
	}
	b.WriteString("\n")
	b.WriteString(styleModalTitle.Render("Search"))
	b.WriteString("\n")
	for _, h := range searchHelp {
		b.WriteString(styleHelpKey.Render(h[0]) + styleValue.Render(h[1]) + "\n")
	}
	b.WriteString("\n")
	b.WriteString(styleLabel.Render("Size column: " + sizeColumn(m.nav.SortOrder())))
	return styleModal.Render(b.String())
}

func sizeColumn(o stats.SortOrder) string {
	if o == stats.AddedSize {
		return stats.AddedSize.String()
	}
	return stats.ClosureSize.String()
}

func (m Model) viewSearch() string {
	w := min(50, max(m.width-6, 10))
	prompt := "/" + m.nav.Query() + "█"
	content := styleModalTitle.Render("Search") + "\n" +
		styleValue.Render(truncate(prompt, w)) + "\n" +
		styleLabel.Render(truncate("enter: show matches · esc: cancel", w))
	return styleModal.Width(w).Render(content)
}

// overlay draws modal centered over body, replacing whole lines.
func overlay(body, modal string, width int) string {
	lines := strings.Split(body, "\n")
	box := strings.Split(modal, "\n")
	if len(box) > len(lines) {
		box = box[:len(lines)]
	}
	start := (len(lines) - len(box)) / 2
	for i, l := range box {
		lines[start+i] = lipgloss.PlaceHorizontal(width, lipgloss.Center, l)
	}
	return strings.Join(lines, "\n")
}
