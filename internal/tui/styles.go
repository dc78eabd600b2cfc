package tui

import "github.com/charmbracelet/lipgloss"

var (
	colorCyan   = lipgloss.Color("36")
	colorGreen  = lipgloss.Color("35")
	colorYellow = lipgloss.Color("220")
	colorRed    = lipgloss.Color("167")
	colorWhite  = lipgloss.Color("255")
	colorGray   = lipgloss.Color("245")
	colorDim    = lipgloss.Color("240")
)

var (
	stylePane        = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(colorDim)
	stylePaneFocused = stylePane.BorderForeground(colorCyan)
	stylePaneTitle   = lipgloss.NewStyle().Bold(true).Foreground(colorGray)
	styleFocusTitle  = stylePaneTitle.Foreground(colorCyan)

	styleRow         = lipgloss.NewStyle().Foreground(colorWhite)
	styleRowSelected = lipgloss.NewStyle().Bold(true).Foreground(colorCyan).Reverse(true)
	styleRowCursor   = lipgloss.NewStyle().Foreground(colorCyan)
	styleEmpty       = lipgloss.NewStyle().Foreground(colorDim).Italic(true)

	styleLabel   = lipgloss.NewStyle().Foreground(colorGray)
	styleValue   = lipgloss.NewStyle().Foreground(colorWhite)
	styleSep     = lipgloss.NewStyle().Foreground(colorDim)
	styleOK      = lipgloss.NewStyle().Foreground(colorGreen)
	styleFailure = lipgloss.NewStyle().Foreground(colorRed)

	styleModal      = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(colorYellow).Padding(0, 1)
	styleModalTitle = lipgloss.NewStyle().Bold(true).Foreground(colorYellow)
	styleHelpKey    = lipgloss.NewStyle().Foreground(colorCyan).Width(16)
)
