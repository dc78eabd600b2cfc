// Package tui runs the interactive three-pane browser on top of a
// navigator.Navigator.
//
// The bubbletea runtime owns the terminal: it enters the alternate screen,
// delivers one message per input event, and restores the terminal on every
// exit path. Each key message applies at most one navigator transition and
// the renderer redraws at most once per frame.
package tui

import (
	"context"
	"errors"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/matzehuels/nixtree/pkg/navigator"
)

// FPS is the renderer's frame rate.
const FPS = 60

// Model is the bubbletea model of the browser.
type Model struct {
	nav  *navigator.Navigator
	keys KeyMap
	copy func(string) error

	width  int
	height int

	// status is a transient message shown until the next key press.
	status    string
	statusErr bool
}

// Option configures New.
type Option func(*Model)

// WithKeys replaces the key bindings. They drive both the transitions and
// the help listing.
func WithKeys(k KeyMap) Option {
	return func(m *Model) { m.keys = k }
}

// WithClipboard replaces the function used to copy paths.
func WithClipboard(fn func(string) error) Option {
	return func(m *Model) { m.copy = fn }
}

// New creates a Model browsing nav.
func New(nav *navigator.Navigator, opts ...Option) Model {
	m := Model{nav: nav, keys: DefaultKeys, copy: clipboard.WriteAll}
	for _, opt := range opts {
		opt(&m)
	}
	return m
}

// Run starts the browser and blocks until the user quits or ctx is done.
func Run(ctx context.Context, nav *navigator.Navigator, opts ...Option) error {
	p := tea.NewProgram(New(nav, opts...),
		tea.WithAltScreen(),
		tea.WithFPS(FPS),
		tea.WithContext(ctx),
	)
	_, err := p.Run()
	if err != nil && ctx.Err() != nil {
		return ctx.Err()
	}
	if errors.Is(err, tea.ErrProgramKilled) {
		return nil
	}
	return err
}

// yankedMsg reports the result of a clipboard copy.
type yankedMsg struct {
	path string
	err  error
}

func (m Model) Init() tea.Cmd {
	return nil
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height

	case yankedMsg:
		if msg.err != nil {
			m.status, m.statusErr = "Copy failed: "+msg.err.Error(), true
		} else {
			m.status, m.statusErr = "Copied "+msg.path, false
		}

	case tea.KeyMsg:
		m.status, m.statusErr = "", false
		return m, m.handleKey(msg)
	}
	return m, nil
}

// handleKey maps msg onto a navigator transition through the key map. While
// searching every key goes to the search prompt; ctrl+c always quits.
func (m Model) handleKey(msg tea.KeyMsg) tea.Cmd {
	nav := m.nav
	if msg.Type == tea.KeyCtrlC {
		return tea.Quit
	}
	if nav.Mode() == navigator.Searching {
		if nav.HandleKey(msg.String()) {
			return tea.Quit
		}
		return nil
	}

	switch {
	case key.Matches(msg, m.keys.Quit):
		if nav.Mode() == navigator.Help {
			nav.ToggleHelp()
			return nil
		}
		return tea.Quit
	case key.Matches(msg, m.keys.Help):
		nav.ToggleHelp()
	case key.Matches(msg, m.keys.Search):
		nav.StartSearch()
	case key.Matches(msg, m.keys.Sort):
		nav.CycleSort()
	case key.Matches(msg, m.keys.Down):
		nav.Down()
	case key.Matches(msg, m.keys.Up):
		nav.Up()
	case key.Matches(msg, m.keys.Back):
		nav.Back()
	case key.Matches(msg, m.keys.Descend):
		nav.Descend()
	case key.Matches(msg, m.keys.Yank):
		return m.yank()
	}
	return nil
}

// yank copies the path on the highlighted row, which after a re-sort may
// differ from the focus shown in the side panes.
func (m Model) yank() tea.Cmd {
	path, ok := m.nav.Selected(navigator.Current)
	if !ok {
		return nil
	}
	copyFn := m.copy
	return func() tea.Msg {
		return yankedMsg{path: path, err: copyFn(path)}
	}
}

// Navigator returns the browsed navigator.
func (m Model) Navigator() *navigator.Navigator { return m.nav }

// Status returns the transient status message.
func (m Model) Status() string { return m.status }
