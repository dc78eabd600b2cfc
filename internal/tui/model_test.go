package tui

import (
	"errors"
	"slices"
	"strings"
	"testing"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/matzehuels/nixtree/pkg/graph"
	"github.com/matzehuels/nixtree/pkg/navigator"
	"github.com/matzehuels/nixtree/pkg/stats"
)

const (
	pRoot = "/nix/store/rrrrrrrr-system"
	pA    = "/nix/store/aaaaaaaa-libfoo"
	pB    = "/nix/store/bbbbbbbb-libbar"
	pC    = "/nix/store/cccccccc-glibc"
)

// newTestModel browses system -> {libfoo, libbar}, libfoo -> glibc,
// libbar -> glibc.
func newTestModel(opts ...Option) Model {
	g := graph.New()
	g.AddPath(graph.NewStorePath(pRoot, 10, []string{pA, pB}))
	g.AddPath(graph.NewStorePath(pA, 20, []string{pC}))
	g.AddPath(graph.NewStorePath(pB, 15, []string{pC}))
	g.AddPath(graph.NewStorePath(pC, 5, nil))
	g.Roots = []string{pRoot}
	g.DisambiguateNames()

	nav := navigator.New(g, stats.Calculate(g))
	m := New(nav, opts...)
	next, _ := m.Update(tea.WindowSizeMsg{Width: 120, Height: 30})
	return next.(Model)
}

func keyMsg(k string) tea.KeyMsg {
	switch k {
	case "up":
		return tea.KeyMsg{Type: tea.KeyUp}
	case "down":
		return tea.KeyMsg{Type: tea.KeyDown}
	case "left":
		return tea.KeyMsg{Type: tea.KeyLeft}
	case "right":
		return tea.KeyMsg{Type: tea.KeyRight}
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	case "esc":
		return tea.KeyMsg{Type: tea.KeyEsc}
	case "backspace":
		return tea.KeyMsg{Type: tea.KeyBackspace}
	case "ctrl+c":
		return tea.KeyMsg{Type: tea.KeyCtrlC}
	case "space":
		return tea.KeyMsg{Type: tea.KeySpace, Runes: []rune{' '}}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(k)}
}

// press feeds keys to m and returns the model and the command of the last key.
func press(t *testing.T, m Model, keys ...string) (Model, tea.Cmd) {
	t.Helper()
	var cmd tea.Cmd
	for _, k := range keys {
		var next tea.Model
		next, cmd = m.Update(keyMsg(k))
		m = next.(Model)
	}
	return m, cmd
}

func isQuit(cmd tea.Cmd) bool {
	if cmd == nil {
		return false
	}
	_, ok := cmd().(tea.QuitMsg)
	return ok
}

func TestModelNavigates(t *testing.T) {
	m := newTestModel()

	m, _ = press(t, m, "l")
	if got := m.Navigator().List(navigator.Current).Items; !slices.Equal(got, []string{pA, pB}) {
		t.Fatalf("Current after descend = %v, want [libfoo libbar]", got)
	}

	m, _ = press(t, m, "down", "enter")
	if got := m.Navigator().Focused(); got != pC {
		t.Errorf("Focused() = %q, want %q", got, pC)
	}

	m, _ = press(t, m, "h", "left")
	if got := m.Navigator().Focused(); got != pRoot {
		t.Errorf("Focused() after two backs = %q, want %q", got, pRoot)
	}
}

func TestModelQuit(t *testing.T) {
	tests := []struct {
		name string
		keys []string
		quit bool
	}{
		{"q quits", []string{"q"}, true},
		{"esc quits", []string{"esc"}, true},
		{"ctrl+c quits", []string{"ctrl+c"}, true},
		{"esc cancels search first", []string{"/", "esc"}, false},
		{"q is text while searching", []string{"/", "q"}, false},
		{"ctrl+c quits while searching", []string{"/", "ctrl+c"}, true},
		{"q closes help first", []string{"?", "q"}, false},
		{"navigation does not quit", []string{"j", "k", "l", "h"}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, cmd := press(t, newTestModel(), tt.keys...)
			if got := isQuit(cmd); got != tt.quit {
				t.Errorf("quit = %v, want %v", got, tt.quit)
			}
		})
	}
}

func TestModelSearch(t *testing.T) {
	m, _ := press(t, newTestModel(), "/", "g", "l", "x", "backspace", "i", "b", "c")
	if got := m.Navigator().Query(); got != "glibc" {
		t.Fatalf("Query() = %q, want glibc", got)
	}

	m, _ = press(t, m, "enter")
	if m.Navigator().Mode() != navigator.Browsing {
		t.Errorf("Mode() = %v, want browsing", m.Navigator().Mode())
	}
	if got := m.Navigator().List(navigator.Current).Items; !slices.Equal(got, []string{pC}) {
		t.Errorf("Current after search = %v, want [%s]", got, pC)
	}
}

func TestModelSearchSpace(t *testing.T) {
	m, _ := press(t, newTestModel(), "/", "l", "i", "b", "space", "c")
	if got := m.Navigator().Query(); got != "lib c" {
		t.Errorf("Query() = %q, want %q", got, "lib c")
	}
}

func TestModelYank(t *testing.T) {
	var copied string
	m := newTestModel(WithClipboard(func(s string) error {
		copied = s
		return nil
	}))

	m, cmd := press(t, m, "y")
	if cmd == nil {
		t.Fatal("yank returned no command")
	}
	next, _ := m.Update(cmd())
	m = next.(Model)

	if copied != pRoot {
		t.Errorf("copied %q, want %q", copied, pRoot)
	}
	if want := "Copied " + pRoot; m.Status() != want {
		t.Errorf("Status() = %q, want %q", m.Status(), want)
	}

	// any key clears the message
	m, _ = press(t, m, "j")
	if m.Status() != "" {
		t.Errorf("Status() after key = %q, want empty", m.Status())
	}
}

func TestModelYankFailure(t *testing.T) {
	m := newTestModel(WithClipboard(func(string) error {
		return errors.New("no clipboard utility")
	}))

	m, cmd := press(t, m, "y")
	next, _ := m.Update(cmd())
	m = next.(Model)

	if !strings.Contains(m.Status(), "no clipboard utility") {
		t.Errorf("Status() = %q, want the clipboard error", m.Status())
	}
	if !strings.Contains(m.View(), "Copy failed") {
		t.Error("View() should show the failure")
	}
}

func TestModelYankIsTextWhileSearching(t *testing.T) {
	called := false
	m := newTestModel(WithClipboard(func(string) error {
		called = true
		return nil
	}))

	m, cmd := press(t, m, "/", "y")
	if cmd != nil {
		cmd()
	}
	if called {
		t.Error("clipboard used while searching")
	}
	if m.Navigator().Query() != "y" {
		t.Errorf("Query() = %q, want y", m.Navigator().Query())
	}
}

func TestKeyMapMatchesNavigator(t *testing.T) {
	focusAfter := func(keys ...string) string {
		t.Helper()
		m, _ := press(t, newTestModel(), keys...)
		return m.Navigator().Focused()
	}

	for _, l := range DefaultKeys.Descend.Keys() {
		if got := focusAfter(l); got != pA {
			t.Errorf("descend via %q: Focused() = %q, want %q", l, got, pA)
		}
		for _, d := range DefaultKeys.Down.Keys() {
			if got := focusAfter(l, d); got != pB {
				t.Errorf("down via %q: Focused() = %q, want %q", d, got, pB)
			}
			for _, u := range DefaultKeys.Up.Keys() {
				if got := focusAfter(l, d, u); got != pA {
					t.Errorf("up via %q: Focused() = %q, want %q", u, got, pA)
				}
			}
		}
		for _, h := range DefaultKeys.Back.Keys() {
			if got := focusAfter(l, h); got != pRoot {
				t.Errorf("back via %q: Focused() = %q, want %q", h, got, pRoot)
			}
		}
	}

	m, _ := press(t, newTestModel(), DefaultKeys.Sort.Keys()...)
	if m.Navigator().SortOrder() != stats.ClosureSize {
		t.Errorf("sort key: SortOrder() = %v, want closure size", m.Navigator().SortOrder())
	}
	m, _ = press(t, newTestModel(), DefaultKeys.Help.Keys()...)
	if m.Navigator().Mode() != navigator.Help {
		t.Errorf("help key: Mode() = %v, want help", m.Navigator().Mode())
	}
	m, _ = press(t, newTestModel(), DefaultKeys.Search.Keys()...)
	if m.Navigator().Mode() != navigator.Searching {
		t.Errorf("search key: Mode() = %v, want searching", m.Navigator().Mode())
	}
}

func TestModelCustomKeys(t *testing.T) {
	keys := DefaultKeys
	keys.Down = key.NewBinding(key.WithKeys("n"), key.WithHelp("n", "next row"))
	keys.Quit = key.NewBinding(key.WithKeys("x"), key.WithHelp("x", "quit"))

	m, _ := press(t, newTestModel(WithKeys(keys)), "l", "n")
	if got := m.Navigator().Focused(); got != pB {
		t.Errorf("Focused() after remapped down = %q, want %q", got, pB)
	}

	m, _ = press(t, m, "j")
	if got := m.Navigator().Focused(); got != pB {
		t.Errorf("Focused() after unbound j = %q, want %q", got, pB)
	}

	if _, cmd := press(t, m, "q"); isQuit(cmd) {
		t.Error("q should not quit once quit is remapped")
	}
	if _, cmd := press(t, m, "x"); !isQuit(cmd) {
		t.Error("x should quit")
	}
	help, _ := press(t, m, "?")
	if v := help.View(); !strings.Contains(v, "next row") || strings.Contains(v, "move down") {
		t.Error("help listing should use the remapped bindings")
	}
}

func TestModelYankCopiesHighlightedRow(t *testing.T) {
	const (
		small = "/nix/store/aaaaaaaa-small"
		big   = "/nix/store/bbbbbbbb-big"
	)
	g := graph.New()
	g.AddPath(graph.NewStorePath(pRoot, 1, []string{small, big}))
	g.AddPath(graph.NewStorePath(small, 1, nil))
	g.AddPath(graph.NewStorePath(big, 100, nil))
	g.Roots = []string{pRoot}

	var copied string
	m := New(navigator.New(g, stats.Calculate(g)), WithClipboard(func(s string) error {
		copied = s
		return nil
	}))

	// Re-sorting by closure size keeps the cursor index: the row becomes big
	// while the focus stays on small.
	m, _ = press(t, m, "l", "s")
	row, _ := m.Navigator().Selected(navigator.Current)
	if row != big || m.Navigator().Focused() != small {
		t.Fatalf("row = %q focus = %q, want %q and %q", row, m.Navigator().Focused(), big, small)
	}

	m, cmd := press(t, m, "y")
	if cmd == nil {
		t.Fatal("yank returned no command")
	}
	m.Update(cmd())
	if copied != big {
		t.Errorf("copied %q, want highlighted row %q", copied, big)
	}
}
