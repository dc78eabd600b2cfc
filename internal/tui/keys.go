package tui

import "github.com/charmbracelet/bubbles/key"

// KeyMap binds keys to navigator transitions while browsing and lists them in
// the help overlay. The search prompt keeps its fixed keys.
type KeyMap struct {
	Down    key.Binding
	Up      key.Binding
	Back    key.Binding
	Descend key.Binding
	Search  key.Binding
	Sort    key.Binding
	Yank    key.Binding
	Help    key.Binding
	Quit    key.Binding
}

// DefaultKeys is the standard key map.
var DefaultKeys = KeyMap{
	Down: key.NewBinding(
		key.WithKeys("j", "down"),
		key.WithHelp("j / ↓", "move down"),
	),
	Up: key.NewBinding(
		key.WithKeys("k", "up"),
		key.WithHelp("k / ↑", "move up"),
	),
	Back: key.NewBinding(
		key.WithKeys("h", "left"),
		key.WithHelp("h / ←", "back to previous list"),
	),
	Descend: key.NewBinding(
		key.WithKeys("l", "right", "enter"),
		key.WithHelp("l / → / enter", "open references"),
	),
	Search: key.NewBinding(
		key.WithKeys("/"),
		key.WithHelp("/", "search by name"),
	),
	Sort: key.NewBinding(
		key.WithKeys("s"),
		key.WithHelp("s", "cycle sort order"),
	),
	Yank: key.NewBinding(
		key.WithKeys("y"),
		key.WithHelp("y", "copy path to clipboard"),
	),
	Help: key.NewBinding(
		key.WithKeys("?"),
		key.WithHelp("?", "toggle help"),
	),
	Quit: key.NewBinding(
		key.WithKeys("q", "esc", "ctrl+c"),
		key.WithHelp("q / esc", "quit"),
	),
}

// Bindings returns the bindings in help order.
func (k KeyMap) Bindings() []key.Binding {
	return []key.Binding{k.Down, k.Up, k.Back, k.Descend, k.Search, k.Sort, k.Yank, k.Help, k.Quit}
}

// searchHelp describes the keys of the search prompt.
var searchHelp = [][2]string{
	{"enter", "show matches"},
	{"backspace", "delete character"},
	{"esc", "cancel search"},
}
