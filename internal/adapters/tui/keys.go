package tui

import "github.com/charmbracelet/bubbles/key"

// KeyMap lists the view's key bindings. It implements help.KeyMap.
type KeyMap struct {
	New       key.Binding
	Save      key.Binding
	Share     key.Binding
	Favorites key.Binding
	Remove    key.Binding
	Up        key.Binding
	Down      key.Binding
	Quit      key.Binding
}

// DefaultKeyMap returns the default bindings.
func DefaultKeyMap() KeyMap {
	return KeyMap{
		New: key.NewBinding(
			key.WithKeys("n", " "),
			key.WithHelp("n", "new quote"),
		),
		Save: key.NewBinding(
			key.WithKeys("s"),
			key.WithHelp("s", "save"),
		),
		Share: key.NewBinding(
			key.WithKeys("t"),
			key.WithHelp("t", "share"),
		),
		Favorites: key.NewBinding(
			key.WithKeys("f", "tab"),
			key.WithHelp("f", "favorites"),
		),
		Remove: key.NewBinding(
			key.WithKeys("d", "x"),
			key.WithHelp("d", "remove"),
		),
		Up: key.NewBinding(
			key.WithKeys("up", "k"),
			key.WithHelp("↑/k", "up"),
		),
		Down: key.NewBinding(
			key.WithKeys("down", "j"),
			key.WithHelp("↓/j", "down"),
		),
		Quit: key.NewBinding(
			key.WithKeys("q", "ctrl+c"),
			key.WithHelp("q", "quit"),
		),
	}
}

func (k KeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.New, k.Save, k.Share, k.Favorites, k.Remove, k.Quit}
}

func (k KeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.New, k.Save, k.Share},
		{k.Favorites, k.Remove, k.Up, k.Down},
		{k.Quit},
	}
}
