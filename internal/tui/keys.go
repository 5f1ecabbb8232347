package tui

import "github.com/charmbracelet/bubbles/key"

type keyMap struct {
	Up       key.Binding
	Down     key.Binding
	Open     key.Binding
	Refresh  key.Binding
	Sound    key.Binding
	Push     key.Binding
	Critical key.Binding
	VolUp    key.Binding
	VolDown  key.Binding
	Dismiss  key.Binding
	Clear    key.Binding
	Help     key.Binding
	Quit     key.Binding
}

func defaultKeyMap() keyMap {
	return keyMap{
		Up: key.NewBinding(
			key.WithKeys("k", "up"),
			key.WithHelp("↑/k", "up"),
		),
		Down: key.NewBinding(
			key.WithKeys("j", "down"),
			key.WithHelp("↓/j", "down"),
		),
		Open: key.NewBinding(
			key.WithKeys("enter", "o"),
			key.WithHelp("enter", "open"),
		),
		Refresh: key.NewBinding(
			key.WithKeys("r"),
			key.WithHelp("r", "refresh"),
		),
		Sound: key.NewBinding(
			key.WithKeys("s"),
			key.WithHelp("s", "sound"),
		),
		Push: key.NewBinding(
			key.WithKeys("p"),
			key.WithHelp("p", "desktop"),
		),
		Critical: key.NewBinding(
			key.WithKeys("c"),
			key.WithHelp("c", "critical only"),
		),
		VolUp: key.NewBinding(
			key.WithKeys("+", "="),
			key.WithHelp("+/-", "volume"),
		),
		VolDown: key.NewBinding(
			key.WithKeys("-", "_"),
		),
		Dismiss: key.NewBinding(
			key.WithKeys("x", "esc"),
			key.WithHelp("x", "dismiss"),
		),
		Clear: key.NewBinding(
			key.WithKeys("X"),
			key.WithHelp("X", "dismiss all"),
		),
		Help: key.NewBinding(
			key.WithKeys("?"),
			key.WithHelp("?", "help"),
		),
		Quit: key.NewBinding(
			key.WithKeys("q", "ctrl+c"),
			key.WithHelp("q", "quit"),
		),
	}
}

func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Open, k.Refresh, k.Sound, k.Push, k.Critical, k.Help, k.Quit}
}

func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Up, k.Down, k.Open, k.Refresh},
		{k.Sound, k.Push, k.Critical, k.VolUp},
		{k.Dismiss, k.Clear, k.Help, k.Quit},
	}
}
