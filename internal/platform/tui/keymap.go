package tui

import "github.com/charmbracelet/bubbles/key"

// SpectatorKeyMap defines the key bindings for the spectator dashboard.
type SpectatorKeyMap struct {
	Up      key.Binding
	Down    key.Binding
	History key.Binding
	Help    key.Binding
	Quit    key.Binding
}

// ShortHelp returns key bindings for the short help view.
func (k SpectatorKeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Up, k.Down, k.History, k.Help, k.Quit}
}

// FullHelp returns key bindings for the full help view.
func (k SpectatorKeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Up, k.Down},
		{k.History, k.Help, k.Quit},
	}
}

// DefaultSpectatorKeyMap returns default key bindings.
func DefaultSpectatorKeyMap() SpectatorKeyMap {
	return SpectatorKeyMap{
		Up: key.NewBinding(
			key.WithKeys("up", "k"),
			key.WithHelp("up/k", "scroll up"),
		),
		Down: key.NewBinding(
			key.WithKeys("down", "j"),
			key.WithHelp("down/j", "scroll down"),
		),
		History: key.NewBinding(
			key.WithKeys("tab"),
			key.WithHelp("tab", "live/history"),
		),
		Help: key.NewBinding(
			key.WithKeys("?"),
			key.WithHelp("?", "more keys"),
		),
		Quit: key.NewBinding(
			key.WithKeys("q", "ctrl+c", "esc"),
			key.WithHelp("q", "quit"),
		),
	}
}
