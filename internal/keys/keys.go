package keys

import "github.com/charmbracelet/bubbles/key"

// KeyMap defines the global keybindings for the inbox application.
type KeyMap struct {
	// Navigation
	Down key.Binding
	Up   key.Binding

	// Open the selected record (simulates a click on its alert)
	Open key.Binding

	// Record management
	Evict    key.Binding
	ClearAll key.Binding
	Refresh  key.Binding

	// Help toggle
	Help key.Binding

	// Quit
	Quit key.Binding
}

// DefaultKeyMap returns the default set of keybindings.
func DefaultKeyMap() *KeyMap {
	return &KeyMap{
		Down: key.NewBinding(
			key.WithKeys("j", "down"),
			key.WithHelp("j/↓", "down"),
		),
		Up: key.NewBinding(
			key.WithKeys("k", "up"),
			key.WithHelp("k/↑", "up"),
		),
		Open: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("enter", "route notification"),
		),
		Evict: key.NewBinding(
			key.WithKeys("x"),
			key.WithHelp("x", "evict record"),
		),
		ClearAll: key.NewBinding(
			key.WithKeys("C"),
			key.WithHelp("C", "clear all"),
		),
		Refresh: key.NewBinding(
			key.WithKeys("r"),
			key.WithHelp("r", "refresh"),
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
