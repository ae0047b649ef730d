package keys

import "github.com/charmbracelet/bubbles/key"

// KeyMap defines the global keybindings for the application. The chat
// input owns plain characters, so global actions use control keys.
type KeyMap struct {
	// Submit the current input line.
	Submit key.Binding

	// Back / Quit
	Back key.Binding
	Quit key.Binding

	// View toggles
	History key.Binding
	Help    key.Binding
}

// DefaultKeyMap returns the default set of keybindings.
func DefaultKeyMap() *KeyMap {
	return &KeyMap{
		Submit: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("enter", "send message"),
		),
		Back: key.NewBinding(
			key.WithKeys("esc"),
			key.WithHelp("esc", "back to chat"),
		),
		Quit: key.NewBinding(
			key.WithKeys("ctrl+c"),
			key.WithHelp("ctrl+c", "quit"),
		),
		History: key.NewBinding(
			key.WithKeys("ctrl+r"),
			key.WithHelp("ctrl+r", "send history"),
		),
		Help: key.NewBinding(
			key.WithKeys("ctrl+g"),
			key.WithHelp("ctrl+g", "toggle help"),
		),
	}
}

// ShortHelp returns the most essential keybindings for the compact
// help view.
func (k *KeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Submit, k.History, k.Help, k.Quit}
}

// FullHelp returns all keybindings grouped by category for the
// expanded help view.
func (k *KeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Submit, k.Back},
		{k.History, k.Help, k.Quit},
	}
}
