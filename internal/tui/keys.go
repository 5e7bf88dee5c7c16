package tui

import "github.com/charmbracelet/bubbles/key"

// KeyMap lists the surface key bindings.
type KeyMap struct {
	Blank   key.Binding
	Success key.Binding
	Error   key.Binding
	Loading key.Binding
	Failing key.Binding
	Custom  key.Binding
	Dismiss key.Binding
	Remove  key.Binding
	Hover   key.Binding
	Quit    key.Binding
}

// DefaultKeyMap returns the default bindings.
func DefaultKeyMap() KeyMap {
	return KeyMap{
		Blank:   key.NewBinding(key.WithKeys("n"), key.WithHelp("n", "notify")),
		Success: key.NewBinding(key.WithKeys("s"), key.WithHelp("s", "success")),
		Error:   key.NewBinding(key.WithKeys("e"), key.WithHelp("e", "error")),
		Loading: key.NewBinding(key.WithKeys("l"), key.WithHelp("l", "promise")),
		Failing: key.NewBinding(key.WithKeys("p"), key.WithHelp("p", "failing promise")),
		Custom:  key.NewBinding(key.WithKeys("c"), key.WithHelp("c", "custom")),
		Dismiss: key.NewBinding(key.WithKeys("d"), key.WithHelp("d", "dismiss all")),
		Remove:  key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "remove all")),
		Hover:   key.NewBinding(key.WithKeys(" "), key.WithHelp("space", "hover")),
		Quit:    key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
	}
}

// ShortHelp implements help.KeyMap.
func (k KeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Blank, k.Success, k.Error, k.Loading, k.Failing, k.Custom, k.Dismiss, k.Remove, k.Hover, k.Quit}
}

// FullHelp implements help.KeyMap.
func (k KeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Blank, k.Success, k.Error, k.Custom},
		{k.Loading, k.Failing},
		{k.Dismiss, k.Remove, k.Hover, k.Quit},
	}
}
