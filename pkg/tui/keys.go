package tui

import "github.com/charmbracelet/bubbles/v2/key"

// keyMap defines the link builder bindings.
type keyMap struct {
	Up       key.Binding
	Down     key.Binding
	Top      key.Binding
	Bottom   key.Binding
	Select   key.Binding // Toggle a group, edit a field or build.
	Build    key.Binding
	Copy     key.Binding
	Expand   key.Binding
	Collapse key.Binding
	Clear    key.Binding
	Help     key.Binding
	Quit     key.Binding

	Save   key.Binding
	Cancel key.Binding
}

var defaultKeyMap = keyMap{
	Up: key.NewBinding(
		key.WithKeys("k", "up"),
		key.WithHelp("k/↑", "up"),
	),
	Down: key.NewBinding(
		key.WithKeys("j", "down"),
		key.WithHelp("j/↓", "down"),
	),
	Top: key.NewBinding(
		key.WithKeys("g", "home"),
		key.WithHelp("g", "top"),
	),
	Bottom: key.NewBinding(
		key.WithKeys("G", "end"),
		key.WithHelp("G", "bottom"),
	),
	Select: key.NewBinding(
		key.WithKeys("enter", "space", " "),
		key.WithHelp("enter", "toggle/edit"),
	),
	Build: key.NewBinding(
		key.WithKeys("b", "ctrl+g"),
		key.WithHelp("b", "generate"),
	),
	Copy: key.NewBinding(
		key.WithKeys("y"),
		key.WithHelp("y", "copy link"),
	),
	Expand: key.NewBinding(
		key.WithKeys("e"),
		key.WithHelp("e", "expand all"),
	),
	Collapse: key.NewBinding(
		key.WithKeys("c"),
		key.WithHelp("c", "collapse all"),
	),
	Clear: key.NewBinding(
		key.WithKeys("x", "delete"),
		key.WithHelp("x", "clear field"),
	),
	Help: key.NewBinding(
		key.WithKeys("?"),
		key.WithHelp("?", "help"),
	),
	Quit: key.NewBinding(
		key.WithKeys("q", "ctrl+c"),
		key.WithHelp("q", "quit"),
	),
	Save: key.NewBinding(
		key.WithKeys("enter"),
		key.WithHelp("enter", "save"),
	),
	Cancel: key.NewBinding(
		key.WithKeys("esc"),
		key.WithHelp("esc", "cancel"),
	),
}

func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Select, k.Build, k.Copy, k.Help, k.Quit}
}

func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Up, k.Down, k.Top, k.Bottom},
		{k.Select, k.Expand, k.Collapse, k.Clear},
		{k.Build, k.Copy, k.Help, k.Quit},
	}
}

// editKeys is shown while a field is being edited.
type editKeys struct{ keyMap }

func (k editKeys) ShortHelp() []key.Binding {
	return []key.Binding{k.Save, k.Cancel}
}

func (k editKeys) FullHelp() [][]key.Binding {
	return [][]key.Binding{k.ShortHelp()}
}
