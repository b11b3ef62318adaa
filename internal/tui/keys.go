package tui

import "github.com/charmbracelet/bubbles/key"

// keyMap holds every binding the interface reacts to. Labels come from
// the session catalog so the help bar follows the display locale.
type keyMap struct {
	NextTab      key.Binding
	PrevTab      key.Binding
	Preferences  key.Binding
	Troubleshoot key.Binding
	Colours      key.Binding
	Rerun        key.Binding
	Add          key.Binding
	Rename       key.Binding
	Delete       key.Binding
	Close        key.Binding
	Help         key.Binding
	Quit         key.Binding
}

func newKeyMap(tr func(string) string) keyMap {
	return keyMap{
		NextTab: key.NewBinding(
			key.WithKeys("tab", "right", "l"),
			key.WithHelp("tab", tr("switch tab")),
		),
		PrevTab: key.NewBinding(
			key.WithKeys("shift+tab", "left", "h"),
			key.WithHelp("shift+tab", tr("switch tab")),
		),
		Preferences: key.NewBinding(
			key.WithKeys("p"),
			key.WithHelp("p", tr("preferences")),
		),
		Troubleshoot: key.NewBinding(
			key.WithKeys("t"),
			key.WithHelp("t", tr("troubleshoot")),
		),
		Colours: key.NewBinding(
			key.WithKeys("c"),
			key.WithHelp("c", tr("colours")),
		),
		Rerun: key.NewBinding(
			key.WithKeys("r"),
			key.WithHelp("r", tr("rerun")),
		),
		Add: key.NewBinding(
			key.WithKeys("a"),
			key.WithHelp("a", tr("add")),
		),
		Rename: key.NewBinding(
			key.WithKeys("r"),
			key.WithHelp("r", tr("rename")),
		),
		Delete: key.NewBinding(
			key.WithKeys("d"),
			key.WithHelp("d", tr("delete")),
		),
		Close: key.NewBinding(
			key.WithKeys("esc"),
			key.WithHelp("esc", tr("close")),
		),
		Help: key.NewBinding(
			key.WithKeys("?"),
			key.WithHelp("?", tr("help")),
		),
		Quit: key.NewBinding(
			key.WithKeys("q", "ctrl+c"),
			key.WithHelp("q", tr("quit")),
		),
	}
}

// ShortHelp implements help.KeyMap.
func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.NextTab, k.Preferences, k.Troubleshoot, k.Colours, k.Help, k.Quit}
}

// FullHelp implements help.KeyMap.
func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.NextTab, k.PrevTab},
		{k.Preferences, k.Troubleshoot, k.Colours},
		{k.Add, k.Rename, k.Delete, k.Rerun},
		{k.Close, k.Help, k.Quit},
	}
}
