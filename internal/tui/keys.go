package tui

import "github.com/charmbracelet/bubbles/key"

type keyMap struct {
	Quit      key.Binding
	NewText   key.Binding
	Reset     key.Binding
	Duration  key.Binding
	Backspace key.Binding
}

func defaultKeyMap() keyMap {
	return keyMap{
		Quit:      key.NewBinding(key.WithKeys("ctrl+c"), key.WithHelp("ctrl+c", "quit")),
		NewText:   key.NewBinding(key.WithKeys("tab"), key.WithHelp("tab", "new text")),
		Reset:     key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "restart")),
		Duration:  key.NewBinding(key.WithKeys("ctrl+t"), key.WithHelp("ctrl+t", "duration")),
		Backspace: key.NewBinding(key.WithKeys("backspace", "delete")),
	}
}

func (k keyMap) helpLine() string {
	out := ""
	for i, b := range []key.Binding{k.NewText, k.Reset, k.Duration, k.Quit} {
		if i > 0 {
			out += " · "
		}
		out += b.Help().Key + " " + b.Help().Desc
	}
	return out
}
