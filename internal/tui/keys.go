package tui

import "github.com/charmbracelet/bubbles/key"

type keyMap struct {
	Options [4]key.Binding
	Next    key.Binding
	Prev    key.Binding
	Reset   key.Binding
	Help    key.Binding
	Quit    key.Binding
}

func defaultKeys() keyMap {
	return keyMap{
		Options: [4]key.Binding{
			key.NewBinding(key.WithKeys("a", "1"), key.WithHelp("a-d/1-4", "answer")),
			key.NewBinding(key.WithKeys("b", "2")),
			key.NewBinding(key.WithKeys("c", "3")),
			key.NewBinding(key.WithKeys("d", "4")),
		},
		Next:  key.NewBinding(key.WithKeys("right", "l", "n", "tab"), key.WithHelp("→/n", "next")),
		Prev:  key.NewBinding(key.WithKeys("left", "h", "p", "shift+tab"), key.WithHelp("←/p", "previous")),
		Reset: key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "reset")),
		Help:  key.NewBinding(key.WithKeys("?"), key.WithHelp("?", "help")),
		Quit:  key.NewBinding(key.WithKeys("q", "esc", "ctrl+c"), key.WithHelp("q", "quit")),
	}
}

func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Options[0], k.Next, k.Prev, k.Help, k.Quit}
}

func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Options[0], k.Reset},
		{k.Next, k.Prev},
		{k.Help, k.Quit},
	}
}
