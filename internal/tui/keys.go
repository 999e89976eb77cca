package tui

import (
	"strings"

	"github.com/charmbracelet/bubbles/key"
)

type keyMap struct {
	Focus    key.Binding
	Prev     key.Binding
	Next     key.Binding
	Toggle   key.Binding
	Clear    key.Binding
	Prompt   key.Binding
	PrevYear key.Binding
	NextYear key.Binding
	Quit     key.Binding
}

func defaultKeys() keyMap {
	return keyMap{
		Focus:    key.NewBinding(key.WithKeys("tab"), key.WithHelp("tab", "switch chart")),
		Prev:     key.NewBinding(key.WithKeys("up", "k", "left", "h"), key.WithHelp("↑/k", "prev")),
		Next:     key.NewBinding(key.WithKeys("down", "j", "right", "l"), key.WithHelp("↓/j", "next")),
		Toggle:   key.NewBinding(key.WithKeys("enter", " "), key.WithHelp("enter/space", "select cluster")),
		Clear:    key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "clear")),
		Prompt:   key.NewBinding(key.WithKeys("/"), key.WithHelp("/", "find cluster")),
		PrevYear: key.NewBinding(key.WithKeys("["), key.WithHelp("[", "prev year")),
		NextYear: key.NewBinding(key.WithKeys("]"), key.WithHelp("]", "next year")),
		Quit:     key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
	}
}

func (k keyMap) help() string {
	bindings := []key.Binding{k.Focus, k.Prev, k.Next, k.Toggle, k.Clear, k.Prompt, k.PrevYear, k.NextYear, k.Quit}
	parts := make([]string, 0, len(bindings))
	for _, b := range bindings {
		h := b.Help()
		parts = append(parts, h.Key+" "+h.Desc)
	}
	return strings.Join(parts, " · ")
}
