package models

import "github.com/charmbracelet/bubbles/key"

type KeyMap struct {
	Next      key.Binding
	Toggle    key.Binding
	Increment key.Binding
	Decrement key.Binding
	Pause     key.Binding
	Reset     key.Binding
	Filter    key.Binding
	Quit      key.Binding
}

func DefaultKeyMap() KeyMap {
	return KeyMap{
		Next:      key.NewBinding(key.WithKeys("tab", "right", "l"), key.WithHelp("tab", "next scope")),
		Toggle:    key.NewBinding(key.WithKeys("m", " "), key.WithHelp("m", "mount/unmount")),
		Increment: key.NewBinding(key.WithKeys("+", "="), key.WithHelp("+", "increment")),
		Decrement: key.NewBinding(key.WithKeys("-"), key.WithHelp("-", "decrement")),
		Pause:     key.NewBinding(key.WithKeys("p"), key.WithHelp("p", "pause")),
		Reset:     key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "global reset")),
		Filter:    key.NewBinding(key.WithKeys("/"), key.WithHelp("/", "filter")),
		Quit:      key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
	}
}

func (k KeyMap) Bindings() []key.Binding {
	return []key.Binding{k.Next, k.Toggle, k.Increment, k.Decrement, k.Pause, k.Reset, k.Filter, k.Quit}
}
