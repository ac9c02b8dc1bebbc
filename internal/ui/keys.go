package ui

import "github.com/charmbracelet/bubbles/key"

type keyMap struct {
	Next           key.Binding
	Previous       key.Binding
	ToggleComments key.Binding
	ToggleContent  key.Binding
	Fullscreen     key.Binding
	ZoomIn         key.Binding
	ZoomOut        key.Binding
	Reload         key.Binding
	Refetch        key.Binding
	LoadSnapshot   key.Binding
	Quit           key.Binding
}

func defaultKeys() keyMap {
	return keyMap{
		Next:           key.NewBinding(key.WithKeys("n", "right", "j"), key.WithHelp("n", "next")),
		Previous:       key.NewBinding(key.WithKeys("p", "left", "k"), key.WithHelp("p", "prev")),
		ToggleComments: key.NewBinding(key.WithKeys("c"), key.WithHelp("c", "comments")),
		ToggleContent:  key.NewBinding(key.WithKeys("v"), key.WithHelp("v", "content")),
		Fullscreen:     key.NewBinding(key.WithKeys("f"), key.WithHelp("f", "fullscreen")),
		ZoomIn:         key.NewBinding(key.WithKeys("+", "="), key.WithHelp("+", "zoom in")),
		ZoomOut:        key.NewBinding(key.WithKeys("-"), key.WithHelp("-", "zoom out")),
		Reload:         key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "reload")),
		Refetch:        key.NewBinding(key.WithKeys("R"), key.WithHelp("R", "refetch comments")),
		LoadSnapshot:   key.NewBinding(key.WithKeys("L"), key.WithHelp("L", "last session")),
		Quit:           key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
	}
}

func (k keyMap) help() []key.Binding {
	return []key.Binding{k.Next, k.Previous, k.ToggleComments, k.ToggleContent, k.Fullscreen,
		k.ZoomIn, k.ZoomOut, k.Reload, k.Refetch, k.LoadSnapshot, k.Quit}
}
