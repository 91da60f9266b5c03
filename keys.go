package main

import "github.com/charmbracelet/bubbles/key"

type keyMap struct {
	Up       key.Binding
	Down     key.Binding
	Save     key.Binding
	Refresh  key.Binding
	Export   key.Binding
	Arrival  key.Binding
	Dispatch key.Binding
	Remarks  key.Binding
	Status   key.Binding
	Search   key.Binding
	Type     key.Binding
	Category key.Binding
	Life     key.Binding
	Stock    key.Binding
	Quit     key.Binding
	Close    key.Binding
	Accept   key.Binding
}

func newKeyMap() keyMap {
	return keyMap{
		Up:       key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("j/k", "navigate")),
		Down:     key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("j/k", "navigate")),
		Save:     key.NewBinding(key.WithKeys("S"), key.WithHelp("S", "save")),
		Refresh:  key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "refresh")),
		Export:   key.NewBinding(key.WithKeys("x"), key.WithHelp("x", "export")),
		Arrival:  key.NewBinding(key.WithKeys("a"), key.WithHelp("a", "arrival")),
		Dispatch: key.NewBinding(key.WithKeys("d"), key.WithHelp("d", "dispatch")),
		Remarks:  key.NewBinding(key.WithKeys("e"), key.WithHelp("e", "remarks")),
		Status:   key.NewBinding(key.WithKeys("g"), key.WithHelp("g", "status")),
		Search:   key.NewBinding(key.WithKeys("/"), key.WithHelp("/", "search")),
		Type:     key.NewBinding(key.WithKeys("t"), key.WithHelp("t", "type")),
		Category: key.NewBinding(key.WithKeys("c"), key.WithHelp("c", "category")),
		Life:     key.NewBinding(key.WithKeys("s"), key.WithHelp("s", "lifecycle")),
		Stock:    key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "stock")),
		Quit:     key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
		Close:    key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "close")),
		Accept:   key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "apply")),
	}
}

func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Up, k.Save, k.Refresh, k.Search, k.Export, k.Quit}
}

func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Up, k.Down, k.Stock, k.Quit},
		{k.Arrival, k.Dispatch, k.Remarks, k.Status},
		{k.Type, k.Category, k.Life, k.Search},
		{k.Save, k.Refresh, k.Export},
	}
}
