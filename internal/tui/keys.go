package tui

import "github.com/charmbracelet/bubbles/key"

type keyMap struct {
	Up       key.Binding
	Down     key.Binding
	HourUp   key.Binding
	HourDown key.Binding
	NextHab  key.Binding
	PrevHab  key.Binding
	Place    key.Binding
	Grow     key.Binding
	Shrink   key.Binding
	Edit     key.Binding
	Move     key.Binding
	Delete   key.Binding
	Complete key.Binding
	PrevDay  key.Binding
	NextDay  key.Binding
	Today    key.Binding
	Copy     key.Binding
	Yes      key.Binding
	No       key.Binding
	Confirm  key.Binding
	Cancel   key.Binding
	Help     key.Binding
	Quit     key.Binding
}

func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Place, k.Grow, k.Shrink, k.Move, k.Complete, k.Help, k.Quit}
}

func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Up, k.Down, k.HourUp, k.HourDown, k.NextHab, k.PrevHab},
		{k.Place, k.Grow, k.Shrink, k.Edit, k.Move, k.Delete, k.Complete},
		{k.PrevDay, k.NextDay, k.Today, k.Copy, k.Help, k.Quit},
	}
}

func defaultKeyMap() keyMap {
	return keyMap{
		Up:       key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑/k", "15 min up")),
		Down:     key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("↓/j", "15 min down")),
		HourUp:   key.NewBinding(key.WithKeys("pgup", "K"), key.WithHelp("K", "hour up")),
		HourDown: key.NewBinding(key.WithKeys("pgdown", "J"), key.WithHelp("J", "hour down")),
		NextHab:  key.NewBinding(key.WithKeys("tab", "l", "right"), key.WithHelp("tab", "next habit")),
		PrevHab:  key.NewBinding(key.WithKeys("shift+tab", "h", "left"), key.WithHelp("shift+tab", "prev habit")),
		Place:    key.NewBinding(key.WithKeys("enter", "a"), key.WithHelp("enter", "place habit")),
		Grow:     key.NewBinding(key.WithKeys("+", "="), key.WithHelp("+", "longer")),
		Shrink:   key.NewBinding(key.WithKeys("-", "_"), key.WithHelp("-", "shorter")),
		Edit:     key.NewBinding(key.WithKeys("e"), key.WithHelp("e", "set duration")),
		Move:     key.NewBinding(key.WithKeys("m"), key.WithHelp("m", "move")),
		Delete:   key.NewBinding(key.WithKeys("d", "x"), key.WithHelp("d", "delete")),
		Complete: key.NewBinding(key.WithKeys("c"), key.WithHelp("c", "done")),
		PrevDay:  key.NewBinding(key.WithKeys("["), key.WithHelp("[", "prev day")),
		NextDay:  key.NewBinding(key.WithKeys("]"), key.WithHelp("]", "next day")),
		Today:    key.NewBinding(key.WithKeys("t"), key.WithHelp("t", "today")),
		Copy:     key.NewBinding(key.WithKeys("Y"), key.WithHelp("Y", "copy day")),
		Yes:      key.NewBinding(key.WithKeys("y"), key.WithHelp("y", "yes")),
		No:       key.NewBinding(key.WithKeys("n"), key.WithHelp("n", "no")),
		Confirm:  key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "confirm")),
		Cancel:   key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "cancel")),
		Help:     key.NewBinding(key.WithKeys("?"), key.WithHelp("?", "help")),
		Quit:     key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
	}
}
