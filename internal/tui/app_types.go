package tui

import (
	"github.com/charmbracelet/bubbles/key"

	"kanbanflow/internal/detail"
	"kanbanflow/internal/model"
	"kanbanflow/internal/search"
)

type view int

const (
	viewBoard view = iota
	viewCard
)

// mode is the board view's input state.
type mode int

const (
	modeNormal mode = iota
	modeDragCard
	modeDragList
	modeAddCard
	modeAddList
	modeSearch
)

// focus is the card view's active editor.
type focus int

const (
	focusNone focus = iota
	focusTitle
	focusDescription
	focusComment
)

// boardMsg carries a snapshot published by the engine.
type boardMsg struct{ b model.Board }

type descriptionDoneMsg struct{ res detail.DescriptionResult }

type checklistDoneMsg struct{ res detail.ChecklistResult }

type clipboardDoneMsg struct {
	what string
	err  error
}

type searchDoneMsg struct {
	query string
	hits  []search.Hit
	err   error
}

type keyMap struct {
	Left, Right, Up, Down key.Binding

	Open       key.Binding
	PickCard   key.Binding
	PickList   key.Binding
	Drop       key.Binding
	Cancel     key.Binding
	AddCard    key.Binding
	AddList    key.Binding
	Search     key.Binding
	Quit       key.Binding
	EditTitle  key.Binding
	EditDesc   key.Binding
	Comment    key.Binding
	Toggle     key.Binding
	Archive    key.Binding
	GenDesc    key.Binding
	SuggestChk key.Binding
	Save       key.Binding
	ExtEditor  key.Binding
	Copy       key.Binding
	Confirm    key.Binding
}

func defaultKeyMap() keyMap {
	return keyMap{
		Left:       key.NewBinding(key.WithKeys("left", "h"), key.WithHelp("←/h", "left")),
		Right:      key.NewBinding(key.WithKeys("right", "l"), key.WithHelp("→/l", "right")),
		Up:         key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑/k", "up")),
		Down:       key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("↓/j", "down")),
		Open:       key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "open")),
		PickCard:   key.NewBinding(key.WithKeys("m"), key.WithHelp("m", "move card")),
		PickList:   key.NewBinding(key.WithKeys("M"), key.WithHelp("M", "move list")),
		Drop:       key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "drop")),
		Cancel:     key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "cancel")),
		AddCard:    key.NewBinding(key.WithKeys("n"), key.WithHelp("n", "add card")),
		AddList:    key.NewBinding(key.WithKeys("N"), key.WithHelp("N", "add list")),
		Search:     key.NewBinding(key.WithKeys("/"), key.WithHelp("/", "search")),
		Quit:       key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
		EditTitle:  key.NewBinding(key.WithKeys("t"), key.WithHelp("t", "title")),
		EditDesc:   key.NewBinding(key.WithKeys("e"), key.WithHelp("e", "description")),
		Comment:    key.NewBinding(key.WithKeys("c"), key.WithHelp("c", "comment")),
		Toggle:     key.NewBinding(key.WithKeys(" ", "x"), key.WithHelp("space", "toggle")),
		Archive:    key.NewBinding(key.WithKeys("a"), key.WithHelp("a", "archive")),
		GenDesc:    key.NewBinding(key.WithKeys("g"), key.WithHelp("g", "AI description")),
		SuggestChk: key.NewBinding(key.WithKeys("s"), key.WithHelp("s", "AI checklist")),
		Save:       key.NewBinding(key.WithKeys("ctrl+s"), key.WithHelp("ctrl+s", "save")),
		ExtEditor:  key.NewBinding(key.WithKeys("E"), key.WithHelp("E", "$EDITOR")),
		Copy:       key.NewBinding(key.WithKeys("y"), key.WithHelp("y", "copy")),
		Confirm:    key.NewBinding(key.WithKeys("y", "enter"), key.WithHelp("y", "confirm")),
	}
}

func helpLine(bs ...key.Binding) string {
	out := ""
	for i, b := range bs {
		h := b.Help()
		if i > 0 {
			out += "  "
		}
		out += h.Key + " " + h.Desc
	}
	return out
}
