package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

const (
	outerMargin = 1
	headerLines = 2
	footerLines = 2
)

func (m appModel) View() string {
	if m.view == viewCard {
		return m.viewCard()
	}
	return m.viewBoard()
}

func (m appModel) viewBoard() string {
	w := m.width - 2*outerMargin
	if w < 10 {
		w = 10
	}
	actor := m.eng.ActorUser()
	title := lipgloss.NewStyle().Bold(true).Render(m.board.Title)
	header := title + styleMuted().Render(fmt.Sprintf("  ·  %s", actor.Name))

	bodyH := m.height - headerLines - footerLines
	if bodyH < 3 {
		bodyH = 3
	}
	var body string
	if m.mode == modeSearch {
		body = m.viewSearch(w, bodyH)
	} else {
		body = renderColumns(columnsFor(m.board), m.sel, m.dragState(), w, bodyH)
	}

	lines := []string{header, "", body, "", m.footer()}
	return lipgloss.NewStyle().PaddingLeft(outerMargin).Render(strings.Join(lines, "\n"))
}

func (m appModel) dragState() dragView {
	item, ok := m.eng.Dragging()
	if !ok {
		return dragView{}
	}
	return dragView{active: true, item: item, col: m.dropCol, idx: m.dropIdx}
}

func (m appModel) footer() string {
	if m.flash != "" {
		if m.flashErr {
			return styleError().Render(m.flash)
		}
		return m.flash
	}
	k := m.keys
	switch m.mode {
	case modeAddCard:
		return "New card: " + m.input.View()
	case modeAddList:
		return "New list: " + m.input.View()
	case modeSearch:
		return styleMuted().Render("↑/↓ select  enter open  esc close")
	case modeDragCard:
		return styleMuted().Render(helpLine(k.Left, k.Right, k.Up, k.Down, k.Drop, k.Cancel))
	case modeDragList:
		return styleMuted().Render(helpLine(k.Left, k.Right, k.Drop, k.Cancel))
	}
	return styleMuted().Render(helpLine(k.Open, k.PickCard, k.PickList, k.AddCard, k.AddList, k.Search, k.Quit))
}

func (m appModel) viewSearch(width, height int) string {
	lines := []string{"Search: " + m.input.View(), ""}
	switch {
	case m.searchQuery == "":
		lines = append(lines, styleMuted().Render("Type to search titles, descriptions, labels, checklists and comments."))
	case len(m.hits) == 0:
		lines = append(lines, styleMuted().Render("No matching cards."))
	}
	for i, h := range m.hits {
		row := fmt.Sprintf("%s  %s", h.Title, styleMuted().Render(fmt.Sprintf("in %s · %s", h.ListTitle, h.Field)))
		if i == m.hitSel {
			label := glyphs().pointer + " " + h.Title
			row = lipgloss.NewStyle().Foreground(colorSelectedFg).Background(colorSelectedBg).Bold(true).Render(label) +
				styleMuted().Render(fmt.Sprintf("  in %s · %s", h.ListTitle, h.Field))
		} else {
			row = "  " + row
		}
		lines = append(lines, row)
	}
	return normalizePane(strings.Join(lines, "\n"), width, height)
}
