package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"kanbanflow/internal/model"
)

// selection tracks the focused card. CardID is preferred over the indexes so focus
// survives moves and rebuilds.
type selection struct {
	Col    int
	Item   int
	CardID string
}

type boardColumn struct {
	list  model.List
	cards []model.Card
}

type boardColumns struct {
	cols []boardColumn
}

func columnsFor(b model.Board) boardColumns {
	cols := make([]boardColumn, 0, len(b.ListOrder))
	for _, id := range b.ListOrder {
		l, ok := b.Lists[id]
		if !ok {
			continue
		}
		cols = append(cols, boardColumn{list: l, cards: b.CardsInList(id)})
	}
	return boardColumns{cols: cols}
}

func (bc boardColumns) indexOfCard(cardID string) (int, int, bool) {
	if cardID == "" {
		return 0, 0, false
	}
	for ci, col := range bc.cols {
		for ii, c := range col.cards {
			if c.ID == cardID {
				return ci, ii, true
			}
		}
	}
	return 0, 0, false
}

func (bc boardColumns) clamp(sel selection) selection {
	if len(bc.cols) == 0 {
		return selection{Item: -1}
	}
	if ci, ii, ok := bc.indexOfCard(sel.CardID); ok {
		sel.Col, sel.Item = ci, ii
		return sel
	}
	sel.CardID = ""
	sel.Col = clampInt(sel.Col, 0, len(bc.cols)-1)
	n := len(bc.cols[sel.Col].cards)
	if n == 0 {
		sel.Item = -1
		return sel
	}
	sel.Item = clampInt(sel.Item, 0, n-1)
	sel.CardID = bc.cols[sel.Col].cards[sel.Item].ID
	return sel
}

func (bc boardColumns) selectedCard(sel selection) (model.Card, bool) {
	sel = bc.clamp(sel)
	if len(bc.cols) == 0 || sel.Item < 0 {
		return model.Card{}, false
	}
	return bc.cols[sel.Col].cards[sel.Item], true
}

// slots is the number of insertion points in column ci once cardID has been lifted
// out of the board.
func (bc boardColumns) slots(ci int, cardID string) int {
	if ci < 0 || ci >= len(bc.cols) {
		return 0
	}
	n := len(bc.cols[ci].cards)
	for _, c := range bc.cols[ci].cards {
		if c.ID == cardID {
			n--
			break
		}
	}
	return n
}

// dragView is what the columns renderer needs to know about a keyboard drag.
type dragView struct {
	active bool
	item   model.DragItem
	col    int
	idx    int
}

func renderColumns(bc boardColumns, sel selection, drag dragView, width, height int) string {
	n := len(bc.cols)
	if n == 0 {
		return normalizePane(styleMuted().Render("No lists yet. Press N to add one."), width, height)
	}

	const gap = 2
	const minColW = 20
	visible := (width + gap) / (minColW + gap)
	if visible < 1 {
		visible = 1
	}
	if visible > n {
		visible = n
	}
	focusCol := sel.Col
	if drag.active {
		focusCol = drag.col
	}
	first := 0
	if focusCol >= visible {
		first = focusCol - visible + 1
	}
	colW := (width - gap*(visible-1)) / visible
	if colW < 8 {
		colW = 8
	}

	rendered := make([]string, 0, visible*2)
	for ci := first; ci < first+visible; ci++ {
		w := colW
		if ci > first {
			rendered = append(rendered, strings.Repeat(" ", gap))
		}
		if ci == first+visible-1 {
			// The last column absorbs the rounding remainder.
			w = max(width-(colW+gap)*(visible-1), colW)
		}
		rendered = append(rendered, renderColumn(bc.cols[ci], ci, sel, drag, w, height))
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, rendered...)
}

func renderColumn(col boardColumn, ci int, sel selection, drag dragView, colW, height int) string {
	header := fmt.Sprintf("%s (%d)", col.list.Title, len(col.cards))
	headerStyle := styleHeader().Width(colW).Padding(0, 1)
	switch {
	case drag.active && drag.col == ci:
		headerStyle = headerStyle.Background(colorDropTargetBg)
		if drag.item.Type == model.DragList {
			header = "» " + header
		}
	case !drag.active && sel.Col == ci:
		headerStyle = headerStyle.Foreground(colorSelectedFg).Background(colorSelectedBg)
	}

	lines := []string{headerStyle.Render(fitWidth(header, colW-2)), ""}
	selStart, selEnd := -1, -1

	dropHere := func() {
		marker := lipgloss.NewStyle().Foreground(colorAccent).Bold(true)
		lines = append(lines, marker.Render(fitWidth(glyphs().drop+" drop here", colW)), "")
	}

	slot := 0
	for ii, c := range col.cards {
		lifted := drag.active && drag.item.Type == model.DragCard && drag.item.ID == c.ID
		if drag.active && drag.item.Type == model.DragCard && drag.col == ci && !lifted && slot == drag.idx {
			dropHere()
		}
		selected := !drag.active && sel.Col == ci && sel.Item == ii
		if selected {
			selStart = len(lines)
		}
		lines = append(lines, renderCardLines(c, selected, lifted, colW)...)
		if selected {
			selEnd = len(lines)
		}
		lines = append(lines, "")
		if !lifted {
			slot++
		}
	}
	if drag.active && drag.item.Type == model.DragCard && drag.col == ci && drag.idx >= slot {
		dropHere()
	}

	// Keep the selected card on screen.
	if height > 0 && selEnd > height {
		shift := selEnd - height
		if shift > selStart-2 {
			shift = selStart - 2
		}
		if shift > 0 {
			lines = append(lines[:2], lines[2+shift:]...)
		}
	}
	return normalizePane(strings.Join(lines, "\n"), colW, height)
}

func renderCardLines(c model.Card, selected, lifted bool, colW int) []string {
	inner := colW - 2
	if inner < 1 {
		inner = 1
	}
	titleStyle := lipgloss.NewStyle().Foreground(colorSurfaceFg)
	rowStyle := lipgloss.NewStyle().Width(colW).Padding(0, 1)
	switch {
	case selected:
		rowStyle = rowStyle.Foreground(colorSelectedFg).Background(colorSelectedBg).Bold(true)
		titleStyle = titleStyle.Foreground(colorSelectedFg)
	case lifted:
		titleStyle = styleMuted()
	}

	title := strings.TrimSpace(c.Title)
	if title == "" {
		title = "(untitled)"
	}
	out := make([]string, 0, 3)
	for _, ln := range wrapWords(title, inner) {
		out = append(out, rowStyle.Render(titleStyle.Render(ln)))
	}
	if meta := cardMeta(c); meta != "" {
		out = append(out, rowStyle.Render(fitWidth(meta, inner)))
	}
	return out
}

// cardMeta is the one-line summary under a card title: labels, due date, checklist
// progress, comment and attachment counts.
func cardMeta(c model.Card) string {
	parts := make([]string, 0, 6)
	for _, l := range c.Labels {
		parts = append(parts, labelStyle(l.Color).Render(l.Name))
	}
	muted := styleMuted()
	if c.DueDate != "" {
		parts = append(parts, muted.Render("due "+c.DueDate))
	}
	if done, total := c.ChecklistCounts(); total > 0 {
		st := muted
		if c.ChecklistDone() {
			st = lipgloss.NewStyle().Foreground(colorProgressDone)
		}
		parts = append(parts, st.Render(fmt.Sprintf("%s %d/%d", glyphs().checklist, done, total)))
	}
	if n := len(c.Comments()); n > 0 {
		parts = append(parts, muted.Render(fmt.Sprintf("%s %d", glyphs().comments, n)))
	}
	if n := len(c.Attachments); n > 0 {
		parts = append(parts, muted.Render(fmt.Sprintf("%s %d", glyphs().attachments, n)))
	}
	return strings.Join(parts, " ")
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
