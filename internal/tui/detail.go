package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"kanbanflow/internal/model"
)

const progressBarWidth = 20

func (m appModel) viewCard() string {
	card, ok := m.ctl.Card()
	if !ok {
		return m.viewBoard()
	}
	w := m.width - 2*outerMargin - 4
	if w > 96 {
		w = 96
	}
	if w < 20 {
		w = 20
	}
	desc, checks := m.ctl.InFlight()
	muted := styleMuted()
	section := lipgloss.NewStyle().Bold(true)

	var b strings.Builder
	line := func(s string) {
		b.WriteString(s)
		b.WriteByte('\n')
	}

	if m.focus == focusTitle {
		line(m.titleInput.View())
	} else {
		line(lipgloss.NewStyle().Bold(true).Render(card.Title))
	}
	listTitle := card.ListID
	if l, ok := m.board.FindList(card.ListID); ok {
		listTitle = l.Title
	}
	line(muted.Render("in list " + listTitle))
	line("")

	if meta := m.cardFacts(card); meta != "" {
		line(meta)
		line("")
	}

	heading := "Description"
	if desc {
		heading += "  " + m.spin.View() + " generating…"
	}
	line(section.Render(heading))
	switch {
	case m.focus == focusDescription:
		line(m.descArea.View())
	case strings.TrimSpace(card.Description) == "":
		line(muted.Render("No description. Press e to write one or g to generate it."))
	default:
		line(renderMarkdown(card.Description, w))
	}
	line("")

	heading = "Checklist"
	if _, total := card.ChecklistCounts(); total > 0 {
		heading += "  " + progressBar(card, progressBarWidth)
	}
	if checks {
		heading += "  " + m.spin.View() + " suggesting…"
	}
	line(section.Render(heading))
	if len(card.Checklist) == 0 {
		line(muted.Render("No checklist items. Press s for AI suggestions."))
	}
	for i, it := range card.Checklist {
		box := "[ ]"
		if it.Checked {
			box = "[x]"
		}
		row := box + " " + it.Text
		if m.focus == focusNone && i == m.checkSel {
			row = lipgloss.NewStyle().Foreground(colorSelectedFg).Background(colorSelectedBg).Render(glyphs().pointer + " " + row)
		} else {
			row = "  " + row
		}
		line(row)
	}
	line("")

	if len(card.Attachments) > 0 {
		line(section.Render("Attachments"))
		for _, a := range card.Attachments {
			line(fmt.Sprintf("  %s %s", muted.Render(string(a.Type)), a.Name))
		}
		line("")
	}

	line(section.Render("Activity"))
	if m.focus == focusComment {
		line(m.commentInput.View())
	}
	if len(card.Activity) == 0 {
		line(muted.Render("No activity yet."))
	}
	for _, a := range card.Activity {
		line(m.renderActivity(a, w))
	}
	line("")

	if m.confirmArchive {
		line(renderConfirm(fmt.Sprintf("Archive %q?", card.Title), "y archive", "any other key cancels"))
	} else if m.flash != "" {
		if m.flashErr {
			line(styleError().Render(m.flash))
		} else {
			line(m.flash)
		}
	} else {
		line(muted.Render(m.cardHelp()))
	}

	box := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(colorSelectedBorder).
		Padding(0, 1)
	return lipgloss.NewStyle().PaddingLeft(outerMargin).Render(box.Render(strings.TrimRight(b.String(), "\n")))
}

// cardFacts renders labels, members and the due date, one fact per line.
func (m appModel) cardFacts(c model.Card) string {
	rows := make([]string, 0, 3)
	if len(c.Labels) > 0 {
		names := make([]string, 0, len(c.Labels))
		for _, l := range c.Labels {
			names = append(names, labelStyle(l.Color).Render(l.Name))
		}
		rows = append(rows, "Labels   "+strings.Join(names, " "))
	}
	if len(c.Members) > 0 {
		names := make([]string, 0, len(c.Members))
		for _, u := range c.Members {
			names = append(names, u.Name)
		}
		rows = append(rows, "Members  "+strings.Join(names, ", "))
	}
	if c.DueDate != "" {
		rows = append(rows, "Due      "+c.DueDate)
	}
	return strings.Join(rows, "\n")
}

func (m appModel) renderActivity(a model.Activity, width int) string {
	author := a.UserID
	if u, ok := m.board.FindUser(a.UserID); ok {
		author = u.Name
	}
	when := a.CreatedAt.Local().Format("Jan 2 15:04")
	head := lipgloss.NewStyle().Bold(true).Render(author) + styleMuted().Render(" · "+when)
	if a.Type == model.ActivityComment {
		return head + "\n  " + strings.Join(wrapWords(a.Text, width-2), "\n  ")
	}
	return head + " " + a.Text
}

func (m appModel) cardHelp() string {
	k := m.keys
	switch m.focus {
	case focusTitle:
		return "enter save  esc save"
	case focusDescription:
		return "ctrl+s save  esc save"
	case focusComment:
		return "enter post  esc back"
	}
	return helpLine(k.EditTitle, k.EditDesc, k.ExtEditor, k.Comment, k.Toggle, k.GenDesc, k.SuggestChk, k.Copy, k.Archive, k.Cancel)
}

// progressBar renders checklist completion as a bar plus percentage.
func progressBar(c model.Card, width int) string {
	filled := int(c.ChecklistRatio()*float64(width) + 0.5)
	g := glyphs()
	bar := lipgloss.NewStyle().Foreground(colorProgressDone).Render(strings.Repeat(g.barDone, filled)) +
		styleMuted().Render(strings.Repeat(g.barTodo, width-filled))
	return fmt.Sprintf("%s %d%%", bar, c.ChecklistPercent())
}
