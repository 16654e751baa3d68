package publish

import (
	"bytes"
	"fmt"
	"strings"
	"time"

	"kanbanflow/internal/model"
)

type RenderOptions struct {
	// IncludeActivity adds the action entries of the activity log (comments are always rendered).
	IncludeActivity bool
}

func RenderCardMarkdown(b model.Board, cardID string, opt RenderOptions) (string, error) {
	card, ok := b.FindCard(strings.TrimSpace(cardID))
	if !ok {
		return "", fmt.Errorf("card not found: %s", cardID)
	}

	var buf bytes.Buffer
	writeLn := func(s string) {
		buf.WriteString(s)
		buf.WriteString("\n")
	}

	writeLn("# " + strings.TrimSpace(card.Title))
	writeLn("")

	writeLn("## Meta")
	writeLn("")
	writeLn("- ID: " + card.ID)
	if l, ok := b.FindList(card.ListID); ok {
		writeLn("- List: " + strings.TrimSpace(l.Title) + " (" + l.ID + ")")
	} else {
		writeLn("- List: " + card.ListID)
	}
	if len(card.Labels) > 0 {
		names := make([]string, 0, len(card.Labels))
		for _, l := range card.Labels {
			names = append(names, strings.TrimSpace(l.Name))
		}
		writeLn("- Labels: " + strings.Join(names, ", "))
	}
	if len(card.Members) > 0 {
		names := make([]string, 0, len(card.Members))
		for _, m := range card.Members {
			names = append(names, strings.TrimSpace(m.Name))
		}
		writeLn("- Members: " + strings.Join(names, ", "))
	}
	if strings.TrimSpace(card.DueDate) != "" {
		writeLn("- Due: " + strings.TrimSpace(card.DueDate))
	}
	if strings.TrimSpace(card.CoverURL) != "" {
		writeLn("- Cover: " + strings.TrimSpace(card.CoverURL))
	}

	desc := strings.TrimSpace(card.Description)
	if desc != "" {
		writeLn("")
		writeLn("## Description")
		writeLn("")
		writeLn(desc)
	}

	if len(card.Checklist) > 0 {
		done, total := card.ChecklistCounts()
		writeLn("")
		writeLn(fmt.Sprintf("## Checklist (%d/%d, %d%%)", done, total, card.ChecklistPercent()))
		writeLn("")
		for _, it := range card.Checklist {
			box := "[ ]"
			if it.Checked {
				box = "[x]"
			}
			writeLn("- " + box + " " + strings.TrimSpace(it.Text))
		}
	}

	if len(card.Attachments) > 0 {
		writeLn("")
		writeLn("## Attachments")
		writeLn("")
		for _, a := range card.Attachments {
			writeLn(fmt.Sprintf("- [%s](%s) (%s)", strings.TrimSpace(a.Name), a.URL, a.Type))
		}
	}

	comments := card.Comments()
	if len(comments) > 0 {
		writeLn("")
		writeLn("## Comments")
		writeLn("")
		for _, c := range comments {
			writeLn("### " + userName(b, c.UserID) + " (" + c.CreatedAt.UTC().Format(time.RFC3339) + ")")
			writeLn("")
			body := strings.TrimSpace(c.Text)
			if body == "" {
				body = "(empty)"
			}
			writeLn(body)
			writeLn("")
		}
	}

	if opt.IncludeActivity {
		actions := make([]model.Activity, 0)
		for _, a := range card.Activity {
			if a.Type == model.ActivityAction {
				actions = append(actions, a)
			}
		}
		if len(actions) > 0 {
			writeLn("")
			writeLn("## Activity")
			writeLn("")
			for _, a := range actions {
				writeLn("- " + a.CreatedAt.UTC().Format(time.RFC3339) + " " + userName(b, a.UserID) + " " + strings.TrimSpace(a.Text))
			}
		}
	}

	return buf.String(), nil
}

// RenderBoardMarkdown renders the board index: one section per list in board order,
// with a link per card to cards/<id>.md.
func RenderBoardMarkdown(b model.Board) string {
	var buf bytes.Buffer
	writeLn := func(s string) {
		buf.WriteString(s)
		buf.WriteString("\n")
	}

	writeLn("# " + strings.TrimSpace(b.Title))
	writeLn("")
	for _, listID := range b.ListOrder {
		l, ok := b.FindList(listID)
		if !ok {
			continue
		}
		writeLn(fmt.Sprintf("## %s (%d)", strings.TrimSpace(l.Title), len(l.CardIDs)))
		writeLn("")
		for _, c := range b.CardsInList(l.ID) {
			renderCardLine(&buf, c)
		}
		writeLn("")
	}
	return buf.String()
}

func renderCardLine(buf *bytes.Buffer, c model.Card) {
	extra := make([]string, 0, 3)
	if _, total := c.ChecklistCounts(); total > 0 {
		done, _ := c.ChecklistCounts()
		extra = append(extra, fmt.Sprintf("%d/%d", done, total))
	}
	if strings.TrimSpace(c.DueDate) != "" {
		extra = append(extra, "due "+strings.TrimSpace(c.DueDate))
	}
	for _, l := range c.Labels {
		extra = append(extra, "#"+strings.TrimSpace(l.Name))
	}
	suffix := ""
	if len(extra) > 0 {
		suffix = " (" + strings.Join(extra, ", ") + ")"
	}
	fmt.Fprintf(buf, "- [%s](cards/%s.md)%s\n", strings.TrimSpace(c.Title), c.ID, suffix)
}

func userName(b model.Board, userID string) string {
	if u, ok := b.FindUser(userID); ok && strings.TrimSpace(u.Name) != "" {
		return strings.TrimSpace(u.Name)
	}
	return userID
}
