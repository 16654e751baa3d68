package model

import (
	"math"
	"time"
)

type User struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Avatar string `json:"avatar"`
}

type Label struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Color string `json:"color"`
}

type ActivityType string

const (
	ActivityComment ActivityType = "comment"
	ActivityAction  ActivityType = "action"
)

// Activity is an append-only log entry on a card. Entries are stored newest first.
type Activity struct {
	ID        string       `json:"id"`
	UserID    string       `json:"userId"`
	Text      string       `json:"text"`
	CreatedAt time.Time    `json:"createdAt"`
	Type      ActivityType `json:"type"`
}

// Comment is the read view of a comment-kind Activity.
type Comment struct {
	ID        string    `json:"id"`
	UserID    string    `json:"userId"`
	Text      string    `json:"text"`
	CreatedAt time.Time `json:"createdAt"`
}

type ChecklistItem struct {
	ID      string `json:"id"`
	Text    string `json:"text"`
	Checked bool   `json:"checked"`
}

type AttachmentType string

const (
	AttachmentImage AttachmentType = "image"
	AttachmentFile  AttachmentType = "file"
)

type Attachment struct {
	ID        string         `json:"id"`
	Name      string         `json:"name"`
	URL       string         `json:"url"`
	Type      AttachmentType `json:"type"`
	CreatedAt time.Time      `json:"createdAt"`
}

type Card struct {
	ID     string `json:"id"`
	ListID string `json:"listId"`

	Title       string `json:"title"`
	Description string `json:"description"`

	Labels      []Label         `json:"labels"`
	Members     []User          `json:"members"`
	Checklist   []ChecklistItem `json:"checklist"`
	Attachments []Attachment    `json:"attachments"`
	Activity    []Activity      `json:"activity"`

	DueDate  string `json:"dueDate,omitempty"` // YYYY-MM-DD
	CoverURL string `json:"coverUrl,omitempty"`
}

// Comments returns the comment-kind activity entries, newest first.
func (c Card) Comments() []Comment {
	out := make([]Comment, 0)
	for _, a := range c.Activity {
		if a.Type != ActivityComment {
			continue
		}
		out = append(out, Comment{ID: a.ID, UserID: a.UserID, Text: a.Text, CreatedAt: a.CreatedAt})
	}
	return out
}

// ChecklistCounts returns (checked, total).
func (c Card) ChecklistCounts() (int, int) {
	done := 0
	for _, it := range c.Checklist {
		if it.Checked {
			done++
		}
	}
	return done, len(c.Checklist)
}

// ChecklistRatio is checked/total in [0,1]. An empty checklist reports 0.
func (c Card) ChecklistRatio() float64 {
	done, total := c.ChecklistCounts()
	if total == 0 {
		return 0
	}
	return float64(done) / float64(total)
}

// ChecklistPercent is ChecklistRatio rounded to a whole percent.
func (c Card) ChecklistPercent() int {
	return int(math.Round(c.ChecklistRatio() * 100))
}

// ChecklistDone reports whether a non-empty checklist is fully checked.
func (c Card) ChecklistDone() bool {
	done, total := c.ChecklistCounts()
	return total > 0 && done == total
}

// CardPatch carries a shallow partial update. Nil fields are left unchanged.
type CardPatch struct {
	ListID      *string          `json:"listId,omitempty"`
	Title       *string          `json:"title,omitempty"`
	Description *string          `json:"description,omitempty"`
	Labels      *[]Label         `json:"labels,omitempty"`
	Members     *[]User          `json:"members,omitempty"`
	Checklist   *[]ChecklistItem `json:"checklist,omitempty"`
	Attachments *[]Attachment    `json:"attachments,omitempty"`
	Activity    *[]Activity      `json:"activity,omitempty"`
	DueDate     *string          `json:"dueDate,omitempty"`
	CoverURL    *string          `json:"coverUrl,omitempty"`
}

func (p CardPatch) IsEmpty() bool {
	return p.ListID == nil && p.Title == nil && p.Description == nil && p.Labels == nil &&
		p.Members == nil && p.Checklist == nil && p.Attachments == nil && p.Activity == nil &&
		p.DueDate == nil && p.CoverURL == nil
}

type List struct {
	ID      string   `json:"id"`
	Title   string   `json:"title"`
	CardIDs []string `json:"cardIds"`
}

type Board struct {
	ID        string          `json:"id"`
	Title     string          `json:"title"`
	ListOrder []string        `json:"listOrder"`
	Lists     map[string]List `json:"lists"`
	Cards     map[string]Card `json:"cards"`
	// Members is the board's user directory (activity authors, card members).
	Members []User `json:"members,omitempty"`
}

func (b Board) FindList(id string) (List, bool) {
	l, ok := b.Lists[id]
	return l, ok
}

func (b Board) FindCard(id string) (Card, bool) {
	c, ok := b.Cards[id]
	return c, ok
}

func (b Board) FindUser(id string) (User, bool) {
	for _, u := range b.Members {
		if u.ID == id {
			return u, true
		}
	}
	return User{}, false
}

// CardsInList returns the cards of a list in display order.
func (b Board) CardsInList(listID string) []Card {
	l, ok := b.Lists[listID]
	if !ok {
		return nil
	}
	out := make([]Card, 0, len(l.CardIDs))
	for _, id := range l.CardIDs {
		if c, ok := b.Cards[id]; ok {
			out = append(out, c)
		}
	}
	return out
}

// CardPosition returns the owning list id and index of a card.
func (b Board) CardPosition(cardID string) (string, int, bool) {
	c, ok := b.Cards[cardID]
	if !ok {
		return "", 0, false
	}
	l, ok := b.Lists[c.ListID]
	if !ok {
		return "", 0, false
	}
	for i, id := range l.CardIDs {
		if id == cardID {
			return l.ID, i, true
		}
	}
	return "", 0, false
}

type DragItemType string

const (
	DragCard DragItemType = "CARD"
	DragList DragItemType = "LIST"
)

// DragItem describes the card (or list) currently being relocated.
type DragItem struct {
	ID     string       `json:"id"`
	Type   DragItemType `json:"type"`
	Index  int          `json:"index"`
	ListID string       `json:"listId,omitempty"` // cards only
}
