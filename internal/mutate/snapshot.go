package mutate

import (
	"time"

	"kanbanflow/internal/model"
)

// AppendIndex as a destination index means "after the last card".
const AppendIndex = -1

// DefaultCardTitle is used when a card is created without a title.
const DefaultCardTitle = "New task"

// Result is the outcome of a mutation. When Changed is false Board is the input snapshot.
type Result struct {
	Board   model.Board
	Changed bool
}

// Stamp attributes derived activity entries: who, when, and the id to give the entry.
type Stamp struct {
	UserID     string
	ActivityID string
	At         time.Time
}

func (s Stamp) action(text string) model.Activity {
	return model.Activity{
		ID:        s.ActivityID,
		UserID:    s.UserID,
		Text:      text,
		CreatedAt: s.At,
		Type:      model.ActivityAction,
	}
}

// cloneBoard copies the top-level maps so the caller can replace entries without touching
// the input snapshot. Values are replaced, never edited in place.
func cloneBoard(b model.Board) model.Board {
	out := b
	out.Lists = make(map[string]model.List, len(b.Lists))
	for k, v := range b.Lists {
		out.Lists[k] = v
	}
	out.Cards = make(map[string]model.Card, len(b.Cards))
	for k, v := range b.Cards {
		out.Cards[k] = v
	}
	return out
}

func cloneSlice[T any](in []T) []T {
	out := make([]T, len(in))
	copy(out, in)
	return out
}

func removeAt(ids []string, i int) []string {
	out := make([]string, 0, len(ids))
	out = append(out, ids[:i]...)
	return append(out, ids[i+1:]...)
}

func insertAt(ids []string, i int, id string) []string {
	out := make([]string, 0, len(ids)+1)
	out = append(out, ids[:i]...)
	out = append(out, id)
	return append(out, ids[i:]...)
}

// clampInsert resolves a destination index against a sequence of length n.
// Negative (AppendIndex) and past-the-end values append.
func clampInsert(idx, n int) int {
	if idx < 0 || idx > n {
		return n
	}
	return idx
}

func prependActivity(acts []model.Activity, a model.Activity) []model.Activity {
	out := make([]model.Activity, 0, len(acts)+1)
	out = append(out, a)
	return append(out, acts...)
}

func hasActivityID(c model.Card, id string) bool {
	for _, a := range c.Activity {
		if a.ID == id {
			return true
		}
	}
	return false
}

func hasChecklistID(c model.Card, id string) bool {
	for _, it := range c.Checklist {
		if it.ID == id {
			return true
		}
	}
	return false
}
