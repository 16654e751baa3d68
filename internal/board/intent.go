package board

import (
	"kanbanflow/internal/model"
	"kanbanflow/internal/mutate"
)

// Intent is a requested board mutation. Every change to the board goes through
// Engine.Dispatch with one of the intent types below.
type Intent interface {
	apply(e *Engine, b model.Board) (mutate.Result, error)
}

type MoveCard struct {
	CardID     string
	FromListID string
	FromIndex  int
	ToListID   string
	// ToIndex addresses the destination after removal from the source.
	// mutate.AppendIndex appends.
	ToIndex int
}

func (in MoveCard) apply(e *Engine, b model.Board) (mutate.Result, error) {
	return mutate.MoveCard(b, in.CardID, in.FromListID, in.FromIndex, in.ToListID, in.ToIndex, e.stamp())
}

type UpdateCard struct {
	CardID string
	Patch  model.CardPatch
}

func (in UpdateCard) apply(_ *Engine, b model.Board) (mutate.Result, error) {
	return mutate.UpdateCard(b, in.CardID, in.Patch)
}

type AddCard struct {
	ListID string
	Title  string
	// CardID is allocated by the engine when empty.
	CardID string
}

func (in AddCard) apply(e *Engine, b model.Board) (mutate.Result, error) {
	id := in.CardID
	if id == "" {
		id = e.ids("card")
	}
	return mutate.AddCard(b, in.ListID, id, in.Title, e.stamp())
}

type AppendActivity struct {
	CardID   string
	Activity model.Activity
}

func (in AppendActivity) apply(e *Engine, b model.Board) (mutate.Result, error) {
	return mutate.AppendActivity(b, in.CardID, e.fill(in.Activity))
}

type AddChecklistItems struct {
	CardID   string
	Items    []model.ChecklistItem
	Activity *model.Activity
}

func (in AddChecklistItems) apply(e *Engine, b model.Board) (mutate.Result, error) {
	var a *model.Activity
	if in.Activity != nil {
		filled := e.fill(*in.Activity)
		a = &filled
	}
	return mutate.AddChecklistItems(b, in.CardID, in.Items, a)
}

type ToggleChecklistItem struct {
	CardID string
	ItemID string
}

func (in ToggleChecklistItem) apply(_ *Engine, b model.Board) (mutate.Result, error) {
	return mutate.ToggleChecklistItem(b, in.CardID, in.ItemID)
}

type ArchiveCard struct {
	CardID string
}

func (in ArchiveCard) apply(_ *Engine, b model.Board) (mutate.Result, error) {
	return mutate.ArchiveCard(b, in.CardID)
}

type MoveList struct {
	ListID  string
	ToIndex int
}

func (in MoveList) apply(_ *Engine, b model.Board) (mutate.Result, error) {
	return mutate.MoveList(b, in.ListID, in.ToIndex)
}

type AddList struct {
	Title string
	// ListID is allocated by the engine when empty.
	ListID string
}

func (in AddList) apply(e *Engine, b model.Board) (mutate.Result, error) {
	id := in.ListID
	if id == "" {
		id = e.ids("list")
	}
	return mutate.AddList(b, id, in.Title)
}
