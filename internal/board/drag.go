package board

import (
	"errors"
	"strings"

	"go.uber.org/zap"

	"kanbanflow/internal/model"
	"kanbanflow/internal/mutate"
)

var ErrNotDragging = errors.New("no drag in progress")

// StartCardDrag picks up cardID from its current position. Any previous drag is replaced.
func (e *Engine) StartCardDrag(cardID string) (model.DragItem, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	cardID = strings.TrimSpace(cardID)
	listID, idx, ok := e.board.CardPosition(cardID)
	if !ok {
		return model.DragItem{}, mutate.NotFoundError{Kind: "card", ID: cardID}
	}
	item := model.DragItem{ID: cardID, Type: model.DragCard, Index: idx, ListID: listID}
	e.drag = &item
	e.dropTarget = ""
	return item, nil
}

// StartListDrag picks up listID from its position in the list order.
func (e *Engine) StartListDrag(listID string) (model.DragItem, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	listID = strings.TrimSpace(listID)
	for i, id := range e.board.ListOrder {
		if id == listID {
			item := model.DragItem{ID: listID, Type: model.DragList, Index: i}
			e.drag = &item
			e.dropTarget = ""
			return item, nil
		}
	}
	return model.DragItem{}, mutate.NotFoundError{Kind: "list", ID: listID}
}

// DragOver marks listID as the current drop target. It is ignored when nothing is
// being dragged or the list does not exist.
func (e *Engine) DragOver(listID string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.drag == nil {
		return
	}
	if _, ok := e.board.Lists[listID]; !ok {
		return
	}
	e.dropTarget = listID
}

// DragLeave clears the drop target highlight without ending the drag.
func (e *Engine) DragLeave() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.dropTarget = ""
}

// Drop ends the drag and applies it. Cards move to toIndex of toListID; lists move to
// position toIndex of the list order and toListID is ignored. The drag state is cleared
// whether or not the move applies; a stale drop leaves the board unchanged.
func (e *Engine) Drop(toListID string, toIndex int) (model.Board, error) {
	e.mu.Lock()
	item := e.drag
	e.drag = nil
	e.dropTarget = ""
	e.mu.Unlock()

	if item == nil {
		return e.Board(), ErrNotDragging
	}
	switch item.Type {
	case model.DragList:
		return e.Dispatch(MoveList{ListID: item.ID, ToIndex: toIndex})
	default:
		b, err := e.Dispatch(MoveCard{
			CardID:     item.ID,
			FromListID: item.ListID,
			FromIndex:  item.Index,
			ToListID:   toListID,
			ToIndex:    toIndex,
		})
		if err == nil {
			e.log.Debug("card dropped", zap.String("card", item.ID), zap.String("to", toListID), zap.Int("index", toIndex))
		}
		return b, err
	}
}

func (e *Engine) CancelDrag() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.drag = nil
	e.dropTarget = ""
}

func (e *Engine) Dragging() (model.DragItem, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.drag == nil {
		return model.DragItem{}, false
	}
	return *e.drag, true
}

func (e *Engine) DropTarget() string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.dropTarget
}
