package mutate

import (
	"fmt"
	"strings"

	"kanbanflow/internal/model"
)

// MoveCard relocates cardID from position fromIndex of fromListID to toIndex of toListID.
//
// toIndex addresses the destination sequence after the card has been removed from its
// source, so a same-list move to its own index is a no-op. AppendIndex (or any index past
// the end) appends. The source position must still hold cardID; otherwise the move is
// stale and the input board is returned with ErrStaleMove.
//
// Moving to a different list prepends an action entry naming both list titles.
func MoveCard(b model.Board, cardID, fromListID string, fromIndex int, toListID string, toIndex int, st Stamp) (Result, error) {
	cardID = strings.TrimSpace(cardID)
	fromListID = strings.TrimSpace(fromListID)
	toListID = strings.TrimSpace(toListID)

	src, ok := b.Lists[fromListID]
	if !ok {
		return Result{Board: b}, staleMove("source list %s not found", fromListID)
	}
	if fromIndex < 0 || fromIndex >= len(src.CardIDs) || src.CardIDs[fromIndex] != cardID {
		return Result{Board: b}, staleMove("card %s is not at %s[%d]", cardID, fromListID, fromIndex)
	}
	dst, ok := b.Lists[toListID]
	if !ok {
		return Result{Board: b}, staleMove("destination list %s not found", toListID)
	}
	card, ok := b.Cards[cardID]
	if !ok {
		return Result{Board: b}, staleMove("card %s not found", cardID)
	}

	rest := removeAt(src.CardIDs, fromIndex)

	if src.ID == dst.ID {
		at := clampInsert(toIndex, len(rest))
		if at == fromIndex {
			return Result{Board: b}, nil
		}
		out := cloneBoard(b)
		src.CardIDs = insertAt(rest, at, cardID)
		out.Lists[src.ID] = src
		return Result{Board: out, Changed: true}, nil
	}

	at := clampInsert(toIndex, len(dst.CardIDs))
	out := cloneBoard(b)
	src.CardIDs = rest
	dst.CardIDs = insertAt(dst.CardIDs, at, cardID)
	out.Lists[src.ID] = src
	out.Lists[dst.ID] = dst

	card.ListID = dst.ID
	card.Activity = prependActivity(card.Activity, st.action(fmt.Sprintf("moved this card from %s to %s", src.Title, dst.Title)))
	out.Cards[card.ID] = card

	return Result{Board: out, Changed: true}, nil
}

// MoveList reorders ListOrder. toIndex follows the same post-removal convention as MoveCard.
func MoveList(b model.Board, listID string, toIndex int) (Result, error) {
	listID = strings.TrimSpace(listID)
	if _, ok := b.Lists[listID]; !ok {
		return Result{Board: b}, NotFoundError{Kind: "list", ID: listID}
	}
	from := -1
	for i, id := range b.ListOrder {
		if id == listID {
			from = i
			break
		}
	}
	if from < 0 {
		return Result{Board: b}, NotFoundError{Kind: "list", ID: listID}
	}
	rest := removeAt(b.ListOrder, from)
	at := clampInsert(toIndex, len(rest))
	if at == from {
		return Result{Board: b}, nil
	}
	out := b
	out.ListOrder = insertAt(rest, at, listID)
	return Result{Board: out, Changed: true}, nil
}
