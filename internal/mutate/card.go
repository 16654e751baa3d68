package mutate

import (
	"reflect"
	"strings"

	"kanbanflow/internal/model"
)

// UpdateCard merges patch into the card field by field. Fields left nil in the patch keep
// their current value; slice fields are replaced wholesale.
func UpdateCard(b model.Board, cardID string, patch model.CardPatch) (Result, error) {
	cardID = strings.TrimSpace(cardID)
	card, ok := b.Cards[cardID]
	if !ok {
		return Result{Board: b}, NotFoundError{Kind: "card", ID: cardID}
	}
	if patch.ListID != nil && strings.TrimSpace(*patch.ListID) != card.ListID {
		return Result{Board: b}, ErrListIDPatch
	}
	if patch.Title != nil && strings.TrimSpace(*patch.Title) == "" {
		return Result{Board: b}, ErrBlankTitle
	}
	if patch.Activity != nil && !preservesHistory(*patch.Activity, card.Activity) {
		return Result{Board: b}, ErrActivityRewrite
	}

	next := card
	if patch.Title != nil {
		next.Title = *patch.Title
	}
	if patch.Description != nil {
		next.Description = *patch.Description
	}
	if patch.Labels != nil {
		next.Labels = cloneSlice(*patch.Labels)
	}
	if patch.Members != nil {
		next.Members = cloneSlice(*patch.Members)
	}
	if patch.Checklist != nil {
		next.Checklist = cloneSlice(*patch.Checklist)
	}
	if patch.Attachments != nil {
		next.Attachments = cloneSlice(*patch.Attachments)
	}
	if patch.Activity != nil {
		next.Activity = cloneSlice(*patch.Activity)
	}
	if patch.DueDate != nil {
		next.DueDate = strings.TrimSpace(*patch.DueDate)
	}
	if patch.CoverURL != nil {
		next.CoverURL = strings.TrimSpace(*patch.CoverURL)
	}

	if kind, dup := next.DuplicateID(); dup != "" {
		return Result{Board: b}, DuplicateIDError{Kind: kind, ID: dup}
	}

	if reflect.DeepEqual(card, next) {
		return Result{Board: b}, nil
	}
	out := cloneBoard(b)
	out.Cards[cardID] = next
	return Result{Board: out, Changed: true}, nil
}

// AddCard appends a new card to the end of listID with empty collections and a single
// "created" action entry. A blank title falls back to DefaultCardTitle.
func AddCard(b model.Board, listID, cardID, title string, st Stamp) (Result, error) {
	listID = strings.TrimSpace(listID)
	cardID = strings.TrimSpace(cardID)
	l, ok := b.Lists[listID]
	if !ok {
		return Result{Board: b}, NotFoundError{Kind: "list", ID: listID}
	}
	if cardID == "" {
		return Result{Board: b}, ErrMissingID
	}
	if _, exists := b.Cards[cardID]; exists {
		return Result{Board: b}, DuplicateIDError{Kind: "card", ID: cardID}
	}
	title = strings.TrimSpace(title)
	if title == "" {
		title = DefaultCardTitle
	}

	card := model.Card{
		ID:          cardID,
		ListID:      l.ID,
		Title:       title,
		Labels:      []model.Label{},
		Members:     []model.User{},
		Checklist:   []model.ChecklistItem{},
		Attachments: []model.Attachment{},
		Activity:    []model.Activity{st.action("created this card")},
	}

	out := cloneBoard(b)
	l.CardIDs = insertAt(l.CardIDs, len(l.CardIDs), cardID)
	out.Lists[l.ID] = l
	out.Cards[cardID] = card
	return Result{Board: out, Changed: true}, nil
}

// AppendActivity prepends a to the card's log (newest first).
func AppendActivity(b model.Board, cardID string, a model.Activity) (Result, error) {
	cardID = strings.TrimSpace(cardID)
	card, ok := b.Cards[cardID]
	if !ok {
		return Result{Board: b}, NotFoundError{Kind: "card", ID: cardID}
	}
	if hasActivityID(card, a.ID) {
		return Result{Board: b}, DuplicateIDError{Kind: "activity", ID: a.ID}
	}
	card.Activity = prependActivity(card.Activity, a)
	out := cloneBoard(b)
	out.Cards[cardID] = card
	return Result{Board: out, Changed: true}, nil
}

// AddChecklistItems appends items and, when a is non-nil, prepends a in the same snapshot.
func AddChecklistItems(b model.Board, cardID string, items []model.ChecklistItem, a *model.Activity) (Result, error) {
	cardID = strings.TrimSpace(cardID)
	card, ok := b.Cards[cardID]
	if !ok {
		return Result{Board: b}, NotFoundError{Kind: "card", ID: cardID}
	}
	if len(items) == 0 && a == nil {
		return Result{Board: b}, nil
	}
	seen := map[string]bool{}
	for _, it := range items {
		if seen[it.ID] || hasChecklistID(card, it.ID) {
			return Result{Board: b}, DuplicateIDError{Kind: "checklist item", ID: it.ID}
		}
		seen[it.ID] = true
	}
	if a != nil && hasActivityID(card, a.ID) {
		return Result{Board: b}, DuplicateIDError{Kind: "activity", ID: a.ID}
	}

	next := make([]model.ChecklistItem, 0, len(card.Checklist)+len(items))
	next = append(next, card.Checklist...)
	next = append(next, items...)
	card.Checklist = next
	if a != nil {
		card.Activity = prependActivity(card.Activity, *a)
	}
	out := cloneBoard(b)
	out.Cards[cardID] = card
	return Result{Board: out, Changed: true}, nil
}

func ToggleChecklistItem(b model.Board, cardID, itemID string) (Result, error) {
	cardID = strings.TrimSpace(cardID)
	itemID = strings.TrimSpace(itemID)
	card, ok := b.Cards[cardID]
	if !ok {
		return Result{Board: b}, NotFoundError{Kind: "card", ID: cardID}
	}
	idx := -1
	for i, it := range card.Checklist {
		if it.ID == itemID {
			idx = i
			break
		}
	}
	if idx < 0 {
		return Result{Board: b}, NotFoundError{Kind: "checklist item", ID: itemID}
	}
	card.Checklist = cloneSlice(card.Checklist)
	card.Checklist[idx].Checked = !card.Checklist[idx].Checked
	out := cloneBoard(b)
	out.Cards[cardID] = card
	return Result{Board: out, Changed: true}, nil
}

// ArchiveCard removes the card from its list and from the cards map together.
func ArchiveCard(b model.Board, cardID string) (Result, error) {
	cardID = strings.TrimSpace(cardID)
	card, ok := b.Cards[cardID]
	if !ok {
		return Result{Board: b}, NotFoundError{Kind: "card", ID: cardID}
	}
	out := cloneBoard(b)
	if l, ok := out.Lists[card.ListID]; ok {
		for i, id := range l.CardIDs {
			if id == cardID {
				l.CardIDs = removeAt(l.CardIDs, i)
				break
			}
		}
		out.Lists[l.ID] = l
	}
	delete(out.Cards, cardID)
	return Result{Board: out, Changed: true}, nil
}

// AddList appends an empty list at the end of the board.
func AddList(b model.Board, listID, title string) (Result, error) {
	listID = strings.TrimSpace(listID)
	title = strings.TrimSpace(title)
	if title == "" {
		return Result{Board: b}, ErrBlankTitle
	}
	if listID == "" {
		return Result{Board: b}, ErrMissingID
	}
	if _, exists := b.Lists[listID]; exists {
		return Result{Board: b}, DuplicateIDError{Kind: "list", ID: listID}
	}
	out := cloneBoard(b)
	out.Lists[listID] = model.List{ID: listID, Title: title, CardIDs: []string{}}
	out.ListOrder = insertAt(b.ListOrder, len(b.ListOrder), listID)
	return Result{Board: out, Changed: true}, nil
}

// preservesHistory reports whether next only prepends entries to prev.
func preservesHistory(next, prev []model.Activity) bool {
	if len(next) < len(prev) {
		return false
	}
	off := len(next) - len(prev)
	for i := range prev {
		if !reflect.DeepEqual(next[off+i], prev[i]) {
			return false
		}
	}
	return true
}
