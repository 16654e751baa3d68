package model

import (
	"fmt"
	"sort"
	"strings"
)

// InvariantError lists every broken board invariant found by CheckInvariants.
type InvariantError struct {
	Problems []string
}

func (e InvariantError) Error() string {
	return "board invariants violated: " + strings.Join(e.Problems, "; ")
}

// CheckInvariants verifies that
//   - every listed card id appears in exactly one list and exists in Cards,
//   - every card in Cards is listed, and its ListID names the list that holds it,
//   - ListOrder is a permutation of the keys of Lists,
//   - checklist, attachment and activity ids are unique within each card.
func (b Board) CheckInvariants() error {
	var problems []string

	seenList := map[string]bool{}
	for _, id := range b.ListOrder {
		if seenList[id] {
			problems = append(problems, fmt.Sprintf("list %s repeated in listOrder", id))
			continue
		}
		seenList[id] = true
		if _, ok := b.Lists[id]; !ok {
			problems = append(problems, fmt.Sprintf("listOrder references missing list %s", id))
		}
	}
	for _, id := range sortedKeys(b.Lists) {
		if !seenList[id] {
			problems = append(problems, fmt.Sprintf("list %s missing from listOrder", id))
		}
		if l := b.Lists[id]; l.ID != id {
			problems = append(problems, fmt.Sprintf("list key %s holds list id %s", id, l.ID))
		}
	}

	owner := map[string]string{}
	for _, lid := range sortedKeys(b.Lists) {
		for _, cid := range b.Lists[lid].CardIDs {
			if prev, dup := owner[cid]; dup {
				problems = append(problems, fmt.Sprintf("card %s listed in %s and %s", cid, prev, lid))
				continue
			}
			owner[cid] = lid
			c, ok := b.Cards[cid]
			if !ok {
				problems = append(problems, fmt.Sprintf("list %s references missing card %s", lid, cid))
				continue
			}
			if c.ListID != lid {
				problems = append(problems, fmt.Sprintf("card %s has listId %s but is listed in %s", cid, c.ListID, lid))
			}
		}
	}
	for _, cid := range sortedKeys(b.Cards) {
		c := b.Cards[cid]
		if c.ID != cid {
			problems = append(problems, fmt.Sprintf("card key %s holds card id %s", cid, c.ID))
		}
		if _, ok := owner[cid]; !ok {
			problems = append(problems, fmt.Sprintf("card %s is not in any list", cid))
		}
		if kind, dup := c.DuplicateID(); dup != "" {
			problems = append(problems, fmt.Sprintf("card %s has duplicate %s id %s", cid, kind, dup))
		}
	}

	if len(problems) > 0 {
		return InvariantError{Problems: problems}
	}
	return nil
}

func sortedKeys[V any](m map[string]V) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// DuplicateID returns the kind (checklist, attachment or activity) and id of the first
// id that repeats within the card, or two empty strings.
func (c Card) DuplicateID() (kind, id string) {
	if dup := firstDuplicate(checklistIDs(c)); dup != "" {
		return "checklist", dup
	}
	if dup := firstDuplicate(attachmentIDs(c)); dup != "" {
		return "attachment", dup
	}
	if dup := firstDuplicate(activityIDs(c)); dup != "" {
		return "activity", dup
	}
	return "", ""
}

func firstDuplicate(ids []string) string {
	seen := map[string]bool{}
	for _, id := range ids {
		if seen[id] {
			return id
		}
		seen[id] = true
	}
	return ""
}

func checklistIDs(c Card) []string {
	out := make([]string, 0, len(c.Checklist))
	for _, it := range c.Checklist {
		out = append(out, it.ID)
	}
	return out
}

func attachmentIDs(c Card) []string {
	out := make([]string, 0, len(c.Attachments))
	for _, a := range c.Attachments {
		out = append(out, a.ID)
	}
	return out
}

func activityIDs(c Card) []string {
	out := make([]string, 0, len(c.Activity))
	for _, a := range c.Activity {
		out = append(out, a.ID)
	}
	return out
}
