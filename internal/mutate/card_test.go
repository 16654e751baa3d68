package mutate

import (
	"errors"
	"reflect"
	"testing"

	"kanbanflow/internal/model"
)

func strPtr(s string) *string { return &s }

func TestUpdateCard_ShallowMerge(t *testing.T) {
	b := testBoard()
	labels := []model.Label{{ID: "lb1", Name: "Design", Color: "purple"}}

	res, err := UpdateCard(b, "c1", model.CardPatch{
		Description: strPtr("new desc"),
		Labels:      &labels,
	})
	if err != nil {
		t.Fatalf("UpdateCard: %v", err)
	}
	if !res.Changed {
		t.Fatalf("expected changed=true")
	}
	c1 := res.Board.Cards["c1"]
	if c1.Title != "One" {
		t.Fatalf("title should be preserved, got %q", c1.Title)
	}
	if c1.Description != "new desc" {
		t.Fatalf("description: got %q", c1.Description)
	}
	if !reflect.DeepEqual(c1.Labels, labels) {
		t.Fatalf("labels: got %#v", c1.Labels)
	}
	if len(c1.Activity) != 1 {
		t.Fatalf("activity should be preserved")
	}

	// Caller's slice is not aliased.
	labels[0].Name = "changed"
	if res.Board.Cards["c1"].Labels[0].Name != "Design" {
		t.Fatalf("patch slice aliased into snapshot")
	}
	if b.Cards["c1"].Description != "" {
		t.Fatalf("input board modified")
	}
}

func TestUpdateCard_Rejections(t *testing.T) {
	b := testBoard()

	if _, err := UpdateCard(b, "c1", model.CardPatch{Title: strPtr("   ")}); !errors.Is(err, ErrBlankTitle) {
		t.Fatalf("expected ErrBlankTitle, got %v", err)
	}
	if _, err := UpdateCard(b, "c1", model.CardPatch{ListID: strPtr("l2")}); !errors.Is(err, ErrListIDPatch) {
		t.Fatalf("expected ErrListIDPatch, got %v", err)
	}
	if _, err := UpdateCard(b, "zz", model.CardPatch{Title: strPtr("x")}); !IsNotFound(err) {
		t.Fatalf("expected not found, got %v", err)
	}
	rewrite := []model.Activity{{ID: "other"}}
	if _, err := UpdateCard(b, "c1", model.CardPatch{Activity: &rewrite}); !errors.Is(err, ErrActivityRewrite) {
		t.Fatalf("expected ErrActivityRewrite, got %v", err)
	}

	dupChecklist := []model.ChecklistItem{{ID: "ck-1", Text: "a"}, {ID: "ck-1", Text: "b"}}
	dupAttachments := []model.Attachment{{ID: "at-1", Name: "x"}, {ID: "at-1", Name: "y"}}
	dupActivity := append([]model.Activity{{ID: "a0", Text: "again", Type: model.ActivityComment}}, b.Cards["c1"].Activity...)
	dups := []struct {
		name   string
		cardID string
		patch  model.CardPatch
		want   DuplicateIDError
	}{
		{"checklist", "c2", model.CardPatch{Checklist: &dupChecklist}, DuplicateIDError{Kind: "checklist", ID: "ck-1"}},
		{"attachments", "c2", model.CardPatch{Attachments: &dupAttachments}, DuplicateIDError{Kind: "attachment", ID: "at-1"}},
		{"prepended activity reuses id", "c1", model.CardPatch{Activity: &dupActivity}, DuplicateIDError{Kind: "activity", ID: "a0"}},
	}
	for _, tc := range dups {
		res, err := UpdateCard(b, tc.cardID, tc.patch)
		var got DuplicateIDError
		if !errors.As(err, &got) || got != tc.want {
			t.Fatalf("%s: expected %v, got %v", tc.name, tc.want, err)
		}
		if res.Changed || !reflect.DeepEqual(res.Board, b) {
			t.Fatalf("%s: board must be unchanged", tc.name)
		}
		if err := res.Board.CheckInvariants(); err != nil {
			t.Fatalf("%s: invariants: %v", tc.name, err)
		}
	}

	res, err := UpdateCard(b, "c1", model.CardPatch{Title: strPtr("One")})
	if err != nil {
		t.Fatalf("UpdateCard same title: %v", err)
	}
	if res.Changed {
		t.Fatalf("expected changed=false for identical title")
	}
}

func TestUpdateCard_ActivityPrependAllowed(t *testing.T) {
	b := testBoard()
	next := append([]model.Activity{{ID: "a1", Text: "new", Type: model.ActivityComment}}, b.Cards["c1"].Activity...)
	res, err := UpdateCard(b, "c1", model.CardPatch{Activity: &next})
	if err != nil {
		t.Fatalf("UpdateCard: %v", err)
	}
	if got := res.Board.Cards["c1"].Activity; len(got) != 2 || got[0].ID != "a1" {
		t.Fatalf("unexpected activity: %#v", got)
	}
}

func TestAddCard(t *testing.T) {
	b := testBoard()

	res, err := AddCard(b, "l3", "card-new", "  ", testStamp("act-1"))
	if err != nil {
		t.Fatalf("AddCard: %v", err)
	}
	out := res.Board
	if got := out.Lists["l3"].CardIDs; !reflect.DeepEqual(got, []string{"card-new"}) {
		t.Fatalf("list: got %v", got)
	}
	c := out.Cards["card-new"]
	if c.Title != DefaultCardTitle || c.ListID != "l3" {
		t.Fatalf("unexpected card: %#v", c)
	}
	if c.Labels == nil || c.Members == nil || c.Checklist == nil || c.Attachments == nil {
		t.Fatalf("expected empty, non-nil collections: %#v", c)
	}
	if len(c.Activity) != 1 || c.Activity[0].Type != model.ActivityAction || c.Activity[0].UserID != "u1" {
		t.Fatalf("expected one created entry, got %#v", c.Activity)
	}
	if err := out.CheckInvariants(); err != nil {
		t.Fatalf("invariants: %v", err)
	}

	if _, err := AddCard(out, "l3", "card-new", "x", testStamp("act-2")); err == nil {
		t.Fatalf("expected duplicate id error")
	}
	if _, err := AddCard(out, "l9", "card-x", "x", testStamp("act-2")); !IsNotFound(err) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestAppendActivity_PrependsNewestFirst(t *testing.T) {
	b := testBoard()
	a := model.Activity{ID: "a9", UserID: "u1", Text: "hi", CreatedAt: testNow, Type: model.ActivityComment}

	res, err := AppendActivity(b, "c1", a)
	if err != nil {
		t.Fatalf("AppendActivity: %v", err)
	}
	got := res.Board.Cards["c1"].Activity
	if len(got) != 2 || got[0].ID != "a9" || got[1].ID != "a0" {
		t.Fatalf("unexpected order: %#v", got)
	}
	if res.Board.Cards["c1"].Title != "One" {
		t.Fatalf("other fields should be untouched")
	}
	if _, err := AppendActivity(res.Board, "c1", a); err == nil {
		t.Fatalf("expected duplicate activity id error")
	}
}

func TestAddChecklistItems_SingleSnapshot(t *testing.T) {
	b := testBoard()
	items := []model.ChecklistItem{{ID: "ck1", Text: "Do X"}, {ID: "ck2", Text: "Do Y"}}
	a := model.Activity{ID: "a1", UserID: "u1", Text: "added 2 checklist items via AI", Type: model.ActivityAction}

	res, err := AddChecklistItems(b, "c2", items, &a)
	if err != nil {
		t.Fatalf("AddChecklistItems: %v", err)
	}
	c2 := res.Board.Cards["c2"]
	if len(c2.Checklist) != 2 || len(c2.Activity) != 1 {
		t.Fatalf("expected both effects in one snapshot: %#v", c2)
	}

	dup := []model.ChecklistItem{{ID: "ck1", Text: "again"}}
	if _, err := AddChecklistItems(res.Board, "c2", dup, nil); err == nil {
		t.Fatalf("expected duplicate checklist id error")
	}

	noop, err := AddChecklistItems(b, "c2", nil, nil)
	if err != nil || noop.Changed {
		t.Fatalf("expected no-op, got changed=%v err=%v", noop.Changed, err)
	}
}

func TestToggleChecklistItem(t *testing.T) {
	b := testBoard()
	items := []model.ChecklistItem{{ID: "ck1", Text: "Do X"}}
	res, err := AddChecklistItems(b, "c2", items, nil)
	if err != nil {
		t.Fatalf("AddChecklistItems: %v", err)
	}
	before := res.Board

	res, err = ToggleChecklistItem(before, "c2", "ck1")
	if err != nil {
		t.Fatalf("ToggleChecklistItem: %v", err)
	}
	if !res.Board.Cards["c2"].Checklist[0].Checked {
		t.Fatalf("expected checked")
	}
	if before.Cards["c2"].Checklist[0].Checked {
		t.Fatalf("previous snapshot was modified")
	}
	if _, err := ToggleChecklistItem(before, "c2", "nope"); !IsNotFound(err) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestArchiveCard_RemovesFromListAndCards(t *testing.T) {
	b := testBoard()
	res, err := ArchiveCard(b, "c1")
	if err != nil {
		t.Fatalf("ArchiveCard: %v", err)
	}
	if _, ok := res.Board.Cards["c1"]; ok {
		t.Fatalf("card still present")
	}
	if got := res.Board.Lists["l1"].CardIDs; !reflect.DeepEqual(got, []string{"c2"}) {
		t.Fatalf("list: got %v", got)
	}
	if err := res.Board.CheckInvariants(); err != nil {
		t.Fatalf("invariants: %v", err)
	}
	if _, ok := b.Cards["c1"]; !ok {
		t.Fatalf("input board modified")
	}
}

func TestAddList(t *testing.T) {
	b := testBoard()
	res, err := AddList(b, "l4", "Blocked")
	if err != nil {
		t.Fatalf("AddList: %v", err)
	}
	if got := res.Board.ListOrder; !reflect.DeepEqual(got, []string{"l1", "l2", "l3", "l4"}) {
		t.Fatalf("list order: %v", got)
	}
	if err := res.Board.CheckInvariants(); err != nil {
		t.Fatalf("invariants: %v", err)
	}
	if _, err := AddList(b, "l5", " "); !errors.Is(err, ErrBlankTitle) {
		t.Fatalf("expected ErrBlankTitle, got %v", err)
	}
	if _, err := AddList(b, "l1", "Again"); err == nil {
		t.Fatalf("expected duplicate list error")
	}
}
