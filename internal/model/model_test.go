package model

import (
	"math"
	"strings"
	"testing"
	"time"
)

func TestChecklistRatio(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name        string
		items       []ChecklistItem
		wantRatio   float64
		wantPercent int
		wantDone    bool
	}{
		{name: "empty", items: nil, wantRatio: 0, wantPercent: 0},
		{
			name:        "half",
			items:       []ChecklistItem{{ID: "a", Checked: true}, {ID: "b"}},
			wantRatio:   0.5,
			wantPercent: 50,
		},
		{
			name:        "thirds round",
			items:       []ChecklistItem{{ID: "a", Checked: true}, {ID: "b"}, {ID: "c"}},
			wantRatio:   1.0 / 3.0,
			wantPercent: 33,
		},
		{
			name:        "all",
			items:       []ChecklistItem{{ID: "a", Checked: true}},
			wantRatio:   1,
			wantPercent: 100,
			wantDone:    true,
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			c := Card{Checklist: tt.items}
			got := c.ChecklistRatio()
			if math.IsNaN(got) {
				t.Fatalf("ratio is NaN")
			}
			if math.Abs(got-tt.wantRatio) > 1e-9 {
				t.Fatalf("ratio: got %v want %v", got, tt.wantRatio)
			}
			if p := c.ChecklistPercent(); p != tt.wantPercent {
				t.Fatalf("percent: got %d want %d", p, tt.wantPercent)
			}
			if d := c.ChecklistDone(); d != tt.wantDone {
				t.Fatalf("done: got %v want %v", d, tt.wantDone)
			}
		})
	}
}

func TestCardComments_OnlyCommentActivity(t *testing.T) {
	now := time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC)
	c := Card{Activity: []Activity{
		{ID: "a2", UserID: "u1", Text: "hello", CreatedAt: now, Type: ActivityComment},
		{ID: "a1", UserID: "u1", Text: "created this card", CreatedAt: now, Type: ActivityAction},
	}}
	got := c.Comments()
	if len(got) != 1 || got[0].ID != "a2" || got[0].Text != "hello" {
		t.Fatalf("unexpected comments: %#v", got)
	}
}

func TestCheckInvariants(t *testing.T) {
	valid := Board{
		ID:        "b1",
		ListOrder: []string{"l1", "l2"},
		Lists: map[string]List{
			"l1": {ID: "l1", CardIDs: []string{"c1"}},
			"l2": {ID: "l2"},
		},
		Cards: map[string]Card{
			"c1": {ID: "c1", ListID: "l1"},
		},
	}
	if err := valid.CheckInvariants(); err != nil {
		t.Fatalf("expected valid board, got %v", err)
	}

	tests := []struct {
		name   string
		mutate func(b *Board)
		want   string
	}{
		{
			name: "duplicate listing",
			mutate: func(b *Board) {
				b.Lists["l2"] = List{ID: "l2", CardIDs: []string{"c1"}}
			},
			want: "listed in",
		},
		{
			name: "stale back reference",
			mutate: func(b *Board) {
				b.Cards["c1"] = Card{ID: "c1", ListID: "l2"}
			},
			want: "has listId l2",
		},
		{
			name: "orphan card",
			mutate: func(b *Board) {
				b.Cards["c2"] = Card{ID: "c2", ListID: "l1"}
			},
			want: "not in any list",
		},
		{
			name: "dangling list order",
			mutate: func(b *Board) {
				b.ListOrder = append(b.ListOrder, "l9")
			},
			want: "missing list l9",
		},
		{
			name: "list missing from order",
			mutate: func(b *Board) {
				b.ListOrder = []string{"l1"}
			},
			want: "missing from listOrder",
		},
		{
			name: "duplicate checklist id",
			mutate: func(b *Board) {
				b.Cards["c1"] = Card{ID: "c1", ListID: "l1", Checklist: []ChecklistItem{{ID: "x"}, {ID: "x"}}}
			},
			want: "duplicate checklist id x",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := cloneForTest(valid)
			tt.mutate(&b)
			err := b.CheckInvariants()
			if err == nil {
				t.Fatalf("expected invariant error")
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Fatalf("expected %q in %q", tt.want, err.Error())
			}
		})
	}
}

func cloneForTest(b Board) Board {
	out := b
	out.ListOrder = append([]string{}, b.ListOrder...)
	out.Lists = map[string]List{}
	for k, v := range b.Lists {
		v.CardIDs = append([]string{}, v.CardIDs...)
		out.Lists[k] = v
	}
	out.Cards = map[string]Card{}
	for k, v := range b.Cards {
		out.Cards[k] = v
	}
	return out
}
