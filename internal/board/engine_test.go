package board

import (
	"errors"
	"reflect"
	"strings"
	"sync"
	"testing"
	"time"

	"kanbanflow/internal/model"
	"kanbanflow/internal/mutate"
	"kanbanflow/internal/store"
)

var testNow = time.Date(2025, 12, 20, 10, 0, 0, 0, time.UTC)

func newTestEngine(t *testing.T) *Engine {
	t.Helper()
	e, err := New(store.DefaultSeed(), "u1",
		WithClock(func() time.Time { return testNow }),
		WithIDs(store.SequentialIDs()),
	)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return e
}

func TestNew_Validation(t *testing.T) {
	t.Parallel()

	if _, err := New(store.DefaultSeed(), " "); err == nil {
		t.Fatalf("expected missing actor error")
	}
	if _, err := New(store.DefaultSeed(), "u9"); err == nil {
		t.Fatalf("expected non-member actor error")
	}
	broken := store.DefaultSeed()
	broken.ListOrder = broken.ListOrder[:2]
	if _, err := New(broken, "u1"); err == nil {
		t.Fatalf("expected invariant error")
	}
}

func TestEngine_MoveCardAcrossLists(t *testing.T) {
	t.Parallel()

	e := newTestEngine(t)
	before := e.Board()

	b, err := e.MoveCard("c1", "l1", 0, "l2", mutate.AppendIndex)
	if err != nil {
		t.Fatalf("MoveCard: %v", err)
	}
	if got := b.Lists["l2"].CardIDs; !reflect.DeepEqual(got, []string{"c3", "c1"}) {
		t.Fatalf("destination: %v", got)
	}
	a := b.Cards["c1"].Activity[0]
	if a.UserID != "u1" || !a.CreatedAt.Equal(testNow) || a.Text != "moved this card from To Do to In Progress" {
		t.Fatalf("unexpected activity: %#v", a)
	}
	if e.Revision() != 1 {
		t.Fatalf("expected revision 1, got %d", e.Revision())
	}
	if got := before.Lists["l1"].CardIDs; !reflect.DeepEqual(got, []string{"c1", "c2"}) {
		t.Fatalf("previous snapshot changed: %v", got)
	}
}

func TestEngine_StaleMoveIsIgnored(t *testing.T) {
	t.Parallel()

	e := newTestEngine(t)
	before := e.Board()

	b, err := e.MoveCard("c1", "l1", 1, "l2", 0)
	if err != nil {
		t.Fatalf("stale move should not surface an error, got %v", err)
	}
	if !reflect.DeepEqual(b, before) || e.Revision() != 0 {
		t.Fatalf("stale move changed the board")
	}
}

func TestEngine_UpdateCardErrorsSurface(t *testing.T) {
	t.Parallel()

	e := newTestEngine(t)
	blank := "  "
	if _, err := e.UpdateCard("c1", model.CardPatch{Title: &blank}); !errors.Is(err, mutate.ErrBlankTitle) {
		t.Fatalf("expected ErrBlankTitle, got %v", err)
	}
	if e.Board().Cards["c1"].Title != "Research Competitors" {
		t.Fatalf("title should be retained")
	}
}

func TestEngine_AddCardAndActivity(t *testing.T) {
	t.Parallel()

	e := newTestEngine(t)
	id, b, err := e.AddCard("l4", "")
	if err != nil {
		t.Fatalf("AddCard: %v", err)
	}
	if id != "card-1" {
		t.Fatalf("expected sequential id, got %q", id)
	}
	c := b.Cards[id]
	if c.Title != mutate.DefaultCardTitle || c.ListID != "l4" {
		t.Fatalf("unexpected card: %#v", c)
	}
	if ids := b.Lists["l4"].CardIDs; ids[len(ids)-1] != id {
		t.Fatalf("card not appended: %v", ids)
	}

	b, err = e.AppendActivity(id, model.Activity{Text: "hello", Type: model.ActivityComment})
	if err != nil {
		t.Fatalf("AppendActivity: %v", err)
	}
	a := b.Cards[id].Activity[0]
	if a.ID == "" || a.UserID != "u1" || a.Text != "hello" || a.Type != model.ActivityComment {
		t.Fatalf("activity not filled: %#v", a)
	}
	if got := len(b.Cards[id].Comments()); got != 1 {
		t.Fatalf("expected one comment, got %d", got)
	}
}

func TestEngine_AddListAndMoveList(t *testing.T) {
	t.Parallel()

	e := newTestEngine(t)
	id, b, err := e.AddList("Blocked")
	if err != nil {
		t.Fatalf("AddList: %v", err)
	}
	if b.ListOrder[len(b.ListOrder)-1] != id {
		t.Fatalf("list not appended: %v", b.ListOrder)
	}
	b, err = e.MoveList(id, 0)
	if err != nil {
		t.Fatalf("MoveList: %v", err)
	}
	if b.ListOrder[0] != id {
		t.Fatalf("list not moved: %v", b.ListOrder)
	}
}

func TestEngine_SubscribersSeeEveryChangeInOrder(t *testing.T) {
	t.Parallel()

	e := newTestEngine(t)
	var mu sync.Mutex
	var titles []string
	unsub := e.Subscribe(func(b model.Board) {
		mu.Lock()
		defer mu.Unlock()
		titles = append(titles, b.Cards["c5"].Title)
	})

	for _, title := range []string{"A", "B"} {
		title := title
		if _, err := e.UpdateCard("c5", model.CardPatch{Title: &title}); err != nil {
			t.Fatalf("UpdateCard: %v", err)
		}
	}
	// No change, no notification.
	same := "B"
	if _, err := e.UpdateCard("c5", model.CardPatch{Title: &same}); err != nil {
		t.Fatalf("UpdateCard: %v", err)
	}
	unsub()
	c := "C"
	if _, err := e.UpdateCard("c5", model.CardPatch{Title: &c}); err != nil {
		t.Fatalf("UpdateCard: %v", err)
	}

	mu.Lock()
	defer mu.Unlock()
	if got := strings.Join(titles, ","); got != "A,B" {
		t.Fatalf("notifications: got %q", got)
	}
}

func TestEngine_ConcurrentDispatchKeepsInvariants(t *testing.T) {
	t.Parallel()

	e, err := New(store.DefaultSeed(), "u1")
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			for j := 0; j < 50; j++ {
				b := e.Board()
				listID, idx, ok := b.CardPosition("c3")
				if !ok {
					t.Errorf("c3 lost")
					return
				}
				to := b.ListOrder[(i+j)%len(b.ListOrder)]
				if _, err := e.MoveCard("c3", listID, idx, to, 0); err != nil {
					t.Errorf("MoveCard: %v", err)
					return
				}
			}
		}(i)
	}
	wg.Wait()
	if err := e.Board().CheckInvariants(); err != nil {
		t.Fatalf("invariants: %v", err)
	}
}

func TestEngine_ApplyReportsStaleMoves(t *testing.T) {
	t.Parallel()

	e := newTestEngine(t)
	before := e.Board()
	b, err := e.Apply(MoveCard{CardID: "c1", FromListID: "l1", FromIndex: 1, ToListID: "l2", ToIndex: 0})
	if !errors.Is(err, mutate.ErrStaleMove) {
		t.Fatalf("expected ErrStaleMove, got %v", err)
	}
	if !reflect.DeepEqual(b, before) {
		t.Fatalf("stale apply changed the board")
	}
}
