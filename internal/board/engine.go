package board

import (
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"kanbanflow/internal/logging"
	"kanbanflow/internal/model"
	"kanbanflow/internal/mutate"
	"kanbanflow/internal/store"
)

// Engine is the single mutation surface for one board session. It owns the current
// snapshot, the acting user, the clock and the id source. Snapshots handed out by
// Board are never modified afterwards.
type Engine struct {
	mu       sync.Mutex
	notifyMu sync.Mutex

	board model.Board
	rev   uint64
	actor string

	now func() time.Time
	ids store.IDFunc
	log *zap.Logger

	subs    map[int]func(model.Board)
	nextSub int

	drag       *model.DragItem
	dropTarget string
}

type Option func(*Engine)

func WithClock(now func() time.Time) Option {
	return func(e *Engine) {
		if now != nil {
			e.now = now
		}
	}
}

func WithIDs(ids store.IDFunc) Option {
	return func(e *Engine) {
		if ids != nil {
			e.ids = ids
		}
	}
}

func WithLogger(l *zap.Logger) Option {
	return func(e *Engine) { e.log = logging.OrNop(l) }
}

// New starts a session on seed acting as actor. The seed must satisfy the board
// invariants, and when the board has a member directory the actor must be in it.
func New(seed model.Board, actor string, opts ...Option) (*Engine, error) {
	actor = strings.TrimSpace(actor)
	if actor == "" {
		return nil, errors.New("missing actor")
	}
	if err := seed.CheckInvariants(); err != nil {
		return nil, err
	}
	if len(seed.Members) > 0 {
		if _, ok := seed.FindUser(actor); !ok {
			return nil, fmt.Errorf("actor %s is not a board member", actor)
		}
	}
	e := &Engine{
		board: seed,
		actor: actor,
		now:   time.Now,
		ids:   store.RandomIDs(),
		log:   zap.NewNop(),
		subs:  map[int]func(model.Board){},
	}
	for _, opt := range opts {
		opt(e)
	}
	return e, nil
}

// Board returns the current snapshot.
func (e *Engine) Board() model.Board {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.board
}

// Revision counts applied changes since New.
func (e *Engine) Revision() uint64 {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.rev
}

func (e *Engine) Actor() string { return e.actor }

// ActorUser resolves the acting user in the board directory.
func (e *Engine) ActorUser() model.User {
	if u, ok := e.Board().FindUser(e.actor); ok {
		return u
	}
	return model.User{ID: e.actor, Name: e.actor}
}

func (e *Engine) Now() time.Time { return e.now() }

func (e *Engine) NewID(prefix string) string { return e.ids(prefix) }

// NewActivity builds an entry authored by the acting user, stamped now.
func (e *Engine) NewActivity(kind model.ActivityType, text string) model.Activity {
	return model.Activity{
		ID:        e.ids("act"),
		UserID:    e.actor,
		Text:      text,
		CreatedAt: e.now(),
		Type:      kind,
	}
}

// Subscribe registers fn to receive every changed snapshot, in order. fn runs on the
// dispatching goroutine and must not dispatch. The returned func unsubscribes.
func (e *Engine) Subscribe(fn func(model.Board)) func() {
	e.mu.Lock()
	defer e.mu.Unlock()
	id := e.nextSub
	e.nextSub++
	e.subs[id] = fn
	return func() {
		e.mu.Lock()
		defer e.mu.Unlock()
		delete(e.subs, id)
	}
}

// Dispatch applies one intent and returns the resulting snapshot. A stale move is
// ignored: the board is unchanged and no error is returned. Other failures return
// the error with the board unchanged.
func (e *Engine) Dispatch(in Intent) (model.Board, error) {
	b, err := e.Apply(in)
	if errors.Is(err, mutate.ErrStaleMove) {
		e.log.Debug("ignored stale move", zap.Error(err))
		return b, nil
	}
	return b, err
}

// Apply is Dispatch without the stale-move leniency: ErrStaleMove is returned to the
// caller (the board is still unchanged).
func (e *Engine) Apply(in Intent) (model.Board, error) {
	e.mu.Lock()
	res, err := in.apply(e, e.board)
	if err != nil || !res.Changed {
		cur := e.board
		e.mu.Unlock()
		return cur, err
	}
	e.board = res.Board
	e.rev++
	rev := e.rev
	subs := make([]func(model.Board), 0, len(e.subs))
	for i := 0; i < e.nextSub; i++ {
		if fn, ok := e.subs[i]; ok {
			subs = append(subs, fn)
		}
	}
	e.notifyMu.Lock()
	e.mu.Unlock()
	defer e.notifyMu.Unlock()

	e.log.Debug("board changed", zap.String("intent", fmt.Sprintf("%T", in)), zap.Uint64("rev", rev))
	for _, fn := range subs {
		fn(res.Board)
	}
	return res.Board, nil
}

func (e *Engine) MoveCard(cardID, fromListID string, fromIndex int, toListID string, toIndex int) (model.Board, error) {
	return e.Dispatch(MoveCard{CardID: cardID, FromListID: fromListID, FromIndex: fromIndex, ToListID: toListID, ToIndex: toIndex})
}

func (e *Engine) UpdateCard(cardID string, patch model.CardPatch) (model.Board, error) {
	return e.Dispatch(UpdateCard{CardID: cardID, Patch: patch})
}

// AddCard appends a new card titled title (or the default title) and returns its id.
func (e *Engine) AddCard(listID, title string) (string, model.Board, error) {
	id := e.ids("card")
	b, err := e.Dispatch(AddCard{ListID: listID, Title: title, CardID: id})
	if err != nil {
		return "", b, err
	}
	return id, b, nil
}

func (e *Engine) AppendActivity(cardID string, a model.Activity) (model.Board, error) {
	return e.Dispatch(AppendActivity{CardID: cardID, Activity: a})
}

func (e *Engine) ToggleChecklistItem(cardID, itemID string) (model.Board, error) {
	return e.Dispatch(ToggleChecklistItem{CardID: cardID, ItemID: itemID})
}

func (e *Engine) ArchiveCard(cardID string) (model.Board, error) {
	return e.Dispatch(ArchiveCard{CardID: cardID})
}

func (e *Engine) MoveList(listID string, toIndex int) (model.Board, error) {
	return e.Dispatch(MoveList{ListID: listID, ToIndex: toIndex})
}

// AddList appends a new empty list and returns its id.
func (e *Engine) AddList(title string) (string, model.Board, error) {
	id := e.ids("list")
	b, err := e.Dispatch(AddList{Title: title, ListID: id})
	if err != nil {
		return "", b, err
	}
	return id, b, nil
}

// stamp and fill run under e.mu from Intent.apply.
func (e *Engine) stamp() mutate.Stamp {
	return mutate.Stamp{UserID: e.actor, ActivityID: e.ids("act"), At: e.now()}
}

func (e *Engine) fill(a model.Activity) model.Activity {
	if a.ID == "" {
		a.ID = e.ids("act")
	}
	if a.UserID == "" {
		a.UserID = e.actor
	}
	if a.CreatedAt.IsZero() {
		a.CreatedAt = e.now()
	}
	if a.Type == "" {
		a.Type = model.ActivityAction
	}
	return a
}
