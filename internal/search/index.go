package search

import (
	"context"
	"database/sql"
	"strings"
	"sync"

	"go.uber.org/zap"
	"golang.org/x/text/cases"
	_ "modernc.org/sqlite"

	"kanbanflow/internal/board"
	"kanbanflow/internal/logging"
	"kanbanflow/internal/model"
)

const DefaultLimit = 20

// Hit is one matching card. Field names where the query matched first
// (title, description, labels, checklist or comments).
type Hit struct {
	CardID    string `json:"cardId"`
	ListID    string `json:"listId"`
	ListTitle string `json:"listTitle"`
	Title     string `json:"title"`
	Field     string `json:"field"`
}

// Index is an in-memory SQLite table of card text, rebuilt from board snapshots.
// Nothing is written to disk. Searchable text is stored case-folded in Go: SQLite's
// lower() and LIKE only fold ASCII.
type Index struct {
	mu  sync.Mutex
	db  *sql.DB
	log *zap.Logger
}

func Open(ctx context.Context, log *zap.Logger) (*Index, error) {
	// modernc.org/sqlite driver name is "sqlite".
	db, err := sql.Open("sqlite", ":memory:")
	if err != nil {
		return nil, err
	}
	// Every connection to :memory: is a separate database; keep exactly one alive.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	stmts := []string{
		`CREATE TABLE cards (
			card_id TEXT PRIMARY KEY,
			list_id TEXT NOT NULL,
			list_title TEXT NOT NULL,
			list_pos INTEGER NOT NULL,
			card_pos INTEGER NOT NULL,
			title TEXT NOT NULL,
			title_fold TEXT NOT NULL,
			description TEXT NOT NULL,
			labels TEXT NOT NULL,
			checklist TEXT NOT NULL,
			comments TEXT NOT NULL
		);`,
		`CREATE INDEX idx_cards_pos ON cards(list_pos, card_pos);`,
	}
	for _, st := range stmts {
		if _, err := db.ExecContext(ctx, st); err != nil {
			_ = db.Close()
			return nil, err
		}
	}
	return &Index{db: db, log: logging.OrNop(log)}, nil
}

func (ix *Index) Close() error {
	return ix.db.Close()
}

// Rebuild replaces every row with the cards of b.
func (ix *Index) Rebuild(ctx context.Context, b model.Board) error {
	ix.mu.Lock()
	defer ix.mu.Unlock()

	tx, err := ix.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, `DELETE FROM cards`); err != nil {
		return err
	}
	ins, err := tx.PrepareContext(ctx, `INSERT INTO cards(card_id, list_id, list_title, list_pos, card_pos, title, title_fold, description, labels, checklist, comments)
		VALUES(?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return err
	}
	defer ins.Close()

	fold := cases.Fold()
	for lp, listID := range b.ListOrder {
		l, ok := b.Lists[listID]
		if !ok {
			continue
		}
		for cp, cardID := range l.CardIDs {
			c, ok := b.Cards[cardID]
			if !ok {
				continue
			}
			if _, err := ins.ExecContext(ctx, c.ID, l.ID, l.Title, lp, cp, c.Title,
				fold.String(c.Title), fold.String(c.Description),
				fold.String(labelText(c)), fold.String(checklistText(c)), fold.String(commentText(c))); err != nil {
				return err
			}
		}
	}
	return tx.Commit()
}

// Query returns cards whose text contains q (case-insensitive), in board order.
// A blank query returns no hits.
func (ix *Index) Query(ctx context.Context, q string, limit int) ([]Hit, error) {
	q = strings.TrimSpace(q)
	if q == "" {
		return []Hit{}, nil
	}
	if limit <= 0 {
		limit = DefaultLimit
	}
	pattern := "%" + escapeLike(cases.Fold().String(q)) + "%"

	ix.mu.Lock()
	defer ix.mu.Unlock()

	rows, err := ix.db.QueryContext(ctx, `
		SELECT card_id, list_id, list_title, title, field FROM (
			SELECT card_id, list_id, list_title, title, list_pos, card_pos,
				CASE
					WHEN title_fold LIKE ?1 ESCAPE '\' THEN 'title'
					WHEN description LIKE ?1 ESCAPE '\' THEN 'description'
					WHEN labels LIKE ?1 ESCAPE '\' THEN 'labels'
					WHEN checklist LIKE ?1 ESCAPE '\' THEN 'checklist'
					WHEN comments LIKE ?1 ESCAPE '\' THEN 'comments'
				END AS field
			FROM cards
		)
		WHERE field IS NOT NULL
		ORDER BY list_pos, card_pos
		LIMIT ?2`, pattern, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	hits := []Hit{}
	for rows.Next() {
		var h Hit
		if err := rows.Scan(&h.CardID, &h.ListID, &h.ListTitle, &h.Title, &h.Field); err != nil {
			return nil, err
		}
		hits = append(hits, h)
	}
	return hits, rows.Err()
}

// Follow rebuilds the index from eng's current board and after every change.
// The returned func stops following.
func (ix *Index) Follow(ctx context.Context, eng *board.Engine) (func(), error) {
	if err := ix.Rebuild(ctx, eng.Board()); err != nil {
		return nil, err
	}
	return eng.Subscribe(func(b model.Board) {
		if err := ix.Rebuild(ctx, b); err != nil {
			ix.log.Warn("search index rebuild failed", zap.Error(err))
		}
	}), nil
}

func escapeLike(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return r.Replace(s)
}

func labelText(c model.Card) string {
	parts := make([]string, 0, len(c.Labels))
	for _, l := range c.Labels {
		parts = append(parts, l.Name)
	}
	return strings.Join(parts, "\n")
}

func checklistText(c model.Card) string {
	parts := make([]string, 0, len(c.Checklist))
	for _, it := range c.Checklist {
		parts = append(parts, it.Text)
	}
	return strings.Join(parts, "\n")
}

func commentText(c model.Card) string {
	cs := c.Comments()
	parts := make([]string, 0, len(cs))
	for _, cm := range cs {
		parts = append(parts, cm.Text)
	}
	return strings.Join(parts, "\n")
}
