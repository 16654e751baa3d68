package tui

import (
	"context"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"

	"kanbanflow/internal/board"
	"kanbanflow/internal/detail"
	"kanbanflow/internal/logging"
	"kanbanflow/internal/model"
	"kanbanflow/internal/search"
)

type appModel struct {
	ctx context.Context
	eng *board.Engine
	ctl *detail.Controller
	ix  *search.Index
	log *zap.Logger

	keys  keyMap
	board model.Board

	width  int
	height int

	view view
	mode mode
	sel  selection

	// Keyboard drag: the column and slot the held card (or list) would land in.
	dropCol int
	dropIdx int

	input textinput.Model

	searchQuery string
	hits        []search.Hit
	hitSel      int

	titleInput   textinput.Model
	descArea     textarea.Model
	commentInput textinput.Model
	focus        focus
	checkSel     int
	spin         spinner.Model

	// confirmArchive holds the archive key until it is confirmed.
	confirmArchive bool
	copyText       func(string) error

	flash    string
	flashErr bool
}

func newAppModel(ctx context.Context, eng *board.Engine, ctl *detail.Controller, ix *search.Index, log *zap.Logger) appModel {
	if ctx == nil {
		ctx = context.Background()
	}
	m := appModel{
		ctx:    ctx,
		eng:    eng,
		ctl:    ctl,
		ix:     ix,
		log:    logging.OrNop(log),
		keys:   defaultKeyMap(),
		board:  eng.Board(),
		width:  100,
		height: 30,

		copyText: copyToClipboard,
	}

	m.input = textinput.New()
	m.input.CharLimit = 200
	m.input.Width = 40

	m.titleInput = textinput.New()
	m.titleInput.Placeholder = "Title"
	m.titleInput.CharLimit = 200
	m.titleInput.Width = 60

	m.descArea = textarea.New()
	m.descArea.Placeholder = "Add a more detailed description…"
	m.descArea.CharLimit = 0
	m.descArea.ShowLineNumbers = false
	m.descArea.SetWidth(72)
	m.descArea.SetHeight(8)

	m.commentInput = textinput.New()
	m.commentInput.Placeholder = "Write a comment…"
	m.commentInput.CharLimit = 1000
	m.commentInput.Width = 60

	m.spin = spinner.New()
	m.spin.Spinner = spinner.Dot

	m.sel = columnsFor(m.board).clamp(selection{})
	return m
}

func (m appModel) Init() tea.Cmd {
	return nil
}

func (m *appModel) setFlash(s string, isErr bool) {
	m.flash = s
	m.flashErr = isErr
}

func (m *appModel) fail(err error) {
	if err == nil {
		return
	}
	m.setFlash(err.Error(), true)
}

// refresh re-reads the engine snapshot and keeps the selection on the same card.
func (m *appModel) refresh() {
	m.board = m.eng.Board()
	m.sel = columnsFor(m.board).clamp(m.sel)
}
