package tui

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"

	"kanbanflow/internal/detail"
	"kanbanflow/internal/model"
	"kanbanflow/internal/publish"
	"kanbanflow/internal/search"
)

func (m appModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		w := msg.Width - 8
		if w > 96 {
			w = 96
		}
		if w < 20 {
			w = 20
		}
		m.descArea.SetWidth(w)
		m.titleInput.Width = w
		m.commentInput.Width = w
		return m, nil

	case boardMsg:
		m.board = msg.b
		m.sel = columnsFor(m.board).clamp(m.sel)
		if m.view == viewCard {
			if _, ok := m.ctl.Card(); !ok {
				m.closeCard()
			}
		}
		return m, nil

	case spinner.TickMsg:
		if desc, checks := m.ctl.InFlight(); !desc && !checks {
			return m, nil
		}
		var cmd tea.Cmd
		m.spin, cmd = m.spin.Update(msg)
		return m, cmd

	case descriptionDoneMsg:
		m.finishDescription(msg.res)
		return m, nil

	case checklistDoneMsg:
		m.finishChecklist(msg.res)
		return m, nil

	case editorDoneMsg:
		m.finishExternalEdit(msg)
		return m, nil

	case clipboardDoneMsg:
		if msg.err != nil {
			m.fail(msg.err)
		} else {
			m.setFlash("copied "+msg.what, false)
		}
		return m, nil

	case searchDoneMsg:
		if msg.query != m.searchQuery {
			return m, nil
		}
		if msg.err != nil {
			m.fail(msg.err)
			return m, nil
		}
		m.hits = msg.hits
		m.hitSel = clampInt(m.hitSel, 0, max(len(m.hits)-1, 0))
		return m, nil

	case tea.KeyMsg:
		if m.view == viewCard {
			return m.updateCardView(msg)
		}
		return m.updateBoardView(msg)
	}
	return m, nil
}

func (m appModel) updateBoardView(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	m.flash = ""
	switch m.mode {
	case modeAddCard, modeAddList:
		return m.updateAddInput(msg)
	case modeSearch:
		return m.updateSearch(msg)
	case modeDragCard, modeDragList:
		return m.updateDrag(msg), nil
	}

	bc := columnsFor(m.board)
	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.Left):
		m.sel = bc.clamp(selection{Col: m.sel.Col - 1, Item: m.sel.Item})
	case key.Matches(msg, m.keys.Right):
		m.sel = bc.clamp(selection{Col: m.sel.Col + 1, Item: m.sel.Item})
	case key.Matches(msg, m.keys.Up):
		m.sel = bc.clamp(selection{Col: m.sel.Col, Item: m.sel.Item - 1})
	case key.Matches(msg, m.keys.Down):
		m.sel = bc.clamp(selection{Col: m.sel.Col, Item: m.sel.Item + 1})
	case key.Matches(msg, m.keys.Open):
		if c, ok := bc.selectedCard(m.sel); ok {
			m.openCard(c.ID)
		}
	case key.Matches(msg, m.keys.PickCard):
		c, ok := bc.selectedCard(m.sel)
		if !ok {
			return m, nil
		}
		item, err := m.eng.StartCardDrag(c.ID)
		if err != nil {
			m.fail(err)
			return m, nil
		}
		m.mode = modeDragCard
		m.dropCol, m.dropIdx = m.sel.Col, item.Index
		m.eng.DragOver(item.ListID)
	case key.Matches(msg, m.keys.PickList):
		if len(bc.cols) == 0 {
			return m, nil
		}
		item, err := m.eng.StartListDrag(bc.cols[m.sel.Col].list.ID)
		if err != nil {
			m.fail(err)
			return m, nil
		}
		m.mode = modeDragList
		m.dropCol = item.Index
	case key.Matches(msg, m.keys.AddCard):
		if len(bc.cols) == 0 {
			return m, nil
		}
		m.mode = modeAddCard
		m.input.Placeholder = "Card title (empty for \"New task\")"
		m.input.SetValue("")
		return m, m.input.Focus()
	case key.Matches(msg, m.keys.AddList):
		m.mode = modeAddList
		m.input.Placeholder = "List title"
		m.input.SetValue("")
		return m, m.input.Focus()
	case key.Matches(msg, m.keys.Search):
		if m.ix == nil {
			m.setFlash("search is not available", true)
			return m, nil
		}
		m.mode = modeSearch
		m.input.Placeholder = "Search cards"
		m.input.SetValue("")
		m.searchQuery = ""
		m.hits = nil
		m.hitSel = 0
		return m, m.input.Focus()
	}
	return m, nil
}

// updateDrag moves the drop target of a keyboard drag. Cards move across columns and
// between slots; lists move across columns only.
func (m appModel) updateDrag(msg tea.KeyMsg) appModel {
	bc := columnsFor(m.board)
	item, dragging := m.eng.Dragging()
	if !dragging {
		m.mode = modeNormal
		return m
	}
	last := len(bc.cols) - 1
	switch {
	case key.Matches(msg, m.keys.Cancel), msg.Type == tea.KeyCtrlC:
		m.eng.CancelDrag()
		m.mode = modeNormal
	case key.Matches(msg, m.keys.Left), key.Matches(msg, m.keys.Right):
		if key.Matches(msg, m.keys.Left) {
			m.dropCol = clampInt(m.dropCol-1, 0, last)
		} else {
			m.dropCol = clampInt(m.dropCol+1, 0, last)
		}
		if item.Type == model.DragCard {
			m.dropIdx = clampInt(m.dropIdx, 0, bc.slots(m.dropCol, item.ID))
			m.eng.DragOver(bc.cols[m.dropCol].list.ID)
		}
	case key.Matches(msg, m.keys.Up):
		if item.Type == model.DragCard {
			m.dropIdx = clampInt(m.dropIdx-1, 0, bc.slots(m.dropCol, item.ID))
		}
	case key.Matches(msg, m.keys.Down):
		if item.Type == model.DragCard {
			m.dropIdx = clampInt(m.dropIdx+1, 0, bc.slots(m.dropCol, item.ID))
		}
	case key.Matches(msg, m.keys.Drop):
		m.mode = modeNormal
		toList := bc.cols[m.dropCol].list.ID
		if _, err := m.eng.Drop(toList, m.dropIdx); err != nil {
			m.fail(err)
			return m
		}
		if item.Type == model.DragList {
			m.sel = selection{Col: m.dropCol, Item: m.sel.Item, CardID: m.sel.CardID}
		} else {
			m.sel.CardID = item.ID
		}
		m.refresh()
	}
	return m
}

func (m appModel) updateAddInput(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEsc:
		m.mode = modeNormal
		m.input.Blur()
		return m, nil
	case tea.KeyEnter:
		title := m.input.Value()
		mode := m.mode
		m.mode = modeNormal
		m.input.Blur()
		if mode == modeAddList {
			id, _, err := m.eng.AddList(title)
			if err != nil {
				m.fail(err)
				return m, nil
			}
			m.refresh()
			for i, lid := range m.board.ListOrder {
				if lid == id {
					m.sel = columnsFor(m.board).clamp(selection{Col: i})
				}
			}
			return m, nil
		}
		bc := columnsFor(m.board)
		id, _, err := m.eng.AddCard(bc.cols[m.sel.Col].list.ID, title)
		if err != nil {
			m.fail(err)
			return m, nil
		}
		m.sel.CardID = id
		m.refresh()
		return m, nil
	}
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m appModel) updateSearch(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEsc:
		m.mode = modeNormal
		m.input.Blur()
		return m, nil
	case tea.KeyUp:
		m.hitSel = clampInt(m.hitSel-1, 0, max(len(m.hits)-1, 0))
		return m, nil
	case tea.KeyDown:
		m.hitSel = clampInt(m.hitSel+1, 0, max(len(m.hits)-1, 0))
		return m, nil
	case tea.KeyEnter:
		if m.hitSel >= len(m.hits) {
			return m, nil
		}
		hit := m.hits[m.hitSel]
		m.mode = modeNormal
		m.input.Blur()
		m.sel.CardID = hit.CardID
		m.refresh()
		m.openCard(hit.CardID)
		return m, nil
	}
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	q := strings.TrimSpace(m.input.Value())
	if q == m.searchQuery {
		return m, cmd
	}
	m.searchQuery = q
	m.hitSel = 0
	if q == "" {
		m.hits = nil
		return m, cmd
	}
	return m, tea.Batch(cmd, runSearch(m.ctx, m.ix, q))
}

func runSearch(ctx context.Context, ix *search.Index, q string) tea.Cmd {
	return func() tea.Msg {
		hits, err := ix.Query(ctx, q, search.DefaultLimit)
		return searchDoneMsg{query: q, hits: hits, err: err}
	}
}

func (m *appModel) openCard(cardID string) {
	if err := m.ctl.Open(cardID); err != nil {
		m.fail(err)
		return
	}
	d := m.ctl.Drafts()
	m.view = viewCard
	m.focus = focusNone
	m.checkSel = 0
	m.titleInput.SetValue(d.Title)
	m.descArea.SetValue(d.Description)
	m.commentInput.SetValue("")
}

func (m *appModel) closeCard() {
	m.ctl.Close()
	m.view = viewBoard
	m.focus = focusNone
	m.confirmArchive = false
	m.titleInput.Blur()
	m.descArea.Blur()
	m.commentInput.Blur()
	m.refresh()
}

func (m appModel) updateCardView(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.confirmArchive {
		m.confirmArchive = false
		if key.Matches(msg, m.keys.Confirm) {
			m.archiveOpenCard()
		}
		return m, nil
	}

	switch m.focus {
	case focusTitle:
		switch msg.Type {
		case tea.KeyEnter, tea.KeyEsc, tea.KeyTab:
			m.commitTitle()
			return m, nil
		}
		var cmd tea.Cmd
		m.titleInput, cmd = m.titleInput.Update(msg)
		m.ctl.SetTitleDraft(m.titleInput.Value())
		return m, cmd

	case focusDescription:
		if msg.Type == tea.KeyEsc || key.Matches(msg, m.keys.Save) {
			m.commitDescription()
			return m, nil
		}
		var cmd tea.Cmd
		m.descArea, cmd = m.descArea.Update(msg)
		m.ctl.SetDescriptionDraft(m.descArea.Value())
		return m, cmd

	case focusComment:
		switch msg.Type {
		case tea.KeyEsc:
			m.focus = focusNone
			m.commentInput.Blur()
			return m, nil
		case tea.KeyEnter:
			m.ctl.SetCommentDraft(m.commentInput.Value())
			_, posted, err := m.ctl.PostComment()
			if err != nil {
				m.fail(err)
				return m, nil
			}
			if posted {
				m.commentInput.SetValue("")
				m.setFlash("comment posted", false)
			}
			m.refresh()
			return m, nil
		}
		var cmd tea.Cmd
		m.commentInput, cmd = m.commentInput.Update(msg)
		m.ctl.SetCommentDraft(m.commentInput.Value())
		return m, cmd
	}

	m.flash = ""
	card, ok := m.ctl.Card()
	if !ok {
		m.closeCard()
		return m, nil
	}
	switch {
	case key.Matches(msg, m.keys.Cancel), key.Matches(msg, m.keys.Quit):
		m.closeCard()
	case key.Matches(msg, m.keys.EditTitle):
		m.focus = focusTitle
		m.titleInput.CursorEnd()
		return m, m.titleInput.Focus()
	case key.Matches(msg, m.keys.EditDesc):
		m.focus = focusDescription
		return m, m.descArea.Focus()
	case key.Matches(msg, m.keys.Comment):
		m.focus = focusComment
		return m, m.commentInput.Focus()
	case key.Matches(msg, m.keys.Up):
		m.checkSel = clampInt(m.checkSel-1, 0, max(len(card.Checklist)-1, 0))
	case key.Matches(msg, m.keys.Down):
		m.checkSel = clampInt(m.checkSel+1, 0, max(len(card.Checklist)-1, 0))
	case key.Matches(msg, m.keys.Toggle):
		if m.checkSel < len(card.Checklist) {
			m.fail(m.ctl.ToggleChecklistItem(card.Checklist[m.checkSel].ID))
			m.refresh()
		}
	case key.Matches(msg, m.keys.Archive):
		m.confirmArchive = true
	case key.Matches(msg, m.keys.ExtEditor):
		cmd, err := m.editDescriptionExternally(card.ID)
		if err != nil {
			m.fail(err)
			return m, nil
		}
		return m, cmd
	case key.Matches(msg, m.keys.Copy):
		md, err := publish.RenderCardMarkdown(m.board, card.ID, publish.RenderOptions{})
		if err != nil {
			m.fail(err)
			return m, nil
		}
		copyText, what := m.copyText, fmt.Sprintf("%q as markdown", card.Title)
		return m, func() tea.Msg { return clipboardDoneMsg{what: what, err: copyText(md)} }
	case key.Matches(msg, m.keys.GenDesc):
		job, err := m.ctl.BeginDescription()
		if err != nil {
			m.fail(err)
			return m, nil
		}
		ctx := m.ctx
		return m, tea.Batch(func() tea.Msg { return descriptionDoneMsg{res: job.Run(ctx)} }, m.spin.Tick)
	case key.Matches(msg, m.keys.SuggestChk):
		job, err := m.ctl.BeginChecklist()
		if err != nil {
			m.fail(err)
			return m, nil
		}
		ctx := m.ctx
		return m, tea.Batch(func() tea.Msg { return checklistDoneMsg{res: job.Run(ctx)} }, m.spin.Tick)
	}
	return m, nil
}

func (m *appModel) archiveOpenCard() {
	card, ok := m.ctl.Card()
	if !ok {
		m.closeCard()
		return
	}
	if _, err := m.eng.ArchiveCard(card.ID); err != nil {
		m.fail(err)
		return
	}
	m.closeCard()
	m.setFlash(fmt.Sprintf("archived %q", card.Title), false)
}

// commitTitle is the title editor's blur: the draft is saved, or reverted when blank.
func (m *appModel) commitTitle() {
	m.focus = focusNone
	m.titleInput.Blur()
	m.ctl.SetTitleDraft(m.titleInput.Value())
	m.fail(m.ctl.CommitTitle())
	m.titleInput.SetValue(m.ctl.Drafts().Title)
	m.refresh()
}

func (m *appModel) commitDescription() {
	m.focus = focusNone
	m.descArea.Blur()
	m.ctl.SetDescriptionDraft(m.descArea.Value())
	m.fail(m.ctl.CommitDescription())
	m.refresh()
}

func (m *appModel) finishDescription(res detail.DescriptionResult) {
	err := m.ctl.FinishDescription(res)
	switch {
	case errors.Is(err, detail.ErrDiscarded):
		m.logDiscarded("description", res.CardID)
		return
	case err != nil:
		m.fail(err)
		return
	}
	if m.focus != focusDescription {
		m.descArea.SetValue(m.ctl.Drafts().Description)
	}
	m.setFlash("description generated", false)
	m.refresh()
}

func (m *appModel) finishChecklist(res detail.ChecklistResult) {
	n, err := m.ctl.FinishChecklist(res)
	switch {
	case errors.Is(err, detail.ErrDiscarded):
		m.logDiscarded("checklist", res.CardID)
		return
	case err != nil:
		m.fail(err)
		return
	}
	if n == 0 {
		m.setFlash("no checklist suggestions", false)
	} else {
		m.setFlash(fmt.Sprintf("added %d checklist items", n), false)
	}
	m.refresh()
}

func (m *appModel) logDiscarded(kind, cardID string) {
	m.log.Debug("discarded late AI result", zap.String("kind", kind), zap.String("card", cardID))
}
