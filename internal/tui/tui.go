package tui

import (
	"context"
	"errors"

	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"

	"kanbanflow/internal/assist"
	"kanbanflow/internal/board"
	"kanbanflow/internal/detail"
	"kanbanflow/internal/model"
	"kanbanflow/internal/search"
)

// Run opens the interactive board on eng until the user quits or ctx is done.
// ix may be nil, which disables search.
func Run(ctx context.Context, eng *board.Engine, ai assist.Assistant, ix *search.Index, log *zap.Logger) error {
	applyThemePreference()
	applyColorProfilePreference()
	applyGlyphPreference()

	m := newAppModel(ctx, eng, detail.New(eng, ai), ix, log)
	p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(ctx))

	// Subscribers run on the dispatching goroutine, which is usually Update itself, so
	// changes are handed to a forwarder instead of calling p.Send directly.
	changed := make(chan struct{}, 1)
	unsubscribe := eng.Subscribe(func(model.Board) {
		select {
		case changed <- struct{}{}:
		default:
		}
	})
	defer unsubscribe()

	done := make(chan struct{})
	defer close(done)
	go func() {
		for {
			select {
			case <-changed:
				p.Send(boardMsg{b: eng.Board()})
			case <-done:
				return
			}
		}
	}()

	_, err := p.Run()
	if errors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil {
		return nil
	}
	return err
}
