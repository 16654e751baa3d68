package tui

import (
	"fmt"
	"os"
	"os/exec"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"
)

type editorDoneMsg struct {
	cardID string
	path   string
	err    error
}

// editorCommand resolves $VISUAL, then $EDITOR, then vi.
func editorCommand() []string {
	for _, env := range []string{"VISUAL", "EDITOR"} {
		if args := splitShellWords(strings.TrimSpace(os.Getenv(env))); len(args) > 0 {
			return args
		}
	}
	return []string{"vi"}
}

// editDescriptionExternally hands the description draft to the user's editor. The
// TUI is suspended until the editor exits.
func (m *appModel) editDescriptionExternally(cardID string) (tea.Cmd, error) {
	f, err := os.CreateTemp("", "kanbanflow-"+cardID+"-*.md")
	if err != nil {
		return nil, err
	}
	path := f.Name()
	if _, err := f.WriteString(m.ctl.Drafts().Description); err != nil {
		_ = f.Close()
		_ = os.Remove(path)
		return nil, err
	}
	if err := f.Close(); err != nil {
		_ = os.Remove(path)
		return nil, err
	}

	args := editorCommand()
	cmd := exec.Command(args[0], append(args[1:], path)...)
	return tea.ExecProcess(cmd, func(err error) tea.Msg {
		return editorDoneMsg{cardID: cardID, path: path, err: err}
	}), nil
}

// finishExternalEdit saves the edited file as the description of the card it was
// opened for, if that card is still open.
func (m *appModel) finishExternalEdit(msg editorDoneMsg) {
	defer func() { _ = os.Remove(msg.path) }()

	if msg.err != nil {
		m.fail(fmt.Errorf("editor: %w", msg.err))
		return
	}
	b, err := os.ReadFile(msg.path)
	if err != nil {
		m.fail(err)
		return
	}
	card, ok := m.ctl.Card()
	if !ok || card.ID != msg.cardID {
		m.log.Debug("discarded editor result", zap.String("card", msg.cardID))
		return
	}

	// Editors usually add a final newline.
	after := strings.TrimRight(string(b), "\n")
	if after == strings.TrimRight(card.Description, "\n") {
		m.setFlash("no changes from "+editorCommand()[0], false)
		return
	}
	m.ctl.SetDescriptionDraft(after)
	if err := m.ctl.CommitDescription(); err != nil {
		m.fail(err)
		return
	}
	m.descArea.SetValue(after)
	m.setFlash("description updated from "+editorCommand()[0], false)
	m.refresh()
}
