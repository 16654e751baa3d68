package tui

import "github.com/charmbracelet/lipgloss"

// renderConfirm renders a one-line prompt with an active confirm button and a muted
// cancel hint. Buttons carry no border so they sit inline in the card box.
func renderConfirm(prompt, confirmLabel, cancelLabel string) string {
	btn := lipgloss.NewStyle().
		Padding(0, 1).
		Foreground(colorSelectedFg).
		Background(colorSelectedBg).
		Bold(true)

	return lipgloss.JoinHorizontal(lipgloss.Top,
		lipgloss.NewStyle().Foreground(colorSurfaceFg).Render(prompt),
		" ",
		btn.Render(confirmLabel),
		" ",
		styleMuted().Render(cancelLabel),
	)
}
