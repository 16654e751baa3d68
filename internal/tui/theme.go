package tui

import (
	"os"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
)

// The board must stay readable on light and dark terminals: colors are adaptive and
// faint styling is only applied on dark backgrounds.

func ac(light, dark string) lipgloss.AdaptiveColor {
	return lipgloss.AdaptiveColor{Light: light, Dark: dark}
}

func faintIfDark(st lipgloss.Style) lipgloss.Style {
	if lipgloss.HasDarkBackground() {
		return st.Faint(true)
	}
	return st
}

var (
	colorMuted          = ac("240", "243")
	colorSelectedBg     = ac("#e9e9e9", "#262626")
	colorSelectedFg     = ac("235", "255")
	colorSelectedBorder = ac("232", "255")
	colorSurfaceFg      = ac("235", "252")
	colorControlBg      = ac("252", "235")
	colorAccent         = ac("27", "62")
	colorDropTargetBg   = ac("153", "24")
	colorFlashErrorFg   = ac("160", "203")
	colorProgressDone   = ac("28", "42")
)

// labelColors maps the label color names used by boards to terminal colors.
var labelColors = map[string]lipgloss.AdaptiveColor{
	"red":    ac("160", "203"),
	"orange": ac("166", "215"),
	"yellow": ac("136", "221"),
	"green":  ac("28", "42"),
	"blue":   ac("25", "75"),
	"purple": ac("91", "141"),
	"pink":   ac("162", "212"),
	"gray":   ac("240", "245"),
}

func labelStyle(color string) lipgloss.Style {
	c, ok := labelColors[strings.ToLower(strings.TrimSpace(color))]
	if !ok {
		c = labelColors["gray"]
	}
	return lipgloss.NewStyle().Foreground(c).Bold(true)
}

func styleMuted() lipgloss.Style {
	return faintIfDark(lipgloss.NewStyle().Foreground(colorMuted))
}

func styleHeader() lipgloss.Style {
	return lipgloss.NewStyle().Bold(true).Foreground(colorSurfaceFg).Background(colorControlBg)
}

func styleError() lipgloss.Style {
	return lipgloss.NewStyle().Foreground(colorFlashErrorFg)
}

// applyColorProfilePreference honors NO_COLOR and otherwise follows the terminal.
// termenv.EnvColorProfile also honors CLICOLOR, which would disable colors in the TUI.
func applyColorProfilePreference() {
	if strings.TrimSpace(os.Getenv("NO_COLOR")) != "" {
		lipgloss.SetColorProfile(termenv.Ascii)
		return
	}
	profile := termenv.ColorProfile()
	colorterm := strings.ToLower(os.Getenv("COLORTERM"))
	term := strings.ToLower(os.Getenv("TERM"))
	switch {
	case strings.Contains(colorterm, "truecolor"), strings.Contains(colorterm, "24bit"):
		if profile != termenv.Ascii {
			profile = termenv.TrueColor
		}
	case strings.Contains(term, "256color"):
		if profile == termenv.ANSI || profile == termenv.Ascii {
			profile = termenv.ANSI256
		}
	}
	lipgloss.SetColorProfile(profile)
}

// applyThemePreference configures background detection.
//
// Priority:
// 1) KANBANFLOW_TUI_THEME=light|dark|auto
// 2) COLORFGBG heuristic ("fg;bg", last segment is the background)
func applyThemePreference() {
	switch strings.ToLower(strings.TrimSpace(os.Getenv("KANBANFLOW_TUI_THEME"))) {
	case "light":
		lipgloss.SetHasDarkBackground(false)
		return
	case "dark":
		lipgloss.SetHasDarkBackground(true)
		return
	}
	if v := strings.TrimSpace(os.Getenv("COLORFGBG")); v != "" {
		parts := strings.Split(v, ";")
		if bg, err := strconv.Atoi(strings.TrimSpace(parts[len(parts)-1])); err == nil {
			lipgloss.SetHasDarkBackground(bg < 7)
		}
	}
}
