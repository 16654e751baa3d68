package tui

import (
	"os"
	"strings"
	"sync"
)

// Some terminal fonts render symbols poorly, so every affordance glyph has an ASCII
// twin. KANBANFLOW_TUI_GLYPHS=ascii selects them.
type glyphSet struct {
	name        string
	pointer     string
	drop        string
	checklist   string
	comments    string
	attachments string
	barDone     string
	barTodo     string
}

var (
	unicodeGlyphs = glyphSet{
		name:        "unicode",
		pointer:     "›",
		drop:        "▸",
		checklist:   "☑",
		comments:    "✎",
		attachments: "⌁",
		barDone:     "█",
		barTodo:     "░",
	}
	asciiGlyphs = glyphSet{
		name:        "ascii",
		pointer:     ">",
		drop:        ">",
		checklist:   "[x]",
		comments:    "c",
		attachments: "@",
		barDone:     "#",
		barTodo:     "-",
	}
)

var (
	glyphsMu      sync.RWMutex
	currentGlyphs = unicodeGlyphs
)

func applyGlyphPreference() {
	switch strings.ToLower(strings.TrimSpace(os.Getenv("KANBANFLOW_TUI_GLYPHS"))) {
	case "", "unicode", "utf8":
		setGlyphs(unicodeGlyphs)
	case "ascii":
		setGlyphs(asciiGlyphs)
	}
}

func setGlyphs(gs glyphSet) {
	glyphsMu.Lock()
	currentGlyphs = gs
	glyphsMu.Unlock()
}

func glyphs() glyphSet {
	glyphsMu.RLock()
	defer glyphsMu.RUnlock()
	return currentGlyphs
}
