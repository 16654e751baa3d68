package tui

import (
	"strings"
	"testing"

	"kanbanflow/internal/model"
)

func TestGlyphs_FromEnv(t *testing.T) {
	t.Cleanup(func() { setGlyphs(unicodeGlyphs) })

	cases := []struct {
		env  string
		want string
	}{
		{"", "unicode"},
		{"ascii", "ascii"},
		{" ASCII ", "ascii"},
		{"utf8", "unicode"},
	}
	for _, tc := range cases {
		setGlyphs(unicodeGlyphs)
		t.Setenv("KANBANFLOW_TUI_GLYPHS", tc.env)
		applyGlyphPreference()
		if got := glyphs().name; got != tc.want {
			t.Fatalf("env %q: expected %s glyphs; got %s", tc.env, tc.want, got)
		}
	}

	// Unknown values keep the current set.
	setGlyphs(asciiGlyphs)
	t.Setenv("KANBANFLOW_TUI_GLYPHS", "wingdings")
	applyGlyphPreference()
	if got := glyphs().name; got != "ascii" {
		t.Fatalf("expected unknown value to keep ascii; got %s", got)
	}
}

func TestGlyphs_ASCIICardMeta(t *testing.T) {
	t.Cleanup(func() { setGlyphs(unicodeGlyphs) })
	setGlyphs(asciiGlyphs)

	c := model.Card{
		Checklist: []model.ChecklistItem{{ID: "i1", Text: "a", Checked: true}, {ID: "i2", Text: "b"}},
	}
	got := cardMeta(c)
	if !strings.Contains(got, "[x] 1/2") {
		t.Fatalf("expected ascii checklist meta; got %q", got)
	}
	if strings.Contains(got, "☑") {
		t.Fatalf("unexpected unicode glyph in %q", got)
	}
}
