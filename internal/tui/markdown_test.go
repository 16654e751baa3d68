package tui

import (
	"strings"
	"testing"

	xansi "github.com/charmbracelet/x/ansi"
)

func TestMarkdownStyle_FollowsTheme(t *testing.T) {
	t.Setenv("KANBANFLOW_TUI_MD_STYLE", "")

	t.Setenv("KANBANFLOW_TUI_THEME", "light")
	if got := markdownStyle(); got != "light" {
		t.Fatalf("expected light; got %q", got)
	}
	t.Setenv("KANBANFLOW_TUI_THEME", "dark")
	if got := markdownStyle(); got != "dark" {
		t.Fatalf("expected dark; got %q", got)
	}

	t.Setenv("KANBANFLOW_TUI_MD_STYLE", "light")
	if got := markdownStyle(); got != "light" {
		t.Fatalf("MD style should override the theme; got %q", got)
	}
}

func TestRenderMarkdown(t *testing.T) {
	t.Setenv("KANBANFLOW_TUI_THEME", "dark")

	if got := renderMarkdown("   ", 40); got != "" {
		t.Fatalf("blank input: %q", got)
	}
	out := xansi.Strip(renderMarkdown("Signed and **stored** in the shared drive.", 40))
	if !strings.Contains(out, "stored") || strings.Contains(out, "**") {
		t.Fatalf("unexpected render: %q", out)
	}
}
