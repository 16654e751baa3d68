package publish

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"kanbanflow/internal/store"
)

func TestRenderCardMarkdown_IncludesSections(t *testing.T) {
	t.Parallel()

	b := store.DefaultSeed()

	md, err := RenderCardMarkdown(b, "c3", RenderOptions{})
	if err != nil {
		t.Fatalf("RenderCardMarkdown: %v", err)
	}
	for _, want := range []string{
		"# Set Up React Repository",
		"- List: In Progress (l2)",
		"- Members: Bob, Charlie",
		"## Description",
		"## Checklist (1/2, 50%)",
		"- [x] Install Tailwind",
		"- [ ] Configure ESLint",
	} {
		if !strings.Contains(md, want) {
			t.Fatalf("expected %q, got:\n%s", want, md)
		}
	}

	md, err = RenderCardMarkdown(b, "c4", RenderOptions{})
	if err != nil {
		t.Fatalf("RenderCardMarkdown: %v", err)
	}
	if !strings.Contains(md, "## Comments") || !strings.Contains(md, "### Bob (") || !strings.Contains(md, "Meeting rescheduled to Friday") {
		t.Fatalf("expected comments section, got:\n%s", md)
	}
	if !strings.Contains(md, "[Requirements.pdf](#) (file)") {
		t.Fatalf("expected attachment, got:\n%s", md)
	}

	if _, err := RenderCardMarkdown(b, "missing", RenderOptions{}); err == nil {
		t.Fatalf("expected error for missing card")
	}
}

func TestRenderCardMarkdown_ActivityOptIn(t *testing.T) {
	t.Parallel()

	b := store.DefaultSeed()
	md, err := RenderCardMarkdown(b, "c1", RenderOptions{})
	if err != nil {
		t.Fatalf("RenderCardMarkdown: %v", err)
	}
	if strings.Contains(md, "## Activity") {
		t.Fatalf("activity should be opt-in, got:\n%s", md)
	}
	md, err = RenderCardMarkdown(b, "c1", RenderOptions{IncludeActivity: true})
	if err != nil {
		t.Fatalf("RenderCardMarkdown: %v", err)
	}
	if !strings.Contains(md, "Bob moved this card from Backlog") {
		t.Fatalf("expected activity line, got:\n%s", md)
	}
}

func TestRenderBoardMarkdown_ListsInOrder(t *testing.T) {
	t.Parallel()

	md := RenderBoardMarkdown(store.DefaultSeed())
	todo := strings.Index(md, "## To Do (2)")
	done := strings.Index(md, "## Done (1)")
	if todo < 0 || done < 0 || todo > done {
		t.Fatalf("unexpected list sections:\n%s", md)
	}
	if !strings.Contains(md, "- [Set Up React Repository](cards/c3.md) (1/2, #Dev)") {
		t.Fatalf("expected card line with checklist and label, got:\n%s", md)
	}
}

func TestWriteBoard_WritesIndexAndCards(t *testing.T) {
	t.Parallel()

	to := t.TempDir()
	res, err := WriteBoard(store.DefaultSeed(), to, WriteOptions{Overwrite: true})
	if err != nil {
		t.Fatalf("WriteBoard: %v", err)
	}
	if len(res.Written) != 6 {
		t.Fatalf("expected index + 5 cards; got %d (%v)", len(res.Written), res.Written)
	}
	if _, err := os.Stat(filepath.Join(to, "index.md")); err != nil {
		t.Fatalf("stat index.md: %v", err)
	}
	if _, err := os.Stat(filepath.Join(to, "cards", "c5.md")); err != nil {
		t.Fatalf("stat c5.md: %v", err)
	}

	if _, err := WriteBoard(store.DefaultSeed(), to, WriteOptions{}); err == nil {
		t.Fatalf("expected file exists error without overwrite")
	}
}

func TestWriteCard(t *testing.T) {
	t.Parallel()

	to := t.TempDir()
	res, err := WriteCard(store.DefaultSeed(), "c2", to, WriteOptions{})
	if err != nil {
		t.Fatalf("WriteCard: %v", err)
	}
	if len(res.Written) != 1 || filepath.Base(res.Written[0]) != "c2.md" {
		t.Fatalf("unexpected result: %v", res.Written)
	}
	if _, err := WriteCard(store.DefaultSeed(), "c2", " ", WriteOptions{}); err == nil {
		t.Fatalf("expected missing --to error")
	}
}

func TestWriteBoard_HTML(t *testing.T) {
	t.Parallel()

	to := t.TempDir()
	res, err := WriteBoard(store.DefaultSeed(), to, WriteOptions{HTML: true})
	if err != nil {
		t.Fatalf("WriteBoard: %v", err)
	}
	if len(res.Written) != 12 {
		t.Fatalf("expected md + html for index and 5 cards; got %d (%v)", len(res.Written), res.Written)
	}

	index, err := os.ReadFile(filepath.Join(to, "index.html"))
	if err != nil {
		t.Fatalf("read index.html: %v", err)
	}
	for _, want := range []string{
		"<title>Product Launch 🚀</title>",
		"<h2>In Progress (1)</h2>",
		`<a href="cards/c3.html">Set Up React Repository</a>`,
	} {
		if !strings.Contains(string(index), want) {
			t.Fatalf("expected %q in index.html:\n%s", want, index)
		}
	}

	card, err := os.ReadFile(filepath.Join(to, "cards", "c3.html"))
	if err != nil {
		t.Fatalf("read c3.html: %v", err)
	}
	if !strings.Contains(string(card), `<input checked="" disabled="" type="checkbox"> Install Tailwind`) {
		t.Fatalf("expected a rendered task list item:\n%s", card)
	}
}

func TestRenderHTML_EscapesRawHTML(t *testing.T) {
	t.Parallel()

	page, err := RenderHTML("<x>", "# Hi\n\n<script>alert(1)</script>\n\n[ext](https://example.com/a.md)")
	if err != nil {
		t.Fatalf("RenderHTML: %v", err)
	}
	s := string(page)
	if strings.Contains(s, "<script>") {
		t.Fatalf("raw HTML should be omitted:\n%s", s)
	}
	if !strings.Contains(s, "<title>&lt;x&gt;</title>") {
		t.Fatalf("title should be escaped:\n%s", s)
	}
	if !strings.Contains(s, `href="https://example.com/a.md"`) {
		t.Fatalf("absolute links must not be rewritten:\n%s", s)
	}
}
