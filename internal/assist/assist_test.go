package assist

import (
	"context"
	"errors"
	"reflect"
	"strings"
	"testing"
)

type fakeGen struct {
	text  string
	err   error
	panic bool
	last  Request
}

func (f *fakeGen) Generate(_ context.Context, req Request) (string, error) {
	f.last = req
	if f.panic {
		panic("boom")
	}
	return f.text, f.err
}

func TestGenerateDescription_Fallbacks(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		gen  *fakeGen
		want string
	}{
		{name: "text", gen: &fakeGen{text: "## Summary"}, want: "## Summary"},
		{name: "empty", gen: &fakeGen{text: "  \n"}, want: EmptyDescription},
		{name: "error", gen: &fakeGen{err: errors.New("quota")}, want: ErrorDescription},
		{name: "panic", gen: &fakeGen{panic: true}, want: ErrorDescription},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got := NewClient(tt.gen, nil).GenerateDescription(context.Background(), "Ship it", "")
			if got != tt.want {
				t.Fatalf("got %q want %q", got, tt.want)
			}
		})
	}
}

func TestGenerateDescription_PromptUsesDefaultContext(t *testing.T) {
	t.Parallel()

	gen := &fakeGen{text: "ok"}
	NewClient(gen, nil).GenerateDescription(context.Background(), "Ship it", "  ")
	if !strings.Contains(gen.last.Prompt, DefaultContext) || !strings.Contains(gen.last.Prompt, `"Ship it"`) {
		t.Fatalf("unexpected prompt: %q", gen.last.Prompt)
	}
}

func TestSuggestChecklistItems(t *testing.T) {
	t.Parallel()

	got := NewClient(&fakeGen{text: "1. Draft\n2. Review\n"}, nil).SuggestChecklistItems(context.Background(), "T", "D")
	if !reflect.DeepEqual(got, []string{"Draft", "Review"}) {
		t.Fatalf("got %#v", got)
	}

	failed := NewClient(&fakeGen{err: errors.New("down")}, nil).SuggestChecklistItems(context.Background(), "T", "D")
	if failed == nil || len(failed) != 0 {
		t.Fatalf("expected empty non-nil list, got %#v", failed)
	}
}

func TestDisabledClientDegrades(t *testing.T) {
	t.Parallel()

	c := NewClient(nil, nil)
	if got := c.GenerateDescription(context.Background(), "T", ""); got != ErrorDescription {
		t.Fatalf("got %q", got)
	}
	if got := c.SuggestChecklistItems(context.Background(), "T", ""); len(got) != 0 {
		t.Fatalf("got %#v", got)
	}
	if got := c.Chat(context.Background(), "hi"); got != ChatFallback {
		t.Fatalf("got %q", got)
	}
}

func TestChat_UsesSystemInstruction(t *testing.T) {
	t.Parallel()

	gen := &fakeGen{text: " Sure. "}
	c := NewClient(gen, nil)
	if got := c.Chat(context.Background(), "plan my sprint"); got != "Sure." {
		t.Fatalf("got %q", got)
	}
	if gen.last.System == "" || gen.last.Prompt != "plan my sprint" {
		t.Fatalf("unexpected request: %#v", gen.last)
	}
	if got := c.Chat(context.Background(), "   "); got != "" {
		t.Fatalf("blank message should not be sent, got %q", got)
	}
}

func TestParseChecklist(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in   string
		want []string
	}{
		{in: "1. A\n- B\n\n* [ ] C", want: []string{"A", "B", "C"}},
		{in: "Plain\r\nLines\r\n", want: []string{"Plain", "Lines"}},
		{in: "2) Two\n• Dot\n- [x] Done", want: []string{"Two", "Dot", "Done"}},
		{in: "   \n\n", want: []string{}},
	}
	for _, tt := range tests {
		if got := ParseChecklist(tt.in); !reflect.DeepEqual(got, tt.want) {
			t.Fatalf("ParseChecklist(%q) = %#v, want %#v", tt.in, got, tt.want)
		}
	}
}
