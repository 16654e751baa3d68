package assist

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"kanbanflow/internal/logging"
)

const (
	DefaultContext = "General software development task"

	EmptyDescription = "Could not generate a description."
	ErrorDescription = "Error generating content. Please check your API configuration."
	ChatFallback     = "Sorry, I can't help right now."

	chatSystem = "You are a helpful project management assistant inside a Kanban board app. Keep answers concise."
)

// ErrNotConfigured is returned by Disabled.
var ErrNotConfigured = errors.New("AI assist is not configured (set ai.apiKey or GEMINI_API_KEY)")

// Assistant is what the card detail flows depend on. Implementations never fail:
// problems degrade to a fallback text or an empty list.
type Assistant interface {
	GenerateDescription(ctx context.Context, title, context string) string
	SuggestChecklistItems(ctx context.Context, title, description string) []string
}

type Request struct {
	System string
	Prompt string
}

// Generator turns a prompt into text. It may fail.
type Generator interface {
	Generate(ctx context.Context, req Request) (string, error)
}

// Disabled is the generator used when no API key is configured.
type Disabled struct{}

func (Disabled) Generate(context.Context, Request) (string, error) {
	return "", ErrNotConfigured
}

// Client adapts a Generator to Assistant, building the prompts and substituting
// fallbacks for failures.
type Client struct {
	gen Generator
	log *zap.Logger
}

func NewClient(gen Generator, log *zap.Logger) *Client {
	if gen == nil {
		gen = Disabled{}
	}
	return &Client{gen: gen, log: logging.OrNop(log)}
}

func DescriptionPrompt(title, context string) string {
	context = strings.TrimSpace(context)
	if context == "" {
		context = DefaultContext
	}
	return fmt.Sprintf("Write a professional, concise project-management description for a task titled %q.\n"+
		"Context: %s.\n"+
		"Include acceptance criteria and a short summary. Format it with Markdown.", title, context)
}

func ChecklistPrompt(title, description string) string {
	return fmt.Sprintf("For a task titled %q with the description %q, "+
		"produce 3-5 actionable checklist items to complete this task.\n"+
		"Return ONLY the items, one per line, without numbering or bullets.", title, description)
}

func (c *Client) GenerateDescription(ctx context.Context, title, context string) string {
	text, err := c.generate(ctx, Request{Prompt: DescriptionPrompt(title, context)})
	if err != nil {
		c.log.Warn("generate description failed", zap.String("title", title), zap.Error(err))
		return ErrorDescription
	}
	if strings.TrimSpace(text) == "" {
		return EmptyDescription
	}
	return text
}

// SuggestChecklistItems returns the parsed suggestion lines, or an empty list on failure.
func (c *Client) SuggestChecklistItems(ctx context.Context, title, description string) []string {
	text, err := c.generate(ctx, Request{Prompt: ChecklistPrompt(title, description)})
	if err != nil {
		c.log.Warn("suggest checklist failed", zap.String("title", title), zap.Error(err))
		return []string{}
	}
	return ParseChecklist(text)
}

// Chat sends a single stateless message to the project assistant.
func (c *Client) Chat(ctx context.Context, message string) string {
	message = strings.TrimSpace(message)
	if message == "" {
		return ""
	}
	text, err := c.generate(ctx, Request{System: chatSystem, Prompt: message})
	if err != nil {
		c.log.Warn("chat failed", zap.Error(err))
		return ChatFallback
	}
	return strings.TrimSpace(text)
}

func (c *Client) generate(ctx context.Context, req Request) (text string, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("generator panic: %v", r)
		}
	}()
	return c.gen.Generate(ctx, req)
}
