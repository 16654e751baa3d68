package assist

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/avast/retry-go"
	"go.uber.org/zap"
	generativelanguage "google.golang.org/api/generativelanguage/v1beta"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"

	"kanbanflow/internal/logging"
)

type GeminiOptions struct {
	APIKey   string
	Model    string
	Timeout  time.Duration
	Attempts uint
	// RetryDelay is the base delay between attempts (exponential backoff).
	RetryDelay time.Duration
	// Endpoint overrides the API base URL (tests).
	Endpoint string
	Logger   *zap.Logger
}

// Gemini generates text with the Generative Language API.
type Gemini struct {
	svc      *generativelanguage.Service
	model    string
	timeout  time.Duration
	attempts uint
	delay    time.Duration
	log      *zap.Logger
}

func NewGemini(ctx context.Context, opts GeminiOptions) (*Gemini, error) {
	key := strings.TrimSpace(opts.APIKey)
	if key == "" {
		return nil, ErrNotConfigured
	}
	clientOpts := []option.ClientOption{option.WithAPIKey(key)}
	if opts.Endpoint != "" {
		clientOpts = append(clientOpts, option.WithEndpoint(opts.Endpoint))
	}
	svc, err := generativelanguage.NewService(ctx, clientOpts...)
	if err != nil {
		return nil, fmt.Errorf("unable to create Generative Language client: %w", err)
	}

	g := &Gemini{
		svc:      svc,
		model:    strings.TrimSpace(opts.Model),
		timeout:  opts.Timeout,
		attempts: opts.Attempts,
		delay:    opts.RetryDelay,
		log:      logging.OrNop(opts.Logger),
	}
	if g.model == "" {
		g.model = "gemini-2.5-flash"
	}
	if g.timeout <= 0 {
		g.timeout = 30 * time.Second
	}
	if g.attempts == 0 {
		g.attempts = 3
	}
	if g.delay <= 0 {
		g.delay = 500 * time.Millisecond
	}
	return g, nil
}

// NewGenerator returns a Gemini generator when apiKey is set and Disabled otherwise.
func NewGenerator(ctx context.Context, opts GeminiOptions) (Generator, error) {
	if strings.TrimSpace(opts.APIKey) == "" {
		return Disabled{}, nil
	}
	return NewGemini(ctx, opts)
}

func (g *Gemini) modelName() string {
	if strings.HasPrefix(g.model, "models/") {
		return g.model
	}
	return "models/" + g.model
}

func (g *Gemini) Generate(ctx context.Context, req Request) (string, error) {
	body := &generativelanguage.GenerateContentRequest{
		Contents: []*generativelanguage.Content{{
			Role:  "user",
			Parts: []*generativelanguage.Part{{Text: req.Prompt}},
		}},
	}
	if req.System != "" {
		body.SystemInstruction = &generativelanguage.Content{
			Parts: []*generativelanguage.Part{{Text: req.System}},
		}
	}

	var out string
	err := retry.Do(
		func() error {
			callCtx, cancel := context.WithTimeout(ctx, g.timeout)
			defer cancel()
			resp, err := g.svc.Models.GenerateContent(g.modelName(), body).Context(callCtx).Do()
			if err != nil {
				return err
			}
			out = responseText(resp)
			return nil
		},
		retry.Context(ctx),
		retry.Attempts(g.attempts),
		retry.Delay(g.delay),
		retry.DelayType(retry.BackOffDelay),
		retry.LastErrorOnly(true),
		retry.RetryIf(isTransient),
		retry.OnRetry(func(n uint, err error) {
			g.log.Debug("retrying generate", zap.Uint("attempt", n+1), zap.Error(err))
		}),
	)
	if err != nil {
		return "", err
	}
	return out, nil
}

func responseText(resp *generativelanguage.GenerateContentResponse) string {
	if resp == nil || len(resp.Candidates) == 0 {
		return ""
	}
	c := resp.Candidates[0]
	if c == nil || c.Content == nil {
		return ""
	}
	var b strings.Builder
	for _, p := range c.Content.Parts {
		if p != nil {
			b.WriteString(p.Text)
		}
	}
	return strings.TrimSpace(b.String())
}

// isTransient reports rate limiting and server-side failures.
func isTransient(err error) bool {
	var gerr *googleapi.Error
	if errors.As(err, &gerr) {
		return gerr.Code == http.StatusTooManyRequests || gerr.Code >= http.StatusInternalServerError
	}
	return false
}
