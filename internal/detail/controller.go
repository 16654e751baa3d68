package detail

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"kanbanflow/internal/assist"
	"kanbanflow/internal/board"
	"kanbanflow/internal/model"
	"kanbanflow/internal/mutate"
)

var (
	ErrNoCardOpen = errors.New("no card open")
	ErrInFlight   = errors.New("request already in flight")

	// ErrDiscarded is returned when an AI result arrives after its card was closed or switched.
	ErrDiscarded = errors.New("result discarded: card closed or switched")
)

type Drafts struct {
	Title       string
	Description string
	Comment     string
}

// Controller holds the editing state of the one open card. Edits are buffered in
// drafts and reach the engine only on commit; AI calls run as jobs whose results
// come back through Finish*.
type Controller struct {
	mu  sync.Mutex
	eng *board.Engine
	ai  assist.Assistant

	cardID string
	// gen changes on every Open/Close so results from an earlier session are recognizable.
	gen uint64

	drafts           Drafts
	generatingDesc   bool
	generatingChecks bool
}

func New(eng *board.Engine, ai assist.Assistant) *Controller {
	if ai == nil {
		ai = assist.NewClient(nil, nil)
	}
	return &Controller{eng: eng, ai: ai}
}

// Open makes cardID the open card, seeding drafts from its stored values.
func (c *Controller) Open(cardID string) error {
	cardID = strings.TrimSpace(cardID)
	card, ok := c.eng.Board().FindCard(cardID)
	if !ok {
		return mutate.NotFoundError{Kind: "card", ID: cardID}
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.gen++
	c.cardID = cardID
	c.drafts = Drafts{Title: card.Title, Description: card.Description}
	c.generatingDesc = false
	c.generatingChecks = false
	return nil
}

func (c *Controller) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.gen++
	c.cardID = ""
	c.drafts = Drafts{}
	c.generatingDesc = false
	c.generatingChecks = false
}

// CardID returns the open card id.
func (c *Controller) CardID() (string, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.cardID, c.cardID != ""
}

// Card returns the open card as stored in the current board snapshot.
func (c *Controller) Card() (model.Card, bool) {
	id, ok := c.CardID()
	if !ok {
		return model.Card{}, false
	}
	return c.eng.Board().FindCard(id)
}

func (c *Controller) Drafts() Drafts {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.drafts
}

// InFlight reports the per-action generating flags.
func (c *Controller) InFlight() (description, checklist bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.generatingDesc, c.generatingChecks
}

func (c *Controller) SetTitleDraft(s string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.cardID != "" {
		c.drafts.Title = s
	}
}

func (c *Controller) SetDescriptionDraft(s string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.cardID != "" {
		c.drafts.Description = s
	}
}

func (c *Controller) SetCommentDraft(s string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.cardID != "" {
		c.drafts.Comment = s
	}
}

// CommitTitle pushes the title draft when it differs from the stored title.
// A blank draft is reverted to the stored title.
func (c *Controller) CommitTitle() error {
	c.mu.Lock()
	id, draft := c.cardID, c.drafts.Title
	c.mu.Unlock()
	if id == "" {
		return ErrNoCardOpen
	}
	card, ok := c.eng.Board().FindCard(id)
	if !ok {
		return mutate.NotFoundError{Kind: "card", ID: id}
	}
	if strings.TrimSpace(draft) == "" {
		c.mu.Lock()
		if c.cardID == id {
			c.drafts.Title = card.Title
		}
		c.mu.Unlock()
		return nil
	}
	if draft == card.Title {
		return nil
	}
	_, err := c.eng.UpdateCard(id, model.CardPatch{Title: &draft})
	return err
}

// CommitDescription pushes the description draft when it differs from the stored one.
func (c *Controller) CommitDescription() error {
	c.mu.Lock()
	id, draft := c.cardID, c.drafts.Description
	c.mu.Unlock()
	if id == "" {
		return ErrNoCardOpen
	}
	card, ok := c.eng.Board().FindCard(id)
	if !ok {
		return mutate.NotFoundError{Kind: "card", ID: id}
	}
	if draft == card.Description {
		return nil
	}
	_, err := c.eng.UpdateCard(id, model.CardPatch{Description: &draft})
	return err
}

// PostComment appends the trimmed comment draft as a comment activity, clears the
// draft and returns the appended entry. A blank draft posts nothing and reports false.
func (c *Controller) PostComment() (model.Activity, bool, error) {
	c.mu.Lock()
	id, text := c.cardID, strings.TrimSpace(c.drafts.Comment)
	c.mu.Unlock()
	if id == "" {
		return model.Activity{}, false, ErrNoCardOpen
	}
	if text == "" {
		return model.Activity{}, false, nil
	}
	a := c.eng.NewActivity(model.ActivityComment, text)
	if _, err := c.eng.AppendActivity(id, a); err != nil {
		return model.Activity{}, false, err
	}
	c.mu.Lock()
	if c.cardID == id {
		c.drafts.Comment = ""
	}
	c.mu.Unlock()
	return a, true, nil
}

func (c *Controller) ToggleChecklistItem(itemID string) error {
	id, ok := c.CardID()
	if !ok {
		return ErrNoCardOpen
	}
	_, err := c.eng.ToggleChecklistItem(id, itemID)
	return err
}

type DescriptionJob struct {
	CardID  string
	Title   string
	Context string

	gen uint64
	ai  assist.Assistant
}

type DescriptionResult struct {
	CardID string
	Text   string

	gen uint64
}

// Run calls the assistant. It is safe to run off the UI goroutine.
func (j DescriptionJob) Run(ctx context.Context) DescriptionResult {
	return DescriptionResult{CardID: j.CardID, Text: j.ai.GenerateDescription(ctx, j.Title, j.Context), gen: j.gen}
}

// BeginDescription marks description generation in flight for the open card.
func (c *Controller) BeginDescription() (DescriptionJob, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.cardID == "" {
		return DescriptionJob{}, ErrNoCardOpen
	}
	if c.generatingDesc {
		return DescriptionJob{}, ErrInFlight
	}
	c.generatingDesc = true
	return DescriptionJob{CardID: c.cardID, Title: c.drafts.Title, Context: c.drafts.Description, gen: c.gen, ai: c.ai}, nil
}

// FinishDescription replaces the description draft with the generated text and commits it.
func (c *Controller) FinishDescription(res DescriptionResult) error {
	c.mu.Lock()
	if res.gen != c.gen || res.CardID != c.cardID {
		c.mu.Unlock()
		return ErrDiscarded
	}
	c.generatingDesc = false
	c.drafts.Description = res.Text
	c.mu.Unlock()

	text := res.Text
	_, err := c.eng.UpdateCard(res.CardID, model.CardPatch{Description: &text})
	return err
}

type ChecklistJob struct {
	CardID      string
	Title       string
	Description string

	gen uint64
	ai  assist.Assistant
}

type ChecklistResult struct {
	CardID string
	Items  []string

	gen uint64
}

func (j ChecklistJob) Run(ctx context.Context) ChecklistResult {
	return ChecklistResult{CardID: j.CardID, Items: j.ai.SuggestChecklistItems(ctx, j.Title, j.Description), gen: j.gen}
}

func (c *Controller) BeginChecklist() (ChecklistJob, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.cardID == "" {
		return ChecklistJob{}, ErrNoCardOpen
	}
	if c.generatingChecks {
		return ChecklistJob{}, ErrInFlight
	}
	c.generatingChecks = true
	return ChecklistJob{CardID: c.cardID, Title: c.drafts.Title, Description: c.drafts.Description, gen: c.gen, ai: c.ai}, nil
}

// FinishChecklist appends one unchecked item per suggestion together with a summary
// activity entry, as a single board update. It returns the number of items added.
func (c *Controller) FinishChecklist(res ChecklistResult) (int, error) {
	c.mu.Lock()
	if res.gen != c.gen || res.CardID != c.cardID {
		c.mu.Unlock()
		return 0, ErrDiscarded
	}
	c.generatingChecks = false
	c.mu.Unlock()

	texts := make([]string, 0, len(res.Items))
	for _, s := range res.Items {
		if s = strings.TrimSpace(s); s != "" {
			texts = append(texts, s)
		}
	}
	if len(texts) == 0 {
		return 0, nil
	}

	card, ok := c.eng.Board().FindCard(res.CardID)
	if !ok {
		return 0, mutate.NotFoundError{Kind: "card", ID: res.CardID}
	}
	taken := map[string]bool{}
	for _, it := range card.Checklist {
		taken[it.ID] = true
	}
	items := make([]model.ChecklistItem, 0, len(texts))
	for _, text := range texts {
		id := c.eng.NewID("ck")
		for taken[id] {
			id = c.eng.NewID("ck")
		}
		taken[id] = true
		items = append(items, model.ChecklistItem{ID: id, Text: text})
	}
	a := c.eng.NewActivity(model.ActivityAction, fmt.Sprintf("added %d checklist items via AI", len(items)))
	if _, err := c.eng.Dispatch(board.AddChecklistItems{CardID: res.CardID, Items: items, Activity: &a}); err != nil {
		return 0, err
	}
	return len(items), nil
}

// GenerateDescription runs the description flow synchronously and returns the new text.
func (c *Controller) GenerateDescription(ctx context.Context) (string, error) {
	job, err := c.BeginDescription()
	if err != nil {
		return "", err
	}
	res := job.Run(ctx)
	if err := c.FinishDescription(res); err != nil {
		return "", err
	}
	return res.Text, nil
}

// SuggestChecklist runs the checklist flow synchronously and returns the number of items added.
func (c *Controller) SuggestChecklist(ctx context.Context) (int, error) {
	job, err := c.BeginChecklist()
	if err != nil {
		return 0, err
	}
	return c.FinishChecklist(job.Run(ctx))
}
