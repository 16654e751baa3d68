package store

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"kanbanflow/internal/model"
)

// DefaultUsers is the demo user directory. The first entry is the default actor.
func DefaultUsers() []model.User {
	return []model.User{
		{ID: "u1", Name: "Alice", Avatar: "https://ui-avatars.com/api/?name=Alice&background=a855f7&color=fff"},
		{ID: "u2", Name: "Bob", Avatar: "https://ui-avatars.com/api/?name=Bob&background=7c3aed&color=fff"},
		{ID: "u3", Name: "Charlie", Avatar: "https://ui-avatars.com/api/?name=Charlie&background=c084fc&color=fff"},
	}
}

func ts(s string) time.Time {
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		panic(err)
	}
	return t
}

// DefaultSeed returns a fresh copy of the built-in demo board.
func DefaultSeed() model.Board {
	users := DefaultUsers()
	alice, bob, charlie := users[0], users[1], users[2]

	return model.Board{
		ID:        "b1",
		Title:     "Product Launch 🚀",
		ListOrder: []string{"l1", "l2", "l3", "l4"},
		Lists: map[string]model.List{
			"l1": {ID: "l1", Title: "To Do", CardIDs: []string{"c1", "c2"}},
			"l2": {ID: "l2", Title: "In Progress", CardIDs: []string{"c3"}},
			"l3": {ID: "l3", Title: "Review", CardIDs: []string{"c4"}},
			"l4": {ID: "l4", Title: "Done", CardIDs: []string{"c5"}},
		},
		Cards: map[string]model.Card{
			"c1": {
				ID: "c1", ListID: "l1", Title: "Research Competitors",
				Description: "Analyze the top 3 competitors in the market. Focus on pricing and UX.",
				Labels:      []model.Label{{ID: "lb1", Name: "Strategy", Color: "yellow"}},
				Members:     []model.User{alice},
				Checklist:   []model.ChecklistItem{},
				Attachments: []model.Attachment{},
				Activity: []model.Activity{
					{ID: "a1", UserID: "u2", Text: "moved this card from Backlog", CreatedAt: ts("2023-10-01T10:00:00Z"), Type: model.ActivityAction},
				},
				DueDate: "2023-11-25",
			},
			"c2": {
				ID: "c2", ListID: "l1", Title: "Draft UI Mockups",
				Description: "Use Figma to create the initial wireframes.",
				Labels:      []model.Label{{ID: "lb2", Name: "Design", Color: "purple"}},
				Members:     []model.User{bob},
				Checklist:   []model.ChecklistItem{},
				Attachments: []model.Attachment{
					{ID: "att-img-1", Name: "Wireframe_v1.png", Type: model.AttachmentImage, URL: "https://picsum.photos/seed/ui_wireframe/800/600", CreatedAt: ts("2023-10-22T10:00:00Z")},
				},
				Activity: []model.Activity{},
				CoverURL: "https://picsum.photos/seed/ui/300/150",
			},
			"c3": {
				ID: "c3", ListID: "l2", Title: "Set Up React Repository",
				Description: "Bootstrap a Vite project with TypeScript.",
				Labels:      []model.Label{{ID: "lb3", Name: "Dev", Color: "blue"}},
				Members:     []model.User{bob, charlie},
				Checklist: []model.ChecklistItem{
					{ID: "ck1", Text: "Install Tailwind", Checked: true},
					{ID: "ck2", Text: "Configure ESLint", Checked: false},
				},
				Attachments: []model.Attachment{},
				Activity:    []model.Activity{},
			},
			"c4": {
				ID: "c4", ListID: "l3", Title: "Client Meeting",
				Description: "Initial discovery phase.",
				Labels:      []model.Label{},
				Members:     []model.User{alice, bob},
				Checklist:   []model.ChecklistItem{},
				Attachments: []model.Attachment{
					{ID: "at1", Name: "Requirements.pdf", Type: model.AttachmentFile, URL: "#", CreatedAt: ts("2023-10-19T09:00:00Z")},
				},
				Activity: []model.Activity{
					{ID: "a2", UserID: "u2", Text: "Meeting rescheduled to Friday", CreatedAt: ts("2023-10-20T14:30:00Z"), Type: model.ActivityComment},
				},
			},
			"c5": {
				ID: "c5", ListID: "l4", Title: "Sign Contract",
				Description: "Signed and stored in the shared drive.",
				Labels:      []model.Label{{ID: "lb4", Name: "Legal", Color: "red"}},
				Members:     []model.User{},
				Checklist:   []model.ChecklistItem{},
				Attachments: []model.Attachment{},
				Activity:    []model.Activity{},
			},
		},
		Members: users,
	}
}

// ReadSeed decodes a board from JSON, fills in missing collections and validates it.
func ReadSeed(r io.Reader) (model.Board, error) {
	var b model.Board
	dec := json.NewDecoder(r)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&b); err != nil {
		return model.Board{}, fmt.Errorf("decode seed: %w", err)
	}
	normalize(&b)
	if err := b.CheckInvariants(); err != nil {
		return model.Board{}, fmt.Errorf("invalid seed: %w", err)
	}
	return b, nil
}

// LoadSeed returns the board at path, or DefaultSeed when path is empty.
func LoadSeed(path string) (model.Board, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return DefaultSeed(), nil
	}
	f, err := os.Open(path)
	if err != nil {
		return model.Board{}, err
	}
	defer f.Close()
	b, err := ReadSeed(f)
	if err != nil {
		return model.Board{}, fmt.Errorf("%s: %w", path, err)
	}
	return b, nil
}

// WriteSeed writes b as indented JSON that ReadSeed accepts.
func WriteSeed(w io.Writer, b model.Board) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(b)
}

func normalize(b *model.Board) {
	if b.Lists == nil {
		b.Lists = map[string]model.List{}
	}
	if b.Cards == nil {
		b.Cards = map[string]model.Card{}
	}
	if b.ListOrder == nil {
		b.ListOrder = []string{}
	}
	for id, l := range b.Lists {
		if l.CardIDs == nil {
			l.CardIDs = []string{}
			b.Lists[id] = l
		}
	}
	for id, c := range b.Cards {
		if c.Labels == nil {
			c.Labels = []model.Label{}
		}
		if c.Members == nil {
			c.Members = []model.User{}
		}
		if c.Checklist == nil {
			c.Checklist = []model.ChecklistItem{}
		}
		if c.Attachments == nil {
			c.Attachments = []model.Attachment{}
		}
		if c.Activity == nil {
			c.Activity = []model.Activity{}
		}
		b.Cards[id] = c
	}
}
