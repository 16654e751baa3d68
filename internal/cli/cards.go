package cli

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"kanbanflow/internal/board"
	"kanbanflow/internal/detail"
	"kanbanflow/internal/model"
	"kanbanflow/internal/mutate"
	"kanbanflow/internal/search"
)

func newCardsCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "cards",
		Aliases: []string{"card"},
		Short:   "Show and change cards",
	}

	cmd.AddCommand(newCardsShowCmd(app))
	cmd.AddCommand(newCardsAddCmd(app))
	cmd.AddCommand(newCardsMoveCmd(app))
	cmd.AddCommand(newCardsUpdateCmd(app))
	cmd.AddCommand(newCardsCommentCmd(app))
	cmd.AddCommand(newCardsToggleCmd(app))
	cmd.AddCommand(newCardsArchiveCmd(app))
	cmd.AddCommand(newCardsSearchCmd(app))
	cmd.AddCommand(newCardsDescribeCmd(app))
	cmd.AddCommand(newCardsSuggestChecklistCmd(app))
	return cmd
}

func newCardsShowCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:               "show <card-id>",
		ValidArgsFunction: completeIDs(app, 0, completeCards),
		Short:             "Print one card",
		Args:              cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			eng, err := app.engine(nil)
			if err != nil {
				return writeErr(cmd, err)
			}
			c, ok := eng.Board().FindCard(args[0])
			if !ok {
				return writeErr(cmd, mutate.NotFoundError{Kind: "card", ID: args[0]})
			}
			return writeResult(cmd, app, c)
		},
	}
}

func newCardsAddCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:               "add <list-id> [title]",
		ValidArgsFunction: completeIDs(app, 0, completeLists),
		Short:             "Append a card to a list (title defaults to \"New task\")",
		Args:              cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			title := ""
			if len(args) == 2 {
				title = args[1]
			}
			return app.mutate(cmd, func(eng *board.Engine) (string, model.Board, error) {
				return eng.AddCard(args[0], title)
			})
		},
	}
}

func newCardsMoveCmd(app *App) *cobra.Command {
	var toList string
	var toIndex int
	var fromIndex int

	cmd := &cobra.Command{
		Use:               "move <card-id> --to <list-id> [--index n]",
		ValidArgsFunction: completeIDs(app, 0, completeCards),
		Short:             "Move a card within or across lists",
		Long: strings.TrimSpace(`
Moves a card to --index of the destination list, counted after the card is taken
out of its current list. A negative or past-the-end index appends.

--from-index asserts the card's current position; when it does not match, the move
is refused and the board is left unchanged.`),
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cardID := strings.TrimSpace(args[0])
			return app.mutate(cmd, func(eng *board.Engine) (string, model.Board, error) {
				fromList, idx, ok := eng.Board().CardPosition(cardID)
				if !ok {
					return "", eng.Board(), mutate.NotFoundError{Kind: "card", ID: cardID}
				}
				if cmd.Flags().Changed("from-index") {
					idx = fromIndex
				}
				b, err := eng.Apply(board.MoveCard{
					CardID:     cardID,
					FromListID: fromList,
					FromIndex:  idx,
					ToListID:   toList,
					ToIndex:    toIndex,
				})
				return cardID, b, err
			})
		},
	}
	cmd.Flags().StringVar(&toList, "to", "", "Destination list id")
	cmd.Flags().IntVar(&toIndex, "index", mutate.AppendIndex, "Destination index (default: append)")
	cmd.Flags().IntVar(&fromIndex, "from-index", 0, "Expected current index (stale check)")
	_ = cmd.MarkFlagRequired("to")
	_ = cmd.RegisterFlagCompletionFunc("to", func(c *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
		return completeIDs(app, len(args), completeLists)(c, args, toComplete)
	})
	return cmd
}

func newCardsUpdateCmd(app *App) *cobra.Command {
	var title, description, due, cover string

	cmd := &cobra.Command{
		Use:               "update <card-id>",
		ValidArgsFunction: completeIDs(app, 0, completeCards),
		Short:             "Change card fields (only the flags given are applied)",
		Args:              cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var patch model.CardPatch
			if cmd.Flags().Changed("title") {
				patch.Title = &title
			}
			if cmd.Flags().Changed("description") {
				patch.Description = &description
			}
			if cmd.Flags().Changed("due") {
				patch.DueDate = &due
			}
			if cmd.Flags().Changed("cover") {
				patch.CoverURL = &cover
			}
			if patch.IsEmpty() {
				return writeErr(cmd, errors.New("nothing to update (use --title, --description, --due or --cover)"))
			}
			return app.mutate(cmd, func(eng *board.Engine) (string, model.Board, error) {
				b, err := eng.UpdateCard(args[0], patch)
				return args[0], b, err
			})
		},
	}
	cmd.Flags().StringVar(&title, "title", "", "New title (must not be blank)")
	cmd.Flags().StringVar(&description, "description", "", "New description (markdown)")
	cmd.Flags().StringVar(&due, "due", "", "Due date (YYYY-MM-DD, empty clears)")
	cmd.Flags().StringVar(&cover, "cover", "", "Cover image URL (empty clears)")
	return cmd
}

func newCardsCommentCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:               "comment <card-id> <text>",
		ValidArgsFunction: completeIDs(app, 0, completeCards),
		Short:             "Post a comment as the acting user",
		Args:              cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return app.mutate(cmd, func(eng *board.Engine) (string, model.Board, error) {
				ctl := detail.New(eng, nil)
				if err := ctl.Open(args[0]); err != nil {
					return "", eng.Board(), err
				}
				ctl.SetCommentDraft(strings.Join(args[1:], " "))
				_, posted, err := ctl.PostComment()
				if err != nil {
					return "", eng.Board(), err
				}
				if !posted {
					return "", eng.Board(), errors.New("comment must not be blank")
				}
				return args[0], eng.Board(), nil
			})
		},
	}
}

func newCardsToggleCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:               "toggle <card-id> <item-id>",
		ValidArgsFunction: completeChecklistItems(app),
		Short:             "Flip a checklist item",
		Args:              cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return app.mutate(cmd, func(eng *board.Engine) (string, model.Board, error) {
				b, err := eng.ToggleChecklistItem(args[0], args[1])
				return args[0], b, err
			})
		},
	}
}

func newCardsArchiveCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:               "archive <card-id>",
		ValidArgsFunction: completeIDs(app, 0, completeCards),
		Short:             "Remove a card from the board",
		Args:              cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			eng, err := app.engine(nil)
			if err != nil {
				return writeErr(cmd, err)
			}
			b, err := eng.ArchiveCard(args[0])
			if err != nil {
				return writeErr(cmd, err)
			}
			if err := app.saveSeed(b); err != nil {
				return writeErr(cmd, err)
			}
			return writeResult(cmd, app, map[string]any{"archived": args[0], "listOrder": b.ListOrder})
		},
	}
}

func newCardsSearchCmd(app *App) *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "search <query>",
		Short: "Find cards by title, description, labels, checklist or comments",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			eng, err := app.engine(nil)
			if err != nil {
				return writeErr(cmd, err)
			}
			ctx := commandContext(cmd)
			ix, err := search.Open(ctx, nil)
			if err != nil {
				return writeErr(cmd, err)
			}
			defer ix.Close()
			if err := ix.Rebuild(ctx, eng.Board()); err != nil {
				return writeErr(cmd, err)
			}
			hits, err := ix.Query(ctx, strings.Join(args, " "), limit)
			if err != nil {
				return writeErr(cmd, err)
			}
			if hits == nil {
				hits = []search.Hit{}
			}
			return writeResult(cmd, app, hits)
		},
	}
	cmd.Flags().IntVar(&limit, "limit", search.DefaultLimit, "Maximum number of hits")
	return cmd
}

func newCardsDescribeCmd(app *App) *cobra.Command {
	var context string

	cmd := &cobra.Command{
		Use:               "describe <card-id>",
		ValidArgsFunction: completeIDs(app, 0, completeCards),
		Short:             "Generate the card description with AI",
		Long: strings.TrimSpace(`
Generates a description from the card title and its current description (or
--context) and saves it. Without an API key (ai.apiKey, GEMINI_API_KEY or API_KEY)
the fixed fallback text is saved instead.`),
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return app.withAI(cmd, args[0], func(ctx context.Context, ctl *detail.Controller) error {
				if cmd.Flags().Changed("context") {
					ctl.SetDescriptionDraft(context)
				}
				_, err := ctl.GenerateDescription(ctx)
				return err
			})
		},
	}
	cmd.Flags().StringVar(&context, "context", "", "Context for the prompt (default: current description)")
	return cmd
}

func newCardsSuggestChecklistCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:               "suggest-checklist <card-id>",
		ValidArgsFunction: completeIDs(app, 0, completeCards),
		Short:             "Append AI-suggested checklist items",
		Args:              cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return app.withAI(cmd, args[0], func(ctx context.Context, ctl *detail.Controller) error {
				n, err := ctl.SuggestChecklist(ctx)
				if err == nil && n == 0 {
					fmt.Fprintln(cmd.ErrOrStderr(), "no checklist suggestions")
				}
				return err
			})
		},
	}
}

// mutate runs one change against a fresh session, saves --out-seed and prints the
// affected card.
func (app *App) mutate(cmd *cobra.Command, fn func(eng *board.Engine) (string, model.Board, error)) error {
	eng, err := app.engine(nil)
	if err != nil {
		return writeErr(cmd, err)
	}
	cardID, b, err := fn(eng)
	if err != nil {
		return writeErr(cmd, err)
	}
	if err := app.saveSeed(b); err != nil {
		return writeErr(cmd, err)
	}
	c, ok := b.FindCard(cardID)
	if !ok {
		return writeErr(cmd, mutate.NotFoundError{Kind: "card", ID: cardID})
	}
	return writeResult(cmd, app, c)
}

// withAI opens cardID in a detail controller backed by the configured assistant and
// runs fn with it.
func (app *App) withAI(cmd *cobra.Command, cardID string, fn func(ctx context.Context, ctl *detail.Controller) error) error {
	log, err := app.logger(false)
	if err != nil {
		return writeErr(cmd, err)
	}
	defer func() { _ = log.Sync() }()

	ctx := commandContext(cmd)
	eng, err := app.engine(log)
	if err != nil {
		return writeErr(cmd, err)
	}
	ctl := detail.New(eng, app.assistant(ctx, log))
	if err := ctl.Open(cardID); err != nil {
		return writeErr(cmd, err)
	}
	if err := fn(ctx, ctl); err != nil {
		log.Debug("AI action failed", zap.String("card", cardID), zap.Error(err))
		return writeErr(cmd, err)
	}
	b := eng.Board()
	if err := app.saveSeed(b); err != nil {
		return writeErr(cmd, err)
	}
	c, _ := b.FindCard(cardID)
	return writeResult(cmd, app, c)
}

func commandContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}
