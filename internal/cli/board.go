package cli

import (
	"github.com/spf13/cobra"

	"kanbanflow/internal/store"
)

type listSummary struct {
	ID      string   `json:"id"`
	Title   string   `json:"title"`
	CardIDs []string `json:"cardIds"`
	Count   int      `json:"count"`
}

func newBoardCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "board",
		Short: "Inspect the board",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "show",
		Short: "Print the full board snapshot",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			eng, err := app.engine(nil)
			if err != nil {
				return writeErr(cmd, err)
			}
			return writeResult(cmd, app, eng.Board())
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "lists",
		Short: "Print lists in board order with their card ids",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			eng, err := app.engine(nil)
			if err != nil {
				return writeErr(cmd, err)
			}
			b := eng.Board()
			out := make([]listSummary, 0, len(b.ListOrder))
			for _, id := range b.ListOrder {
				l := b.Lists[id]
				out = append(out, listSummary{ID: l.ID, Title: l.Title, CardIDs: l.CardIDs, Count: len(l.CardIDs)})
			}
			return writeResult(cmd, app, out, "kanbanflow cards show <card-id>")
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "export",
		Short: "Write the board as a seed file (for --seed)",
		Long:  "Writes the board as indented JSON to stdout, in the format --seed reads. Not wrapped in the output envelope.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			eng, err := app.engine(nil)
			if err != nil {
				return writeErr(cmd, err)
			}
			if err := store.WriteSeed(cmd.OutOrStdout(), eng.Board()); err != nil {
				return writeErr(cmd, err)
			}
			return nil
		},
	})

	return cmd
}
