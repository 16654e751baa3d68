package cli

import (
	"github.com/spf13/cobra"

	"kanbanflow/internal/mutate"
)

func newListsCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "lists",
		Aliases: []string{"list"},
		Short:   "Add and reorder lists",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "add <title>",
		Short: "Append a list to the board",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			eng, err := app.engine(nil)
			if err != nil {
				return writeErr(cmd, err)
			}
			id, b, err := eng.AddList(args[0])
			if err != nil {
				return writeErr(cmd, err)
			}
			if err := app.saveSeed(b); err != nil {
				return writeErr(cmd, err)
			}
			return writeResult(cmd, app, b.Lists[id], "kanbanflow cards add "+id+" <title>")
		},
	})

	var toIndex int
	moveCmd := &cobra.Command{
		Use:               "move <list-id> --index n",
		ValidArgsFunction: completeIDs(app, 0, completeLists),
		Short:             "Reorder a list (the index is clamped to the board)",
		Args:              cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			eng, err := app.engine(nil)
			if err != nil {
				return writeErr(cmd, err)
			}
			b, err := eng.MoveList(args[0], toIndex)
			if err != nil {
				return writeErr(cmd, err)
			}
			if err := app.saveSeed(b); err != nil {
				return writeErr(cmd, err)
			}
			return writeResult(cmd, app, map[string]any{"listOrder": b.ListOrder})
		},
	}
	moveCmd.Flags().IntVar(&toIndex, "index", mutate.AppendIndex, "Destination index (default: last)")
	cmd.AddCommand(moveCmd)

	return cmd
}
