package cli

import (
	"github.com/spf13/cobra"

	"kanbanflow/internal/publish"
)

func newPublishCmd(app *App) *cobra.Command {
	var toDir string
	var includeActivity bool
	var overwrite bool
	var html bool

	cmd := &cobra.Command{
		Use:               "publish [card-id]",
		Short:             "Export the board (or one card) as Markdown pages",
		Long:              "Writes index.md plus cards/<id>.md for every card, or only cards/<card-id>.md when a card id is given.",
		Args:              cobra.MaximumNArgs(1),
		ValidArgsFunction: completeIDs(app, 0, completeCards),
		RunE: func(cmd *cobra.Command, args []string) error {
			eng, err := app.engine(nil)
			if err != nil {
				return writeErr(cmd, err)
			}
			opt := publish.WriteOptions{IncludeActivity: includeActivity, Overwrite: overwrite, HTML: html}

			var res publish.WriteResult
			if len(args) == 1 {
				res, err = publish.WriteCard(eng.Board(), args[0], toDir, opt)
			} else {
				res, err = publish.WriteBoard(eng.Board(), toDir, opt)
			}
			if err != nil {
				return writeErr(cmd, err)
			}
			return writeResult(cmd, app, res, "git status", "git add -A")
		},
	}

	cmd.Flags().StringVar(&toDir, "to", "", "Output directory")
	_ = cmd.MarkFlagRequired("to")
	cmd.Flags().BoolVar(&includeActivity, "activity", false, "Include the activity feed")
	cmd.Flags().BoolVar(&overwrite, "overwrite", true, "Overwrite existing files")
	cmd.Flags().BoolVar(&html, "html", false, "Also write an HTML page next to every Markdown page")
	return cmd
}
