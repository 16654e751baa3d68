package cli

import (
	"strings"

	"github.com/spf13/cobra"

	"kanbanflow/internal/model"
	"kanbanflow/internal/store"
)

type completeKind int

const (
	completeCards completeKind = iota
	completeLists
)

// completeIDs completes the positional argument at position pos with card or list
// ids from the configured seed, described by their titles.
func completeIDs(app *App, pos int, kind completeKind) func(*cobra.Command, []string, string) ([]string, cobra.ShellCompDirective) {
	return func(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
		if len(args) != pos {
			return nil, cobra.ShellCompDirectiveNoFileComp
		}
		// Completion skips PersistentPreRunE, so config is resolved here.
		cfg, err := store.LoadConfig(app.v, app.ConfigPath)
		if err != nil {
			return nil, cobra.ShellCompDirectiveError
		}
		b, err := store.LoadSeed(cfg.Seed)
		if err != nil {
			return nil, cobra.ShellCompDirectiveError
		}
		return idCandidates(b, kind, toComplete), cobra.ShellCompDirectiveNoFileComp
	}
}

func idCandidates(b model.Board, kind completeKind, prefix string) []string {
	var out []string
	add := func(id, title string) {
		if strings.HasPrefix(id, prefix) {
			out = append(out, id+"\t"+title)
		}
	}
	for _, listID := range b.ListOrder {
		l := b.Lists[listID]
		if kind == completeLists {
			add(l.ID, l.Title)
			continue
		}
		for _, c := range b.CardsInList(listID) {
			add(c.ID, c.Title)
		}
	}
	return out
}

// completeChecklistItems completes the item argument of `cards toggle`.
func completeChecklistItems(app *App) func(*cobra.Command, []string, string) ([]string, cobra.ShellCompDirective) {
	return func(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
		if len(args) == 0 {
			return completeIDs(app, 0, completeCards)(cmd, args, toComplete)
		}
		if len(args) != 1 {
			return nil, cobra.ShellCompDirectiveNoFileComp
		}
		cfg, err := store.LoadConfig(app.v, app.ConfigPath)
		if err != nil {
			return nil, cobra.ShellCompDirectiveError
		}
		b, err := store.LoadSeed(cfg.Seed)
		if err != nil {
			return nil, cobra.ShellCompDirectiveError
		}
		c, ok := b.FindCard(args[0])
		if !ok {
			return nil, cobra.ShellCompDirectiveNoFileComp
		}
		var out []string
		for _, it := range c.Checklist {
			if strings.HasPrefix(it.ID, toComplete) {
				out = append(out, it.ID+"\t"+it.Text)
			}
		}
		return out, cobra.ShellCompDirectiveNoFileComp
	}
}
