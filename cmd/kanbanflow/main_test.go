package main

import (
	"reflect"
	"testing"

	"github.com/spf13/pflag"

	"kanbanflow/internal/cli"
)

func TestRewriteDirectCardLookupArgs(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		in   []string
		want []string
	}{
		{
			name: "no args",
			in:   []string{"kanbanflow"},
			want: []string{"kanbanflow"},
		},
		{
			name: "demo card id first token",
			in:   []string{"kanbanflow", "c3"},
			want: []string{"kanbanflow", "cards", "show", "c3"},
		},
		{
			name: "generated card id",
			in:   []string{"kanbanflow", "card-x7k2m9qa"},
			want: []string{"kanbanflow", "cards", "show", "card-x7k2m9qa"},
		},
		{
			name: "card id after value flag",
			in:   []string{"kanbanflow", "--seed", "board.json", "c3"},
			want: []string{"kanbanflow", "--seed", "board.json", "cards", "show", "c3"},
		},
		{
			name: "card id after equals flag",
			in:   []string{"kanbanflow", "--seed=board.json", "c3"},
			want: []string{"kanbanflow", "--seed=board.json", "cards", "show", "c3"},
		},
		{
			name: "card id after bool flag",
			in:   []string{"kanbanflow", "--pretty", "c3"},
			want: []string{"kanbanflow", "--pretty", "cards", "show", "c3"},
		},
		{
			name: "card id after double dash",
			in:   []string{"kanbanflow", "--seed", "board.json", "--", "c3"},
			want: []string{"kanbanflow", "--seed", "board.json", "--", "cards", "show", "c3"},
		},
		{
			name: "value flag that looks like a card id is not rewritten",
			in:   []string{"kanbanflow", "--actor", "c1", "board", "show"},
			want: []string{"kanbanflow", "--actor", "c1", "board", "show"},
		},
		{
			name: "normal subcommand not rewritten",
			in:   []string{"kanbanflow", "cards", "show", "c3"},
			want: []string{"kanbanflow", "cards", "show", "c3"},
		},
		{
			name: "list id not rewritten",
			in:   []string{"kanbanflow", "l1"},
			want: []string{"kanbanflow", "l1"},
		},
		{
			name: "unknown command not rewritten",
			in:   []string{"kanbanflow", "wat"},
			want: []string{"kanbanflow", "wat"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got := rewriteDirectCardLookupArgs(tt.in)
			if !reflect.DeepEqual(got, tt.want) {
				t.Fatalf("rewriteDirectCardLookupArgs:\n got: %#v\nwant: %#v", got, tt.want)
			}
		})
	}
}

// The rewrite must know every root persistent flag, or a flag value that looks
// like a card id gets treated as the lookup target.
func TestRewriteKnowsRootFlags(t *testing.T) {
	t.Parallel()

	root := cli.NewRootCmd()
	seen := 0
	root.PersistentFlags().VisitAll(func(f *pflag.Flag) {
		if f.Hidden || f.Name == "help" {
			return
		}
		seen++
		name := "--" + f.Name
		isBool := f.Value.Type() == "bool"
		switch {
		case isBool && !boolFlags[name]:
			t.Errorf("%s is a bool flag missing from boolFlags", name)
		case !isBool && !valueFlags[name]:
			t.Errorf("%s takes a value but is missing from valueFlags", name)
		}
	})
	if want := len(valueFlags) + len(boolFlags); seen != want {
		t.Fatalf("root has %d persistent flags; rewrite knows %d", seen, want)
	}
}
