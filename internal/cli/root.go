package cli

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"kanbanflow/internal/assist"
	"kanbanflow/internal/board"
	"kanbanflow/internal/format"
	"kanbanflow/internal/logging"
	"kanbanflow/internal/model"
	"kanbanflow/internal/search"
	"kanbanflow/internal/store"
	"kanbanflow/internal/tui"
)

type App struct {
	ConfigPath string
	OutSeed    string
	PrettyJSON bool

	v   *viper.Viper
	cfg store.Config

	// newGenerator is swapped in tests to avoid network calls.
	newGenerator func(ctx context.Context, opts assist.GeminiOptions) (assist.Generator, error)
}

func NewRootCmd() *cobra.Command {
	return newRootCmd(&App{v: store.NewViper(), newGenerator: assist.NewGenerator})
}

func newRootCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:          "kanbanflow",
		Short:        "KanbanFlow board: TUI, scriptable CLI and JSON API",
		SilenceUsage: true,
		Example: strings.TrimSpace(`
  # Start the interactive board
  kanbanflow

  # Scriptable commands
  kanbanflow board show --pretty
  kanbanflow cards move c1 --to l2 --index 0

  # Chain operations through a seed file
  kanbanflow --out-seed board.json cards add l1 "Write tests"
  kanbanflow --seed board.json --out-seed board.json cards comment c1 "Looks good"

  # Direct card lookup (shortcut for: kanbanflow cards show <card-id>)
  kanbanflow c3
`),
		RunE: func(cmd *cobra.Command, args []string) error {
			// No subcommand => interactive TUI.
			if len(args) == 0 {
				return runTUI(cmd, app)
			}
			return cmd.Help()
		},
	}

	cmd.PersistentPreRunE = func(cmd *cobra.Command, args []string) error {
		cfg, err := store.LoadConfig(app.v, app.ConfigPath)
		if err != nil {
			return writeErr(cmd, fmt.Errorf("load config: %w", err))
		}
		if err := format.Check(cfg.Format); err != nil {
			return writeErr(cmd, err)
		}
		app.cfg = cfg
		return nil
	}

	pf := cmd.PersistentFlags()
	pf.StringVar(&app.ConfigPath, "config", envOr("KANBANFLOW_CONFIG", ""), "Config file (default: ~/.kanbanflow/config.{toml,yaml,json})")
	pf.String("actor", "", "Acting user id (default u1)")
	pf.String("seed", "", "Board JSON file to start from (default: built-in demo board)")
	pf.String("format", "", "Output format (json|edn)")
	pf.String("log-level", "", "Log level (debug|info|warn|error)")
	pf.BoolVar(&app.PrettyJSON, "pretty", false, "Pretty-print output")
	pf.StringVar(&app.OutSeed, "out-seed", "", "Write the resulting board to this seed file after a change")

	_ = app.v.BindPFlag("actor", pf.Lookup("actor"))
	_ = app.v.BindPFlag("seed", pf.Lookup("seed"))
	_ = app.v.BindPFlag("format", pf.Lookup("format"))
	_ = app.v.BindPFlag("log.level", pf.Lookup("log-level"))

	cmd.AddCommand(newBoardCmd(app))
	cmd.AddCommand(newCardsCmd(app))
	cmd.AddCommand(newListsCmd(app))
	cmd.AddCommand(newPublishCmd(app))
	cmd.AddCommand(newServeCmd(app))
	cmd.AddCommand(newDocsCmd(app))
	cmd.AddCommand(newDoctorCmd(app))

	return cmd
}

func runTUI(cmd *cobra.Command, app *App) error {
	log, err := app.logger(true)
	if err != nil {
		return writeErr(cmd, err)
	}
	defer func() { _ = log.Sync() }()

	eng, err := app.engine(log)
	if err != nil {
		return writeErr(cmd, err)
	}
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	ix, err := search.Open(ctx, log)
	if err != nil {
		return writeErr(cmd, err)
	}
	defer ix.Close()
	stop, err := ix.Follow(ctx, eng)
	if err != nil {
		return writeErr(cmd, err)
	}
	defer stop()

	return tui.Run(ctx, eng, app.assistant(ctx, log), ix, log)
}

// logger builds the process logger. quiet discards logs unless log.file is set,
// for modes that own the terminal.
func (app *App) logger(quiet bool) (*zap.Logger, error) {
	return logging.New(logging.Options{Level: app.cfg.Log.Level, File: app.cfg.Log.File, Quiet: quiet})
}

// engine starts a session from the configured seed. Each invocation starts fresh.
func (app *App) engine(log *zap.Logger) (*board.Engine, error) {
	seed, err := store.LoadSeed(app.cfg.Seed)
	if err != nil {
		return nil, err
	}
	return board.New(seed, app.cfg.Actor, board.WithLogger(log))
}

// assistant wires the configured AI backend. A missing key yields a client whose
// calls fall back to the fixed messages.
func (app *App) assistant(ctx context.Context, log *zap.Logger) *assist.Client {
	log = logging.OrNop(log)
	gen, err := app.newGenerator(ctx, assist.GeminiOptions{
		APIKey:   app.cfg.AI.APIKey,
		Model:    app.cfg.AI.Model,
		Timeout:  app.cfg.AI.Timeout,
		Attempts: app.cfg.AI.Attempts,
		Logger:   log,
	})
	if err != nil {
		log.Warn("AI assist disabled", zap.Error(err))
		gen = assist.Disabled{}
	}
	return assist.NewClient(gen, log)
}

// saveSeed writes b to --out-seed when set.
func (app *App) saveSeed(b model.Board) error {
	path := strings.TrimSpace(app.OutSeed)
	if path == "" {
		return nil
	}
	tmp := path + ".tmp"
	f, err := os.Create(tmp)
	if err != nil {
		return err
	}
	if err := store.WriteSeed(f, b); err != nil {
		_ = f.Close()
		_ = os.Remove(tmp)
		return err
	}
	if err := f.Close(); err != nil {
		_ = os.Remove(tmp)
		return err
	}
	return os.Rename(tmp, path)
}

func envOr(k, d string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return d
}

func writeOut(cmd *cobra.Command, app *App, v any) error {
	return format.Write(cmd.OutOrStdout(), v, app.cfg.Format, app.PrettyJSON)
}

// writeResult prints the JSON envelope used by every command.
func writeResult(cmd *cobra.Command, app *App, data any, hints ...string) error {
	out := map[string]any{"data": data}
	if len(hints) > 0 {
		out["_hints"] = hints
	}
	return writeOut(cmd, app, out)
}

func writeErr(cmd *cobra.Command, err error) error {
	fmt.Fprintln(cmd.ErrOrStderr(), err.Error())
	return err
}
