package cli

import (
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"kanbanflow/internal/search"
	"kanbanflow/internal/server"
	"kanbanflow/internal/store"
)

func newServeCmd(app *App) *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the board as a JSON API (with an SSE change feed)",
		Long: strings.TrimSpace(`
Serves one board session over HTTP until interrupted. All clients share the session;
changes are not persisted.

  GET  /api/board                      full snapshot
  GET  /api/events                     server-sent board snapshots
  GET  /api/ws                         board snapshots over a websocket
  POST /api/cards/:id/move             {"fromListId","fromIndex","toListId","toIndex"}
  POST /api/cards/:id/ai/description
  GET  /api/search?q=...

Set server.token to require "Authorization: Bearer <token>". See: kanbanflow docs api`),
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			log, err := app.logger(false)
			if err != nil {
				return writeErr(cmd, err)
			}
			defer func() { _ = log.Sync() }()

			ctx, stop := signal.NotifyContext(commandContext(cmd), os.Interrupt, syscall.SIGTERM)
			defer stop()

			eng, err := app.engine(log)
			if err != nil {
				return writeErr(cmd, err)
			}
			ix, err := search.Open(ctx, log)
			if err != nil {
				return writeErr(cmd, err)
			}
			defer ix.Close()
			unfollow, err := ix.Follow(ctx, eng)
			if err != nil {
				return writeErr(cmd, err)
			}
			defer unfollow()

			addr = strings.TrimSpace(addr)
			if addr == "" {
				addr = strings.TrimSpace(app.cfg.Server.Addr)
			}
			if addr == "" {
				addr = store.DefaultAddr
			}

			srv := server.New(eng, app.assistant(ctx, log), ix, log, server.WithToken(app.cfg.Server.Token))
			if err := srv.Run(ctx, addr); err != nil {
				log.Error("server stopped", zap.Error(err))
				return writeErr(cmd, err)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "", "Listen address (default: server.addr or "+store.DefaultAddr+")")
	return cmd
}
