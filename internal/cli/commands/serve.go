package commands

import (
	"os/signal"
	"strings"
	"syscall"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/rowbench/rowbench/internal/ui"
)

// NewServeCommand creates the serve command.
func NewServeCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the web editor",
		Long: `Start the web editor for the configured table.

The page offers per-column substring search, in-grid cell editing with a
confirm-to-apply update form, and row insertion. When the warehouse is a
DuckDB file, out-of-band writes to the file are detected and connected
browsers are told their view is stale.`,
		Example: `  # Serve on the configured port (default 4400)
  rowbench serve

  # One-off against a DuckDB file
  rowbench serve --db-path warehouse.duckdb --table events`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cmdCtx, cleanup, err := NewCommandContext(cmd)
			if err != nil {
				return err
			}
			defer cleanup()

			secret := cmdCtx.Cfg.Server.SessionSecret
			if secret == "" {
				// Sessions are server-side and in-memory anyway; a random
				// per-process secret only means cookies reset on restart.
				secret = uuid.New().String()
				cmdCtx.Logger.Warn("server.session_secret not set, using a random one; sessions reset on restart")
			}

			server := ui.NewServer(ui.Config{
				Service:       cmdCtx.Service,
				WriteLog:      cmdCtx.WriteLog,
				Port:          cmdCtx.Cfg.Server.Port,
				SessionSecret: secret,
				WatchPath:     watchPath(cmdCtx),
				Logger:        cmdCtx.Logger,
			})

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			return server.Serve(ctx)
		},
	}
}

// watchPath returns the warehouse file to watch for out-of-band writes,
// or "" when the warehouse is not file-backed.
func watchPath(cmdCtx *CommandContext) string {
	target := cmdCtx.Cfg.Target
	if !strings.EqualFold(target.Type, "duckdb") {
		return ""
	}
	if target.Path == "" || target.Path == ":memory:" {
		return ""
	}
	return target.Path
}
