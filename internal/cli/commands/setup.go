// Package commands implements the rowbench subcommands.
package commands

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/rowbench/rowbench/internal/config"
	"github.com/rowbench/rowbench/internal/history"
	"github.com/rowbench/rowbench/internal/table"
)

type configKey struct{}
type loggerKey struct{}

// WithConfig stores the loaded configuration in the context.
func WithConfig(ctx context.Context, cfg *config.Config) context.Context {
	return context.WithValue(ctx, configKey{}, cfg)
}

// GetConfig retrieves the config from the command context.
func GetConfig(ctx context.Context) *config.Config {
	if c, ok := ctx.Value(configKey{}).(*config.Config); ok {
		return c
	}
	return &config.Config{}
}

// WithLogger stores the logger in the context.
func WithLogger(ctx context.Context, logger *slog.Logger) context.Context {
	return context.WithValue(ctx, loggerKey{}, logger)
}

// GetLogger retrieves the logger from the command context.
func GetLogger(ctx context.Context) *slog.Logger {
	if l, ok := ctx.Value(loggerKey{}).(*slog.Logger); ok {
		return l
	}
	// Return discard logger as safe fallback
	return slog.New(slog.DiscardHandler)
}

// CommandContext bundles what a data command needs: validated config, the
// table service, and the local write log.
type CommandContext struct {
	Cfg      *config.Config
	Logger   *slog.Logger
	Service  *table.Service
	WriteLog *history.Store
}

// NewCommandContext validates the configuration and wires the table
// service and write log. The returned cleanup closes both.
func NewCommandContext(cmd *cobra.Command) (*CommandContext, func(), error) {
	cfg := GetConfig(cmd.Context())
	logger := GetLogger(cmd.Context())

	if err := cfg.Validate(); err != nil {
		return nil, nil, err
	}

	svc := table.New(table.Config{
		Target:   cfg.Target,
		Table:    cfg.Table,
		IDColumn: cfg.IDColumn,
	}, logger)

	writeLog := history.NewStore()
	if err := openWriteLog(writeLog, cfg.History.Path); err != nil {
		_ = svc.Close()
		return nil, nil, err
	}

	cleanup := func() {
		_ = writeLog.Close()
		_ = svc.Close()
	}
	return &CommandContext{
		Cfg:      cfg,
		Logger:   logger,
		Service:  svc,
		WriteLog: writeLog,
	}, cleanup, nil
}

func openWriteLog(store *history.Store, path string) error {
	if dir := filepath.Dir(path); dir != "." && dir != "" && path != ":memory:" {
		if err := os.MkdirAll(dir, 0750); err != nil {
			return fmt.Errorf("failed to create history directory: %w", err)
		}
	}
	return store.Open(path)
}

// parseAssignments turns "column=value" arguments into a map, rejecting
// malformed and duplicate assignments.
func parseAssignments(args []string) (map[string]string, error) {
	values := make(map[string]string, len(args))
	for _, arg := range args {
		column, value, ok := strings.Cut(arg, "=")
		if !ok || column == "" {
			return nil, fmt.Errorf("expected column=value, got %q", arg)
		}
		if _, dup := values[column]; dup {
			return nil, fmt.Errorf("column %q assigned twice", column)
		}
		values[column] = value
	}
	return values, nil
}
