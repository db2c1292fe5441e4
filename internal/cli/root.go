// Package cli provides the command-line interface for Rowbench.
package cli

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/rowbench/rowbench/internal/cli/commands"
	"github.com/rowbench/rowbench/internal/config"
)

var cfgFile string

// Version information (set at build time).
var (
	Version   = "0.1.0"
	BuildDate = "unknown"
	GitCommit = "unknown"
)

// NewRootCmd creates and returns the root command.
func NewRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "rowbench",
		Short: "Rowbench - single-table warehouse editor",
		Long: `Rowbench fronts one analytical warehouse table with a searchable,
editable web grid and a small set of CLI operations.

Point it at a DuckDB file or a Postgres database, name the table and its
id column, and serve.`,
		Version: Version,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			// Skip config loading for help and completion commands
			if cmd.Name() == "help" || cmd.Name() == "completion" || cmd.Name() == "__complete" {
				return nil
			}

			cfg, err := config.Load(cfgFile, cmd.Root().PersistentFlags())
			if err != nil {
				return err
			}

			level := slog.LevelWarn
			if cfg.Verbose {
				level = slog.LevelDebug
			}
			logger := slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{
				Level: level,
			}))

			ctx := commands.WithConfig(cmd.Context(), cfg)
			ctx = commands.WithLogger(ctx, logger)
			cmd.SetContext(ctx)
			return nil
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.SetVersionTemplate(`{{.Name}} {{.Version}}
`)

	// Global persistent flags
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: ./rowbench.yaml)")
	rootCmd.PersistentFlags().String("table", "", "table to front (schema-qualified or bare)")
	rootCmd.PersistentFlags().String("id-column", "", "surrogate key column (default: id)")
	rootCmd.PersistentFlags().String("db-type", "", "warehouse type (duckdb|postgres)")
	rootCmd.PersistentFlags().String("db-path", "", "DuckDB database file (empty for in-memory)")
	rootCmd.PersistentFlags().String("db-host", "", "warehouse host")
	rootCmd.PersistentFlags().Int("db-port", 0, "warehouse port")
	rootCmd.PersistentFlags().String("db-name", "", "warehouse database name")
	rootCmd.PersistentFlags().String("db-schema", "", "warehouse schema")
	rootCmd.PersistentFlags().Int("port", 0, "web UI port (default: 4400)")
	rootCmd.PersistentFlags().String("history", "", "write log path (default: .rowbench/history.db)")
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "Verbose output")
	rootCmd.PersistentFlags().StringP("output", "o", "", "Output format (auto|table|plain|json)")

	_ = rootCmd.RegisterFlagCompletionFunc("output", func(_ *cobra.Command, _ []string, _ string) ([]string, cobra.ShellCompDirective) {
		return []string{"auto", "table", "plain", "json"}, cobra.ShellCompDirectiveNoFileComp
	})
	_ = rootCmd.RegisterFlagCompletionFunc("db-type", func(_ *cobra.Command, _ []string, _ string) ([]string, cobra.ShellCompDirective) {
		return []string{"duckdb", "postgres"}, cobra.ShellCompDirectiveNoFileComp
	})

	// Add subcommands
	rootCmd.AddCommand(commands.NewServeCommand())
	rootCmd.AddCommand(commands.NewSearchCommand())
	rootCmd.AddCommand(commands.NewAddCommand())
	rootCmd.AddCommand(commands.NewNextIDCommand())
	rootCmd.AddCommand(commands.NewDoctorCommand())
	rootCmd.AddCommand(commands.NewVersionCommand(Version, BuildDate, GitCommit))

	return rootCmd
}

// Execute runs the root command.
func Execute() error {
	rootCmd := NewRootCmd()
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return err
	}
	return nil
}
