package commands

import (
	"github.com/spf13/cobra"
)

// NewSearchCommand creates the search command.
func NewSearchCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "search column=value ...",
		Short: "Search the table with per-column substring filters",
		Long: `Search the configured table. Each argument is a case-insensitive
substring filter on one column; multiple filters are ANDed. Results come
back newest id first, capped at 1000 rows.`,
		Example: `  # Rows whose name contains "smith"
  rowbench search name=smith

  # Narrow with a second column
  rowbench search name=smith city=york

  # Pipe-friendly output
  rowbench search name=smith -o plain`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			filters, err := parseAssignments(args)
			if err != nil {
				return err
			}

			cmdCtx, cleanup, err := NewCommandContext(cmd)
			if err != nil {
				return err
			}
			defer cleanup()

			rows, err := cmdCtx.Service.Search(cmd.Context(), filters)
			if err != nil {
				return err
			}

			schema, err := cmdCtx.Service.Schema(cmd.Context())
			if err != nil {
				return err
			}
			cols := make([]string, 0, len(schema))
			for _, c := range schema {
				cols = append(cols, c.Name)
			}

			return renderRows(cmd.OutOrStdout(), cmdCtx.Cfg.Output, cols, rows)
		},
	}
}
