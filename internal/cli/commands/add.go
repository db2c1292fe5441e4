package commands

import (
	"fmt"

	"github.com/spf13/cobra"
)

// NewAddCommand creates the add command.
func NewAddCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "add column=value ...",
		Short: "Insert a row with a freshly allocated id",
		Long: `Insert one row into the configured table. The id is allocated as
max(id)+1; every other column comes from the column=value arguments and is
coerced to the column's type. Omitted columns are stored as NULL.`,
		Example: `  rowbench add name=Smith age=41 active=yes`,
		Args:    cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			record, err := parseAssignments(args)
			if err != nil {
				return err
			}

			cmdCtx, cleanup, err := NewCommandContext(cmd)
			if err != nil {
				return err
			}
			defer cleanup()

			id, err := cmdCtx.Service.Insert(cmd.Context(), record)
			if err != nil {
				if logErr := cmdCtx.WriteLog.Record("insert", 0, false, err.Error()); logErr != nil {
					cmdCtx.Logger.Warn("write log record failed", "error", logErr)
				}
				return err
			}
			if logErr := cmdCtx.WriteLog.Record("insert", id, true, "row inserted via cli"); logErr != nil {
				cmdCtx.Logger.Warn("write log record failed", "error", logErr)
			}

			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Row added with %s %d\n", cmdCtx.Service.IDColumn(), id)
			return nil
		},
	}
}
