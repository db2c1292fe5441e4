package commands

import (
	"fmt"

	"github.com/spf13/cobra"
)

// NewNextIDCommand creates the next-id command.
func NewNextIDCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "next-id",
		Short: "Print the id the next insert would use",
		Long: `Print max(id)+1 for the configured table. On an empty table this
is 1. The value is advisory: a concurrent writer can claim it first.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cmdCtx, cleanup, err := NewCommandContext(cmd)
			if err != nil {
				return err
			}
			defer cleanup()

			id, err := cmdCtx.Service.NextID(cmd.Context())
			if err != nil {
				return err
			}

			_, _ = fmt.Fprintln(cmd.OutOrStdout(), id)
			return nil
		},
	}
}
