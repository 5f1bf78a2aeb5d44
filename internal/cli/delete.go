package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newDeleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:               "delete <id>...",
		Short:             "Delete notes",
		Args:              cobra.MinimumNArgs(1),
		ValidArgsFunction: completeNoteIDs,
		RunE: func(cmd *cobra.Command, args []string) error {
			app := getApp(cmd)
			for _, arg := range args {
				id, err := parseNoteID(arg)
				if err != nil {
					return err
				}
				if err := app.Store.Delete(cmd.Context(), id); err != nil {
					return fmt.Errorf("delete %d: %w", id, err)
				}
				_, _ = fmt.Fprintf(cmd.OutOrStdout(), "deleted %d\n", id)
			}
			return nil
		},
	}
}
