package cli

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"
)

func newShowCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:               "show <id>",
		Short:             "Show a note",
		Args:              cobra.ExactArgs(1),
		ValidArgsFunction: completeNoteIDs,
		RunE: func(cmd *cobra.Command, args []string) error {
			app := getApp(cmd)
			id, err := parseNoteID(args[0])
			if err != nil {
				return err
			}
			opts, err := outputOptions(cmd)
			if err != nil {
				return err
			}
			n, err := app.Store.Get(cmd.Context(), id)
			if err != nil {
				return err
			}
			return renderNote(cmd, n, opts)
		},
	}
	addOutputFlags(cmd, "pretty")
	return cmd
}

func parseNoteID(s string) (int64, error) {
	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid note id %q", s)
	}
	return id, nil
}
