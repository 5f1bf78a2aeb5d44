package cli

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

func newTagsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "tags",
		Short: "List tags with usage counts",
		RunE: func(cmd *cobra.Command, args []string) error {
			app := getApp(cmd)
			tags, err := app.Store.ListTags(cmd.Context())
			if err != nil {
				return err
			}
			return withPager(cmd.Context(), cmd.OutOrStdout(), cmd.ErrOrStderr(), func(w io.Writer) error {
				tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
				for _, t := range tags {
					_, _ = fmt.Fprintf(tw, "%s\t%d\n", t.Tag, t.Count)
				}
				return tw.Flush()
			})
		},
	}
}
