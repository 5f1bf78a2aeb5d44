package cli

import (
	"strings"

	"github.com/spf13/cobra"

	"github.com/halvard/notedown/internal/util"
	"github.com/halvard/notedown/pkg/api"
)

func newSearchCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "search <query>",
		Short: "Search notes by full text or regex",
		Args:  cobra.MinimumNArgs(1),
		RunE:  runSearch,
	}
	addOutputFlags(cmd, "plain")
	addFilterFlags(cmd)
	cmd.Flags().BoolP("regex", "r", false, "treat the query as a regular expression")
	cmd.Flags().Bool("reverse", false, "oldest matches first")
	cmd.Flags().Int("limit", 0, "maximum matches to return")
	return cmd
}

func runSearch(cmd *cobra.Command, args []string) error {
	app := getApp(cmd)
	opts, err := outputOptions(cmd)
	if err != nil {
		return err
	}

	q := api.SearchQuery{Query: strings.Join(args, " ")}
	q.Regex, _ = cmd.Flags().GetBool("regex")
	q.Any, _ = cmd.Flags().GetStringSlice("tags-any")
	q.All, _ = cmd.Flags().GetStringSlice("tags-all")
	q.Reverse, _ = cmd.Flags().GetBool("reverse")
	q.Limit, _ = cmd.Flags().GetInt("limit")

	since, _ := cmd.Flags().GetString("since")
	until, _ := cmd.Flags().GetString("until")
	s, u, err := util.ParseTimeRange(since, until)
	if err != nil {
		return err
	}
	q.Since, q.Until = s, u

	notes, _, err := app.Store.Search(cmd.Context(), q)
	if err != nil {
		return err
	}
	return renderNotes(cmd, notes, opts)
}
