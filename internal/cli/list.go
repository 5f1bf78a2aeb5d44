package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/halvard/notedown/internal/util"
	"github.com/halvard/notedown/pkg/api"
)

func newListCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List notes",
		RunE:  runList,
	}
	addOutputFlags(cmd, "plain")
	addFilterFlags(cmd)
	cmd.Flags().String("sort", "", "sort key: updated|created|title (default from config)")
	cmd.Flags().Bool("reverse", false, "reverse the sort order")
	cmd.Flags().Int("limit", 0, "maximum notes to return")
	cmd.Flags().Int("offset", 0, "notes to skip from the start")
	return cmd
}

func addFilterFlags(cmd *cobra.Command) {
	cmd.Flags().StringSlice("tags-any", nil, "match notes with at least one of these tags")
	cmd.Flags().StringSlice("tags-all", nil, "match notes with all of these tags")
	cmd.Flags().String("since", "", "only notes created after (2h, 3d, 2w, 1mo, or a date)")
	cmd.Flags().String("until", "", "only notes created before")
}

func listQueryFromFlags(cmd *cobra.Command, defaultSort string) (api.ListQuery, error) {
	var q api.ListQuery
	q.Any, _ = cmd.Flags().GetStringSlice("tags-any")
	q.All, _ = cmd.Flags().GetStringSlice("tags-all")
	q.Reverse, _ = cmd.Flags().GetBool("reverse")
	q.Limit, _ = cmd.Flags().GetInt("limit")
	q.Offset, _ = cmd.Flags().GetInt("offset")

	sortStr, _ := cmd.Flags().GetString("sort")
	if sortStr == "" {
		sortStr = defaultSort
	}
	if sortStr != "" {
		key, ok := api.ParseSortKey(sortStr)
		if !ok {
			return q, fmt.Errorf("unknown sort key %q (want updated|created|title)", sortStr)
		}
		q.Sort = key
	}

	since, _ := cmd.Flags().GetString("since")
	until, _ := cmd.Flags().GetString("until")
	s, u, err := util.ParseTimeRange(since, until)
	if err != nil {
		return q, err
	}
	q.Since, q.Until = s, u
	return q, nil
}

func runList(cmd *cobra.Command, args []string) error {
	app := getApp(cmd)
	opts, err := outputOptions(cmd)
	if err != nil {
		return err
	}
	q, err := listQueryFromFlags(cmd, app.Cfg.GetString("sort"))
	if err != nil {
		return err
	}
	notes, _, err := app.Store.List(cmd.Context(), q)
	if err != nil {
		return err
	}
	return renderNotes(cmd, notes, opts)
}
