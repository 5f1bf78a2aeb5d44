package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/halvard/notedown/internal/util"
	"github.com/halvard/notedown/pkg/api"
)

// completeNoteIDs offers "id\ttitle" completions, fuzzy-ranked by title.
func completeNoteIDs(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
	app := getApp(cmd)
	notes, _, err := app.Store.List(cmd.Context(), api.ListQuery{Limit: 200})
	if err != nil {
		return nil, cobra.ShellCompDirectiveError
	}

	byTitle := make(map[string]int64, len(notes))
	titles := make([]string, 0, len(notes))
	for _, n := range notes {
		titles = append(titles, n.Title)
		byTitle[n.Title] = n.ID
	}

	out := make([]string, 0, len(notes))
	for _, title := range util.ScoreCompletions(toComplete, titles, 25) {
		out = append(out, fmt.Sprintf("%d\t%s", byTitle[title], title))
	}
	return out, cobra.ShellCompDirectiveNoFileComp
}
