package cli

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/halvard/notedown/internal/editor"
)

func newEditCmd() *cobra.Command {
	return &cobra.Command{
		Use:               "edit <id>",
		Short:             "Edit a note in $EDITOR",
		Args:              cobra.ExactArgs(1),
		ValidArgsFunction: completeNoteIDs,
		RunE: func(cmd *cobra.Command, args []string) error {
			app := getApp(cmd)
			ctx := cmd.Context()
			id, err := parseNoteID(args[0])
			if err != nil {
				return err
			}
			n, err := app.Store.Get(ctx, id)
			if err != nil {
				return err
			}

			path, err := editor.PathForID(n.ID)
			if err != nil {
				return err
			}
			initial := []byte(editor.ComposeContent(n.Title, n.Tags, n.Body))
			out, changed, err := editor.OpenAt(path, initial)
			if err != nil {
				return err
			}
			_ = os.Remove(path)
			if !changed {
				_, _ = fmt.Fprintln(cmd.OutOrStdout(), "No edits; note unchanged.")
				return nil
			}

			title, tags, body := editor.ParseEditedNote(string(out))
			if title == "" {
				title = editor.FirstLine(body)
			}
			if title == "" && strings.TrimSpace(body) == "" {
				return fmt.Errorf("refusing to save an empty note; delete it instead")
			}

			n.Title = title
			n.Body = body
			n.Tags = tags
			prev := n.Version
			n.Version++
			n.Touch(time.Now())
			saved, err := app.Store.Update(ctx, n, prev)
			if err != nil {
				return err
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "%d\t%s\t(v%d)\n", saved.ID, saved.Title, saved.Version)
			return nil
		},
	}
}
