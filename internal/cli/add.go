package cli

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/halvard/notedown/internal/editor"
	"github.com/halvard/notedown/pkg/api"
)

// newAddCmd registers `add`. With a title argument it creates a one-liner;
// without, it opens $EDITOR on an empty note.
func newAddCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "add [title]",
		Short: "Add a new note",
		Args:  cobra.ArbitraryArgs,
		RunE:  runAdd,
	}
	cmd.Flags().StringSliceP("tags", "t", nil, "tags (comma-separated or repeated)")
	cmd.Flags().String("body", "", "note body for non-interactive creation")
	return cmd
}

func runAdd(cmd *cobra.Command, args []string) error {
	app := getApp(cmd)
	ctx := cmd.Context()

	tags, _ := cmd.Flags().GetStringSlice("tags")
	if len(tags) == 0 {
		tags = app.Cfg.GetStringSlice("default_tags")
	}

	// One-liner flow
	if len(args) > 0 {
		title := strings.TrimSpace(strings.Join(args, " "))
		if title == "" {
			return fmt.Errorf("empty title")
		}
		body, _ := cmd.Flags().GetString("body")
		n, err := app.Store.Create(ctx, api.NewNote(title, body, tags, time.Now()))
		if err != nil {
			return err
		}
		_, _ = fmt.Fprintf(cmd.OutOrStdout(), "%d\t%s\n", n.ID, n.Title)
		return nil
	}

	// Editor flow: create an empty note first so it has an ID, then update.
	n, err := app.Store.Create(ctx, api.NewNote("", "", tags, time.Now()))
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

	deleteEmpty := app.Cfg.GetBool("editor.delete_empty")
	abort := func(msg string) error {
		if deleteEmpty {
			_ = app.Store.Delete(ctx, n.ID)
		}
		_, _ = fmt.Fprintln(cmd.OutOrStdout(), msg)
		return nil
	}

	if !changed {
		return abort("No edits; note discarded.")
	}
	title, newTags, body := editor.ParseEditedNote(string(out))
	if title == "" {
		title = editor.FirstLine(body)
	}
	if title == "" && strings.TrimSpace(body) == "" {
		return abort("Note aborted: empty content.")
	}
	if len(newTags) == 0 {
		newTags = tags
	}

	n.Title = title
	n.Body = body
	n.Tags = newTags
	prev := n.Version
	n.Version++
	n.Touch(time.Now())
	saved, err := app.Store.Update(ctx, n, prev)
	if err != nil {
		return err
	}
	_, _ = fmt.Fprintf(cmd.OutOrStdout(), "%d\t%s\n", saved.ID, saved.Title)
	return nil
}
