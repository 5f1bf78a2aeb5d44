package cli

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/halvard/notedown/internal/render"
)

// newRenderCmd converts Markdown to HTML without touching the store:
// `render file.md`, `render -` for stdin, or `render --note 7`.
func newRenderCmd() *cobra.Command {
	var noteID int64
	var page bool
	var strictLists bool
	cmd := &cobra.Command{
		Use:   "render [file|-]",
		Short: "Convert Markdown to HTML",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app := getApp(cmd)

			var title, text string
			switch {
			case noteID > 0:
				n, err := app.Store.Get(cmd.Context(), noteID)
				if err != nil {
					return err
				}
				title, text = n.Title, n.Body
			case len(args) == 1 && args[0] != "-":
				b, err := os.ReadFile(args[0])
				if err != nil {
					return err
				}
				title, text = args[0], string(b)
			case len(args) == 1:
				b, err := io.ReadAll(cmd.InOrStdin())
				if err != nil {
					return err
				}
				title, text = "stdin", string(b)
			default:
				return fmt.Errorf("pass a file, - for stdin, or --note <id>")
			}

			r := app.Renderer
			if strictLists {
				r = render.New(true)
			}
			out := r.HTML(text)
			if page {
				out = r.Page(title, text)
			}
			_, _ = fmt.Fprintln(cmd.OutOrStdout(), out)
			return nil
		},
	}
	cmd.Flags().Int64Var(&noteID, "note", 0, "render a stored note by id")
	cmd.Flags().BoolVar(&page, "page", false, "emit a full HTML document instead of a fragment")
	cmd.Flags().BoolVar(&strictLists, "strict-lists", false, "wrap every list run (overrides render.strict_lists)")
	return cmd
}
