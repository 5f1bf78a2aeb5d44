package cli

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/halvard/notedown/internal/present"
	"github.com/halvard/notedown/pkg/api"
)

// newExportCmd pages through the store in config-sized batches and streams
// each batch to the writer, so large stores never sit in memory at once.
func newExportCmd() *cobra.Command {
	var file string
	var dir string
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export notes (bodies included) as JSON, NDJSON, or TSV",
		RunE:  runExport,
	}
	addOutputFlags(cmd, "ndjson")
	addFilterFlags(cmd)
	cmd.Flags().StringVarP(&file, "file", "f", "", "output path (default stdout)")
	cmd.Flags().StringVar(&dir, "dir", "", "write one Markdown file per note into this directory")
	return cmd
}

func runExport(cmd *cobra.Command, args []string) error {
	app := getApp(cmd)
	opts, err := outputOptions(cmd)
	if err != nil {
		return err
	}
	dir, _ := cmd.Flags().GetString("dir")
	if dir == "" && (opts.Mode == present.ModeTUI || opts.Mode == present.ModePretty) {
		return fmt.Errorf("export supports plain, json, and ndjson output (or --dir for Markdown files)")
	}
	q, err := listQueryFromFlags(cmd, "created")
	if err != nil {
		return err
	}
	q.IncludeBody = true

	pageSize := app.Cfg.GetInt("export.page_size")
	if pageSize <= 0 {
		pageSize = 200
	}
	q.Limit = pageSize

	writeBatch := func([]api.Note) error { return nil }
	finish := func() error { return nil }

	if dir != "" {
		if err := os.MkdirAll(dir, 0o700); err != nil {
			return err
		}
		writeBatch = func(notes []api.Note) error {
			for _, n := range notes {
				if err := writeNoteMarkdown(dir, n); err != nil {
					return err
				}
			}
			return nil
		}
	} else {
		var out io.Writer = cmd.OutOrStdout()
		if file, _ := cmd.Flags().GetString("file"); file != "" {
			f, err := os.Create(file)
			if err != nil {
				return err
			}
			defer f.Close()
			out = f
		}
		w := newNoteStreamWriter(out, opts)
		writeBatch = w.WriteNotes
		finish = w.Close
	}

	total := 0
	for {
		notes, page, err := app.Store.List(cmd.Context(), q)
		if err != nil {
			return err
		}
		if err := writeBatch(notes); err != nil {
			return err
		}
		total += len(notes)
		if !page.HasMore {
			break
		}
		q.Offset += len(notes)
	}
	if err := finish(); err != nil {
		return err
	}
	_, _ = fmt.Fprintf(cmd.ErrOrStderr(), "exported %d notes\n", total)
	return nil
}

// writeNoteMarkdown emits dir/<id>-<slug>.md with the title as a leading
// heading, the inverse of the --dir import parse.
func writeNoteMarkdown(dir string, n api.Note) error {
	var b strings.Builder
	if n.Title != "" {
		b.WriteString("# ")
		b.WriteString(n.Title)
		b.WriteString("\n\n")
	}
	b.WriteString(n.Body)
	if !strings.HasSuffix(n.Body, "\n") {
		b.WriteString("\n")
	}
	return os.WriteFile(filepath.Join(dir, noteFileName(n)), []byte(b.String()), 0o600)
}

func noteFileName(n api.Note) string {
	slug := strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			return r
		case r >= 'A' && r <= 'Z':
			return r + ('a' - 'A')
		default:
			return '-'
		}
	}, strings.TrimSpace(n.Title))
	slug = strings.Trim(slug, "-")
	for strings.Contains(slug, "--") {
		slug = strings.ReplaceAll(slug, "--", "-")
	}
	if len(slug) > 60 {
		slug = slug[:60]
	}
	if slug == "" {
		return fmt.Sprintf("%d.md", n.ID)
	}
	return fmt.Sprintf("%d-%s.md", n.ID, slug)
}
