package cli

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/halvard/notedown/pkg/api"
)

func newImportCmd() *cobra.Command {
	var file string
	var dir string
	cmd := &cobra.Command{
		Use:   "import",
		Short: "Import notes from JSON (array or NDJSON) or a Markdown directory",
		RunE: func(cmd *cobra.Command, args []string) error {
			if strings.TrimSpace(file) == "" && strings.TrimSpace(dir) == "" {
				return fmt.Errorf("--file or --dir is required")
			}
			app := getApp(cmd)

			imported := 0
			failed := 0
			now := time.Now().UTC()

			importOne := func(n api.Note) {
				// IDs and versions never carry over; the store assigns fresh ones.
				fresh := api.NewNote(n.Title, n.Body, n.Tags, now)
				if !n.CreatedAt.IsZero() {
					fresh.CreatedAt = n.CreatedAt
					fresh.UpdatedAt = n.CreatedAt
				}
				if !n.UpdatedAt.IsZero() {
					fresh.UpdatedAt = n.UpdatedAt
				}
				if _, err := app.Store.Create(cmd.Context(), fresh); err != nil {
					app.Log.Printf("import: skipping %q: %v", n.Title, err)
					failed++
					return
				}
				imported++
			}

			if dir != "" {
				if err := importMarkdownDir(dir, importOne); err != nil {
					return err
				}
			} else {
				f, err := os.Open(file)
				if err != nil {
					return err
				}
				defer f.Close()

				br := bufio.NewReader(f)
				first, err := peekFirstNonSpace(br)
				if err != nil {
					return err
				}

				dec := json.NewDecoder(br)
				if first == '[' {
					var arr []api.Note
					if err := dec.Decode(&arr); err != nil {
						return err
					}
					for _, n := range arr {
						importOne(n)
					}
				} else {
					for {
						var n api.Note
						if err := dec.Decode(&n); err != nil {
							if errors.Is(err, io.EOF) {
								break
							}
							return err
						}
						importOne(n)
					}
				}
			}

			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Imported: %d\nFailed: %d\n", imported, failed)
			return nil
		},
	}
	cmd.Flags().StringVarP(&file, "file", "f", "", "input JSON file (array or NDJSON)")
	cmd.Flags().StringVar(&dir, "dir", "", "import every .md file from this directory")
	return cmd
}

// importMarkdownDir reads every .md file in dir. The title comes from a
// leading `# ` heading (stripped from the body) or the filename.
func importMarkdownDir(dir string, importOne func(api.Note)) error {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return err
	}
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".md") {
			continue
		}
		data, err := os.ReadFile(filepath.Join(dir, e.Name()))
		if err != nil {
			return err
		}
		title, body := parseMarkdownNote(string(data))
		if title == "" {
			title = strings.TrimSuffix(e.Name(), ".md")
		}
		importOne(api.Note{Title: title, Body: body})
	}
	return nil
}

func parseMarkdownNote(s string) (title, body string) {
	s = strings.TrimLeft(s, "\n")
	if strings.HasPrefix(s, "# ") {
		line := s
		if i := strings.IndexByte(s, '\n'); i >= 0 {
			line, body = s[:i], s[i+1:]
		} else {
			body = ""
		}
		title = strings.TrimSpace(strings.TrimPrefix(line, "# "))
		return title, strings.TrimSpace(body)
	}
	return "", strings.TrimSpace(s)
}

func peekFirstNonSpace(r *bufio.Reader) (byte, error) {
	for {
		b, err := r.ReadByte()
		if err != nil {
			return 0, err
		}
		if b == ' ' || b == '\n' || b == '\r' || b == '\t' {
			continue
		}
		// put it back for the decoder
		if err := r.UnreadByte(); err != nil {
			return 0, err
		}
		return b, nil
	}
}
