package format

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/charmbracelet/glamour"

	"github.com/halvard/notedown/pkg/api"
)

// WritePrettyNote renders a full note with markdown formatting via glamour.
func WritePrettyNote(w io.Writer, n api.Note) error {
	ts := n.UpdatedAt.Local().Format(time.RFC3339)
	tags := joinTags(n.Tags)

	md := fmt.Sprintf(`# %s

> **ID:** %d | **Updated:** %s
>
> **Tags:** %s

---

%s
`, n.Title, n.ID, ts, tags, strings.TrimSpace(n.Body))

	r, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(80),
	)
	if err != nil {
		return fmt.Errorf("create renderer: %w", err)
	}

	out, err := r.Render(md)
	if err != nil {
		return fmt.Errorf("render markdown: %w", err)
	}

	_, err = io.WriteString(w, out)
	return err
}
