package format

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/halvard/notedown/pkg/api"
)

// TSV columns: id, title, updated_unix_ms, tags
var headerLine = "id\ttitle\tupdated_unix_ms\ttags\n"

func esc(field string) string {
	field = strings.ReplaceAll(field, "\t", "\\t")
	field = strings.ReplaceAll(field, "\n", "\\n")
	return field
}

func joinTags(tags []string) string {
	return strings.Join(tags, ",")
}

func noteLine(n api.Note) string {
	ms := n.UpdatedAt.UnixNano() / int64(time.Millisecond)
	return fmt.Sprintf("%d\t%s\t%d\t%s\n", n.ID, esc(n.Title), ms, esc(joinTags(n.Tags)))
}

func WritePlainNotes(w io.Writer, notes []api.Note, headers bool) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	if headers {
		_, _ = io.WriteString(tw, headerLine)
	}
	for _, n := range notes {
		_, _ = io.WriteString(tw, noteLine(n))
	}
	return tw.Flush()
}

func WritePlainNote(w io.Writer, n api.Note, headers bool) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	if headers {
		_, _ = io.WriteString(tw, headerLine)
	}
	_, _ = io.WriteString(tw, noteLine(n))
	return tw.Flush()
}
