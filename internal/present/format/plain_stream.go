package format

import (
	"io"
	"text/tabwriter"

	"github.com/halvard/notedown/pkg/api"
)

// PlainStreamWriter incrementally writes notes in the plain TSV format.
type PlainStreamWriter struct {
	tw          *tabwriter.Writer
	headers     bool
	wroteHeader bool
}

// NewPlainStreamWriter creates a streaming plain writer.
func NewPlainStreamWriter(w io.Writer, headers bool) *PlainStreamWriter {
	return &PlainStreamWriter{
		tw:      tabwriter.NewWriter(w, 0, 0, 2, ' ', 0),
		headers: headers,
	}
}

// WriteNotes writes a batch of notes and flushes.
func (pw *PlainStreamWriter) WriteNotes(notes []api.Note) error {
	if pw.headers && !pw.wroteHeader {
		_, _ = io.WriteString(pw.tw, headerLine)
		pw.wroteHeader = true
	}
	for _, n := range notes {
		_, _ = io.WriteString(pw.tw, noteLine(n))
	}
	return pw.tw.Flush()
}

// Close flushes remaining buffered output.
func (pw *PlainStreamWriter) Close() error {
	return pw.tw.Flush()
}
