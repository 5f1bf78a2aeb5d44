// Package render turns note bodies into output surfaces: HTML fragments for
// the preview pane, a standalone HTML page for the preview server, and ANSI
// for terminal display.
package render

import (
	"fmt"
	"html"
	"strings"

	"github.com/charmbracelet/glamour"

	"github.com/halvard/notedown/pkg/markdown"
)

// Renderer owns a configured converter. It is safe for concurrent use.
type Renderer struct {
	conv *markdown.Converter
}

// New builds a renderer. strictLists enables the corrected list wrapping
// behind the render.strict_lists config gate.
func New(strictLists bool) *Renderer {
	var opts []markdown.Option
	if strictLists {
		opts = append(opts, markdown.WithStrictLists())
	}
	return &Renderer{conv: markdown.New(opts...)}
}

// Converter exposes the underlying converter for callers that hold drafts.
func (r *Renderer) Converter() *markdown.Converter { return r.conv }

// HTML converts a note body to an HTML fragment.
func (r *Renderer) HTML(body string) string { return r.conv.Convert(body) }

const pageShell = `<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<title>%s</title>
<style>
body { max-width: 46rem; margin: 2rem auto; padding: 0 1rem; font-family: system-ui, sans-serif; line-height: 1.6; }
pre { background: #f4f4f4; padding: 0.75rem; overflow-x: auto; }
code { background: #f4f4f4; padding: 0.1rem 0.3rem; }
blockquote { border-left: 3px solid #ccc; margin-left: 0; padding-left: 1rem; color: #555; }
</style>
</head>
<body>
%s
</body>
</html>
`

// Page wraps a converted fragment into a standalone HTML document.
func (r *Renderer) Page(title, body string) string {
	return fmt.Sprintf(pageShell, html.EscapeString(title), r.conv.Convert(body))
}

// ANSI renders a note body for the terminal via glamour. width <= 0 falls
// back to 80 columns.
func (r *Renderer) ANSI(body string, width int) (string, error) {
	if width <= 0 {
		width = 80
	}
	g, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(width),
	)
	if err != nil {
		return "", fmt.Errorf("create terminal renderer: %w", err)
	}
	out, err := g.Render(strings.TrimSpace(body))
	if err != nil {
		return "", fmt.Errorf("render markdown: %w", err)
	}
	return out, nil
}
