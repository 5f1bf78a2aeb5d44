// Package present renders notes to the terminal in one of several output
// modes: plain TSV, glamour-formatted pretty output, JSON, NDJSON, or an
// interactive table.
package present

import (
	"context"
	"errors"
	"io"

	"github.com/halvard/notedown/internal/db"
	"github.com/halvard/notedown/internal/present/format"
	"github.com/halvard/notedown/internal/present/tui"
	"github.com/halvard/notedown/pkg/api"
)

type Mode int

const (
	ModePlain Mode = iota
	ModePretty
	ModeJSON
	ModeNDJSON
	ModeTUI
)

type Options struct {
	Mode       Mode
	JSONIndent bool
	Headers    bool
}

// ParseMode parses "plain", "pretty", "json", "ndjson", or "tui".
func ParseMode(s string) (Mode, bool) {
	switch s {
	case "plain":
		return ModePlain, true
	case "pretty":
		return ModePretty, true
	case "json":
		return ModeJSON, true
	case "ndjson":
		return ModeNDJSON, true
	case "tui":
		return ModeTUI, true
	default:
		return ModePlain, false
	}
}

// RenderNotes renders a list of notes according to options. The TUI mode
// needs the store so it can delete and reload from inside the browser.
func RenderNotes(ctx context.Context, w io.Writer, store db.Store, notes []api.Note, opts Options) error {
	switch opts.Mode {
	case ModeJSON:
		return format.WriteJSONNotes(w, notes, opts.JSONIndent)
	case ModeNDJSON:
		return format.WriteNDJSONNotes(w, notes)
	case ModeTUI:
		sel, err := tui.Browse(ctx, store, notes, opts.Headers)
		if err != nil {
			return err
		}
		if sel != nil {
			return format.WritePrettyNote(w, *sel)
		}
		return nil
	default:
		// Pretty lists fall back to plain until a glamour table exists.
		return format.WritePlainNotes(w, notes, opts.Headers)
	}
}

// RenderNote renders a single note according to options.
func RenderNote(w io.Writer, n api.Note, opts Options) error {
	switch opts.Mode {
	case ModeJSON:
		return format.WriteJSONNote(w, n, opts.JSONIndent)
	case ModeNDJSON:
		return format.WriteNDJSONNote(w, n)
	case ModePretty:
		return format.WritePrettyNote(w, n)
	case ModeTUI:
		return errors.New("tui output not supported for a single note")
	default:
		return format.WritePlainNote(w, n, opts.Headers)
	}
}
