package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/exec"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/halvard/notedown/internal/present"
	"github.com/halvard/notedown/internal/present/format"
	"github.com/halvard/notedown/pkg/api"
)

const defaultPager = "less -FRSX"

// addOutputFlags registers the shared presentation flags.
func addOutputFlags(cmd *cobra.Command, defMode string) {
	cmd.Flags().StringP("output", "o", defMode, "output mode: plain|pretty|json|ndjson|tui")
	cmd.Flags().Bool("json-indent", false, "indent JSON output")
	cmd.Flags().Bool("headers", true, "include column headers in plain output")
}

func outputOptions(cmd *cobra.Command) (present.Options, error) {
	var opts present.Options
	modeStr, _ := cmd.Flags().GetString("output")
	mode, ok := present.ParseMode(modeStr)
	if !ok {
		return opts, fmt.Errorf("unknown output mode %q (want plain|pretty|json|ndjson|tui)", modeStr)
	}
	opts.Mode = mode
	opts.JSONIndent, _ = cmd.Flags().GetBool("json-indent")
	opts.Headers, _ = cmd.Flags().GetBool("headers")
	return opts, nil
}

func renderNotes(cmd *cobra.Command, notes []api.Note, opts present.Options) error {
	app := getApp(cmd)
	if opts.Mode == present.ModeTUI {
		return present.RenderNotes(cmd.Context(), cmd.OutOrStdout(), app.Store, notes, opts)
	}
	return withPager(cmd.Context(), cmd.OutOrStdout(), cmd.ErrOrStderr(), func(w io.Writer) error {
		return present.RenderNotes(cmd.Context(), w, app.Store, notes, opts)
	})
}

func renderNote(cmd *cobra.Command, n api.Note, opts present.Options) error {
	return withPager(cmd.Context(), cmd.OutOrStdout(), cmd.ErrOrStderr(), func(w io.Writer) error {
		return present.RenderNote(w, n, opts)
	})
}

// withPager pipes output through $PAGER when stdout is a terminal; plain
// writers and pipes get the content directly.
func withPager(ctx context.Context, out, errOut io.Writer, write func(io.Writer) error) error {
	outFile, ok := out.(*os.File)
	if !ok || !term.IsTerminal(int(outFile.Fd())) {
		return write(out)
	}
	pager := os.Getenv("PAGER")
	if pager == "" {
		pager = defaultPager
	}
	cmd := exec.CommandContext(ctx, "sh", "-c", pager)
	cmd.Stdout = outFile
	if errFile, ok := errOut.(*os.File); ok {
		cmd.Stderr = errFile
	} else {
		cmd.Stderr = os.Stderr
	}
	stdin, err := cmd.StdinPipe()
	if err != nil {
		return write(out)
	}
	if err := cmd.Start(); err != nil {
		return write(out)
	}
	writeErr := write(stdin)
	_ = stdin.Close()
	waitErr := cmd.Wait()
	if writeErr != nil {
		return writeErr
	}
	return waitErr
}

// noteStreamWriter is the batch interface export paging writes through.
type noteStreamWriter interface {
	WriteNotes([]api.Note) error
	Close() error
}

func newNoteStreamWriter(w io.Writer, opts present.Options) noteStreamWriter {
	switch opts.Mode {
	case present.ModeJSON:
		return format.NewJSONStreamWriter(w, opts.JSONIndent)
	case present.ModeNDJSON:
		return format.NewNDJSONStreamWriter(w)
	default:
		return format.NewPlainStreamWriter(w, opts.Headers)
	}
}
