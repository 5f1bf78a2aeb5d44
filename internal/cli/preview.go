package cli

import (
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/halvard/notedown/internal/ipc"
)

// newPreviewCmd talks to a running daemon over the control socket.
func newPreviewCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "preview",
		Short: "Control the daemon's preview session",
	}
	cmd.AddCommand(newPreviewStatusCmd())
	cmd.AddCommand(newPreviewOpenCmd())
	cmd.AddCommand(newPreviewDraftCmd())
	cmd.AddCommand(newPreviewFlushCmd())
	cmd.AddCommand(newPreviewStopCmd())
	return cmd
}

func previewRequest(cmd *cobra.Command, m ipc.Message) (ipc.Response, error) {
	sock, err := ipc.SocketPath()
	if err != nil {
		return ipc.Response{}, err
	}
	resp, err := ipc.Request(cmd.Context(), sock, m)
	if err != nil {
		return resp, fmt.Errorf("is the daemon running? start it with `notedown serve`: %w", err)
	}
	if !resp.OK {
		return resp, errors.New(resp.Msg)
	}
	return resp, nil
}

func newPreviewStatusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show the current session state",
		RunE: func(cmd *cobra.Command, args []string) error {
			resp, err := previewRequest(cmd, ipc.Message{Name: "status"})
			if err != nil {
				return err
			}
			st := resp.Status
			if st == nil || st.NoteID == 0 {
				_, _ = fmt.Fprintln(cmd.OutOrStdout(), "no note open")
				return nil
			}
			state := "saved"
			if st.Dirty {
				state = "dirty"
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "%d\t%s\t%s\n", st.NoteID, st.Title, state)
			if st.LastError != "" {
				_, _ = fmt.Fprintf(cmd.ErrOrStderr(), "last save error: %s\n", st.LastError)
			}
			return nil
		},
	}
}

func newPreviewOpenCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "open <id>",
		Short: "Open a note in the preview session",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseNoteID(args[0])
			if err != nil {
				return err
			}
			resp, err := previewRequest(cmd, ipc.Message{Name: "open", ID: id})
			if err != nil {
				return err
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "opened %d\t%s\n", resp.Note.ID, resp.Note.Title)
			return nil
		},
	}
}

// newPreviewDraftCmd pushes stdin as the draft body and prints the preview
// HTML the daemon returns.
func newPreviewDraftCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "draft",
		Short: "Send stdin as the draft body, print preview HTML",
		RunE: func(cmd *cobra.Command, args []string) error {
			b, err := io.ReadAll(cmd.InOrStdin())
			if err != nil {
				return err
			}
			resp, err := previewRequest(cmd, ipc.Message{Name: "draft", Body: string(b)})
			if err != nil {
				return err
			}
			_, _ = fmt.Fprintln(cmd.OutOrStdout(), resp.HTML)
			return nil
		},
	}
}

func newPreviewFlushCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "flush",
		Short: "Save the pending draft now",
		RunE: func(cmd *cobra.Command, args []string) error {
			resp, err := previewRequest(cmd, ipc.Message{Name: "flush"})
			if err != nil {
				return err
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "saved %d (v%d)\n", resp.Note.ID, resp.Note.Version)
			return nil
		},
	}
}

func newPreviewStopCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "stop",
		Short: "Stop the daemon",
		RunE: func(cmd *cobra.Command, args []string) error {
			_, err := previewRequest(cmd, ipc.Message{Name: "stop"})
			if err != nil {
				return err
			}
			_, _ = fmt.Fprintln(cmd.OutOrStdout(), "daemon stopping")
			return nil
		},
	}
}
