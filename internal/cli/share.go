package cli

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/halvard/notedown/internal/share"
	"github.com/halvard/notedown/pkg/api"
)

func newShareCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "share",
		Short: "Send and receive notes over QUIC",
	}
	cmd.AddCommand(newShareSendCmd())
	cmd.AddCommand(newShareReceiveCmd())
	return cmd
}

func newShareSendCmd() *cobra.Command {
	var insecure bool
	cmd := &cobra.Command{
		Use:               "send <id> <addr>",
		Short:             "Send a note to a receiving peer",
		Args:              cobra.ExactArgs(2),
		ValidArgsFunction: completeNoteIDs,
		RunE: func(cmd *cobra.Command, args []string) error {
			app := getApp(cmd)
			id, err := parseNoteID(args[0])
			if err != nil {
				return err
			}
			n, err := app.Store.Get(cmd.Context(), id)
			if err != nil {
				return err
			}
			if err := share.Send(cmd.Context(), args[1], n, insecure); err != nil {
				return err
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "sent %d\t%s\n", n.ID, n.Title)
			return nil
		},
	}
	cmd.Flags().BoolVar(&insecure, "insecure", false, "skip certificate verification (self-signed receiver)")
	return cmd
}

func newShareReceiveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "receive",
		Short: "Listen for inbound notes and store them",
		RunE: func(cmd *cobra.Command, args []string) error {
			app := getApp(cmd)
			addr := app.Cfg.GetString("share.addr")

			tlsConf, err := shareTLS(cmd.Context(), app.Cfg.GetString("share.domain"), app.Cfg.GetString("share.email"))
			if err != nil {
				return err
			}

			sink := func(ctx context.Context, n api.Note) error {
				// Inbound notes are stored as fresh rows; IDs never carry over.
				stored, err := app.Store.Create(ctx, api.NewNote(n.Title, n.Body, n.Tags, time.Now()))
				if err != nil {
					return err
				}
				app.Log.Printf("received note %q as id=%d", stored.Title, stored.ID)
				return nil
			}

			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "receiving on %s (ctrl-c to stop)\n", addr)
			err = share.Serve(cmd.Context(), addr, tlsConf, sink, app.Log)
			if errors.Is(err, context.Canceled) {
				return nil
			}
			return err
		},
	}
}

// shareTLS picks managed ACME certs when a domain is configured, otherwise
// an ephemeral self-signed cert.
func shareTLS(ctx context.Context, domain, email string) (*tls.Config, error) {
	if domain != "" {
		return share.ManagedTLS(ctx, domain, email)
	}
	return share.SelfSignedTLS()
}
