package cli

import (
	"github.com/spf13/cobra"

	"github.com/halvard/notedown/internal/daemon"
)

func newServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the preview daemon (HTTP API + control socket)",
		RunE: func(cmd *cobra.Command, args []string) error {
			app := getApp(cmd)
			if addr, _ := cmd.Flags().GetString("addr"); addr != "" {
				app.Cfg.Set("http_addr", addr)
			}
			return daemon.Run(cmd.Context(), app)
		},
	}
	cmd.Flags().String("addr", "", "HTTP listen address (overrides http_addr)")
	return cmd
}
