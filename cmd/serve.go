// File: cmd/serve.go
package cmd

import (
	"github.com/spf13/cobra"

	"github.com/panelops/teller/internal/observability"
	"github.com/panelops/teller/internal/server"
)

// newServeCmd creates the `serve` command: the long-running HTTP endpoint.
func newServeCmd() *cobra.Command {
	serveCmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP endpoint that accepts transaction requests",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			logger := observability.GetLogger()

			if addr, _ := cmd.Flags().GetString("addr"); addr != "" {
				appCfg.Server.Addr = addr
			}

			eng, cleanup, err := buildEngine(ctx, appCfg, logger)
			if err != nil {
				return err
			}
			defer cleanup()

			srv, err := server.New(appCfg.Server, eng, logger)
			if err != nil {
				return err
			}

			// Blocks until SIGINT/SIGTERM cancels the command context.
			return srv.ListenAndServe(ctx)
		},
	}

	serveCmd.Flags().String("addr", "", "listen address (overrides server.addr)")
	return serveCmd
}
