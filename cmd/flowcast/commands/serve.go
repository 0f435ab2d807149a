package commands

import (
	"os"
	"os/signal"
	"syscall"

	"flowcast/internal/api"

	"github.com/spf13/cobra"
)

func newServeCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Serve the analysis HTTP API",
		Long: `Serve the JSON API on the configured address (--addr or FLOWCAST_HTTP_ADDR):

  POST /api/v1/analysis   multipart upload of a CSV/XLSX file
  POST /api/v1/forecast   forecast from a raw daily throughput sample
  GET  /healthz
  GET  /metrics           Prometheus metrics`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return api.NewServer(a.cfg).ListenAndServe(ctx)
		},
	}
}
