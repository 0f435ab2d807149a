package commands

import (
	"flowcast/internal/mcp"

	"github.com/spf13/cobra"
)

func newMCPCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "mcp",
		Short: "Run the MCP server on stdio",
		Long: `Run a Model Context Protocol server on stdin/stdout. Datasets are loaded with
the load_dataset tool and kept in memory for the lifetime of the process.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return mcp.NewServer(a.cfg, Version).Serve(cmd.Context())
		},
	}
}
