package mcp

import (
	"context"

	"flowcast/internal/analysis"
	"flowcast/internal/config"

	sdk "github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/rs/zerolog/log"
)

// Server holds the state for the MCP server.
type Server struct {
	cfg      *config.AppConfig
	registry *analysis.Registry
	mcp      *sdk.Server
}

// NewServer creates a new MCP server with all tools registered.
func NewServer(cfg *config.AppConfig, version string) *Server {
	s := &Server{
		cfg:      cfg,
		registry: analysis.NewRegistry(cfg.Simulation.Bounds(), cfg.Simulation.Workers),
		mcp: sdk.NewServer(&sdk.Implementation{
			Name:    "flowcast",
			Version: version,
		}, nil),
	}
	s.registerTools()
	return s
}

// Serve runs the server over stdio until the client disconnects or ctx is done.
func (s *Server) Serve(ctx context.Context) error {
	log.Info().Msg("MCP server listening on stdio")
	return s.mcp.Run(ctx, &sdk.StdioTransport{})
}

// Connect attaches the server to an arbitrary transport.
func (s *Server) Connect(ctx context.Context, t sdk.Transport) (*sdk.ServerSession, error) {
	return s.mcp.Connect(ctx, t, nil)
}
