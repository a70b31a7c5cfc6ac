// ABOUTME: MCP server exposing levelup game actions to assistants.
// ABOUTME: Wraps the coordinator and social service over stdio transport.
package mcp

import (
	"context"
	"fmt"

	"github.com/harperreed/levelup/internal/coordinator"
	"github.com/harperreed/levelup/internal/social"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// Server wraps the MCP server with game access.
type Server struct {
	mcpServer *mcp.Server
	coord     *coordinator.Coordinator
	social    *social.Service
}

// NewServer creates a new MCP server over the coordinator and social service.
func NewServer(coord *coordinator.Coordinator, svc *social.Service) (*Server, error) {
	if coord == nil {
		return nil, fmt.Errorf("coordinator is required")
	}

	mcpServer := mcp.NewServer(
		&mcp.Implementation{
			Name:    "levelup",
			Version: "1.0.0",
		},
		nil,
	)

	s := &Server{
		mcpServer: mcpServer,
		coord:     coord,
		social:    svc,
	}

	s.registerTools()
	s.registerResources()

	return s, nil
}

// Serve starts the MCP server using stdio transport.
func (s *Server) Serve(ctx context.Context) error {
	return s.mcpServer.Run(ctx, &mcp.StdioTransport{})
}
