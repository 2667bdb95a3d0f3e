// Package mcp exposes the knowledge base over the Model Context Protocol,
// so MCP-capable clients (editors, agents) can search and query the Hulo
// documentation as tools.
package mcp

import (
	"context"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/hulo-lang/hulomind/internal/log"
	"github.com/hulo-lang/hulomind/internal/service"
)

// Server wraps the MCP SDK server around the knowledge service.
type Server struct {
	mcpServer *mcp.Server
	knowledge *service.Knowledge
	logger    log.Logger
}

// Config holds MCP server configuration.
type Config struct {
	Name    string
	Version string
}

// NewServer creates a new MCP server with the knowledge tools registered.
func NewServer(cfg Config, knowledge *service.Knowledge, logger log.Logger) (*Server, error) {
	if cfg.Name == "" {
		return nil, fmt.Errorf("server name is required")
	}
	if cfg.Version == "" {
		return nil, fmt.Errorf("server version is required")
	}
	if knowledge == nil {
		return nil, fmt.Errorf("knowledge service is required")
	}
	if logger == nil {
		logger = log.NewNop()
	}

	mcpServer := mcp.NewServer(&mcp.Implementation{
		Name:    cfg.Name,
		Version: cfg.Version,
	}, nil)

	s := &Server{
		mcpServer: mcpServer,
		knowledge: knowledge,
		logger:    logger.With("component", "mcp"),
	}

	if err := s.registerTools(); err != nil {
		return nil, fmt.Errorf("registering tools: %w", err)
	}

	return s, nil
}

// Run starts the MCP server on the given transport. Blocks until the
// transport closes or ctx is cancelled.
func (s *Server) Run(ctx context.Context, transport mcp.Transport) error {
	return s.mcpServer.Run(ctx, transport)
}

// RunStdio serves MCP over stdin/stdout, the transport editors spawn.
// Logging must stay on stderr; stdout carries JSON-RPC frames.
func (s *Server) RunStdio(ctx context.Context) error {
	return s.Run(ctx, &mcp.StdioTransport{})
}
