// Package mcp provides an MCP (Model Context Protocol) server exposing stored
// conversations to agents.
package mcp

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/papercomputeco/chatmem/pkg/storage"
	"github.com/papercomputeco/chatmem/pkg/utils"
)

type Config struct {
	// Driver is the conversation store the tools read from.
	Driver storage.Driver

	// Noop for empty MCP server
	Noop bool

	Logger *slog.Logger
}

type Server struct {
	config    Config
	mcpServer *mcp.Server
	handler   *mcp.StreamableHTTPHandler
}

// NewServer creates a new MCP server with the conversation tools.
func NewServer(c Config) (*Server, error) {
	s := &Server{
		config: c,
	}

	mcpServer := mcp.NewServer(
		&mcp.Implementation{
			Name:    "chatmem",
			Version: utils.Version,
		},
		&mcp.ServerOptions{},
	)

	if !c.Noop {
		if c.Driver == nil {
			return nil, errors.New("storage driver is required")
		}
		if c.Logger == nil {
			return nil, errors.New("logger is required")
		}

		mcp.AddTool(mcpServer, &mcp.Tool{
			Name:        listConversationsToolName,
			Description: listConversationsDescription,
		}, s.handleListConversations)

		mcp.AddTool(mcpServer, &mcp.Tool{
			Name:        getConversationToolName,
			Description: getConversationDescription,
		}, s.handleGetConversation)
	}

	s.mcpServer = mcpServer

	// Stateless: every request is served by the same server and no session
	// state is kept between calls.
	s.handler = mcp.NewStreamableHTTPHandler(
		func(_ *http.Request) *mcp.Server {
			return mcpServer
		},
		&mcp.StreamableHTTPOptions{
			Stateless: true,
		},
	)

	return s, nil
}

// Handler returns the HTTP handler for the MCP server.
func (s *Server) Handler() http.Handler {
	return s.handler
}

// MCPServer returns the underlying MCP server, for serving over transports
// other than HTTP.
func (s *Server) MCPServer() *mcp.Server {
	return s.mcpServer
}
