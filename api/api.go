package api

import (
	"context"
	"errors"
	"log/slog"

	"github.com/gofiber/adaptor/v2"
	"github.com/gofiber/fiber/v2"

	"github.com/papercomputeco/chatmem/api/mcp"
	"github.com/papercomputeco/chatmem/pkg/memory"
	"github.com/papercomputeco/chatmem/pkg/storage"
)

// Server is the API server for the conversation store.
type Server struct {
	config Config
	driver storage.Driver
	window *memory.Window
	logger *slog.Logger
	app    *fiber.App
}

// NewServer creates a new API server. The driver and window are owned by the
// caller; Shutdown does not close them.
func NewServer(config Config, driver storage.Driver, window *memory.Window, logger *slog.Logger) (*Server, error) {
	if driver == nil {
		return nil, errors.New("storage driver is required")
	}
	if window == nil {
		return nil, errors.New("memory window is required")
	}
	if logger == nil {
		return nil, errors.New("logger is required")
	}

	app := fiber.New(fiber.Config{
		// Params outlive the request when events are published asynchronously.
		Immutable:             true,
		DisableStartupMessage: true,
		UnescapePath:          true,
	})

	s := &Server{
		config: config,
		driver: driver,
		window: window,
		logger: logger,
		app:    app,
	}

	app.Get("/ping", s.handlePing)

	v1 := app.Group("/v1")
	v1.Get("/conversations", s.handleListConversations)
	v1.Get("/conversations/:id/messages", s.handleGetMessages)
	v1.Put("/conversations/:id/messages", s.handleReplaceMessages)
	v1.Post("/conversations/:id/messages", s.handleAppendMessages)
	v1.Post("/conversations/:id/transcripts", s.handleAppendTranscript)
	v1.Delete("/conversations/:id", s.handleDeleteConversation)

	if !config.DisableMCP {
		mcpServer, err := mcp.NewServer(mcp.Config{
			Driver: driver,
			Logger: logger,
		})
		if err != nil {
			return nil, err
		}
		app.All("/mcp", adaptor.HTTPHandler(mcpServer.Handler()))
	}

	return s, nil
}

// Run starts the API server on the configured address.
func (s *Server) Run() error {
	s.logger.Info("starting API server", "listen", s.config.ListenAddr)
	return s.app.Listen(s.config.ListenAddr)
}

// Shutdown gracefully shuts down the API server, waiting for in-flight
// requests until ctx is done.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.app.ShutdownWithContext(ctx)
}
