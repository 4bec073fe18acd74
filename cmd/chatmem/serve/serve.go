// Package servecmder provides the serve command for running the chatmem API
// server.
package servecmder

import (
	"context"
	"errors"
	"fmt"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/papercomputeco/chatmem/api"
	"github.com/papercomputeco/chatmem/cmd/chatmem/cmdenv"
	"github.com/papercomputeco/chatmem/pkg/config"
	esbackend "github.com/papercomputeco/chatmem/pkg/eventstream/backend"
	"github.com/papercomputeco/chatmem/pkg/eventstream/worker"
	"github.com/papercomputeco/chatmem/pkg/memory"
)

const shutdownTimeout = 10 * time.Second

type serveCommander struct {
	listen      string
	maxMessages int
	eventStream string
	noMCP       bool
}

const serveLongDesc string = `Run the chatmem API server.

The server exposes stored conversations over HTTP:
  GET    /v1/conversations                 List conversation IDs
  GET    /v1/conversations/:id/messages    Read a conversation
  PUT    /v1/conversations/:id/messages    Replace a conversation
  POST   /v1/conversations/:id/messages    Append through the message window
  POST   /v1/conversations/:id/transcripts Append a captured provider payload
  DELETE /v1/conversations/:id             Delete a conversation
and as MCP tools at /mcp.

Writes publish conversation events when an event stream is configured.
SIGINT and SIGTERM shut the server down gracefully.`

const serveShortDesc string = "Run the chatmem API server"

// serveFlags are the registry keys bound to viper for serve.
var serveFlags = append([]string{
	config.FlagAPIListen,
	config.FlagMaxMessages,
	config.FlagEventStream,
}, config.StorageFlags...)

func NewServeCmd() *cobra.Command {
	cmder := &serveCommander{}

	cmd := &cobra.Command{
		Use:   "serve",
		Short: serveShortDesc,
		Long:  serveLongDesc,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return cmder.run(cmd)
		},
	}

	config.AddStringFlag(cmd, config.Flags, config.FlagAPIListen, &cmder.listen)
	config.AddIntFlag(cmd, config.Flags, config.FlagMaxMessages, &cmder.maxMessages)
	config.AddStringFlag(cmd, config.Flags, config.FlagEventStream, &cmder.eventStream)
	cmdenv.AddStorageFlags(cmd)
	cmd.Flags().BoolVar(&cmder.noMCP, "no-mcp", false, "Do not mount the MCP endpoint")

	return cmd
}

func (c *serveCommander) run(cmd *cobra.Command) error {
	env, err := cmdenv.Load(cmd, serveFlags)
	if err != nil {
		return err
	}
	defer env.Close()

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	driver, err := env.OpenStore(ctx)
	if err != nil {
		return err
	}

	window, err := memory.NewWindow(driver,
		memory.WithMaxMessages(env.Config.Memory.MaxMessages),
		memory.WithLogger(env.Logger),
	)
	if err != nil {
		return err
	}

	publisher, err := esbackend.Open(env.Config, env.Logger)
	if err != nil {
		return err
	}
	defer publisher.Close()

	pool, err := worker.NewPool(&worker.Config{
		Publisher: publisher,
		Logger:    env.Logger,
	})
	if err != nil {
		return err
	}
	// Drain queued events before the publisher closes.
	defer pool.Close()

	server, err := api.NewServer(api.Config{
		ListenAddr: env.Config.API.Listen,
		Events:     pool,
		DisableMCP: c.noMCP,
	}, driver, window, env.Logger)
	if err != nil {
		return err
	}

	errChan := make(chan error, 1)
	go func() {
		errChan <- server.Run()
	}()

	select {
	case err := <-errChan:
		if err != nil {
			return fmt.Errorf("API server error: %w", err)
		}
		return nil
	case <-ctx.Done():
		env.Logger.Info("received signal, shutting down")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil && !errors.Is(err, context.Canceled) {
		return fmt.Errorf("shutting down API server: %w", err)
	}
	return nil
}
