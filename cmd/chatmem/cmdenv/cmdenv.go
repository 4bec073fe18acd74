// Package cmdenv resolves the runtime shared by chatmem commands: the
// effective configuration, the logger, and the conversation store.
package cmdenv

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/papercomputeco/chatmem/pkg/config"
	"github.com/papercomputeco/chatmem/pkg/dotdir"
	"github.com/papercomputeco/chatmem/pkg/logger"
	"github.com/papercomputeco/chatmem/pkg/storage"
	"github.com/papercomputeco/chatmem/pkg/storage/backend"
)

// Persistent flag names registered on the root command.
const (
	FlagDebug     = "debug"
	FlagConfigDir = "config-dir"
	FlagLogFile   = "log-file"
)

// Env is the resolved runtime of one command invocation.
type Env struct {
	Config *config.Config
	Logger *slog.Logger

	closers []func() error
}

// AddStorageFlags registers the flags every store-opening command shares.
func AddStorageFlags(cmd *cobra.Command) {
	for _, key := range config.StorageFlags {
		if key == config.FlagRedisPort {
			config.AddIntFlag(cmd, config.Flags, key, new(int))
			continue
		}
		config.AddStringFlag(cmd, config.Flags, key, new(string))
	}
}

// Load layers defaults, config.toml, CHATMEM_* environment variables, and
// the registered flags in flagKeys, then builds the logger.
func Load(cmd *cobra.Command, flagKeys []string) (*Env, error) {
	configDir, _ := cmd.Flags().GetString(FlagConfigDir)
	debug, _ := cmd.Flags().GetBool(FlagDebug)
	logFile, _ := cmd.Flags().GetString(FlagLogFile)

	v, err := config.InitViper(configDir)
	if err != nil {
		return nil, err
	}
	config.BindRegisteredFlags(v, cmd, config.Flags, flagKeys)

	env := &Env{Config: config.FromViper(v)}

	terminal := logger.New(
		logger.WithDebug(debug),
		logger.WithPretty(true),
		logger.WithWriter(cmd.ErrOrStderr()),
	)
	if logFile == "" {
		env.Logger = terminal
		return env, nil
	}

	path, err := dotdir.NewManager().Path(configDir, logFile)
	if err != nil {
		return nil, fmt.Errorf("resolving log file: %w", err)
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o600)
	if err != nil {
		return nil, fmt.Errorf("opening log file: %w", err)
	}
	env.closers = append(env.closers, f.Close)

	file := logger.New(
		logger.WithDebug(debug),
		logger.WithJSON(true),
		logger.WithWriter(f),
	)
	env.Logger = logger.Multi(terminal, file)
	return env, nil
}

// OpenStore opens the configured conversation store. The store is closed by
// Close.
func (e *Env) OpenStore(ctx context.Context) (storage.Driver, error) {
	driver, err := backend.Open(ctx, e.Config, e.Logger)
	if err != nil {
		return nil, err
	}
	e.closers = append(e.closers, driver.Close)
	return driver, nil
}

// Close releases everything opened through the Env in reverse order.
func (e *Env) Close() error {
	var errs []error
	for i := len(e.closers) - 1; i >= 0; i-- {
		if err := e.closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	e.closers = nil
	return errors.Join(errs...)
}
