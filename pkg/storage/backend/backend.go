// Package backend opens the conversation store selected by configuration.
package backend

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/papercomputeco/chatmem/pkg/config"
	"github.com/papercomputeco/chatmem/pkg/storage"
	"github.com/papercomputeco/chatmem/pkg/storage/inmemory"
	"github.com/papercomputeco/chatmem/pkg/storage/postgres"
	"github.com/papercomputeco/chatmem/pkg/storage/redis"
	"github.com/papercomputeco/chatmem/pkg/storage/sqlite"
)

// Supported storage providers.
const (
	ProviderRedis    = "redis"
	ProviderPostgres = "postgres"
	ProviderSQLite   = "sqlite"
	ProviderInMemory = "inmemory"
)

// Providers returns the supported provider names.
func Providers() []string {
	return []string{ProviderRedis, ProviderPostgres, ProviderSQLite, ProviderInMemory}
}

// Open creates the storage.Driver named by cfg.Storage.Provider. An empty
// provider selects Redis.
func Open(ctx context.Context, cfg *config.Config, log *slog.Logger) (storage.Driver, error) {
	provider := strings.ToLower(strings.TrimSpace(cfg.Storage.Provider))

	switch provider {
	case "", ProviderRedis:
		rc, err := RedisConfig(cfg)
		if err != nil {
			return nil, err
		}
		mode, err := redis.ParseReplaceMode(cfg.Storage.ReplaceMode)
		if err != nil {
			return nil, err
		}

		driver, err := redis.NewDriver(ctx, rc,
			redis.WithKeyPrefix(cfg.Storage.KeyPrefix),
			redis.WithReplaceMode(mode),
			redis.WithScanCount(cfg.Storage.ScanCount),
			redis.WithLogger(log),
		)
		if err != nil {
			return nil, err
		}
		log.Info("using redis storage",
			"addr", rc.Addr(),
			"key_prefix", driver.KeyPrefix(),
			"replace_mode", string(mode),
		)
		return driver, nil

	case ProviderPostgres:
		if cfg.Postgres.DSN == "" {
			return nil, fmt.Errorf("postgres storage requires postgres.dsn")
		}
		driver, err := postgres.NewDriver(ctx, cfg.Postgres.DSN,
			postgres.WithTableName(cfg.Postgres.Table),
			postgres.WithLogger(log),
		)
		if err != nil {
			return nil, fmt.Errorf("failed to create PostgreSQL driver: %w", err)
		}
		log.Info("using postgres storage", "table", cfg.Postgres.Table)
		return driver, nil

	case ProviderSQLite:
		path := cfg.SQLite.Path
		if path == "" {
			path = sqlite.MemoryPath
		}
		driver, err := sqlite.NewDriver(ctx, path, sqlite.WithLogger(log))
		if err != nil {
			return nil, fmt.Errorf("failed to create SQLite driver: %w", err)
		}
		log.Info("using sqlite storage", "path", path)
		return driver, nil

	case ProviderInMemory:
		log.Info("using in-memory storage")
		return inmemory.NewDriver(), nil

	default:
		return nil, fmt.Errorf("unknown storage provider: %q (available: %s)",
			cfg.Storage.Provider, strings.Join(Providers(), ", "))
	}
}

// RedisConfig converts the [redis] config section into connection settings.
func RedisConfig(cfg *config.Config) (redis.Config, error) {
	rc := redis.Config{
		Host:       cfg.Redis.Host,
		Port:       cfg.Redis.Port,
		TLS:        cfg.Redis.TLS,
		ClientName: cfg.Redis.ClientName,
		Password:   cfg.Redis.Password,
		DB:         cfg.Redis.DB,
	}

	if cfg.Redis.Timeout != "" {
		timeout, err := time.ParseDuration(cfg.Redis.Timeout)
		if err != nil {
			return redis.Config{}, fmt.Errorf("invalid redis.timeout %q: %w", cfg.Redis.Timeout, err)
		}
		rc.Timeout = timeout
	}

	return rc, nil
}
