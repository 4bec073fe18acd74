package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/viper"

	"github.com/papercomputeco/chatmem/pkg/dotdir"
)

// EnvPrefix is the prefix of environment variables read by InitViper.
const EnvPrefix = "CHATMEM"

// InitViper creates and returns a configured *viper.Viper.
// It sets defaults from NewDefaultConfig(), reads the config.toml file
// (if found via dotdir resolution), and binds environment variables
// with the CHATMEM_ prefix.
//
// Config precedence (highest to lowest):
//  1. CLI flags (once bound via BindRegisteredFlags)
//  2. Environment variables (CHATMEM_REDIS_HOST, CHATMEM_API_LISTEN, etc.)
//  3. config.toml file values
//  4. Defaults from NewDefaultConfig()
func InitViper(configDir string) (*viper.Viper, error) {
	v := viper.New()

	// 1. Register all defaults from NewDefaultConfig().
	setViperDefaults(v)

	// 2. Config file discovery via dotdir resolution.
	v.SetConfigName("config")
	v.SetConfigType("toml")

	ddm := dotdir.NewManager()
	target, err := ddm.Target(configDir)
	if err != nil {
		return nil, fmt.Errorf("resolving config dir: %w", err)
	}

	if target != "" {
		v.AddConfigPath(target)
	}

	if err := v.ReadInConfig(); err != nil {
		// Config file not found errors are fine, defaults will apply.
		if !errors.As(err, &viper.ConfigFileNotFoundError{}) {
			return nil, fmt.Errorf("reading config: %w", err)
		}
	}

	// 3. Environment variables: CHATMEM_STORAGE_PROVIDER, CHATMEM_REDIS_PORT, etc.
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	return v, nil
}

// setViperDefaults registers defaults from NewDefaultConfig() into viper
// using dotted-key notation. This keeps defaults.go as the single source of truth.
func setViperDefaults(v *viper.Viper) {
	d := NewDefaultConfig()

	v.SetDefault("version", d.Version)

	// Storage
	v.SetDefault("storage.provider", d.Storage.Provider)
	v.SetDefault("storage.key_prefix", d.Storage.KeyPrefix)
	v.SetDefault("storage.replace_mode", d.Storage.ReplaceMode)
	v.SetDefault("storage.scan_count", d.Storage.ScanCount)

	// Redis
	v.SetDefault("redis.host", d.Redis.Host)
	v.SetDefault("redis.port", d.Redis.Port)
	v.SetDefault("redis.tls", d.Redis.TLS)
	v.SetDefault("redis.client_name", d.Redis.ClientName)
	v.SetDefault("redis.timeout", d.Redis.Timeout)
	v.SetDefault("redis.password", d.Redis.Password)
	v.SetDefault("redis.db", d.Redis.DB)

	// PostgreSQL and SQLite
	v.SetDefault("postgres.dsn", d.Postgres.DSN)
	v.SetDefault("postgres.table", d.Postgres.Table)
	v.SetDefault("sqlite.path", d.SQLite.Path)

	// API
	v.SetDefault("api.listen", d.API.Listen)

	// Memory
	v.SetDefault("memory.max_messages", d.Memory.MaxMessages)

	// Event stream
	v.SetDefault("eventstream.provider", d.EventStream.Provider)
	v.SetDefault("eventstream.brokers", d.EventStream.Brokers)
	v.SetDefault("eventstream.topic", d.EventStream.Topic)
}

// FromViper resolves the effective Config from v after defaults, the config
// file, environment variables, and bound flags have been layered.
func FromViper(v *viper.Viper) *Config {
	return &Config{
		Version: v.GetInt("version"),
		Storage: StorageConfig{
			Provider:    v.GetString("storage.provider"),
			KeyPrefix:   v.GetString("storage.key_prefix"),
			ReplaceMode: v.GetString("storage.replace_mode"),
			ScanCount:   v.GetInt64("storage.scan_count"),
		},
		Redis: RedisConfig{
			Host:       v.GetString("redis.host"),
			Port:       v.GetInt("redis.port"),
			TLS:        v.GetBool("redis.tls"),
			ClientName: v.GetString("redis.client_name"),
			Timeout:    v.GetString("redis.timeout"),
			Password:   v.GetString("redis.password"),
			DB:         v.GetInt("redis.db"),
		},
		Postgres: PostgresConfig{
			DSN:   v.GetString("postgres.dsn"),
			Table: v.GetString("postgres.table"),
		},
		SQLite: SQLiteConfig{
			Path: v.GetString("sqlite.path"),
		},
		API: APIConfig{
			Listen: v.GetString("api.listen"),
		},
		Memory: MemoryConfig{
			MaxMessages: v.GetInt("memory.max_messages"),
		},
		EventStream: EventStreamConfig{
			Provider: v.GetString("eventstream.provider"),
			// Environment values arrive as one comma separated string.
			Brokers: SplitList(strings.Join(v.GetStringSlice("eventstream.brokers"), ",")),
			Topic:   v.GetString("eventstream.topic"),
		},
	}
}
