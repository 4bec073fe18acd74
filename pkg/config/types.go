package config

import (
	"fmt"
	"strconv"
	"strings"
)

// Config represents the persistent chatmem configuration stored as
// config.toml in the .chatmem/ directory. The TOML layout uses sections for
// logical grouping.
type Config struct {
	Version     int               `toml:"version"`
	Storage     StorageConfig     `toml:"storage"`
	Redis       RedisConfig       `toml:"redis"`
	Postgres    PostgresConfig    `toml:"postgres"`
	SQLite      SQLiteConfig      `toml:"sqlite"`
	API         APIConfig         `toml:"api"`
	Memory      MemoryConfig      `toml:"memory"`
	EventStream EventStreamConfig `toml:"eventstream"`
}

// StorageConfig selects the conversation store and the settings shared by
// every backend.
type StorageConfig struct {
	Provider    string `toml:"provider,omitempty"`
	KeyPrefix   string `toml:"key_prefix,omitempty"`
	ReplaceMode string `toml:"replace_mode,omitempty"`
	ScanCount   int64  `toml:"scan_count,omitempty"`
}

// RedisConfig holds the Redis connection settings. Timeout is a Go duration
// string such as "2s"; empty keeps the client defaults.
type RedisConfig struct {
	Host       string `toml:"host,omitempty"`
	Port       int    `toml:"port,omitempty"`
	TLS        bool   `toml:"tls,omitempty"`
	ClientName string `toml:"client_name,omitempty"`
	Timeout    string `toml:"timeout,omitempty"`
	Password   string `toml:"password,omitempty"`
	DB         int    `toml:"db,omitempty"`
}

// PostgresConfig holds PostgreSQL settings.
type PostgresConfig struct {
	DSN   string `toml:"dsn,omitempty"`
	Table string `toml:"table,omitempty"`
}

// SQLiteConfig holds SQLite settings. An empty Path opens an in-memory
// database.
type SQLiteConfig struct {
	Path string `toml:"path,omitempty"`
}

// APIConfig holds API server settings.
type APIConfig struct {
	Listen string `toml:"listen,omitempty"`
}

// MemoryConfig holds the chat memory window settings.
type MemoryConfig struct {
	MaxMessages int `toml:"max_messages,omitempty"`
}

// EventStreamConfig holds conversation event publishing settings.
type EventStreamConfig struct {
	Provider string   `toml:"provider,omitempty"`
	Brokers  []string `toml:"brokers,omitempty"`
	Topic    string   `toml:"topic,omitempty"`
}

// configKeyInfo maps a user-facing dotted key name to a getter and setter on *Config.
type configKeyInfo struct {
	get func(c *Config) string
	set func(c *Config, v string) error
}

func stringKey(field func(c *Config) *string) configKeyInfo {
	return configKeyInfo{
		get: func(c *Config) string { return *field(c) },
		set: func(c *Config, v string) error { *field(c) = v; return nil },
	}
}

func intKey(name string, field func(c *Config) *int) configKeyInfo {
	return configKeyInfo{
		get: func(c *Config) string {
			if *field(c) == 0 {
				return ""
			}
			return strconv.Itoa(*field(c))
		},
		set: func(c *Config, v string) error {
			n, err := strconv.Atoi(v)
			if err != nil {
				return fmt.Errorf("invalid value for %s: %w", name, err)
			}
			*field(c) = n
			return nil
		},
	}
}

// configKeys is the authoritative map of all supported config keys.
// Keys use dotted notation matching the TOML section structure.
var configKeys = map[string]configKeyInfo{
	"storage.provider":     stringKey(func(c *Config) *string { return &c.Storage.Provider }),
	"storage.key_prefix":   stringKey(func(c *Config) *string { return &c.Storage.KeyPrefix }),
	"storage.replace_mode": stringKey(func(c *Config) *string { return &c.Storage.ReplaceMode }),
	"storage.scan_count": {
		get: func(c *Config) string {
			if c.Storage.ScanCount == 0 {
				return ""
			}
			return strconv.FormatInt(c.Storage.ScanCount, 10)
		},
		set: func(c *Config, v string) error {
			n, err := strconv.ParseInt(v, 10, 64)
			if err != nil {
				return fmt.Errorf("invalid value for storage.scan_count: %w", err)
			}
			c.Storage.ScanCount = n
			return nil
		},
	},
	"redis.host": stringKey(func(c *Config) *string { return &c.Redis.Host }),
	"redis.port": intKey("redis.port", func(c *Config) *int { return &c.Redis.Port }),
	"redis.tls": {
		get: func(c *Config) string { return strconv.FormatBool(c.Redis.TLS) },
		set: func(c *Config, v string) error {
			b, err := strconv.ParseBool(v)
			if err != nil {
				return fmt.Errorf("invalid value for redis.tls: %w", err)
			}
			c.Redis.TLS = b
			return nil
		},
	},
	"redis.client_name": stringKey(func(c *Config) *string { return &c.Redis.ClientName }),
	"redis.timeout":     stringKey(func(c *Config) *string { return &c.Redis.Timeout }),
	"redis.password":    stringKey(func(c *Config) *string { return &c.Redis.Password }),
	"redis.db":          intKey("redis.db", func(c *Config) *int { return &c.Redis.DB }),
	"postgres.dsn":      stringKey(func(c *Config) *string { return &c.Postgres.DSN }),
	"postgres.table":    stringKey(func(c *Config) *string { return &c.Postgres.Table }),
	"sqlite.path":       stringKey(func(c *Config) *string { return &c.SQLite.Path }),
	"api.listen":        stringKey(func(c *Config) *string { return &c.API.Listen }),
	"memory.max_messages": intKey("memory.max_messages", func(c *Config) *int {
		return &c.Memory.MaxMessages
	}),
	"eventstream.provider": stringKey(func(c *Config) *string { return &c.EventStream.Provider }),
	"eventstream.brokers": {
		get: func(c *Config) string { return strings.Join(c.EventStream.Brokers, ",") },
		set: func(c *Config, v string) error {
			c.EventStream.Brokers = SplitList(v)
			return nil
		},
	},
	"eventstream.topic": stringKey(func(c *Config) *string { return &c.EventStream.Topic }),
}

// SplitList splits a comma separated value, trimming blanks.
func SplitList(v string) []string {
	var out []string
	for _, part := range strings.Split(v, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
