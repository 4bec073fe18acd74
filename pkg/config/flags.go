package config

import (
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// Flag is the single source of truth for a CLI flag.
// Commands reference flags by registry key rather than hard-coding names,
// shorthands, defaults, and descriptions inline. This prevents flag drift
// when the same logical flag appears on multiple commands (e.g., --provider
// on both "chatmem serve" and "chatmem conversations").
type Flag struct {
	// Name is the long flag name (e.g. "redis-host").
	Name string

	// Shorthand is the one-letter short flag (e.g. "l"). Empty for no shorthand.
	Shorthand string

	// ViperKey is the dotted config key this flag maps to (e.g. "redis.host").
	ViperKey string

	// Description is the help text shown in --help output.
	Description string
}

// FlagSet is a mapping of flag names to Flag structs that hold their name,
// shorthand, viper key, etc.
type FlagSet map[string]Flag

// Flag registry keys.
// Use these constants when calling AddStringFlag, AddIntFlag,
// and BindRegisteredFlags to avoid typos or drift from one command to another.
const (
	FlagProvider    = "provider"
	FlagKeyPrefix   = "key-prefix"
	FlagReplaceMode = "replace-mode"
	FlagRedisHost   = "redis-host"
	FlagRedisPort   = "redis-port"
	FlagPostgresDSN = "postgres-dsn"
	FlagSQLite      = "sqlite"
	FlagAPIListen   = "listen"
	FlagMaxMessages = "max-messages"
	FlagEventStream = "eventstream"
)

// StorageFlags are the registry keys every command that opens a
// conversation store registers.
var StorageFlags = []string{
	FlagProvider,
	FlagKeyPrefix,
	FlagReplaceMode,
	FlagRedisHost,
	FlagRedisPort,
	FlagPostgresDSN,
	FlagSQLite,
}

// Flags is the chatmem flag registry.
var Flags = FlagSet{
	FlagProvider: {
		Name:        "provider",
		Shorthand:   "p",
		ViperKey:    "storage.provider",
		Description: "Conversation store (redis, postgres, sqlite, inmemory)",
	},
	FlagKeyPrefix: {
		Name:        "key-prefix",
		ViperKey:    "storage.key_prefix",
		Description: "Key prefix for Redis conversation keys",
	},
	FlagReplaceMode: {
		Name:        "replace-mode",
		ViperKey:    "storage.replace_mode",
		Description: "How Redis replaces a conversation (sequential, atomic)",
	},
	FlagRedisHost: {
		Name:        "redis-host",
		ViperKey:    "redis.host",
		Description: "Redis host",
	},
	FlagRedisPort: {
		Name:        "redis-port",
		ViperKey:    "redis.port",
		Description: "Redis port",
	},
	FlagPostgresDSN: {
		Name:        "postgres-dsn",
		ViperKey:    "postgres.dsn",
		Description: "PostgreSQL connection string",
	},
	FlagSQLite: {
		Name:        "sqlite",
		Shorthand:   "s",
		ViperKey:    "sqlite.path",
		Description: "Path to SQLite database (default: in-memory)",
	},
	FlagAPIListen: {
		Name:        "listen",
		Shorthand:   "l",
		ViperKey:    "api.listen",
		Description: "Address for the API server to listen on",
	},
	FlagMaxMessages: {
		Name:        "max-messages",
		ViperKey:    "memory.max_messages",
		Description: "Message window size used when appending to a conversation",
	},
	FlagEventStream: {
		Name:        "eventstream",
		ViperKey:    "eventstream.provider",
		Description: "Conversation event publisher (none, kafka)",
	},
}

// AddStringFlag registers a string flag on cmd from the given FlagSet.
// The flag's name, shorthand, default, and description all come from the
// FlagSet entry so they cannot drift across commands.
func AddStringFlag(cmd *cobra.Command, fs FlagSet, key string, target *string) {
	def, ok := fs[key]
	if !ok {
		return
	}

	defaultVal := defaultString(def.ViperKey)
	if def.Shorthand != "" {
		cmd.Flags().StringVarP(target, def.Name, def.Shorthand, defaultVal, def.Description)
	} else {
		cmd.Flags().StringVar(target, def.Name, defaultVal, def.Description)
	}
}

// AddIntFlag registers an int flag on cmd from the given FlagSet.
func AddIntFlag(cmd *cobra.Command, fs FlagSet, registryKey string, target *int) {
	def, ok := fs[registryKey]
	if !ok {
		return
	}

	defaultVal := defaultInt(def.ViperKey)
	if def.Shorthand != "" {
		cmd.Flags().IntVarP(target, def.Name, def.Shorthand, defaultVal, def.Description)
	} else {
		cmd.Flags().IntVar(target, def.Name, defaultVal, def.Description)
	}
}

// BindRegisteredFlags binds already-registered flags to viper using definitions
// from the given FlagSet. Call this in PreRunE after InitViper to connect flags
// to the viper precedence chain (flag > env > config file > default).
func BindRegisteredFlags(v *viper.Viper, cmd *cobra.Command, fs FlagSet, registryKeys []string) {
	for _, registryKey := range registryKeys {
		def, ok := fs[registryKey]
		if !ok {
			continue
		}

		f := cmd.Flags().Lookup(def.Name)
		if f == nil {
			continue
		}

		_ = v.BindPFlag(def.ViperKey, f)
	}
}

// defaultString returns the default string value for a viper key from NewDefaultConfig.
func defaultString(viperKey string) string {
	v := viper.New()
	setViperDefaults(v)
	return v.GetString(viperKey)
}

// defaultInt returns the default int value for a viper key from NewDefaultConfig.
func defaultInt(viperKey string) int {
	v := viper.New()
	setViperDefaults(v)
	return v.GetInt(viperKey)
}
