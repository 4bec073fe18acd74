// Package configcmder provides the config command for managing persistent
// chatmem configuration stored in the .chatmem/ directory.
package configcmder

import (
	"github.com/spf13/cobra"
)

const configLongDesc string = `Manage persistent chatmem configuration.

Configuration is stored as config.toml in the .chatmem/ directory and provides
default values for command flags. CLI flags and CHATMEM_* environment
variables take precedence over config file values.

Keys use dotted notation matching the TOML section structure:
  storage.provider, storage.key_prefix, storage.replace_mode, storage.scan_count,
  redis.host, redis.port, redis.tls, redis.client_name, redis.timeout,
  redis.password, redis.db,
  postgres.dsn, postgres.table, sqlite.path,
  api.listen, memory.max_messages,
  eventstream.provider, eventstream.brokers, eventstream.topic

Use subcommands to get, set, or list configuration values:
  chatmem config set <key> <value>    Set a configuration value
  chatmem config get <key>            Get a configuration value
  chatmem config list                 List all configuration values

Examples:
  chatmem config set storage.provider postgres
  chatmem config set redis.host redis.internal
  chatmem config get storage.key_prefix
  chatmem config list`

const configShortDesc string = "Manage persistent chatmem configuration"

func NewConfigCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: configShortDesc,
		Long:  configLongDesc,
	}

	cmd.AddCommand(newSetCmd())
	cmd.AddCommand(newGetCmd())
	cmd.AddCommand(newListCmd())

	return cmd
}

// maskSecret hides all but the last four characters of a credential.
func maskSecret(value string) string {
	if value == "" {
		return ""
	}
	const visible = 4
	if len(value) <= visible {
		return "****"
	}
	return "****" + value[len(value)-visible:]
}
