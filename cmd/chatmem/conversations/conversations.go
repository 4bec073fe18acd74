// Package conversationscmder provides the conversations command for reading
// and managing stored conversations from the terminal.
package conversationscmder

import (
	"github.com/spf13/cobra"

	"github.com/papercomputeco/chatmem/cmd/chatmem/cmdenv"
	"github.com/papercomputeco/chatmem/pkg/config"
)

const conversationsLongDesc string = `Read and manage stored conversations.

Subcommands open the configured conversation store directly:
  chatmem conversations list                 List conversation IDs
  chatmem conversations show <id>            Print a conversation
  chatmem conversations delete <id>          Delete a conversation
  chatmem conversations import <id> <file>   Load messages from a JSON file

Storage flags (--provider, --redis-host, ...) override config.toml.`

const conversationsShortDesc string = "Read and manage stored conversations"

func NewConversationsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "conversations",
		Aliases: []string{"conv"},
		Short:   conversationsShortDesc,
		Long:    conversationsLongDesc,
	}

	cmd.AddCommand(newListCmd())
	cmd.AddCommand(newShowCmd())
	cmd.AddCommand(newDeleteCmd())
	cmd.AddCommand(newImportCmd())

	return cmd
}

// storeFlags are the registry keys bound to viper by every subcommand.
var storeFlags = append([]string{config.FlagMaxMessages}, config.StorageFlags...)

func addStoreFlags(cmd *cobra.Command) {
	cmdenv.AddStorageFlags(cmd)
}
