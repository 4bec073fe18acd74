// Package chatmemcmder provides the root chatmem command.
package chatmemcmder

import (
	"github.com/spf13/cobra"

	browsecmder "github.com/papercomputeco/chatmem/cmd/chatmem/browse"
	"github.com/papercomputeco/chatmem/cmd/chatmem/cmdenv"
	configcmder "github.com/papercomputeco/chatmem/cmd/chatmem/config"
	conversationscmder "github.com/papercomputeco/chatmem/cmd/chatmem/conversations"
	initcmder "github.com/papercomputeco/chatmem/cmd/chatmem/init"
	servecmder "github.com/papercomputeco/chatmem/cmd/chatmem/serve"
	versioncmder "github.com/papercomputeco/chatmem/cmd/version"
)

const chatmemLongDesc string = `chatmem is persistent chat memory for LLM applications.

Conversations are stored as ordered message lists in Redis (default),
PostgreSQL, SQLite, or in memory, and served over HTTP and MCP.

Common commands:
  chatmem serve                       Run the API server
  chatmem conversations list          List stored conversations
  chatmem conversations show <id>     Print one conversation
  chatmem browse                      Browse conversations interactively`

const chatmemShortDesc string = "chatmem - persistent chat memory"

func NewChatmemCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:          "chatmem",
		Short:        chatmemShortDesc,
		Long:         chatmemLongDesc,
		SilenceUsage: true,
	}

	// Global flags
	cmd.PersistentFlags().BoolP(cmdenv.FlagDebug, "d", false, "Enable debug logging")
	cmd.PersistentFlags().String(cmdenv.FlagConfigDir, "", "Override path to the .chatmem/ config directory")
	cmd.PersistentFlags().String(cmdenv.FlagLogFile, "", "Also write JSON logs to this file (relative to the config directory)")

	cmd.AddCommand(servecmder.NewServeCmd())
	cmd.AddCommand(initcmder.NewInitCmd())
	cmd.AddCommand(conversationscmder.NewConversationsCmd())
	cmd.AddCommand(browsecmder.NewBrowseCmd())
	cmd.AddCommand(configcmder.NewConfigCmd())
	cmd.AddCommand(versioncmder.NewVersionCmd())

	return cmd
}
