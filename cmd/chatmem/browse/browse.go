// Package browsecmder provides the browse command, a terminal UI for paging
// through stored conversations.
package browsecmder

import (
	"github.com/spf13/cobra"

	"github.com/papercomputeco/chatmem/cmd/chatmem/cmdenv"
	"github.com/papercomputeco/chatmem/pkg/config"
)

const browseLongDesc string = `Browse stored conversations in a terminal UI.

The left pane lists conversation IDs; enter opens the selected conversation
and esc returns to the list.

Examples:
  chatmem browse
  chatmem browse --provider sqlite --sqlite ./chatmem.db
  chatmem browse --conversation user-42`

const browseShortDesc string = "Browse stored conversations"

type browseCommander struct {
	conversation string
}

func NewBrowseCmd() *cobra.Command {
	cmder := &browseCommander{}

	cmd := &cobra.Command{
		Use:   "browse",
		Short: browseShortDesc,
		Long:  browseLongDesc,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return cmder.run(cmd)
		},
	}

	cmdenv.AddStorageFlags(cmd)
	cmd.Flags().StringVarP(&cmder.conversation, "conversation", "c", "", "Open a specific conversation")

	return cmd
}

func (c *browseCommander) run(cmd *cobra.Command) error {
	env, err := cmdenv.Load(cmd, config.StorageFlags)
	if err != nil {
		return err
	}
	defer env.Close()

	driver, err := env.OpenStore(cmd.Context())
	if err != nil {
		return err
	}

	return runBrowseTUI(cmd.Context(), driver, c.conversation)
}
