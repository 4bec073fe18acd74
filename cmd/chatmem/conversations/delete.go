package conversationscmder

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/papercomputeco/chatmem/cmd/chatmem/cmdenv"
	"github.com/papercomputeco/chatmem/pkg/cliui"
	"github.com/papercomputeco/chatmem/pkg/storage"
)

const deleteLongDesc string = `Delete a stored conversation. Deleting an unknown conversation
succeeds.

Examples:
  chatmem conversations delete user-42`

func newDeleteCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a conversation",
		Long:  deleteLongDesc,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			env, err := cmdenv.Load(cmd, storeFlags)
			if err != nil {
				return err
			}
			defer env.Close()

			driver, err := env.OpenStore(cmd.Context())
			if err != nil {
				return err
			}
			return runDelete(cmd, driver, args[0])
		},
	}

	addStoreFlags(cmd)

	return cmd
}

func runDelete(cmd *cobra.Command, driver storage.Driver, id string) error {
	if err := driver.DeleteConversation(cmd.Context(), id); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "  %s Deleted %s\n", cliui.SuccessMark, cliui.KeyStyle.Render(id))
	return nil
}
