package conversationscmder

import (
	"fmt"
	"io"
	"slices"

	"github.com/spf13/cobra"

	"github.com/papercomputeco/chatmem/cmd/chatmem/cmdenv"
	"github.com/papercomputeco/chatmem/pkg/cliui"
	"github.com/papercomputeco/chatmem/pkg/storage"
)

const listLongDesc string = `List the IDs of every stored conversation with their message counts.

Examples:
  chatmem conversations list
  chatmem conversations list --ids-only`

func newListCmd() *cobra.Command {
	var idsOnly bool

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List stored conversations",
		Long:  listLongDesc,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			env, err := cmdenv.Load(cmd, storeFlags)
			if err != nil {
				return err
			}
			defer env.Close()

			driver, err := env.OpenStore(cmd.Context())
			if err != nil {
				return err
			}
			return runList(cmd, driver, idsOnly)
		},
	}

	addStoreFlags(cmd)
	cmd.Flags().BoolVar(&idsOnly, "ids-only", false, "Print only conversation IDs, one per line")

	return cmd
}

func runList(cmd *cobra.Command, driver storage.Driver, idsOnly bool) error {
	ctx := cmd.Context()
	w := cmd.OutOrStdout()

	ids, err := driver.ListConversationIDs(ctx)
	if err != nil {
		return err
	}
	slices.Sort(ids)

	if idsOnly {
		for _, id := range ids {
			fmt.Fprintln(w, id)
		}
		return nil
	}

	if len(ids) == 0 {
		fmt.Fprintf(w, "  %s\n", cliui.DimStyle.Render("No conversations stored."))
		return nil
	}

	return printCounts(w, cmd, driver, ids)
}

func printCounts(w io.Writer, cmd *cobra.Command, driver storage.Driver, ids []string) error {
	maxLen := 0
	for _, id := range ids {
		maxLen = max(maxLen, len(id))
	}

	for _, id := range ids {
		messages, err := driver.FindMessages(cmd.Context(), id)
		if err != nil {
			return err
		}
		fmt.Fprintf(w, "  %s  %s\n",
			cliui.KeyStyle.Render(fmt.Sprintf("%-*s", maxLen, id)),
			cliui.DimStyle.Render(fmt.Sprintf("%d messages", len(messages))),
		)
	}
	fmt.Fprintf(w, "\n  %s\n", cliui.DimStyle.Render(fmt.Sprintf("%d conversations", len(ids))))
	return nil
}
