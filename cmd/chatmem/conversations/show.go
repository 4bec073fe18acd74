package conversationscmder

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/papercomputeco/chatmem/cmd/chatmem/cmdenv"
	"github.com/papercomputeco/chatmem/pkg/cliui"
	"github.com/papercomputeco/chatmem/pkg/llm"
	"github.com/papercomputeco/chatmem/pkg/storage"
)

const showLongDesc string = `Print the messages of a conversation, oldest first.

Examples:
  chatmem conversations show user-42
  chatmem conversations show user-42 --last 5
  chatmem conversations show user-42 --markdown`

type showOptions struct {
	markdown bool
	lastN    int
}

func newShowCmd() *cobra.Command {
	opts := showOptions{}

	cmd := &cobra.Command{
		Use:   "show <id>",
		Short: "Print a conversation",
		Long:  showLongDesc,
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
			return runShow(cmd, driver, args[0], opts)
		},
	}

	addStoreFlags(cmd)
	cmd.Flags().BoolVar(&opts.markdown, "markdown", false, "Render the conversation as markdown")
	cmd.Flags().IntVar(&opts.lastN, "last", 0, "Show only the most recent n messages")

	return cmd
}

func runShow(cmd *cobra.Command, driver storage.Driver, id string, opts showOptions) error {
	if opts.lastN < 0 {
		return fmt.Errorf("--last must not be negative")
	}

	messages, err := driver.FindMessages(cmd.Context(), id)
	if err != nil {
		return err
	}
	if opts.lastN > 0 && len(messages) > opts.lastN {
		messages = messages[len(messages)-opts.lastN:]
	}

	w := cmd.OutOrStdout()
	if len(messages) == 0 {
		fmt.Fprintf(w, "  %s\n", cliui.DimStyle.Render(fmt.Sprintf("Conversation %q is empty.", id)))
		return nil
	}

	if opts.markdown {
		rendered, err := cliui.RenderMarkdown(ConversationMarkdown(id, messages))
		if err != nil {
			return fmt.Errorf("rendering markdown: %w", err)
		}
		fmt.Fprint(w, rendered)
		return nil
	}

	printPlain(w, messages, cliui.TerminalWidth(os.Stdout.Fd(), defaultWidth))
	return nil
}

const defaultWidth = 100

// printPlain writes one line per message. Tool call lines are cut to width.
func printPlain(w io.Writer, messages []llm.Message, width int) {
	for i := range messages {
		msg := &messages[i]
		fmt.Fprintf(w, "%s %s\n", cliui.RenderRole(msg.Role()), msg.GetText())
		for _, call := range msg.ToolCalls {
			line := fmt.Sprintf("%s(%s)", call.Name, call.Arguments)
			fmt.Fprintf(w, "  %s %s\n", cliui.DimStyle.Render("→"), cliui.Truncate(line, width-4))
		}
	}
}

// ConversationMarkdown formats a conversation as a markdown document with one
// section per message.
func ConversationMarkdown(id string, messages []llm.Message) string {
	var b strings.Builder
	fmt.Fprintf(&b, "# %s\n\n", id)

	for i := range messages {
		msg := &messages[i]
		fmt.Fprintf(&b, "## %s\n\n", msg.Role())

		if text := msg.GetText(); text != "" {
			b.WriteString(text)
			b.WriteString("\n\n")
		}
		for _, call := range msg.ToolCalls {
			fmt.Fprintf(&b, "- tool call `%s`: `%s`\n", call.Name, call.Arguments)
		}
		if len(msg.ToolCalls) > 0 {
			b.WriteString("\n")
		}
	}

	return b.String()
}
