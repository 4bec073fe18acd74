package conversationscmder

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/tidwall/gjson"

	"github.com/papercomputeco/chatmem/cmd/chatmem/cmdenv"
	"github.com/papercomputeco/chatmem/pkg/cliui"
	"github.com/papercomputeco/chatmem/pkg/config"
	"github.com/papercomputeco/chatmem/pkg/llm"
	"github.com/papercomputeco/chatmem/pkg/llm/provider"
	"github.com/papercomputeco/chatmem/pkg/memory"
	"github.com/papercomputeco/chatmem/pkg/storage"
)

const importLongDesc string = `Load messages from a JSON file into a conversation.

The file holds either an array of messages or an object with a "messages"
array. Each message carries a "messageType" of USER, ASSISTANT, SYSTEM, or
TOOL. By default the conversation is replaced; --append adds the messages
through the message window instead.

--format reads a captured provider request or response instead: openai,
anthropic, ollama, or auto to detect the provider from the payload.

Examples:
  chatmem conversations import user-42 history.json
  chatmem conversations import user-42 turn.json --append
  chatmem conversations import user-42 request.json --format auto`

func newImportCmd() *cobra.Command {
	var (
		appendMode bool
		format     string
	)

	cmd := &cobra.Command{
		Use:   "import <id> <file>",
		Short: "Load messages from a JSON file",
		Long:  importLongDesc,
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			env, err := cmdenv.Load(cmd, storeFlags)
			if err != nil {
				return err
			}
			defer env.Close()

			data, err := os.ReadFile(args[1])
			if err != nil {
				return fmt.Errorf("reading %s: %w", args[1], err)
			}
			messages, err := parseFile(format, data)
			if err != nil {
				return err
			}

			driver, err := env.OpenStore(cmd.Context())
			if err != nil {
				return err
			}

			if !appendMode {
				return runReplace(cmd, driver, args[0], messages)
			}

			window, err := memory.NewWindow(driver,
				memory.WithMaxMessages(env.Config.Memory.MaxMessages),
				memory.WithLogger(env.Logger),
			)
			if err != nil {
				return err
			}
			return runAppend(cmd, window, args[0], messages)
		},
	}

	addStoreFlags(cmd)
	config.AddIntFlag(cmd, config.Flags, config.FlagMaxMessages, new(int))
	cmd.Flags().BoolVar(&appendMode, "append", false, "Append through the message window instead of replacing")
	cmd.Flags().StringVar(&format, "format", FormatChatmem, "File format (chatmem, auto, openai, anthropic, ollama)")

	return cmd
}

// Import file formats besides the provider names.
const (
	FormatChatmem = "chatmem"
	FormatAuto    = "auto"
)

func parseFile(format string, data []byte) ([]llm.Message, error) {
	switch format {
	case FormatChatmem, "":
		return ParseMessages(data)
	case FormatAuto:
		return provider.NewDetector().ParseMessages(data)
	default:
		p, err := provider.New(format)
		if err != nil {
			return nil, err
		}
		return provider.Parse(p, data)
	}
}

// ParseMessages decodes a JSON array of messages, or an object wrapping one
// under "messages".
func ParseMessages(data []byte) ([]llm.Message, error) {
	if !gjson.ValidBytes(data) {
		return nil, errors.New("invalid JSON")
	}

	list := gjson.ParseBytes(data)
	if list.IsObject() {
		list = list.Get("messages")
	}
	if !list.IsArray() {
		return nil, errors.New(`expected an array of messages or an object with a "messages" array`)
	}

	codec := llm.NewJSONCodec()
	messages := make([]llm.Message, 0, len(list.Array()))
	var decodeErr error
	list.ForEach(func(_, value gjson.Result) bool {
		msg, err := codec.Decode(value.Raw)
		if err != nil {
			decodeErr = fmt.Errorf("message %d: %w", len(messages), err)
			return false
		}
		messages = append(messages, msg)
		return true
	})
	if decodeErr != nil {
		return nil, decodeErr
	}
	return messages, nil
}

func runReplace(cmd *cobra.Command, driver storage.Driver, id string, messages []llm.Message) error {
	ptrs := make([]*llm.Message, len(messages))
	for i := range messages {
		ptrs[i] = &messages[i]
	}

	msg := fmt.Sprintf("Importing %d messages into %s", len(messages), cliui.KeyStyle.Render(id))
	return cliui.Step(cmd.OutOrStdout(), msg, func() error {
		return driver.SaveAll(cmd.Context(), id, ptrs)
	})
}

func runAppend(cmd *cobra.Command, window *memory.Window, id string, messages []llm.Message) error {
	w := cmd.OutOrStdout()

	var stored []llm.Message
	msg := fmt.Sprintf("Appending %d messages to %s", len(messages), cliui.KeyStyle.Render(id))
	err := cliui.Step(w, msg, func() error {
		var err error
		stored, err = window.Add(cmd.Context(), id, messages...)
		return err
	})
	if err != nil {
		return err
	}

	fmt.Fprintf(w, "  %s\n", cliui.DimStyle.Render(fmt.Sprintf("%d messages stored", len(stored))))
	return nil
}
