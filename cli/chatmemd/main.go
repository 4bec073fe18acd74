package main

import (
	"os"

	"github.com/papercomputeco/chatmem/cmd/chatmem/cmdenv"
	servecmder "github.com/papercomputeco/chatmem/cmd/chatmem/serve"
)

func main() {
	cmd := servecmder.NewServeCmd()
	cmd.Use = "chatmemd"
	cmd.PersistentFlags().BoolP(cmdenv.FlagDebug, "d", false, "Enable debug logging")
	cmd.PersistentFlags().String(cmdenv.FlagConfigDir, "", "Override path to the .chatmem/ config directory")
	cmd.PersistentFlags().String(cmdenv.FlagLogFile, "", "Also write JSON logs to this file (relative to the config directory)")

	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
