package cmdenv_test

import (
	"bytes"
	"context"
	"os"
	"path/filepath"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/spf13/cobra"

	"github.com/papercomputeco/chatmem/cmd/chatmem/cmdenv"
	"github.com/papercomputeco/chatmem/pkg/config"
	"github.com/papercomputeco/chatmem/pkg/llm"
	"github.com/papercomputeco/chatmem/pkg/storage/inmemory"
)

func newTestCmd(configDir string, args ...string) *cobra.Command {
	cmd := &cobra.Command{Use: "test", RunE: func(*cobra.Command, []string) error { return nil }}
	cmd.Flags().Bool(cmdenv.FlagDebug, false, "")
	cmd.Flags().String(cmdenv.FlagConfigDir, configDir, "")
	cmd.Flags().String(cmdenv.FlagLogFile, "", "")
	cmdenv.AddStorageFlags(cmd)
	cmd.SetErr(&bytes.Buffer{})
	Expect(cmd.ParseFlags(args)).To(Succeed())
	return cmd
}

var _ = Describe("Env", func() {
	var configDir string

	BeforeEach(func() {
		configDir = GinkgoT().TempDir()
	})

	It("registers every storage flag", func() {
		cmd := newTestCmd(configDir)
		for _, key := range config.StorageFlags {
			Expect(cmd.Flags().Lookup(config.Flags[key].Name)).NotTo(BeNil(), key)
		}
	})

	It("resolves defaults without a config file", func() {
		env, err := cmdenv.Load(newTestCmd(configDir), config.StorageFlags)
		Expect(err).NotTo(HaveOccurred())
		defer env.Close()

		Expect(env.Config.Storage.Provider).To(Equal("redis"))
		Expect(env.Config.Storage.KeyPrefix).To(Equal("chat_memory:"))
	})

	It("lets flags override the config file", func() {
		Expect(os.WriteFile(filepath.Join(configDir, "config.toml"),
			[]byte("[storage]\nprovider = \"sqlite\"\n"), 0o600)).To(Succeed())

		env, err := cmdenv.Load(newTestCmd(configDir, "--provider", "inmemory"), config.StorageFlags)
		Expect(err).NotTo(HaveOccurred())
		defer env.Close()

		Expect(env.Config.Storage.Provider).To(Equal("inmemory"))
	})

	It("opens the configured store", func() {
		env, err := cmdenv.Load(newTestCmd(configDir, "--provider", "inmemory"), config.StorageFlags)
		Expect(err).NotTo(HaveOccurred())

		driver, err := env.OpenStore(context.Background())
		Expect(err).NotTo(HaveOccurred())
		Expect(driver).To(BeAssignableToTypeOf(&inmemory.Driver{}))

		msg := llm.NewUserMessage("hi")
		Expect(driver.SaveAll(context.Background(), "u1", []*llm.Message{&msg})).To(Succeed())
		Expect(env.Close()).To(Succeed())
	})

	It("writes JSON logs to the log file inside the config dir", func() {
		cmd := newTestCmd(configDir, "--log-file", "chatmem.log")
		env, err := cmdenv.Load(cmd, nil)
		Expect(err).NotTo(HaveOccurred())

		env.Logger.Info("hello file", "conversation_id", "u1")
		Expect(env.Close()).To(Succeed())

		data, err := os.ReadFile(filepath.Join(configDir, "chatmem.log"))
		Expect(err).NotTo(HaveOccurred())
		Expect(string(data)).To(ContainSubstring(`"msg":"hello file"`))
		Expect(string(data)).To(ContainSubstring(`"conversation_id":"u1"`))
	})
})
