package config_test

import (
	"os"
	"path/filepath"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/papercomputeco/chatmem/pkg/config"
)

var _ = Describe("Configer config", func() {
	var tmpDir string

	BeforeEach(func() {
		tmpDir = GinkgoT().TempDir()
	})

	writeConfig := func(data string) {
		Expect(os.WriteFile(filepath.Join(tmpDir, "config.toml"), []byte(data), 0o600)).To(Succeed())
	}

	Describe("LoadConfig", func() {
		It("returns default config when no config file exists", func() {
			c, err := config.NewConfiger(tmpDir)
			Expect(err).NotTo(HaveOccurred())

			cfg, err := c.LoadConfig()
			Expect(err).NotTo(HaveOccurred())
			Expect(cfg).To(Equal(config.NewDefaultConfig()))
		})

		It("loads a valid config file and fills in defaults", func() {
			writeConfig(`version = 0

[storage]
provider = "postgres"

[redis]
port = 6380
tls = true

[postgres]
dsn = "postgres://localhost/chatmem"

[eventstream]
provider = "kafka"
brokers = ["kafka-1:9092", "kafka-2:9092"]
`)

			c, err := config.NewConfiger(tmpDir)
			Expect(err).NotTo(HaveOccurred())

			cfg, err := c.LoadConfig()
			Expect(err).NotTo(HaveOccurred())
			Expect(cfg.Storage.Provider).To(Equal("postgres"))
			Expect(cfg.Storage.KeyPrefix).To(Equal("chat_memory:"))
			Expect(cfg.Redis.Host).To(Equal("localhost"))
			Expect(cfg.Redis.Port).To(Equal(6380))
			Expect(cfg.Redis.TLS).To(BeTrue())
			Expect(cfg.Postgres.DSN).To(Equal("postgres://localhost/chatmem"))
			Expect(cfg.Postgres.Table).To(Equal("chat_memory"))
			Expect(cfg.Memory.MaxMessages).To(Equal(20))
			Expect(cfg.EventStream.Brokers).To(Equal([]string{"kafka-1:9092", "kafka-2:9092"}))
			Expect(cfg.EventStream.Topic).To(Equal("chatmem.conversations"))
		})

		It("returns error for malformed TOML", func() {
			writeConfig("[storage\nprovider = ")

			c, err := config.NewConfiger(tmpDir)
			Expect(err).NotTo(HaveOccurred())

			_, err = c.LoadConfig()
			Expect(err).To(MatchError(ContainSubstring("parsing config TOML")))
		})

		It("returns error for unsupported config version", func() {
			writeConfig("version = 99\n")

			c, err := config.NewConfiger(tmpDir)
			Expect(err).NotTo(HaveOccurred())

			_, err = c.LoadConfig()
			Expect(err).To(MatchError(ContainSubstring("unsupported config version 99")))
		})
	})

	Describe("SaveConfig", func() {
		It("persists config to disk", func() {
			c, err := config.NewConfiger(tmpDir)
			Expect(err).NotTo(HaveOccurred())

			cfg := config.NewDefaultConfig()
			cfg.Storage.Provider = "sqlite"
			cfg.SQLite.Path = "/var/lib/chatmem.sqlite"
			Expect(c.SaveConfig(cfg)).To(Succeed())

			data, err := os.ReadFile(filepath.Join(tmpDir, "config.toml"))
			Expect(err).NotTo(HaveOccurred())
			Expect(string(data)).To(ContainSubstring(`provider = "sqlite"`))

			loaded, err := c.LoadConfig()
			Expect(err).NotTo(HaveOccurred())
			Expect(loaded).To(Equal(cfg))
		})

		It("returns error for nil config", func() {
			c, err := config.NewConfiger(tmpDir)
			Expect(err).NotTo(HaveOccurred())

			Expect(c.SaveConfig(nil)).To(MatchError("cannot save nil config"))
		})
	})

	Describe("SetConfigValue and GetConfigValue", func() {
		var c *config.Configer

		BeforeEach(func() {
			var err error
			c, err = config.NewConfiger(tmpDir)
			Expect(err).NotTo(HaveOccurred())
		})

		DescribeTable("round trips every key",
			func(key, value string) {
				Expect(c.SetConfigValue(key, value)).To(Succeed())

				got, err := c.GetConfigValue(key)
				Expect(err).NotTo(HaveOccurred())
				Expect(got).To(Equal(value))
			},
			Entry(nil, "storage.provider", "inmemory"),
			Entry(nil, "storage.key_prefix", "tenant:"),
			Entry(nil, "storage.replace_mode", "atomic"),
			Entry(nil, "storage.scan_count", "500"),
			Entry(nil, "redis.host", "cache.internal"),
			Entry(nil, "redis.port", "6380"),
			Entry(nil, "redis.tls", "true"),
			Entry(nil, "redis.client_name", "chatmem"),
			Entry(nil, "redis.timeout", "2s"),
			Entry(nil, "redis.password", "hunter2"),
			Entry(nil, "redis.db", "4"),
			Entry(nil, "postgres.dsn", "postgres://localhost/chatmem"),
			Entry(nil, "postgres.table", "memories"),
			Entry(nil, "sqlite.path", "chatmem.sqlite"),
			Entry(nil, "api.listen", ":9000"),
			Entry(nil, "memory.max_messages", "50"),
			Entry(nil, "eventstream.provider", "kafka"),
			Entry(nil, "eventstream.brokers", "a:9092,b:9092"),
			Entry(nil, "eventstream.topic", "memories"),
		)

		It("returns defaults when no config file exists", func() {
			got, err := c.GetConfigValue("storage.key_prefix")
			Expect(err).NotTo(HaveOccurred())
			Expect(got).To(Equal("chat_memory:"))
		})

		It("returns error for unknown key", func() {
			Expect(c.SetConfigValue("proxy.upstream", "x")).To(MatchError(ContainSubstring("unknown config key")))

			_, err := c.GetConfigValue("proxy.upstream")
			Expect(err).To(MatchError(ContainSubstring("unknown config key")))
		})

		DescribeTable("rejects malformed values",
			func(key, value string) {
				Expect(c.SetConfigValue(key, value)).To(MatchError(ContainSubstring("invalid value for " + key)))
			},
			Entry(nil, "redis.port", "six"),
			Entry(nil, "redis.tls", "maybe"),
			Entry(nil, "storage.scan_count", "-x"),
			Entry(nil, "memory.max_messages", "lots"),
		)

		It("trims broker lists", func() {
			Expect(c.SetConfigValue("eventstream.brokers", " a:9092 , ,b:9092 ")).To(Succeed())

			cfg, err := c.LoadConfig()
			Expect(err).NotTo(HaveOccurred())
			Expect(cfg.EventStream.Brokers).To(Equal([]string{"a:9092", "b:9092"}))
		})

		It("preserves existing values when setting a new key", func() {
			Expect(c.SetConfigValue("redis.host", "cache.internal")).To(Succeed())
			Expect(c.SetConfigValue("redis.db", "2")).To(Succeed())

			cfg, err := c.LoadConfig()
			Expect(err).NotTo(HaveOccurred())
			Expect(cfg.Redis.Host).To(Equal("cache.internal"))
			Expect(cfg.Redis.DB).To(Equal(2))
		})
	})
})

var _ = Describe("ValidConfigKeys", func() {
	It("lists every key in section order", func() {
		keys := config.ValidConfigKeys()
		Expect(keys).To(HaveLen(19))
		Expect(keys[0]).To(Equal("storage.provider"))
		Expect(keys[len(keys)-1]).To(Equal("eventstream.topic"))
		for _, k := range keys {
			Expect(config.IsValidConfigKey(k)).To(BeTrue(), k)
		}
	})

	It("rejects unknown keys", func() {
		Expect(config.IsValidConfigKey("storage")).To(BeFalse())
		Expect(config.IsValidConfigKey("redis.hostname")).To(BeFalse())
	})

	It("marks credentials as secret", func() {
		Expect(config.IsSecretConfigKey("redis.password")).To(BeTrue())
		Expect(config.IsSecretConfigKey("postgres.dsn")).To(BeTrue())
		Expect(config.IsSecretConfigKey("redis.host")).To(BeFalse())
	})
})

var _ = Describe("PresetConfig", func() {
	DescribeTable("selects the storage provider",
		func(name, provider string) {
			cfg, err := config.PresetConfig(name)
			Expect(err).NotTo(HaveOccurred())
			Expect(cfg.Storage.Provider).To(Equal(provider))
			Expect(cfg.Version).To(Equal(config.CurrentV))
		},
		Entry(nil, "redis", "redis"),
		Entry(nil, "Postgres", "postgres"),
		Entry(nil, "sqlite", "sqlite"),
		Entry(nil, "inmemory", "inmemory"),
	)

	It("returns error for unknown preset", func() {
		_, err := config.PresetConfig("mongodb")
		Expect(err).To(MatchError(ContainSubstring("unknown preset")))
	})

	It("lists the preset names", func() {
		Expect(config.ValidPresetNames()).To(ConsistOf("redis", "postgres", "sqlite", "inmemory"))
	})
})

var _ = Describe("ParseConfigTOML", func() {
	It("returns empty config for empty input", func() {
		cfg, err := config.ParseConfigTOML([]byte(""))
		Expect(err).NotTo(HaveOccurred())
		Expect(cfg.Storage.Provider).To(BeEmpty())
	})

	It("returns error for invalid TOML", func() {
		_, err := config.ParseConfigTOML([]byte("not = [valid"))
		Expect(err).To(HaveOccurred())
	})
})
