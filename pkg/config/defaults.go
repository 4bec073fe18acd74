package config

const (
	defaultStorageProvider = "redis"
	defaultKeyPrefix       = "chat_memory:"
	defaultReplaceMode     = "sequential"
	defaultScanCount       = 100

	defaultRedisHost = "localhost"
	defaultRedisPort = 6379

	defaultPostgresTable = "chat_memory"

	defaultAPIListen = ":8081"

	defaultMaxMessages = 20

	defaultEventStreamProvider = "none"
	defaultEventStreamBroker   = "localhost:9092"
	defaultEventStreamTopic    = "chatmem.conversations"
)

// NewDefaultConfig returns a Config with sane defaults for all fields.
// This is the single source of truth for default values.
func NewDefaultConfig() *Config {
	return &Config{
		Version: CurrentV,
		Storage: StorageConfig{
			Provider:    defaultStorageProvider,
			KeyPrefix:   defaultKeyPrefix,
			ReplaceMode: defaultReplaceMode,
			ScanCount:   defaultScanCount,
		},
		Redis: RedisConfig{
			Host: defaultRedisHost,
			Port: defaultRedisPort,
		},
		Postgres: PostgresConfig{
			Table: defaultPostgresTable,
		},
		API: APIConfig{
			Listen: defaultAPIListen,
		},
		Memory: MemoryConfig{
			MaxMessages: defaultMaxMessages,
		},
		EventStream: EventStreamConfig{
			Provider: defaultEventStreamProvider,
			Brokers:  []string{defaultEventStreamBroker},
			Topic:    defaultEventStreamTopic,
		},
	}
}
