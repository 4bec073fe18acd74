package redis

import (
	"crypto/tls"
	"fmt"
	"net"
	"strconv"
	"strings"
	"time"

	goredis "github.com/redis/go-redis/v9"
)

const (
	// DefaultKeyPrefix namespaces conversation keys.
	DefaultKeyPrefix = "chat_memory:"

	defaultScanCount int64 = 100
)

// ReplaceMode selects how SaveAll overwrites an existing conversation.
type ReplaceMode string

const (
	// ReplaceSequential deletes the key and then pushes one message per round
	// trip. Concurrent readers may observe an empty or partial history, and an
	// encode failure leaves the messages before it in place.
	ReplaceSequential ReplaceMode = "sequential"

	// ReplaceAtomic encodes every message first and then runs DEL and RPUSH
	// inside MULTI/EXEC.
	ReplaceAtomic ReplaceMode = "atomic"
)

// ParseReplaceMode parses a configured replace mode. The empty string selects
// ReplaceSequential.
func ParseReplaceMode(s string) (ReplaceMode, error) {
	switch ReplaceMode(strings.ToLower(strings.TrimSpace(s))) {
	case "", ReplaceSequential:
		return ReplaceSequential, nil
	case ReplaceAtomic:
		return ReplaceAtomic, nil
	default:
		return "", fmt.Errorf("unknown replace mode: %q (available: sequential, atomic)", s)
	}
}

// Config holds the Redis connection settings.
type Config struct {
	Host       string
	Port       int
	TLS        bool
	ClientName string
	Timeout    time.Duration
	Password   string
	DB         int
}

// Addr returns host:port.
func (c Config) Addr() string {
	return net.JoinHostPort(c.Host, strconv.Itoa(c.Port))
}

// Options converts the config into go-redis client options. A zero Timeout
// keeps the client library defaults.
func (c Config) Options() *goredis.Options {
	opts := &goredis.Options{
		Addr:       c.Addr(),
		ClientName: c.ClientName,
		Password:   c.Password,
		DB:         c.DB,
	}

	if c.Timeout > 0 {
		opts.DialTimeout = c.Timeout
		opts.ReadTimeout = c.Timeout
		opts.WriteTimeout = c.Timeout
	}

	if c.TLS {
		opts.TLSConfig = &tls.Config{
			MinVersion: tls.VersionTLS12,
			ServerName: c.Host,
		}
	}

	return opts
}
