// Package redis implements storage.Driver on a Redis server. Each
// conversation is one LIST under "<prefix><conversationID>" holding the
// encoded messages in chronological order.
package redis

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	goredis "github.com/redis/go-redis/v9"

	"github.com/papercomputeco/chatmem/pkg/llm"
	"github.com/papercomputeco/chatmem/pkg/logger"
	"github.com/papercomputeco/chatmem/pkg/storage"
)

// Driver implements storage.Driver using Redis lists.
type Driver struct {
	client    goredis.UniversalClient
	prefix    string
	codec     llm.Codec
	logger    *slog.Logger
	mode      ReplaceMode
	scanCount int64
}

var _ storage.Driver = (*Driver)(nil)

// Option configures a Driver.
type Option func(*Driver)

// WithKeyPrefix sets the namespace prepended to every conversation ID.
// An empty prefix keeps DefaultKeyPrefix.
func WithKeyPrefix(prefix string) Option {
	return func(d *Driver) {
		if prefix != "" {
			d.prefix = prefix
		}
	}
}

// WithCodec replaces the default JSON message codec.
func WithCodec(codec llm.Codec) Option {
	return func(d *Driver) {
		if codec != nil {
			d.codec = codec
		}
	}
}

// WithLogger sets the logger used for operation tracing.
func WithLogger(l *slog.Logger) Option {
	return func(d *Driver) {
		if l != nil {
			d.logger = l
		}
	}
}

// WithReplaceMode selects how SaveAll overwrites a conversation.
func WithReplaceMode(mode ReplaceMode) Option {
	return func(d *Driver) {
		if mode != "" {
			d.mode = mode
		}
	}
}

// WithScanCount sets the COUNT hint passed to SCAN.
func WithScanCount(n int64) Option {
	return func(d *Driver) {
		if n > 0 {
			d.scanCount = n
		}
	}
}

// NewDriver connects to the configured Redis server and verifies the
// connection with PING.
func NewDriver(ctx context.Context, cfg Config, opts ...Option) (*Driver, error) {
	client := goredis.NewClient(cfg.Options())
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to connect to redis at %s: %w", cfg.Addr(), err)
	}

	return NewDriverWithClient(client, opts...), nil
}

// NewDriverWithClient wraps an existing client. The driver takes ownership
// of the client and closes it in Close.
func NewDriverWithClient(client goredis.UniversalClient, opts ...Option) *Driver {
	d := &Driver{
		client:    client,
		prefix:    DefaultKeyPrefix,
		codec:     llm.NewJSONCodec(),
		logger:    logger.Nop(),
		mode:      ReplaceSequential,
		scanCount: defaultScanCount,
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// KeyPrefix returns the namespace in use.
func (d *Driver) KeyPrefix() string {
	return d.prefix
}

func (d *Driver) key(conversationID string) string {
	return d.prefix + conversationID
}

// ListConversationIDs walks the keyspace with SCAN and returns every
// conversation ID under the prefix. Each ID is reported once even if SCAN
// yields its key on more than one page.
func (d *Driver) ListConversationIDs(ctx context.Context) ([]string, error) {
	keys, err := d.scanKeys(ctx, escapeGlob(d.prefix)+"*")
	if err != nil {
		return nil, err
	}

	ids := make([]string, 0, len(keys))
	for _, key := range keys {
		id, ok := strings.CutPrefix(key, d.prefix)
		if !ok || strings.TrimSpace(id) == "" {
			continue
		}
		ids = append(ids, id)
	}

	d.logger.Debug("listed conversations", "count", len(ids))
	return ids, nil
}

// scanKeys runs SCAN until the cursor returns to zero and returns the
// distinct keys seen, in first-seen order.
func (d *Driver) scanKeys(ctx context.Context, match string) ([]string, error) {
	var (
		cursor uint64
		keys   []string
		seen   = make(map[string]struct{})
	)

	for {
		page, next, err := d.client.Scan(ctx, cursor, match, d.scanCount).Result()
		if err != nil {
			return nil, &storage.StoreError{Op: "SCAN", Key: match, Err: err}
		}
		keys = appendUnique(keys, seen, page)

		cursor = next
		if cursor == 0 {
			return keys, nil
		}
	}
}

func appendUnique(dst []string, seen map[string]struct{}, src []string) []string {
	for _, s := range src {
		if _, ok := seen[s]; ok {
			continue
		}
		seen[s] = struct{}{}
		dst = append(dst, s)
	}
	return dst
}

var globEscaper = strings.NewReplacer(
	`\`, `\\`,
	`*`, `\*`,
	`?`, `\?`,
	`[`, `\[`,
	`]`, `\]`,
)

// escapeGlob quotes the characters SCAN MATCH treats as pattern syntax.
func escapeGlob(s string) string {
	return globEscaper.Replace(s)
}

// FindMessages returns the full history of a conversation, oldest first.
// An unknown conversation yields an empty slice.
func (d *Driver) FindMessages(ctx context.Context, conversationID string) ([]llm.Message, error) {
	if err := storage.ValidateConversationID(conversationID); err != nil {
		return nil, err
	}

	key := d.key(conversationID)
	raw, err := d.client.LRange(ctx, key, 0, -1).Result()
	if err != nil {
		return nil, &storage.StoreError{Op: "LRANGE", Key: key, Err: err}
	}

	messages := make([]llm.Message, 0, len(raw))
	for i, data := range raw {
		msg, err := d.codec.Decode(data)
		if err != nil {
			return nil, &storage.SerializationError{
				Op:             "decode",
				ConversationID: conversationID,
				Index:          i,
				Err:            err,
			}
		}
		messages = append(messages, msg)
	}

	d.logger.Debug("found messages", "conversation_id", conversationID, "count", len(messages))
	return messages, nil
}

// SaveAll replaces the stored history of a conversation with messages. An
// empty slice removes the conversation.
func (d *Driver) SaveAll(ctx context.Context, conversationID string, messages []*llm.Message) error {
	if err := storage.ValidateSaveAll(conversationID, messages); err != nil {
		return err
	}

	var err error
	switch d.mode {
	case ReplaceAtomic:
		err = d.saveAtomic(ctx, conversationID, messages)
	default:
		err = d.saveSequential(ctx, conversationID, messages)
	}
	if err != nil {
		return err
	}

	d.logger.Debug("saved conversation",
		"conversation_id", conversationID,
		"count", len(messages),
		"mode", string(d.mode),
	)
	return nil
}

func (d *Driver) saveSequential(ctx context.Context, conversationID string, messages []*llm.Message) error {
	key := d.key(conversationID)
	if err := d.client.Del(ctx, key).Err(); err != nil {
		return &storage.StoreError{Op: "DEL", Key: key, Err: err}
	}

	for i, msg := range messages {
		data, err := d.codec.Encode(msg)
		if err != nil {
			return &storage.SerializationError{
				Op:             "encode",
				ConversationID: conversationID,
				Index:          i,
				Err:            err,
			}
		}
		if err := d.client.RPush(ctx, key, data).Err(); err != nil {
			return &storage.StoreError{Op: "RPUSH", Key: key, Err: err}
		}
	}

	return nil
}

func (d *Driver) saveAtomic(ctx context.Context, conversationID string, messages []*llm.Message) error {
	payloads := make([]any, 0, len(messages))
	for i, msg := range messages {
		data, err := d.codec.Encode(msg)
		if err != nil {
			return &storage.SerializationError{
				Op:             "encode",
				ConversationID: conversationID,
				Index:          i,
				Err:            err,
			}
		}
		payloads = append(payloads, data)
	}

	key := d.key(conversationID)
	_, err := d.client.TxPipelined(ctx, func(pipe goredis.Pipeliner) error {
		pipe.Del(ctx, key)
		if len(payloads) > 0 {
			pipe.RPush(ctx, key, payloads...)
		}
		return nil
	})
	if err != nil {
		return &storage.StoreError{Op: "MULTI", Key: key, Err: err}
	}

	return nil
}

// DeleteConversation removes a conversation. Deleting an unknown
// conversation is not an error.
func (d *Driver) DeleteConversation(ctx context.Context, conversationID string) error {
	if err := storage.ValidateConversationID(conversationID); err != nil {
		return err
	}

	key := d.key(conversationID)
	n, err := d.client.Del(ctx, key).Result()
	if err != nil {
		return &storage.StoreError{Op: "DEL", Key: key, Err: err}
	}

	d.logger.Debug("deleted conversation", "conversation_id", conversationID, "existed", n > 0)
	return nil
}

// Close releases the connection pool. Operations after Close, including a
// second Close, fail with a store communication error.
func (d *Driver) Close() error {
	if err := d.client.Close(); err != nil {
		return &storage.StoreError{Op: "CLOSE", Err: err}
	}

	d.logger.Info("redis connection pool closed")
	return nil
}
