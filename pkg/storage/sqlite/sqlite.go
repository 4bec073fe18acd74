// Package sqlite implements storage.Driver on an embedded SQLite database
// using github.com/mattn/go-sqlite3.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	_ "github.com/mattn/go-sqlite3" // register the "sqlite3" database/sql driver

	"github.com/papercomputeco/chatmem/pkg/llm"
	"github.com/papercomputeco/chatmem/pkg/logger"
	"github.com/papercomputeco/chatmem/pkg/storage"
)

// MemoryPath opens a private in-memory database.
const MemoryPath = ":memory:"

const schemaSQL = `
CREATE TABLE IF NOT EXISTS chat_memory (
    id              INTEGER PRIMARY KEY AUTOINCREMENT,
    conversation_id TEXT NOT NULL,
    seq             INTEGER NOT NULL,
    content         TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_chat_memory_conversation_seq ON chat_memory (conversation_id, seq);
`

// Driver implements storage.Driver using SQLite.
type Driver struct {
	db     *sql.DB
	codec  llm.Codec
	logger *slog.Logger
}

var _ storage.Driver = (*Driver)(nil)

// Option configures a Driver.
type Option func(*Driver)

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

// NewDriver opens the database at dbPath and creates the schema. dbPath can
// be a file path or MemoryPath.
func NewDriver(ctx context.Context, dbPath string, opts ...Option) (*Driver, error) {
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// Each connection to ":memory:" is its own database, and SQLite allows a
	// single writer anyway.
	db.SetMaxOpenConns(1)

	if _, err := db.ExecContext(ctx, schemaSQL); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create schema: %w", err)
	}

	d := &Driver{
		db:     db,
		codec:  llm.NewJSONCodec(),
		logger: logger.Nop(),
	}
	for _, opt := range opts {
		opt(d)
	}
	return d, nil
}

// ListConversationIDs returns the distinct conversation IDs in lexical order.
func (d *Driver) ListConversationIDs(ctx context.Context) ([]string, error) {
	rows, err := d.db.QueryContext(ctx, `SELECT DISTINCT conversation_id FROM chat_memory ORDER BY conversation_id`)
	if err != nil {
		return nil, &storage.StoreError{Op: "SELECT", Err: err}
	}
	defer rows.Close()

	ids := []string{}
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, &storage.StoreError{Op: "SELECT", Err: err}
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, &storage.StoreError{Op: "SELECT", Err: err}
	}

	return ids, nil
}

// FindMessages returns the history of a conversation ordered by seq.
func (d *Driver) FindMessages(ctx context.Context, conversationID string) ([]llm.Message, error) {
	if err := storage.ValidateConversationID(conversationID); err != nil {
		return nil, err
	}

	rows, err := d.db.QueryContext(ctx,
		`SELECT content FROM chat_memory WHERE conversation_id = ? ORDER BY seq ASC`, conversationID)
	if err != nil {
		return nil, &storage.StoreError{Op: "SELECT", Key: conversationID, Err: err}
	}
	defer rows.Close()

	messages := []llm.Message{}
	for i := 0; rows.Next(); i++ {
		var data string
		if err := rows.Scan(&data); err != nil {
			return nil, &storage.StoreError{Op: "SELECT", Key: conversationID, Err: err}
		}
		msg, err := d.codec.Decode(data)
		if err != nil {
			return nil, &storage.SerializationError{Op: "decode", ConversationID: conversationID, Index: i, Err: err}
		}
		messages = append(messages, msg)
	}
	if err := rows.Err(); err != nil {
		return nil, &storage.StoreError{Op: "SELECT", Key: conversationID, Err: err}
	}

	return messages, nil
}

// SaveAll replaces the history of a conversation in a single transaction.
func (d *Driver) SaveAll(ctx context.Context, conversationID string, messages []*llm.Message) (err error) {
	if err := storage.ValidateSaveAll(conversationID, messages); err != nil {
		return err
	}

	payloads := make([]string, 0, len(messages))
	for i, msg := range messages {
		data, err := d.codec.Encode(msg)
		if err != nil {
			return &storage.SerializationError{Op: "encode", ConversationID: conversationID, Index: i, Err: err}
		}
		payloads = append(payloads, data)
	}

	tx, err := d.db.BeginTx(ctx, nil)
	if err != nil {
		return &storage.StoreError{Op: "BEGIN", Key: conversationID, Err: err}
	}
	defer func() {
		if err != nil {
			err = errors.Join(err, ignoreDone(tx.Rollback()))
		}
	}()

	if _, err := tx.ExecContext(ctx, `DELETE FROM chat_memory WHERE conversation_id = ?`, conversationID); err != nil {
		return &storage.StoreError{Op: "DELETE", Key: conversationID, Err: err}
	}

	for seq, data := range payloads {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO chat_memory (conversation_id, seq, content) VALUES (?, ?, ?)`,
			conversationID, seq, data); err != nil {
			return &storage.StoreError{Op: "INSERT", Key: conversationID, Err: err}
		}
	}

	if err := tx.Commit(); err != nil {
		return &storage.StoreError{Op: "COMMIT", Key: conversationID, Err: err}
	}

	d.logger.Debug("saved conversation", "conversation_id", conversationID, "count", len(payloads))
	return nil
}

func ignoreDone(err error) error {
	if errors.Is(err, sql.ErrTxDone) {
		return nil
	}
	return err
}

// DeleteConversation removes every row of a conversation.
func (d *Driver) DeleteConversation(ctx context.Context, conversationID string) error {
	if err := storage.ValidateConversationID(conversationID); err != nil {
		return err
	}

	if _, err := d.db.ExecContext(ctx, `DELETE FROM chat_memory WHERE conversation_id = ?`, conversationID); err != nil {
		return &storage.StoreError{Op: "DELETE", Key: conversationID, Err: err}
	}
	return nil
}

// Close closes the database.
func (d *Driver) Close() error {
	if err := d.db.Close(); err != nil {
		return &storage.StoreError{Op: "CLOSE", Err: err}
	}
	return nil
}

// insertRaw writes an already encoded payload. Tests use it to plant rows
// the codec would refuse to produce.
func (d *Driver) insertRaw(ctx context.Context, conversationID string, seq int, content string) error {
	_, err := d.db.ExecContext(ctx,
		`INSERT INTO chat_memory (conversation_id, seq, content) VALUES (?, ?, ?)`,
		conversationID, seq, content)
	return err
}
