package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/papercomputeco/chatmem/pkg/storage"
)

// seq is the message position within its conversation. It is rewritten on
// every SaveAll, so it stays dense from zero.
const createTableSQL = `CREATE TABLE IF NOT EXISTS %s (
    id              BIGSERIAL PRIMARY KEY,
    conversation_id TEXT NOT NULL,
    seq             INT NOT NULL,
    content         TEXT NOT NULL
)`

const createConversationSeqIndexSQL = `CREATE INDEX IF NOT EXISTS %s
    ON %s (conversation_id, seq)`

// EnsureSchema creates the messages table and its lookup index if they do
// not exist.
func (d *Driver) EnsureSchema(ctx context.Context) error {
	if _, err := d.db.Exec(ctx, fmt.Sprintf(createTableSQL, d.table)); err != nil {
		return &storage.StoreError{Op: "CREATE TABLE", Key: d.rawTable, Err: err}
	}

	index := pgx.Identifier{"idx_" + d.rawTable + "_conversation_seq"}.Sanitize()
	if _, err := d.db.Exec(ctx, fmt.Sprintf(createConversationSeqIndexSQL, index, d.table)); err != nil {
		return &storage.StoreError{Op: "CREATE INDEX", Key: d.rawTable, Err: err}
	}

	return nil
}
