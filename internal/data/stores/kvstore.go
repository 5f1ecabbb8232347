package stores

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/colonyops/deskbell/internal/core/kv"
	"github.com/colonyops/deskbell/internal/data/db"
)

// KVStore keeps kv documents in the kv_store table.
type KVStore struct {
	db  *db.DB
	now func() time.Time
}

var _ kv.KV = (*KVStore)(nil)

// NewKVStore returns a KVStore over database.
func NewKVStore(database *db.DB) *KVStore {
	return &KVStore{db: database, now: time.Now}
}

// Load returns the record under key, or kv.ErrNotFound.
func (s *KVStore) Load(ctx context.Context, key string) (kv.Record, error) {
	var (
		value            []byte
		created, updated int64
	)
	err := s.db.Conn().QueryRowContext(ctx,
		`SELECT value, created_at, updated_at FROM kv_store WHERE key = ?`, key,
	).Scan(&value, &created, &updated)
	if errors.Is(err, sql.ErrNoRows) {
		return kv.Record{}, fmt.Errorf("%w: %s", kv.ErrNotFound, key)
	}
	if err != nil {
		return kv.Record{}, fmt.Errorf("load %s: %w", key, err)
	}

	return kv.Record{
		Key:       key,
		Value:     json.RawMessage(value),
		CreatedAt: time.Unix(0, created),
		UpdatedAt: time.Unix(0, updated),
	}, nil
}

// Save upserts value under key.
func (s *KVStore) Save(ctx context.Context, key string, value json.RawMessage) error {
	if !json.Valid(value) {
		return fmt.Errorf("save %s: value is not valid JSON", key)
	}
	now := s.now().UnixNano()
	err := retryBusy(ctx, func() error {
		_, err := s.db.Conn().ExecContext(ctx, `
			INSERT INTO kv_store (key, value, created_at, updated_at) VALUES (?, ?, ?, ?)
			ON CONFLICT (key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at`,
			key, []byte(value), now, now)
		return err
	})
	if err != nil {
		return fmt.Errorf("save %s: %w", key, err)
	}
	return nil
}

// Remove deletes key. A missing key is not an error.
func (s *KVStore) Remove(ctx context.Context, key string) error {
	if _, err := s.db.Conn().ExecContext(ctx, `DELETE FROM kv_store WHERE key = ?`, key); err != nil {
		return fmt.Errorf("remove %s: %w", key, err)
	}
	return nil
}
