// Package kv is the persistence contract for small JSON documents such as
// user settings.
package kv

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"
)

// ErrNotFound is returned by Load for a key that was never saved.
var ErrNotFound = errors.New("kv: key not found")

// Record is a stored document with its bookkeeping timestamps.
type Record struct {
	Key       string
	Value     json.RawMessage
	CreatedAt time.Time
	UpdatedAt time.Time
}

// KV stores JSON documents by key. Save keeps CreatedAt of an existing key.
type KV interface {
	Load(ctx context.Context, key string) (Record, error)
	Save(ctx context.Context, key string, value json.RawMessage) error
	Remove(ctx context.Context, key string) error
}

// Key joins a namespace and a name into a store key.
func Key(namespace, name string) string {
	return namespace + "/" + name
}

// SaveFrom encodes v and saves it under key.
func SaveFrom(ctx context.Context, store KV, key string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode %s: %w", key, err)
	}
	return store.Save(ctx, key, data)
}
