package stores

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/colonyops/deskbell/internal/core/kv"
	"github.com/colonyops/deskbell/internal/data/db"
)

func openTestDB(t *testing.T) *db.DB {
	t.Helper()
	database, err := db.Open(t.TempDir(), db.DefaultOpenOptions())
	require.NoError(t, err)
	t.Cleanup(func() { _ = database.Close() })
	return database
}

func TestKVStore_Save_then_Load(t *testing.T) {
	ctx := context.Background()
	store := NewKVStore(openTestDB(t))

	require.NoError(t, store.Save(ctx, "settings/notifications", json.RawMessage(`{"soundEnabled":false}`)))

	rec, err := store.Load(ctx, "settings/notifications")
	require.NoError(t, err)
	assert.Equal(t, "settings/notifications", rec.Key)
	assert.JSONEq(t, `{"soundEnabled":false}`, string(rec.Value))
	assert.False(t, rec.CreatedAt.IsZero())
}

func TestKVStore_Load_missing(t *testing.T) {
	store := NewKVStore(openTestDB(t))

	_, err := store.Load(context.Background(), "nope")
	assert.ErrorIs(t, err, kv.ErrNotFound)
}

func TestKVStore_Save_rejects_invalid_json(t *testing.T) {
	store := NewKVStore(openTestDB(t))

	err := store.Save(context.Background(), "k", json.RawMessage(`{"broken"`))
	assert.Error(t, err)
}

func TestKVStore_overwrite_keeps_created_at(t *testing.T) {
	ctx := context.Background()
	store := NewKVStore(openTestDB(t))

	tick := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	store.now = func() time.Time { return tick }

	require.NoError(t, store.Save(ctx, "k", json.RawMessage(`"first"`)))
	tick = tick.Add(time.Minute)
	require.NoError(t, store.Save(ctx, "k", json.RawMessage(`"second"`)))

	rec, err := store.Load(ctx, "k")
	require.NoError(t, err)
	assert.JSONEq(t, `"second"`, string(rec.Value))
	assert.True(t, rec.CreatedAt.Equal(tick.Add(-time.Minute)))
	assert.True(t, rec.UpdatedAt.Equal(tick))
}

func TestKVStore_Remove(t *testing.T) {
	ctx := context.Background()
	store := NewKVStore(openTestDB(t))

	require.NoError(t, store.Save(ctx, "k", json.RawMessage(`1`)))
	require.NoError(t, store.Remove(ctx, "k"))
	require.NoError(t, store.Remove(ctx, "k"), "removing twice is fine")

	_, err := store.Load(ctx, "k")
	assert.ErrorIs(t, err, kv.ErrNotFound)
}

func TestRecoverFromCorruption_moves_files_aside(t *testing.T) {
	dir := t.TempDir()
	dbPath := filepath.Join(dir, db.FileName)
	require.NoError(t, os.WriteFile(dbPath, []byte("not a database"), 0o644))
	require.NoError(t, os.WriteFile(dbPath+"-wal", []byte("wal"), 0o644))

	require.NoError(t, RecoverFromCorruption(dir))

	_, err := os.Stat(dbPath)
	assert.True(t, os.IsNotExist(err))
	_, err = os.Stat(dbPath + "-wal")
	assert.True(t, os.IsNotExist(err))

	moved, err := filepath.Glob(filepath.Join(dir, db.FileName+".corrupt.*"))
	require.NoError(t, err)
	assert.Len(t, moved, 2)

	database, err := db.Open(dir, db.DefaultOpenOptions())
	require.NoError(t, err)
	_ = database.Close()
}

func TestRecoverFromCorruption_empty_dir(t *testing.T) {
	assert.NoError(t, RecoverFromCorruption(t.TempDir()))
}

func TestIsCorruptionError(t *testing.T) {
	assert.True(t, IsCorruptionError(errors.New("file is not a database")))
	assert.True(t, IsCorruptionError(errors.New("open: database disk image is malformed")))
	assert.False(t, IsCorruptionError(errors.New("disk full")))
	assert.False(t, IsCorruptionError(nil))
}

func TestRetryBusy(t *testing.T) {
	ctx := context.Background()

	calls := 0
	err := retryBusy(ctx, func() error {
		calls++
		return errors.New("constraint failed")
	})
	assert.Error(t, err)
	assert.Equal(t, 1, calls, "non-busy errors are not retried")

	calls = 0
	require.NoError(t, retryBusy(ctx, func() error {
		calls++
		return nil
	}))
	assert.Equal(t, 1, calls)
	assert.False(t, IsBusyError(errors.New("database is locked")))
}
