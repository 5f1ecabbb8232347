package stores

import (
	"context"
	"testing"
	"time"

	"github.com/colonyops/deskbell/internal/core/alert"
	"github.com/colonyops/deskbell/internal/core/history"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHistoryStore(t *testing.T) {
	ctx := context.Background()
	base := time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)

	seed := func(t *testing.T, store *HistoryStore) {
		t.Helper()
		for i, n := range []alert.Notification{
			{Title: "T1", Message: "server down", RawPriority: "critica", TimeLabel: "09:00", URL: "/tickets/1"},
			{Title: "T2", Message: "new ticket", RawPriority: "alta", Type: alert.TypeNewTicket, TimeLabel: "09:05"},
			{Title: "T3", Message: "reply", RawPriority: "baja", TimeLabel: "09:10"},
		} {
			at := base.Add(time.Duration(i) * time.Minute)
			require.NoError(t, store.Append(ctx, history.FromNotification("cycle-1", n, at)))
		}
	}

	t.Run("list newest first", func(t *testing.T) {
		store := NewHistoryStore(openTestDB(t))
		seed(t, store)

		entries, err := store.List(ctx, 0)
		require.NoError(t, err)
		require.Len(t, entries, 3)
		assert.Equal(t, "T3", entries[0].Title)
		assert.Equal(t, "T1", entries[2].Title)
		assert.Equal(t, "critical", entries[2].Level)
		assert.Equal(t, "/tickets/1", entries[2].URL)
		assert.Empty(t, entries[1].URL)
		assert.Equal(t, alert.TypeNewTicket, entries[1].Type)
		assert.True(t, entries[2].DispatchedAt.Equal(base))
	})

	t.Run("limit", func(t *testing.T) {
		store := NewHistoryStore(openTestDB(t))
		seed(t, store)

		entries, err := store.List(ctx, 2)
		require.NoError(t, err)
		assert.Len(t, entries, 2)
	})

	t.Run("empty list is not nil", func(t *testing.T) {
		store := NewHistoryStore(openTestDB(t))

		entries, err := store.List(ctx, 10)
		require.NoError(t, err)
		assert.NotNil(t, entries)
		assert.Empty(t, entries)
	})

	t.Run("prune and clear", func(t *testing.T) {
		store := NewHistoryStore(openTestDB(t))
		seed(t, store)

		n, err := store.Prune(ctx, base.Add(90*time.Second))
		require.NoError(t, err)
		assert.Equal(t, int64(2), n)

		count, err := store.Count(ctx)
		require.NoError(t, err)
		assert.Equal(t, 1, count)

		require.NoError(t, store.Clear(ctx))
		count, err = store.Count(ctx)
		require.NoError(t, err)
		assert.Zero(t, count)
	})
}
