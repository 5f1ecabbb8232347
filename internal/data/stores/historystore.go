package stores

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/colonyops/deskbell/internal/core/history"
	"github.com/colonyops/deskbell/internal/data/db"
)

// HistoryStore implements history.Store using SQLite.
type HistoryStore struct {
	db *db.DB
}

var _ history.Store = (*HistoryStore)(nil)

// NewHistoryStore creates a new SQLite-backed history store.
func NewHistoryStore(db *db.DB) *HistoryStore {
	return &HistoryStore{db: db}
}

// Append records a dispatched alert.
func (s *HistoryStore) Append(ctx context.Context, e history.Entry) error {
	var url sql.NullString
	if e.URL != "" {
		url = sql.NullString{String: e.URL, Valid: true}
	}

	err := retryBusy(ctx, func() error {
		_, err := s.db.Conn().ExecContext(ctx, `
			INSERT INTO alert_history
				(cycle_id, title, message, raw_priority, level, type, time_label, url, dispatched_at)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			e.CycleID, e.Title, e.Message, e.RawPriority, e.Level, e.Type, e.TimeLabel, url, e.DispatchedAt.UnixNano(),
		)
		return err
	})
	if err != nil {
		return fmt.Errorf("failed to append history entry: %w", err)
	}
	return nil
}

// List returns entries newest first.
func (s *HistoryStore) List(ctx context.Context, limit int) ([]history.Entry, error) {
	if limit <= 0 {
		limit = -1 // SQLite treats a negative LIMIT as unbounded.
	}

	rows, err := s.db.Conn().QueryContext(ctx, `
		SELECT id, cycle_id, title, message, raw_priority, level, type, time_label, url, dispatched_at
		FROM alert_history
		ORDER BY dispatched_at DESC, id DESC
		LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list history: %w", err)
	}
	defer func() { _ = rows.Close() }()

	entries := make([]history.Entry, 0)
	for rows.Next() {
		var (
			e   history.Entry
			url sql.NullString
			at  int64
		)
		if err := rows.Scan(&e.ID, &e.CycleID, &e.Title, &e.Message, &e.RawPriority, &e.Level, &e.Type, &e.TimeLabel, &url, &at); err != nil {
			return nil, fmt.Errorf("failed to scan history entry: %w", err)
		}
		e.URL = url.String
		e.DispatchedAt = time.Unix(0, at)
		entries = append(entries, e)
	}

	return entries, rows.Err()
}

// Count returns the number of stored entries.
func (s *HistoryStore) Count(ctx context.Context) (int, error) {
	var n int
	if err := s.db.Conn().QueryRowContext(ctx, `SELECT COUNT(*) FROM alert_history`).Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count history: %w", err)
	}
	return n, nil
}

// Clear deletes every entry.
func (s *HistoryStore) Clear(ctx context.Context) error {
	if _, err := s.db.Conn().ExecContext(ctx, `DELETE FROM alert_history`); err != nil {
		return fmt.Errorf("failed to clear history: %w", err)
	}
	return nil
}

// Prune deletes entries dispatched before cutoff.
func (s *HistoryStore) Prune(ctx context.Context, cutoff time.Time) (int64, error) {
	res, err := s.db.Conn().ExecContext(ctx, `DELETE FROM alert_history WHERE dispatched_at < ?`, cutoff.UnixNano())
	if err != nil {
		return 0, fmt.Errorf("failed to prune history: %w", err)
	}
	return res.RowsAffected()
}
