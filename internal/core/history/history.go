// Package history defines the record of alerts that reached the user.
package history

import (
	"context"
	"time"

	"github.com/colonyops/deskbell/internal/core/alert"
)

// Entry is one dispatched alert.
type Entry struct {
	ID           int64     `json:"id"`
	CycleID      string    `json:"cycle_id"`
	Title        string    `json:"title"`
	Message      string    `json:"message"`
	RawPriority  string    `json:"raw_priority"`
	Level        string    `json:"level"`
	Type         string    `json:"type"`
	TimeLabel    string    `json:"time_label"`
	URL          string    `json:"url,omitempty"`
	DispatchedAt time.Time `json:"dispatched_at"`
}

// FromNotification builds an Entry for n dispatched during cycleID.
func FromNotification(cycleID string, n alert.Notification, at time.Time) Entry {
	return Entry{
		CycleID:      cycleID,
		Title:        n.Title,
		Message:      n.Message,
		RawPriority:  n.RawPriority,
		Level:        n.Level().String(),
		Type:         n.Type,
		TimeLabel:    n.TimeLabel,
		URL:          n.URL,
		DispatchedAt: at,
	}
}

// Store persists dispatched alerts.
type Store interface {
	Append(ctx context.Context, e Entry) error
	// List returns the most recent entries first. limit <= 0 means no limit.
	List(ctx context.Context, limit int) ([]Entry, error)
	Count(ctx context.Context) (int, error)
	Clear(ctx context.Context) error
	// Prune deletes entries dispatched before cutoff and returns how many
	// were removed.
	Prune(ctx context.Context, cutoff time.Time) (int64, error)
}
