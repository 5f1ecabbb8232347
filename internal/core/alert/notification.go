// Package alert defines the pending-notification snapshot model shared by the
// dispatcher and every presentation channel.
package alert

// TypeNewTicket is the notification type used for freshly opened tickets.
const TypeNewTicket = "nuevo_ticket"

// Notification is a single pending alert as reported by the dashboard.
type Notification struct {
	Title       string
	Message     string
	RawPriority string
	Type        string
	TimeLabel   string
	URL         string // empty when the source sent none
}

// Identity is the key used to decide whether a notification was already seen.
//
// The source provides no stable identifier, so two distinct events sharing both
// title and time label are indistinguishable, and an event whose time label
// format changes is treated as new.
type Identity struct {
	Title     string
	TimeLabel string
}

// Identity returns the dedup identity of n.
func (n Notification) Identity() Identity {
	return Identity{Title: n.Title, TimeLabel: n.TimeLabel}
}

// Level returns the classified priority of n.
func (n Notification) Level() Level {
	return Classify(n.RawPriority)
}

// Aggregates are the optional counters delivered alongside a snapshot.
// A nil field means the source did not report it.
type Aggregates struct {
	PendingForUser *int
	TotalNew       *int
	TotalCritical  *int
}

// Snapshot is the full set of pending notifications as of one poll.
type Snapshot struct {
	Items      []Notification
	Aggregates Aggregates
}

// Len returns the number of items in the snapshot.
func (s Snapshot) Len() int {
	return len(s.Items)
}

// Empty reports whether the snapshot carries no notifications.
func (s Snapshot) Empty() bool {
	return len(s.Items) == 0
}

// IntPtr is a convenience for building Aggregates literals.
func IntPtr(v int) *int {
	return &v
}
