// Package render defines the presentation sink the dispatcher writes to. A
// sink receives two kinds of requests: transient banners and full menu
// re-renders. How they are drawn is up to the implementation.
package render

import (
	"strconv"
	"time"

	"github.com/colonyops/deskbell/internal/core/alert"
	"github.com/google/uuid"
)

// EmptyMenuText is shown by a menu with no items.
const EmptyMenuText = "No new notifications"

// FlashDuration is how long a critical banner flashes the header indicator.
const FlashDuration = 10 * time.Second

// BannerRequest asks the sink to show a transient banner that removes itself
// after Duration.
type BannerRequest struct {
	ID       string
	Text     string
	Severity alert.Severity
	Duration time.Duration
	// Flash, when non-zero, also flashes the attention indicator for that long.
	Flash time.Duration
}

// NewBanner builds a BannerRequest with a fresh ID.
func NewBanner(text string, severity alert.Severity, d time.Duration) BannerRequest {
	return BannerRequest{
		ID:       uuid.NewString(),
		Text:     text,
		Severity: severity,
		Duration: d,
	}
}

// MenuItem is one row of the persistent summary.
type MenuItem struct {
	alert.Notification
	Level alert.Level
	Icon  string
}

// MenuRequest is a full replacement of the persistent summary.
type MenuRequest struct {
	Items      []MenuItem
	Aggregates alert.Aggregates
	// Badge is the count label for the header; empty hides the badge.
	Badge string
}

// Empty reports whether the menu has no items.
func (m MenuRequest) Empty() bool {
	return len(m.Items) == 0
}

// ShowSummary reports whether the mine/new/critical summary block is shown.
// An empty menu never shows it.
func (m MenuRequest) ShowSummary() bool {
	return !m.Empty() && m.Aggregates.PendingForUser != nil
}

// Summary holds the counts of the summary block.
type Summary struct {
	Mine     int
	New      int
	Critical int
}

// Summary returns the summary counts. New is the number of items and
// Critical falls back to 0 when the source sent no total.
func (m MenuRequest) Summary() Summary {
	var s Summary
	if m.Aggregates.PendingForUser != nil {
		s.Mine = *m.Aggregates.PendingForUser
	}
	s.New = len(m.Items)
	if m.Aggregates.TotalCritical != nil {
		s.Critical = *m.Aggregates.TotalCritical
	}
	return s
}

// Sink receives presentation requests. Implementations must be safe to call
// from any goroutine and must not block the caller.
type Sink interface {
	ShowBanner(req BannerRequest)
	RenderMenu(req MenuRequest)
}

// BadgeText formats a count for the header badge: empty at zero, "99+" above
// 99.
func BadgeText(n int) string {
	switch {
	case n <= 0:
		return ""
	case n > 99:
		return "99+"
	default:
		return strconv.Itoa(n)
	}
}

// Icon returns the menu glyph for n.
func Icon(n alert.Notification) string {
	switch {
	case n.RawPriority == alert.LabelCritical:
		return "🚨"
	case n.Type == alert.TypeNewTicket:
		return "🎫"
	default:
		return "🔔"
	}
}

// BuildMenu converts a snapshot into a MenuRequest. An empty snapshot clears
// the aggregates along with the items.
func BuildMenu(snap alert.Snapshot) MenuRequest {
	if snap.Empty() {
		return MenuRequest{Items: []MenuItem{}}
	}

	items := make([]MenuItem, 0, len(snap.Items))
	for _, n := range snap.Items {
		items = append(items, MenuItem{Notification: n, Level: n.Level(), Icon: Icon(n)})
	}
	return MenuRequest{
		Items:      items,
		Aggregates: snap.Aggregates,
		Badge:      BadgeText(len(items)),
	}
}

// Discard is a Sink that drops every request.
type Discard struct{}

func (Discard) ShowBanner(BannerRequest) {}
func (Discard) RenderMenu(MenuRequest)   {}
