package logging

import "context"

type contextKey string

const (
	cycleIDKey contextKey = "cycle_id"
	channelKey contextKey = "channel"
)

// WithCycleID adds a dispatch cycle ID to the context.
func WithCycleID(ctx context.Context, cycleID string) context.Context {
	return context.WithValue(ctx, cycleIDKey, cycleID)
}

// WithChannel adds a notification channel name to the context.
func WithChannel(ctx context.Context, channel string) context.Context {
	return context.WithValue(ctx, channelKey, channel)
}

// GetCycleID retrieves the dispatch cycle ID from the context.
// Returns empty string if not present.
func GetCycleID(ctx context.Context) string {
	if id, ok := ctx.Value(cycleIDKey).(string); ok {
		return id
	}
	return ""
}

// GetChannel retrieves the channel name from the context.
// Returns empty string if not present.
func GetChannel(ctx context.Context) string {
	if name, ok := ctx.Value(channelKey).(string); ok {
		return name
	}
	return ""
}
