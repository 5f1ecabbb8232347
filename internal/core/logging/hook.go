package logging

import (
	"github.com/rs/zerolog"
)

// ContextHook copies the dispatch cycle and channel carried by an event's
// context onto the event. Install it with zerolog.Logger.Hook and log with
// Ctx(ctx).
type ContextHook struct{}

func (ContextHook) Run(e *zerolog.Event, _ zerolog.Level, _ string) {
	ctx := e.GetCtx()
	if ctx == nil {
		return
	}
	if id := GetCycleID(ctx); id != "" {
		e.Str("cycle_id", id)
	}
	if ch := GetChannel(ctx); ch != "" {
		e.Str("channel", ch)
	}
}
