package eventbus

import (
	"github.com/rs/zerolog"
)

// RegisterDebugLogger logs bus traffic: every published event at debug with
// a few payload fields, drops at warn and subscriber panics at error.
func RegisterDebugLogger(bus *EventBus, logger zerolog.Logger) {
	bus.OnPublish(func(event Event, payload any) {
		e := logger.Debug().Str("event", string(event))
		describe(e, payload)
		e.Msg("published")
	})

	bus.OnDrop(func(event Event, _ any) {
		logger.Warn().
			Str("event", string(event)).
			Int64("dropped_total", bus.Dropped()).
			Msg("bus buffer full, event dropped")
	})

	bus.OnPanic(func(event Event, _ any, recovered any) {
		logger.Error().
			Str("event", string(event)).
			Interface("panic", recovered).
			Msg("subscriber panicked")
	})
}

func describe(e *zerolog.Event, payload any) {
	switch p := payload.(type) {
	case AlertDispatchedPayload:
		e.Str("cycle_id", p.CycleID).Str("title", p.Notification.Title).Stringer("level", p.Level)
	case AlertFilteredPayload:
		e.Str("cycle_id", p.CycleID).Str("title", p.Notification.Title).Stringer("level", p.Level)
	case ChannelFailedPayload:
		e.Str("cycle_id", p.CycleID).Str("channel", p.Channel).AnErr("cause", p.Err)
	case PushClickedPayload:
		e.Str("tag", p.Tag)
	case SnapshotProcessedPayload:
		e.Str("cycle_id", p.CycleID).Int("total", p.Total).Int("new", p.New).Int("dispatched", p.Dispatched)
	}
}
