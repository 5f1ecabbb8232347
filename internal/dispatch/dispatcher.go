// Package dispatch turns poll snapshots into alerts. Each cycle finds the
// notifications not seen in the previous snapshot, applies the user's
// settings and fans every surviving notification out to the registered
// channels. The menu is re-rendered from the full snapshot every cycle.
package dispatch

import (
	"context"
	"fmt"
	"sync"

	"github.com/colonyops/deskbell/internal/core/alert"
	"github.com/colonyops/deskbell/internal/core/eventbus"
	"github.com/colonyops/deskbell/internal/core/logging"
	"github.com/colonyops/deskbell/internal/core/settings"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// Delivery is one notification handed to a channel.
type Delivery struct {
	CycleID      string
	Notification alert.Notification
	Level        alert.Level
	Settings     settings.Settings
}

// NotificationChannel presents a delivery. Channels decide for themselves
// whether settings gate them. A returned error is logged and does not stop
// other channels.
type NotificationChannel interface {
	Name() string
	Deliver(ctx context.Context, d Delivery) error
}

// SettingsSource provides the settings in force for a cycle.
type SettingsSource interface {
	Current() settings.Settings
}

// Result summarizes one dispatch cycle.
type Result struct {
	CycleID    string
	New        []alert.Notification
	Dispatched []alert.Notification
	Filtered   []alert.Notification
	Failures   int
}

// Dispatcher owns the dedup state and runs dispatch cycles one at a time.
type Dispatcher struct {
	settings SettingsSource
	menu     *MenuRenderer
	channels []NotificationChannel
	bus      *eventbus.EventBus
	log      zerolog.Logger

	mu    sync.Mutex
	dedup *alert.Deduplicator
}

// New creates a Dispatcher. Channels are invoked in the given order for each
// notification.
func New(src SettingsSource, menu *MenuRenderer, log zerolog.Logger, channels ...NotificationChannel) *Dispatcher {
	return &Dispatcher{
		settings: src,
		menu:     menu,
		channels: channels,
		log:      log,
		dedup:    alert.NewDeduplicator(),
	}
}

// WithBus publishes lifecycle events to bus.
func (d *Dispatcher) WithBus(bus *eventbus.EventBus) *Dispatcher {
	d.bus = bus
	return d
}

// Process runs a full cycle for snap: dedup against the previous snapshot,
// then Dispatch with the current settings.
func (d *Dispatcher) Process(ctx context.Context, snap alert.Snapshot) Result {
	d.mu.Lock()
	defer d.mu.Unlock()

	st := d.settings.Current()
	fresh := d.dedup.Observe(snap)
	return d.dispatch(ctx, fresh, st, snap)
}

// Dispatch presents newItems under st and re-renders the menu from snap. It
// does not touch the dedup state.
func (d *Dispatcher) Dispatch(ctx context.Context, newItems []alert.Notification, st settings.Settings, snap alert.Snapshot) Result {
	d.mu.Lock()
	defer d.mu.Unlock()

	return d.dispatch(ctx, newItems, st, snap)
}

// Reset forgets the previous snapshot so every item of the next one is new.
func (d *Dispatcher) Reset() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.dedup.Reset()
}

func (d *Dispatcher) dispatch(ctx context.Context, newItems []alert.Notification, st settings.Settings, snap alert.Snapshot) Result {
	res := Result{CycleID: uuid.NewString(), New: newItems}
	ctx = logging.WithCycleID(ctx, res.CycleID)

	for _, n := range newItems {
		level := n.Level()

		if st.CriticalOnly && level != alert.LevelCritical {
			res.Filtered = append(res.Filtered, n)
			if d.bus != nil {
				d.bus.PublishAlertFiltered(eventbus.AlertFilteredPayload{CycleID: res.CycleID, Notification: n, Level: level})
			}
			continue
		}

		delivery := Delivery{CycleID: res.CycleID, Notification: n, Level: level, Settings: st}
		for _, ch := range d.channels {
			if err := d.deliver(ctx, ch, delivery); err != nil {
				res.Failures++
				d.log.Warn().Ctx(ctx).Err(err).Str("channel", ch.Name()).Str("title", n.Title).Msg("channel failed")
				if d.bus != nil {
					d.bus.PublishChannelFailed(eventbus.ChannelFailedPayload{
						CycleID: res.CycleID,
						Channel: ch.Name(),
						Title:   n.Title,
						Err:     err,
					})
				}
			}
		}

		res.Dispatched = append(res.Dispatched, n)
		if d.bus != nil {
			d.bus.PublishAlertDispatched(eventbus.AlertDispatchedPayload{CycleID: res.CycleID, Notification: n, Level: level})
		}
	}

	if d.menu != nil {
		if err := d.renderMenu(snap); err != nil {
			d.log.Warn().Ctx(ctx).Err(err).Msg("menu render failed")
		}
	}

	d.log.Debug().Ctx(ctx).
		Int("total", snap.Len()).
		Int("new", len(res.New)).
		Int("dispatched", len(res.Dispatched)).
		Int("filtered", len(res.Filtered)).
		Msg("cycle processed")

	if d.bus != nil {
		d.bus.PublishSnapshotProcessed(eventbus.SnapshotProcessedPayload{
			CycleID:    res.CycleID,
			Total:      snap.Len(),
			New:        len(res.New),
			Dispatched: len(res.Dispatched),
		})
	}

	return res
}

func (d *Dispatcher) deliver(ctx context.Context, ch NotificationChannel, delivery Delivery) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic: %v", r)
		}
	}()
	return ch.Deliver(logging.WithChannel(ctx, ch.Name()), delivery)
}

func (d *Dispatcher) renderMenu(snap alert.Snapshot) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic: %v", r)
		}
	}()
	d.menu.Render(snap)
	return nil
}
