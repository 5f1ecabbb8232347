package dispatch

import (
	"context"
	"errors"

	"github.com/colonyops/deskbell/internal/core/alert"
	"github.com/colonyops/deskbell/internal/core/clock"
	"github.com/colonyops/deskbell/internal/core/history"
	"github.com/colonyops/deskbell/internal/core/render"
	"github.com/colonyops/deskbell/internal/core/tone"
)

// Channel names.
const (
	ChannelAudio   = "audio"
	ChannelPush    = "push"
	ChannelBanner  = "banner"
	ChannelHistory = "history"
)

// TonePlayer plays the cue for a level.
type TonePlayer interface {
	PlayPattern(level alert.Level, volume float64) error
}

// AudioChannel plays the level's tone pattern when sound is enabled.
type AudioChannel struct {
	player TonePlayer
}

func NewAudioChannel(player TonePlayer) *AudioChannel {
	return &AudioChannel{player: player}
}

func (c *AudioChannel) Name() string { return ChannelAudio }

func (c *AudioChannel) Deliver(_ context.Context, d Delivery) error {
	if !d.Settings.SoundEnabled {
		return nil
	}
	err := c.player.PlayPattern(d.Level, d.Settings.SoundVolume)
	if errors.Is(err, tone.ErrAudioUnavailable) {
		// The synthesizer already logged when it disabled itself.
		return nil
	}
	return err
}

// Pusher shows an OS notification.
type Pusher interface {
	Notify(ctx context.Context, title, message string, level alert.Level, link string) error
}

// PushChannel shows a desktop notification when push is enabled.
type PushChannel struct {
	pusher Pusher
}

func NewPushChannel(p Pusher) *PushChannel {
	return &PushChannel{pusher: p}
}

func (c *PushChannel) Name() string { return ChannelPush }

func (c *PushChannel) Deliver(ctx context.Context, d Delivery) error {
	if !d.Settings.PushEnabled {
		return nil
	}
	n := d.Notification
	return c.pusher.Notify(ctx, n.Title, n.Message, d.Level, n.URL)
}

// BannerChannel shows a transient in-app banner.
type BannerChannel struct {
	sink render.Sink
}

func NewBannerChannel(sink render.Sink) *BannerChannel {
	return &BannerChannel{sink: sink}
}

func (c *BannerChannel) Name() string { return ChannelBanner }

func (c *BannerChannel) Deliver(_ context.Context, d Delivery) error {
	c.sink.ShowBanner(BannerFor(d.Notification, d.Level))
	return nil
}

// BannerFor builds the banner request for n at level.
func BannerFor(n alert.Notification, level alert.Level) render.BannerRequest {
	req := render.NewBanner(n.Title+": "+n.Message, level.Severity(), level.BannerDuration())
	if level == alert.LevelCritical {
		req.Flash = render.FlashDuration
	}
	return req
}

// HistoryChannel records every delivered alert.
type HistoryChannel struct {
	store history.Store
	clock clock.Clock
}

func NewHistoryChannel(store history.Store, clk clock.Clock) *HistoryChannel {
	if clk == nil {
		clk = clock.Real()
	}
	return &HistoryChannel{store: store, clock: clk}
}

func (c *HistoryChannel) Name() string { return ChannelHistory }

func (c *HistoryChannel) Deliver(ctx context.Context, d Delivery) error {
	return c.store.Append(ctx, history.FromNotification(d.CycleID, d.Notification, c.clock.Now()))
}

// MenuRenderer re-renders the persistent summary from a full snapshot.
type MenuRenderer struct {
	sink render.Sink
}

func NewMenuRenderer(sink render.Sink) *MenuRenderer {
	return &MenuRenderer{sink: sink}
}

// Render replaces the menu with snap. An empty snapshot renders the empty state.
func (m *MenuRenderer) Render(snap alert.Snapshot) {
	m.sink.RenderMenu(render.BuildMenu(snap))
}
