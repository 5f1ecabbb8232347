package deskbell

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/colonyops/deskbell/internal/core/eventbus"
	"github.com/colonyops/deskbell/internal/core/logging"
	"github.com/colonyops/deskbell/internal/core/push"
	"github.com/colonyops/deskbell/internal/core/render"
	"github.com/colonyops/deskbell/internal/core/tone"
	"github.com/colonyops/deskbell/internal/dispatch"
	"github.com/colonyops/deskbell/internal/platform/dbusnotify"
)

// PipelineOptions configures NewPipeline.
type PipelineOptions struct {
	// Sink receives banners and menu renders.
	Sink render.Sink
	// Focus brings the view to a clicked desktop notification. Optional.
	Focus func(push.Alert)
	// Platform overrides the desktop notification service. Nil uses D-Bus.
	Platform push.Platform
	// Player overrides the tone synthesizer. Nil uses the configured player.
	Player dispatch.TonePlayer
	// SkipHistory disables recording dispatched alerts.
	SkipHistory bool
}

// Pipeline is a dispatcher with its channels and their backing services.
type Pipeline struct {
	Dispatcher *dispatch.Dispatcher
	Notifier   *push.Notifier

	closers []func() error
}

// NewPipeline wires the dispatcher, every channel and the lifecycle banner
// router. Call Start before the first dispatch and Close when done.
func (a *App) NewPipeline(opts PipelineOptions, log zerolog.Logger) *Pipeline {
	sink := opts.Sink
	if sink == nil {
		sink = render.Discard{}
	}

	p := &Pipeline{}

	platform := opts.Platform
	if platform == nil {
		dbusPlatform := dbusnotify.New(a.Config.Push.AppName, logging.For(log, "dbus"))
		p.closers = append(p.closers, dbusPlatform.Close)
		platform = dbusPlatform
	}

	p.Notifier = push.NewNotifier(platform, push.Options{
		Clock:   a.Clock,
		BaseURL: a.Config.Push.BaseURL,
		OpenURL: a.OpenURL,
		Focus:   opts.Focus,
		OnGranted: func() {
			a.Bus.PublishPushPermissionGranted(eventbus.PushPermissionGrantedPayload{})
		},
		OnClick: func(al push.Alert) {
			a.Bus.PublishPushClicked(eventbus.PushClickedPayload{Tag: al.Tag, URL: al.URL})
		},
	}, logging.For(log, "push"))

	player := opts.Player
	if player == nil {
		player = a.Synthesizer(logging.For(log, "tone"))
	}

	channels := []dispatch.NotificationChannel{
		dispatch.NewAudioChannel(player),
		dispatch.NewPushChannel(p.Notifier),
		dispatch.NewBannerChannel(sink),
	}
	if !opts.SkipHistory {
		channels = append(channels, dispatch.NewHistoryChannel(a.History, a.Clock))
	}

	p.Dispatcher = dispatch.New(
		a.Settings,
		dispatch.NewMenuRenderer(sink),
		logging.For(log, "dispatch"),
		channels...,
	).WithBus(a.Bus)

	eventbus.NewNotificationRouter(a.Bus, sink).Register()

	return p
}

// Start resolves desktop notification permission in the background.
func (p *Pipeline) Start(ctx context.Context) {
	p.Notifier.Init(ctx)
}

// Close releases the platform connection.
func (p *Pipeline) Close() error {
	var first error
	for _, c := range p.closers {
		if err := c(); err != nil && first == nil {
			first = err
		}
	}
	return first
}

var _ dispatch.TonePlayer = (*tone.Synthesizer)(nil)
