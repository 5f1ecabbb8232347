// Package deskbell assembles the alert pipeline from configuration and the
// opened stores. Commands and the TUI consume App instead of wiring raw
// dependencies themselves.
package deskbell

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/colonyops/deskbell/internal/core/clock"
	"github.com/colonyops/deskbell/internal/core/config"
	"github.com/colonyops/deskbell/internal/core/eventbus"
	"github.com/colonyops/deskbell/internal/core/logging"
	"github.com/colonyops/deskbell/internal/core/push"
	"github.com/colonyops/deskbell/internal/core/settings"
	"github.com/colonyops/deskbell/internal/core/tone"
	"github.com/colonyops/deskbell/internal/data/db"
	"github.com/colonyops/deskbell/internal/data/stores"
	"github.com/colonyops/deskbell/internal/poll"
	"github.com/colonyops/deskbell/pkg/executil"
)

const busBuffer = 256

// BuildInfo describes the running binary.
type BuildInfo struct {
	Version string
	Commit  string
	Date    string
}

// App is the central entry point for deskbell operations.
type App struct {
	Config   *config.Config
	DB       *db.DB
	KV       *stores.KVStore
	Settings *settings.Store
	History  *stores.HistoryStore
	Bus      *eventbus.EventBus
	Exec     executil.Executor
	Clock    clock.Clock
	Build    BuildInfo
}

// NewApp constructs an App from explicit dependencies. Settings are not
// loaded; call Load before reading them.
func NewApp(cfg *config.Config, database *db.DB, exec executil.Executor, clk clock.Clock, build BuildInfo, log zerolog.Logger) *App {
	if clk == nil {
		clk = clock.Real()
	}
	kvStore := stores.NewKVStore(database)
	bus := eventbus.New(busBuffer)

	st := settings.NewStore(kvStore, logging.For(log, "settings"))
	st.OnUpdate(func(s settings.Settings) {
		bus.PublishSettingsUpdated(eventbus.SettingsUpdatedPayload{Settings: s})
	})

	return &App{
		Config:   cfg,
		DB:       database,
		KV:       kvStore,
		Settings: st,
		History:  stores.NewHistoryStore(database),
		Bus:      bus,
		Exec:     exec,
		Clock:    clk,
		Build:    build,
	}
}

// Load reads persisted settings.
func (a *App) Load(ctx context.Context) error {
	return a.Settings.Load(ctx)
}

// Synthesizer returns a tone synthesizer feeding the configured player.
func (a *App) Synthesizer(log zerolog.Logger) *tone.Synthesizer {
	open := tone.OpenPlayer(a.Exec, a.Config.Audio.Player)
	return tone.New(a.Clock, open, a.Config.Audio.SampleRate, log)
}

// OpenURL opens link, resolved against the dashboard base URL, with the
// configured open command. An empty link is ignored.
func (a *App) OpenURL(link string) error {
	target := push.ResolveURL(a.Config.Push.BaseURL, link)
	if target == "" {
		return nil
	}
	if err := a.Exec.Start(a.Config.Push.OpenCommand, target); err != nil {
		return fmt.Errorf("open %s: %w", target, err)
	}
	return nil
}

// Source returns the snapshot source selected by the config.
func (a *App) Source() (poll.Source, error) {
	src := a.Config.Source
	switch src.Kind {
	case config.SourceHTTP:
		return poll.NewHTTPSource(poll.HTTPOptions{
			URL:           src.URL,
			SessionCookie: src.SessionCookie,
			Token:         src.Token,
			Timeout:       src.Timeout,
		}, nil), nil
	case config.SourceFile:
		return poll.NewFileSource(src.File), nil
	default:
		return nil, fmt.Errorf("unknown source kind %q", src.Kind)
	}
}
