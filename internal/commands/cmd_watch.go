package commands

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/urfave/cli/v3"
	"golang.org/x/term"

	"github.com/colonyops/deskbell/internal/core/config"
	"github.com/colonyops/deskbell/internal/core/eventbus"
	"github.com/colonyops/deskbell/internal/core/logging"
	"github.com/colonyops/deskbell/internal/core/render"
	"github.com/colonyops/deskbell/internal/core/settings"
	"github.com/colonyops/deskbell/internal/deskbell"
	"github.com/colonyops/deskbell/internal/poll"
	"github.com/colonyops/deskbell/internal/profiler"
	"github.com/colonyops/deskbell/internal/tui"
)

type WatchCmd struct {
	flags *Flags
	app   *deskbell.App

	headless bool
}

// NewWatchCmd creates the watch command. It is also the default action.
func NewWatchCmd(flags *Flags, app *deskbell.App) *WatchCmd {
	return &WatchCmd{flags: flags, app: app}
}

// Flags returns the watch flags for registration on the root command. The
// watch subcommand inherits them from there.
func (cmd *WatchCmd) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.IntFlag{
			Name:        "profiler-port",
			Usage:       "enable pprof HTTP endpoint on specified port (e.g., 6060)",
			Sources:     cli.EnvVars("DESKBELL_PROFILER_PORT"),
			Destination: &cmd.flags.ProfilerPort,
		},
		&cli.BoolFlag{
			Name:        "headless",
			Usage:       "print alerts as lines instead of opening the terminal UI",
			Sources:     cli.EnvVars("DESKBELL_HEADLESS"),
			Destination: &cmd.headless,
		},
	}
}

// Register adds the watch command to the application.
func (cmd *WatchCmd) Register(app *cli.Command) *cli.Command {
	app.Commands = append(app.Commands, &cli.Command{
		Name:      "watch",
		Usage:     "Poll the dashboard and raise alerts for new notifications",
		UsageText: "deskbell watch [--headless]",
		Description: `Polls the configured source on the refresh interval from settings and
dispatches every new notification to sound, desktop notifications, banners
and the history log.

Opens the terminal UI when stdout is a terminal; otherwise, or with
--headless, alerts are printed one per line.`,
		Action: cmd.Run,
	})
	return app
}

// Run executes the watcher. Exported for use as default command.
func (cmd *WatchCmd) Run(ctx context.Context, _ *cli.Command) error {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	source, err := cmd.app.Source()
	if err != nil {
		return err
	}

	headless := cmd.headless || !term.IsTerminal(int(os.Stdout.Fd()))

	var (
		sink        render.Sink
		programSink *tui.ProgramSink
		opts        deskbell.PipelineOptions
	)
	if headless {
		sink = tui.NewLineSink(os.Stdout)
	} else {
		programSink = tui.NewProgramSink(logging.Component("tui"))
		sink = programSink
		opts.Focus = programSink.Focus
	}
	opts.Sink = sink

	pipeline := cmd.app.NewPipeline(opts, logging.Component("pipeline"))
	defer func() {
		if err := pipeline.Close(); err != nil {
			log.Warn().Err(err).Msg("failed to close notification platform")
		}
	}()

	eventbus.RegisterDebugLogger(cmd.app.Bus, logging.Component("eventbus"))
	go cmd.app.Bus.Start(ctx)
	pipeline.Start(ctx)

	runnerOpts := poll.RunnerOptions{
		Source:    source,
		Processor: pipeline.Dispatcher,
		Settings:  cmd.app.Settings,
	}

	if cmd.app.Config.Source.Kind == config.SourceFile {
		watcher, err := poll.NewFileWatcher(cmd.app.Config.Source.File, logging.Component("watcher"))
		if err != nil {
			log.Warn().Err(err).Msg("snapshot file changes will only be picked up on the poll interval")
		} else {
			defer func() { _ = watcher.Close() }()
			runnerOpts.Trigger = watcher.Changes(ctx)
		}
	}

	runner := poll.NewRunner(runnerOpts, logging.Component("poll"))

	if cmd.flags.ProfilerPort > 0 {
		debug, err := profiler.Listen(ctx, cmd.flags.ProfilerPort, cmd.statusFunc(runner), logging.Component("profiler"))
		if err != nil {
			return fmt.Errorf("start profiler: %w", err)
		}
		defer func() {
			closeCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := debug.Close(closeCtx); err != nil {
				log.Error().Err(err).Msg("failed to shutdown profiler server")
			}
		}()
		log.Info().
			Str("pprof", debug.URL("/debug/pprof/")).
			Str("status", debug.URL("/debug/status")).
			Msg("profiler endpoint available")
	}

	if headless {
		return runner.Run(ctx)
	}

	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()
	go func() {
		if err := runner.Run(runCtx); err != nil && runCtx.Err() == nil {
			log.Error().Err(err).Msg("poll loop stopped")
		}
	}()

	model := tui.New(cmd.app.Settings.Current(), tui.Actions{
		Refresh: runner.Refresh,
		Open:    cmd.app.OpenURL,
		UpdateSettings: func(fn func(*settings.Settings)) (settings.Settings, error) {
			return cmd.app.Settings.Update(ctx, fn)
		},
		Status: runner.Status,
	})

	return tui.Run(ctx, model, programSink)
}

type watchStatus struct {
	Polls       int               `json:"polls"`
	LastSuccess time.Time         `json:"last_success"`
	LastError   string            `json:"last_error,omitempty"`
	Settings    settings.Settings `json:"settings"`
	Schema      int               `json:"schema_version"`
	BusDropped  int64             `json:"bus_dropped"`
}

func (cmd *WatchCmd) statusFunc(runner *poll.Runner) profiler.StatusFunc {
	return func() any {
		st := runner.Status()
		out := watchStatus{
			Polls:       st.Polls,
			LastSuccess: st.LastSuccess,
			Settings:    cmd.app.Settings.Current(),
			BusDropped:  cmd.app.Bus.Dropped(),
		}
		if v, err := cmd.app.DB.SchemaVersion(context.Background()); err == nil {
			out.Schema = v
		}
		if st.LastError != nil {
			out.LastError = st.LastError.Error()
		}
		return out
	}
}
