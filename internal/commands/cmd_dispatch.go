package commands

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/urfave/cli/v3"

	"github.com/colonyops/deskbell/internal/core/alert"
	"github.com/colonyops/deskbell/internal/core/logging"
	"github.com/colonyops/deskbell/internal/core/tone"
	"github.com/colonyops/deskbell/internal/deskbell"
	"github.com/colonyops/deskbell/internal/poll"
	"github.com/colonyops/deskbell/internal/printer"
	"github.com/colonyops/deskbell/internal/tui"
	"github.com/colonyops/deskbell/pkg/iojson"
)

type DispatchCmd struct {
	flags *Flags
	app   *deskbell.App

	current  iojson.Reader
	previous iojson.Reader
}

// NewDispatchCmd creates the dispatch command.
func NewDispatchCmd(flags *Flags, app *deskbell.App) *DispatchCmd {
	return &DispatchCmd{flags: flags, app: app}
}

// Register adds the dispatch command to the application.
func (cmd *DispatchCmd) Register(app *cli.Command) *cli.Command {
	app.Commands = append(app.Commands, &cli.Command{
		Name:      "dispatch",
		Usage:     "Raise alerts for a single snapshot",
		UsageText: "deskbell dispatch [-f snapshot.json] [--previous old.json]",
		Description: `Reads one notification snapshot (the dashboard's JSON response) and
dispatches it through every channel using the saved settings.

Without --previous every item in the snapshot is new. With --previous only
items whose title and time label do not appear in the previous snapshot
are dispatched.`,
		Flags: []cli.Flag{
			cmd.current.Flag("file"),
			cmd.previous.Flag("previous"),
		},
		Action: cmd.run,
	})
	return app
}

func (cmd *DispatchCmd) run(ctx context.Context, _ *cli.Command) error {
	snap, err := iojson.Decode(&cmd.current, poll.Decode)
	if err != nil {
		return fmt.Errorf("read snapshot: %w", err)
	}

	pipeline := cmd.app.NewPipeline(deskbell.PipelineOptions{
		Sink: tui.NewLineSink(os.Stdout),
	}, logging.Component("pipeline"))
	defer func() { _ = pipeline.Close() }()

	if _, err := pipeline.Notifier.Resolve(ctx); err != nil {
		log.Debug().Err(err).Msg("desktop notifications unavailable")
	}

	st := cmd.app.Settings.Current()
	fresh := snap.Items
	if cmd.previous.Path() != "" {
		prev, err := iojson.Decode(&cmd.previous, poll.Decode)
		if err != nil {
			return fmt.Errorf("read previous snapshot: %w", err)
		}
		fresh = alert.Diff(snap.Items, prev.Items)
	}

	res := pipeline.Dispatcher.Dispatch(ctx, fresh, st, snap)

	p := printer.Ctx(ctx)
	p.Infof("cycle %s: %d new, %d dispatched, %d filtered", res.CycleID, len(res.New), len(res.Dispatched), len(res.Filtered))
	if res.Failures > 0 {
		p.Warnf("%d channel deliveries failed; see the log for details", res.Failures)
	}

	if st.SoundEnabled && len(res.Dispatched) > 0 {
		waitForTones(ctx, res.Dispatched)
	}
	return nil
}

// waitForTones keeps the process alive until the scheduled patterns for
// items have played.
func waitForTones(ctx context.Context, items []alert.Notification) {
	var longest time.Duration
	for _, n := range items {
		longest = max(longest, tone.Span(tone.Pattern(n.Level())))
	}
	if longest == 0 {
		return
	}

	t := time.NewTimer(longest + 250*time.Millisecond)
	defer t.Stop()
	select {
	case <-ctx.Done():
	case <-t.C:
	}
}
