package commands

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/urfave/cli/v3"

	"github.com/colonyops/deskbell/internal/core/alert"
	"github.com/colonyops/deskbell/internal/core/logging"
	"github.com/colonyops/deskbell/internal/core/tone"
	"github.com/colonyops/deskbell/internal/deskbell"
	"github.com/colonyops/deskbell/internal/printer"
)

// playTail covers player startup after the last tone was scheduled.
const playTail = 500 * time.Millisecond

type PlayCmd struct {
	flags *Flags
	app   *deskbell.App

	volume float64
}

// NewPlayCmd creates the play command.
func NewPlayCmd(flags *Flags, app *deskbell.App) *PlayCmd {
	return &PlayCmd{flags: flags, app: app}
}

// Register adds the play command to the application.
func (cmd *PlayCmd) Register(app *cli.Command) *cli.Command {
	app.Commands = append(app.Commands, &cli.Command{
		Name:      "play",
		Usage:     "Play the tone for a priority level or cue",
		UsageText: "deskbell play <critical|high|normal|low|success|error> [--volume 0.5]",
		Description: `Plays a tone pattern through the configured audio player. Useful for
checking the audio setup. Without --volume the saved volume is used.`,
		Flags: []cli.Flag{
			&cli.FloatFlag{
				Name:        "volume",
				Usage:       "volume between 0 and 1",
				Destination: &cmd.volume,
			},
		},
		Action: cmd.run,
	})
	return app
}

func (cmd *PlayCmd) run(ctx context.Context, c *cli.Command) error {
	if c.Args().Len() != 1 {
		return errors.New("expected exactly one level or cue")
	}
	name := strings.ToLower(c.Args().First())

	volume := cmd.app.Settings.Current().SoundVolume
	if c.IsSet("volume") {
		volume = cmd.volume
	}

	synth := cmd.app.Synthesizer(logging.Component("tone"))

	var (
		span time.Duration
		err  error
	)
	if level, lerr := alert.ParseLevel(name); lerr == nil {
		span = tone.Span(tone.Pattern(level))
		err = synth.PlayPattern(level, volume)
	} else {
		cue := tone.Cue(name)
		tones, cerr := tone.CuePattern(cue)
		if cerr != nil {
			return fmt.Errorf("%q is neither a level nor a cue", name)
		}
		span = tone.Span(tones)
		err = synth.PlayCue(cue, volume)
	}
	if err != nil {
		return fmt.Errorf("play %s: %w", name, err)
	}

	t := time.NewTimer(span + playTail)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return nil
	case <-t.C:
	}

	if !synth.Available() {
		return fmt.Errorf("play %s: %w", name, tone.ErrAudioUnavailable)
	}
	printer.Ctx(ctx).Successf("Played %s at %d%%", name, int(volume*100+0.5))
	return nil
}
