package commands

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/huh"
	"github.com/urfave/cli/v3"

	"github.com/colonyops/deskbell/internal/core/settings"
	"github.com/colonyops/deskbell/internal/deskbell"
	"github.com/colonyops/deskbell/internal/printer"
	"github.com/colonyops/deskbell/pkg/iojson"
)

type SettingsCmd struct {
	flags *Flags
	app   *deskbell.App

	jsonOutput bool

	sound        bool
	push         bool
	criticalOnly bool
	volume       float64
	refresh      time.Duration
}

// NewSettingsCmd creates the settings command.
func NewSettingsCmd(flags *Flags, app *deskbell.App) *SettingsCmd {
	return &SettingsCmd{flags: flags, app: app}
}

// Register adds the settings command to the application.
func (cmd *SettingsCmd) Register(app *cli.Command) *cli.Command {
	app.Commands = append(app.Commands, &cli.Command{
		Name:  "settings",
		Usage: "Show or change notification preferences",
		Commands: []*cli.Command{
			{
				Name:      "show",
				Usage:     "Print the current settings",
				UsageText: "deskbell settings show [--json]",
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:        "json",
						Usage:       "output as JSON",
						Destination: &cmd.jsonOutput,
					},
				},
				Action: cmd.runShow,
			},
			{
				Name:      "set",
				Usage:     "Change one or more settings",
				UsageText: "deskbell settings set [--sound] [--push] [--critical-only] [--volume 0.5] [--refresh 30s]",
				Description: `Only the flags given are changed. Boolean flags accept =false to turn an
option off, e.g. --sound=false.`,
				Flags: []cli.Flag{
					&cli.BoolFlag{Name: "sound", Usage: "play tones for new alerts", Destination: &cmd.sound},
					&cli.BoolFlag{Name: "push", Usage: "show desktop notifications", Destination: &cmd.push},
					&cli.BoolFlag{Name: "critical-only", Usage: "only alert on critical notifications", Destination: &cmd.criticalOnly},
					&cli.FloatFlag{Name: "volume", Usage: "tone volume between 0 and 1", Destination: &cmd.volume},
					&cli.DurationFlag{Name: "refresh", Usage: "poll interval (minimum 5s)", Destination: &cmd.refresh},
				},
				Action: cmd.runSet,
			},
			{
				Name:      "edit",
				Usage:     "Edit settings interactively",
				UsageText: "deskbell settings edit",
				Action:    cmd.runEdit,
			},
			{
				Name:      "reset",
				Usage:     "Restore the default settings",
				UsageText: "deskbell settings reset",
				Action:    cmd.runReset,
			},
		},
	})
	return app
}

func (cmd *SettingsCmd) runShow(ctx context.Context, c *cli.Command) error {
	st := cmd.app.Settings.Current()
	if cmd.jsonOutput {
		return iojson.Encode(c.Root().Writer, st)
	}

	updated, err := cmd.app.Settings.UpdatedAt(ctx)
	if err != nil {
		return fmt.Errorf("read settings: %w", err)
	}

	p := printer.Ctx(ctx)
	printSettings(p, st)
	if updated.IsZero() {
		p.KV("Saved", "never (defaults)")
	} else {
		p.KV("Saved", updated.Local().Format(time.DateTime))
	}
	return nil
}

func (cmd *SettingsCmd) runSet(ctx context.Context, c *cli.Command) error {
	next := cmd.app.Settings.Current()
	changed := false

	if c.IsSet("sound") {
		next.SoundEnabled, changed = cmd.sound, true
	}
	if c.IsSet("push") {
		next.PushEnabled, changed = cmd.push, true
	}
	if c.IsSet("critical-only") {
		next.CriticalOnly, changed = cmd.criticalOnly, true
	}
	if c.IsSet("volume") {
		next.SoundVolume, changed = cmd.volume, true
	}
	if c.IsSet("refresh") {
		next.RefreshIntervalMs, changed = int(cmd.refresh.Milliseconds()), true
	}

	if !changed {
		return errors.New("nothing to change. Run 'deskbell settings set --help' for the available flags")
	}

	return cmd.save(ctx, next)
}

func (cmd *SettingsCmd) runEdit(ctx context.Context, _ *cli.Command) error {
	next := cmd.app.Settings.Current()

	form, apply := settingsForm(&next)
	if err := form.Run(); err != nil {
		if errors.Is(err, huh.ErrUserAborted) {
			return nil
		}
		return fmt.Errorf("form: %w", err)
	}
	apply()

	return cmd.save(ctx, next)
}

func (cmd *SettingsCmd) runReset(ctx context.Context, _ *cli.Command) error {
	st, err := cmd.app.Settings.Reset(ctx)
	if err != nil {
		return fmt.Errorf("reset settings: %w", err)
	}

	p := printer.Ctx(ctx)
	p.Successf("Settings reset to defaults")
	printSettings(p, st)
	return nil
}

func (cmd *SettingsCmd) save(ctx context.Context, next settings.Settings) error {
	if err := next.Validate(); err != nil {
		return fmt.Errorf("invalid settings: %w", err)
	}

	st, err := cmd.app.Settings.Update(ctx, func(s *settings.Settings) {
		*s = next
	})
	if err != nil {
		return fmt.Errorf("save settings: %w", err)
	}

	p := printer.Ctx(ctx)
	p.Successf("Settings saved")
	printSettings(p, st)
	return nil
}

func printSettings(p *printer.Printer, st settings.Settings) {
	p.Header("Settings")
	p.KV("Sound", onOff(st.SoundEnabled))
	p.KV("Volume", fmt.Sprintf("%d%%", int(st.SoundVolume*100+0.5)))
	p.KV("Push", onOff(st.PushEnabled))
	p.KV("Critical only", onOff(st.CriticalOnly))
	p.KV("Refresh", st.RefreshInterval())
}

func onOff(b bool) string {
	if b {
		return "on"
	}
	return "off"
}

func settingsForm(st *settings.Settings) (*huh.Form, func()) {
	volume := strconv.Itoa(int(st.SoundVolume*100 + 0.5))

	refreshOpts := make([]huh.Option[int], 0, len(settings.RefreshChoices)+1)
	known := false
	for _, d := range settings.RefreshChoices {
		ms := int(d.Milliseconds())
		known = known || ms == st.RefreshIntervalMs
		refreshOpts = append(refreshOpts, huh.NewOption(d.String(), ms))
	}
	if !known {
		custom := st.RefreshInterval().String() + " (current)"
		refreshOpts = append(refreshOpts, huh.NewOption(custom, st.RefreshIntervalMs))
	}

	form := huh.NewForm(
		huh.NewGroup(
			huh.NewConfirm().
				Title("Play sounds?").
				Description("A tone pattern per priority level").
				Value(&st.SoundEnabled),
			huh.NewInput().
				Title("Volume").
				Description("0 to 100").
				Validate(func(s string) error {
					_, err := parsePercent(s)
					return err
				}).
				Value(&volume),
			huh.NewConfirm().
				Title("Show desktop notifications?").
				Value(&st.PushEnabled),
			huh.NewConfirm().
				Title("Only alert on critical notifications?").
				Description("Lower priorities still appear in the menu").
				Value(&st.CriticalOnly),
			huh.NewSelect[int]().
				Title("Refresh interval").
				Options(refreshOpts...).
				Value(&st.RefreshIntervalMs),
		),
	)

	apply := func() {
		if v, err := parsePercent(volume); err == nil {
			st.SoundVolume = v
		}
	}
	return form, apply
}

// parsePercent parses a 0-100 volume into the 0-1 range.
func parsePercent(s string) (float64, error) {
	n, err := strconv.Atoi(strings.TrimSpace(strings.TrimSuffix(s, "%")))
	if err != nil {
		return 0, errors.New("enter a whole number")
	}
	if n < 0 || n > 100 {
		return 0, errors.New("must be between 0 and 100")
	}
	return float64(n) / 100, nil
}
