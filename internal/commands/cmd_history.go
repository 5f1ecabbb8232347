package commands

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/charmbracelet/glamour"
	"github.com/urfave/cli/v3"
	"golang.org/x/term"

	"github.com/colonyops/deskbell/internal/core/history"
	"github.com/colonyops/deskbell/internal/core/styles"
	"github.com/colonyops/deskbell/internal/deskbell"
	"github.com/colonyops/deskbell/internal/printer"
	"github.com/colonyops/deskbell/pkg/iojson"
)

type HistoryCmd struct {
	flags *Flags
	app   *deskbell.App

	jsonOutput bool
	clear      bool
	limit      int
}

// NewHistoryCmd creates the history command.
func NewHistoryCmd(flags *Flags, app *deskbell.App) *HistoryCmd {
	return &HistoryCmd{flags: flags, app: app}
}

// Register adds the history command to the application.
func (cmd *HistoryCmd) Register(app *cli.Command) *cli.Command {
	app.Commands = append(app.Commands, &cli.Command{
		Name:      "history",
		Usage:     "List alerts that were dispatched",
		UsageText: "deskbell history [--limit 20] [--json] [--clear]",
		Description: `Shows the most recent alerts first. Entries older than the configured
history retention are pruned in the background.`,
		Flags: []cli.Flag{
			&cli.IntFlag{
				Name:        "limit",
				Aliases:     []string{"n"},
				Usage:       "maximum entries to show (0 for all)",
				Value:       20,
				Destination: &cmd.limit,
			},
			&cli.BoolFlag{
				Name:        "json",
				Usage:       "output as JSON",
				Destination: &cmd.jsonOutput,
			},
			&cli.BoolFlag{
				Name:        "clear",
				Usage:       "delete every entry",
				Destination: &cmd.clear,
			},
		},
		Action: cmd.run,
	})
	return app
}

func (cmd *HistoryCmd) run(ctx context.Context, c *cli.Command) error {
	p := printer.Ctx(ctx)

	if cmd.clear {
		n, err := cmd.app.History.Count(ctx)
		if err != nil {
			return fmt.Errorf("count history: %w", err)
		}
		if err := cmd.app.History.Clear(ctx); err != nil {
			return fmt.Errorf("clear history: %w", err)
		}
		p.Successf("Removed %d entries", n)
		return nil
	}

	entries, err := cmd.app.History.List(ctx, cmd.limit)
	if err != nil {
		return fmt.Errorf("list history: %w", err)
	}

	if cmd.jsonOutput {
		if entries == nil {
			entries = []history.Entry{}
		}
		return iojson.Encode(c.Root().Writer, entries)
	}

	if len(entries) == 0 {
		p.Infof("No alerts dispatched yet")
		return nil
	}

	md := historyMarkdown(entries)

	fd := int(os.Stdout.Fd())
	if !term.IsTerminal(fd) {
		_, err := fmt.Fprint(c.Root().Writer, md)
		return err
	}

	width, _, err := term.GetSize(fd)
	if err != nil || width <= 0 {
		width = 80
	}
	r, err := glamour.NewTermRenderer(
		glamour.WithStyles(styles.GlamourStyle()),
		glamour.WithWordWrap(max(width-4, 40)),
	)
	if err != nil {
		return fmt.Errorf("create renderer: %w", err)
	}

	rendered, err := r.Render(md)
	if err != nil {
		return fmt.Errorf("render history: %w", err)
	}
	_, err = fmt.Fprint(c.Root().Writer, rendered)
	return err
}

// historyMarkdown renders entries as a markdown document grouped by day.
func historyMarkdown(entries []history.Entry) string {
	var b strings.Builder
	b.WriteString("# Alert history\n")

	day := ""
	for _, e := range entries {
		local := e.DispatchedAt.Local()
		if d := local.Format(time.DateOnly); d != day {
			day = d
			fmt.Fprintf(&b, "\n## %s\n\n", day)
		}

		fmt.Fprintf(&b, "- **%s** `%s` %s", local.Format(time.TimeOnly), e.Level, escapeMarkdown(e.Title))
		if e.Message != "" {
			fmt.Fprintf(&b, ": %s", escapeMarkdown(e.Message))
		}
		if e.URL != "" {
			fmt.Fprintf(&b, " ([open](%s))", e.URL)
		}
		b.WriteString("\n")
	}
	return b.String()
}

var markdownEscaper = strings.NewReplacer(
	`\`, `\\`,
	"*", `\*`,
	"_", `\_`,
	"`", "\\`",
	"[", `\[`,
	"]", `\]`,
)

func escapeMarkdown(s string) string {
	return markdownEscaper.Replace(s)
}
