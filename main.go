package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/urfave/cli/v3"

	"github.com/colonyops/deskbell/internal/commands"
	"github.com/colonyops/deskbell/internal/core/clock"
	"github.com/colonyops/deskbell/internal/core/config"
	"github.com/colonyops/deskbell/internal/core/logging"
	"github.com/colonyops/deskbell/internal/core/styles"
	"github.com/colonyops/deskbell/internal/data/db"
	"github.com/colonyops/deskbell/internal/data/stores"
	"github.com/colonyops/deskbell/internal/data/sweep"
	"github.com/colonyops/deskbell/internal/deskbell"
	"github.com/colonyops/deskbell/internal/printer"
	"github.com/colonyops/deskbell/pkg/executil"
	"github.com/colonyops/deskbell/pkg/logutils"
)

const description = `Deskbell polls the helpdesk dashboard for pending notifications and raises
an alert for every one it has not seen yet: a tone pattern by priority, a
desktop notification that opens the ticket, and a banner in the terminal UI.

Run 'deskbell' with no arguments to start watching.
Run 'deskbell settings edit' to change sound, push and refresh preferences.`

func main() {
	os.Exit(run(context.Background(), os.Args))
}

func run(ctx context.Context, args []string) int {
	s := &session{flags: &commands.Flags{}, app: &deskbell.App{}}
	root := s.rootCommand()

	err := root.Run(ctx, args)
	if err == nil {
		return 0
	}

	var exit cli.ExitCoder
	if errors.As(err, &exit) {
		if msg := exit.Error(); msg != "" {
			fmt.Fprintln(os.Stderr, msg)
		}
		return exit.ExitCode()
	}
	fmt.Fprintln(os.Stderr)
	fmt.Fprintln(os.Stderr, err.Error())
	return 1
}

// session owns what the root Before hook opens and After releases.
type session struct {
	flags *commands.Flags
	app   *deskbell.App

	database  *db.DB
	closeLog  func()
	stopSweep context.CancelFunc
}

func (s *session) rootCommand() *cli.Command {
	f := s.flags
	root := &cli.Command{
		Name:        "deskbell",
		Usage:       "Real-time alerts for helpdesk notifications",
		UsageText:   "deskbell [global options] command [command options]",
		Description: description,
		Version:     versionString(buildInfo()),
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        "log-level",
				Usage:       "log level (debug, info, warn, error, fatal, panic)",
				Sources:     cli.EnvVars("DESKBELL_LOG_LEVEL"),
				Value:       "info",
				Destination: &f.LogLevel,
			},
			&cli.StringFlag{
				Name:        "log-file",
				Usage:       "path to log file",
				Sources:     cli.EnvVars("DESKBELL_LOG_FILE"),
				Value:       commands.DefaultLogFile(),
				Destination: &f.LogFile,
			},
			&cli.StringFlag{
				Name:        "config",
				Aliases:     []string{"c"},
				Usage:       "path to config file",
				Sources:     cli.EnvVars("DESKBELL_CONFIG"),
				Value:       commands.DefaultConfigPath(),
				Destination: &f.ConfigPath,
			},
			&cli.StringFlag{
				Name:        "data-dir",
				Usage:       "path to data directory",
				Sources:     cli.EnvVars("DESKBELL_DATA_DIR"),
				Value:       commands.DefaultDataDir(),
				Destination: &f.DataDir,
			},
		},
		Before: s.before,
		After:  s.after,
	}

	watch := commands.NewWatchCmd(f, s.app)
	root = watch.Register(root)
	root = commands.NewDispatchCmd(f, s.app).Register(root)
	root = commands.NewSettingsCmd(f, s.app).Register(root)
	root = commands.NewPlayCmd(f, s.app).Register(root)
	root = commands.NewHistoryCmd(f, s.app).Register(root)
	root = commands.NewConfigValidateCmd(f).Register(root)

	// Bare `deskbell` watches, so the watch flags live on the root.
	root.Flags = append(root.Flags, watch.Flags()...)
	root.Action = func(ctx context.Context, c *cli.Command) error {
		if c.Args().Len() > 0 {
			return fmt.Errorf("unknown command %q. Run 'deskbell --help' for usage", c.Args().First())
		}
		return watch.Run(ctx, c)
	}

	return root
}

func (s *session) before(ctx context.Context, c *cli.Command) (context.Context, error) {
	logger, closeLog, err := logutils.New(logutils.Options{
		Level: s.flags.LogLevel,
		File:  s.flags.LogFile,
		Hooks: []zerolog.Hook{logging.ContextHook{}},
	})
	if err != nil {
		return ctx, fmt.Errorf("setup logger: %w", err)
	}
	log.Logger = logger
	s.closeLog = closeLog

	cfg, err := config.Load(s.flags.ConfigPath, s.flags.DataDir)
	if err != nil {
		return ctx, fmt.Errorf("load config: %w", err)
	}
	s.flags.Config = cfg

	// Load validates the theme name.
	palette, _ := styles.GetPalette(cfg.TUI.Theme)
	styles.SetTheme(palette)

	ctx = printer.NewContext(ctx, printer.New(c.Root().Writer))

	s.database, err = openDatabase(cfg)
	if err != nil {
		return ctx, fmt.Errorf("open database: %w", err)
	}

	*s.app = *deskbell.NewApp(cfg, s.database, &executil.RealExecutor{}, clock.Real(), buildInfo(), log.Logger)
	if err := s.app.Load(ctx); err != nil {
		log.Warn().Err(err).Msg("settings could not be loaded, using defaults")
	}

	sweepCtx, stop := context.WithCancel(context.Background())
	s.stopSweep = stop
	go sweep.Start(sweepCtx, s.app.History, cfg.History.Retention, cfg.History.SweepInterval, logging.Component("sweep"))

	return ctx, nil
}

func (s *session) after(context.Context, *cli.Command) error {
	if s.stopSweep != nil {
		s.stopSweep()
	}

	var err error
	if s.database != nil {
		if err = s.database.Close(); err != nil {
			log.Error().Err(err).Msg("failed to close database")
		}
	}

	if s.closeLog != nil {
		s.closeLog()
	}
	return err
}

// openDatabase opens the store, moving a corrupted database aside and
// starting fresh once.
func openDatabase(cfg *config.Config) (*db.DB, error) {
	opts := db.OpenOptions{
		MaxOpenConns: cfg.Database.MaxOpenConns,
		MaxIdleConns: cfg.Database.MaxIdleConns,
		BusyTimeout:  cfg.Database.BusyTimeout,
	}

	database, err := db.Open(cfg.DataDir, opts)
	if err == nil || !stores.IsCorruptionError(err) {
		return database, err
	}

	log.Warn().Err(err).Msg("database corrupted, moving it aside")
	if rerr := stores.RecoverFromCorruption(cfg.DataDir); rerr != nil {
		return nil, fmt.Errorf("%w (recovery failed: %w)", err, rerr)
	}
	return db.Open(cfg.DataDir, opts)
}
