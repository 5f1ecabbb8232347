// Package sweep prunes old alert history in the background.
package sweep

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"
)

// Pruner deletes history recorded before a cutoff.
type Pruner interface {
	Prune(ctx context.Context, before time.Time) (int64, error)
}

// Start deletes entries older than retention once immediately and then on
// every interval, until ctx is cancelled. Intervals below one second are
// rounded up. A zero retention disables sweeping.
func Start(ctx context.Context, p Pruner, retention, interval time.Duration, log zerolog.Logger) {
	if retention <= 0 {
		return
	}

	sweepOnce(ctx, p, retention, log)

	logger := cronLogger{log: log}
	c := cron.New(
		cron.WithLogger(logger),
		cron.WithChain(cron.Recover(logger), cron.SkipIfStillRunning(logger)),
	)
	c.Schedule(cron.Every(interval), cron.FuncJob(func() {
		sweepOnce(ctx, p, retention, log)
	}))
	c.Start()

	<-ctx.Done()
	<-c.Stop().Done()
}

func sweepOnce(ctx context.Context, p Pruner, retention time.Duration, log zerolog.Logger) {
	n, err := p.Prune(ctx, time.Now().Add(-retention))
	if err != nil {
		log.Debug().Err(err).Msg("history sweep failed")
		return
	}
	if n > 0 {
		log.Debug().Int64("deleted", n).Msg("history swept")
	}
}

// cronLogger routes scheduler messages to zerolog.
type cronLogger struct {
	log zerolog.Logger
}

func (l cronLogger) Info(msg string, keysAndValues ...any) {
	l.log.Debug().Fields(keysAndValues).Msg(msg)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...any) {
	l.log.Error().Err(err).Fields(keysAndValues).Msg(msg)
}
