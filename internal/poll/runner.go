package poll

import (
	"context"
	"sync"
	"time"

	"github.com/colonyops/deskbell/internal/core/alert"
	"github.com/colonyops/deskbell/internal/core/settings"
	"github.com/colonyops/deskbell/internal/dispatch"
	"github.com/rs/zerolog"
	"golang.org/x/time/rate"
)

// Processor consumes snapshots.
type Processor interface {
	Process(ctx context.Context, snap alert.Snapshot) dispatch.Result
}

// SettingsSource provides the poll period.
type SettingsSource interface {
	Current() settings.Settings
}

// Status describes the outcome of the most recent poll.
type Status struct {
	LastSuccess time.Time
	LastError   error
	Polls       int
}

// RunnerOptions configures a Runner.
type RunnerOptions struct {
	Source    Source
	Processor Processor
	Settings  SettingsSource
	// Trigger, when set, causes an immediate poll on every receive.
	Trigger <-chan struct{}
	// MinInterval floors the configured period. Zero means
	// settings.MinRefreshInterval.
	MinInterval time.Duration
	// RefreshEvery and RefreshBurst limit manual refreshes.
	RefreshEvery time.Duration
	RefreshBurst int
}

// Runner polls a Source on the period from settings and hands every fetched
// snapshot to the Processor. A failed fetch is logged and skipped; it changes
// no dispatch state.
type Runner struct {
	opts    RunnerOptions
	limiter *rate.Limiter
	refresh chan struct{}
	log     zerolog.Logger

	mu     sync.Mutex
	status Status
}

// NewRunner creates a Runner.
func NewRunner(opts RunnerOptions, log zerolog.Logger) *Runner {
	if opts.MinInterval <= 0 {
		opts.MinInterval = settings.MinRefreshInterval
	}
	if opts.RefreshEvery <= 0 {
		opts.RefreshEvery = 2 * time.Second
	}
	if opts.RefreshBurst <= 0 {
		opts.RefreshBurst = 1
	}
	return &Runner{
		opts:    opts,
		limiter: rate.NewLimiter(rate.Every(opts.RefreshEvery), opts.RefreshBurst),
		refresh: make(chan struct{}, 1),
		log:     log,
	}
}

// Run polls immediately and then on every period until ctx is done. The
// period is re-read from settings before each wait so changes apply on the
// next tick.
func (r *Runner) Run(ctx context.Context) error {
	r.PollOnce(ctx)

	for {
		timer := time.NewTimer(r.interval())

		select {
		case <-ctx.Done():
			timer.Stop()
			return nil
		case <-timer.C:
		case <-r.refresh:
			timer.Stop()
			r.log.Debug().Msg("manual refresh")
		case _, ok := <-r.opts.Trigger:
			timer.Stop()
			if !ok {
				r.opts.Trigger = nil
				continue
			}
		}

		r.PollOnce(ctx)
	}
}

// Refresh requests an immediate poll. It reports false when the request was
// rate limited.
func (r *Runner) Refresh() bool {
	if !r.limiter.Allow() {
		return false
	}
	select {
	case r.refresh <- struct{}{}:
	default:
	}
	return true
}

// PollOnce fetches one snapshot and processes it.
func (r *Runner) PollOnce(ctx context.Context) {
	snap, err := r.opts.Source.Fetch(ctx)

	r.mu.Lock()
	r.status.Polls++
	if err != nil {
		r.status.LastError = err
	} else {
		r.status.LastError = nil
		r.status.LastSuccess = time.Now()
	}
	r.mu.Unlock()

	if err != nil {
		if ctx.Err() == nil {
			r.log.Warn().Err(err).Msg("poll failed")
		}
		return
	}

	r.opts.Processor.Process(ctx, snap)
}

// Status returns the outcome of the latest poll.
func (r *Runner) Status() Status {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.status
}

func (r *Runner) interval() time.Duration {
	d := r.opts.Settings.Current().RefreshInterval()
	if d < r.opts.MinInterval {
		return r.opts.MinInterval
	}
	return d
}
