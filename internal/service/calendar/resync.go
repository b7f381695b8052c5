package calendar

import (
	"context"
	"fmt"

	"github.com/robfig/cron/v3"

	"github.com/oshokin/alarm-clock/internal/logger"
)

// Resyncer refreshes a Cache on a cron schedule.
type Resyncer struct {
	// cron runs the refresh job.
	cron *cron.Cron
	// cache is refreshed by the job.
	cache *Cache
	// spec is the schedule, e.g. "@every 12h" or "0 3 * * *".
	spec string
}

// NewResyncer validates the schedule and prepares a resyncer for cache.
func NewResyncer(cache *Cache, spec string) (*Resyncer, error) {
	if _, err := cron.ParseStandard(spec); err != nil {
		return nil, fmt.Errorf("parse calendar refresh schedule %q: %w", spec, err)
	}

	return &Resyncer{
		cache: cache,
		spec:  spec,
	}, nil
}

// Start schedules the refresh job. Refreshes run with ctx so that canceling
// it aborts a fetch in flight.
func (r *Resyncer) Start(ctx context.Context) error {
	ctx = logger.WithName(ctx, "calendar-resync")

	r.cron = cron.New(cron.WithLogger(cronLogger{ctx: ctx}))

	if _, err := r.cron.AddFunc(r.spec, func() {
		logger.Debug(ctx, "Scheduled calendar refresh")
		r.cache.RefreshAsync(ctx)
	}); err != nil {
		return fmt.Errorf("schedule calendar refresh: %w", err)
	}

	r.cron.Start()
	logger.InfoKV(ctx, "Calendar resync scheduled", "schedule", r.spec)

	return nil
}

// Stop halts the schedule and waits for a running job to return.
func (r *Resyncer) Stop() {
	if r.cron == nil {
		return
	}

	<-r.cron.Stop().Done()
}

// cronLogger routes cron's internal messages to the context logger.
type cronLogger struct {
	ctx context.Context //nolint:containedctx // cron.Logger has no context parameter.
}

// Info logs routine scheduler messages at debug level.
func (l cronLogger) Info(msg string, keysAndValues ...any) {
	logger.DebugKV(l.ctx, msg, keysAndValues...)
}

// Error logs scheduler failures.
func (l cronLogger) Error(err error, msg string, keysAndValues ...any) {
	logger.ErrorKV(l.ctx, msg, append([]any{"error", err}, keysAndValues...)...)
}
