package calendar

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/oshokin/alarm-clock/internal/domain/calendar"
	"github.com/oshokin/alarm-clock/internal/logger"
)

// Source fetches a complete holiday snapshot.
type Source interface {
	Fetch(ctx context.Context) (*calendar.Snapshot, error)
	URL() string
}

// ErrSuperseded is returned by Refresh when a newer refresh started before this one finished.
var ErrSuperseded = errors.New("calendar refresh superseded")

// Cache holds the current holiday snapshot and its sync status.
type Cache struct {
	// source provides snapshots.
	source Source
	// now returns the current time for SyncedAt.
	now func() time.Time

	// mu protects every field below.
	mu sync.RWMutex
	// snapshot is the last applied snapshot, nil until the first success.
	snapshot *calendar.Snapshot
	// generation identifies the latest issued refresh.
	generation uint64
	// cancel aborts the in-flight refresh, nil when idle.
	cancel context.CancelFunc
	// loading is true while the latest refresh is in flight.
	loading bool
	// lastErr is the error of the latest completed refresh.
	lastErr error
	// syncedAt is when snapshot was applied.
	syncedAt time.Time
	// wg tracks refreshes started by RefreshAsync.
	wg sync.WaitGroup
}

// CacheOption configures a Cache.
type CacheOption func(*Cache)

// WithNow injects the clock used for SyncedAt.
func WithNow(now func() time.Time) CacheOption {
	return func(c *Cache) {
		if now != nil {
			c.now = now
		}
	}
}

// NewCache creates an empty cache. Until the first successful refresh every
// query uses the Monday to Friday rule.
func NewCache(source Source, opts ...CacheOption) *Cache {
	c := &Cache{
		source: source,
		now:    time.Now,
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// Refresh fetches a new snapshot and applies it if no newer refresh started
// in the meantime. Starting a refresh cancels the one in flight.
// Failures keep the previous snapshot and are recorded in Status.
func (c *Cache) Refresh(ctx context.Context) error {
	ctx = logger.WithName(ctx, "calendar")

	c.mu.Lock()
	if c.cancel != nil {
		c.cancel()
	}

	c.generation++
	generation := c.generation

	fetchCtx, cancel := context.WithCancel(ctx)
	c.cancel = cancel
	c.loading = true
	c.lastErr = nil
	c.mu.Unlock()

	defer cancel()

	logger.DebugKV(ctx, "Fetching holiday calendar", "url", c.source.URL(), "generation", generation)

	snapshot, err := c.source.Fetch(fetchCtx)

	c.mu.Lock()
	defer c.mu.Unlock()

	if generation != c.generation {
		logger.DebugKV(ctx, "Discarding superseded calendar response", "generation", generation)
		return ErrSuperseded
	}

	c.cancel = nil
	c.loading = false

	if err != nil {
		if errors.Is(err, context.Canceled) {
			return err
		}

		c.lastErr = err
		logger.WarnKV(ctx, "Holiday calendar sync failed, keeping previous data", "error", err, "has_data", c.snapshot != nil)

		return err
	}

	c.snapshot = snapshot
	c.syncedAt = c.now()

	logger.InfoKV(ctx, "Holiday calendar synced",
		"holidays", snapshot.HolidayCount(),
		"workdays", snapshot.WorkdayCount(),
		"generated", snapshot.Generated(),
	)

	return nil
}

// RefreshAsync starts Refresh in the background and returns immediately.
func (c *Cache) RefreshAsync(ctx context.Context) {
	c.wg.Go(func() {
		_ = c.Refresh(ctx)
	})
}

// Close aborts an in-flight refresh and waits for background refreshes to return.
// The snapshot is left untouched.
func (c *Cache) Close() {
	c.mu.Lock()
	if c.cancel != nil {
		c.cancel()
		c.cancel = nil
	}

	// Invalidate whatever is still in flight.
	c.generation++
	c.loading = false
	c.mu.Unlock()

	c.wg.Wait()
}

// IsWorkday reports whether the date of t is a working day.
func (c *Cache) IsWorkday(t time.Time) bool {
	return c.Snapshot().IsWorkday(t)
}

// IsHoliday reports whether the date of t is a day off.
func (c *Cache) IsHoliday(t time.Time) bool {
	return c.Snapshot().IsHoliday(t)
}

// Snapshot returns the current snapshot, nil before the first successful sync.
func (c *Cache) Snapshot() *calendar.Snapshot {
	c.mu.RLock()
	defer c.mu.RUnlock()

	return c.snapshot
}

// Status reports the sync state.
func (c *Cache) Status() calendar.Status {
	c.mu.RLock()
	defer c.mu.RUnlock()

	status := calendar.Status{
		Loading:   c.loading,
		HasData:   c.snapshot != nil,
		Generated: c.snapshot.Generated(),
		SyncedAt:  c.syncedAt,
		SourceURL: c.source.URL(),
		Holidays:  c.snapshot.HolidayCount(),
		Workdays:  c.snapshot.WorkdayCount(),
	}

	if c.lastErr != nil {
		status.LastError = c.lastErr.Error()
	}

	return status
}
