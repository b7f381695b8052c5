package server

import (
	"context"
	"errors"
	"time"

	domain "github.com/oshokin/alarm-clock/internal/domain/alarm"
	"github.com/oshokin/alarm-clock/internal/domain/calendar"
	"github.com/oshokin/alarm-clock/internal/logger"
	calsvc "github.com/oshokin/alarm-clock/internal/service/calendar"
	"github.com/oshokin/alarm-clock/internal/service/dispatcher"
	"github.com/oshokin/alarm-clock/internal/service/registry"
)

// maxRefreshAttempts bounds how often a client refresh is reissued after being superseded.
const maxRefreshAttempts = 3

// Scheduler owns the alarm registry, the calendar cache and the trigger
// dispatcher, and serves the transport layer.
type Scheduler struct {
	// registry holds the alarm list.
	registry *registry.Registry
	// cache holds the holiday calendar.
	cache *calsvc.Cache
	// dispatcher emits triggers.
	dispatcher *dispatcher.Dispatcher
	// clock is shared with the dispatcher.
	clock dispatcher.Clock
}

// NewScheduler assembles a scheduler from its parts.
func NewScheduler(
	reg *registry.Registry,
	cache *calsvc.Cache,
	disp *dispatcher.Dispatcher,
	clock dispatcher.Clock,
) *Scheduler {
	if clock == nil {
		clock = dispatcher.SystemClock{}
	}

	return &Scheduler{
		registry:   reg,
		cache:      cache,
		dispatcher: disp,
		clock:      clock,
	}
}

// ListAlarms returns a copy of the alarm list.
func (s *Scheduler) ListAlarms(context.Context) []domain.Alarm {
	return s.registry.List()
}

// CreateAlarm adds an alarm.
func (s *Scheduler) CreateAlarm(ctx context.Context, draft domain.Draft) (domain.Alarm, error) {
	return s.registry.Create(ctx, draft)
}

// ToggleAlarm flips the enabled flag of an alarm.
func (s *Scheduler) ToggleAlarm(ctx context.Context, id string) (domain.Alarm, bool) {
	return s.registry.Toggle(ctx, id)
}

// RemoveAlarm deletes an alarm.
func (s *Scheduler) RemoveAlarm(ctx context.Context, id string) bool {
	return s.registry.Remove(ctx, id)
}

// NextAlarm finds the nearest upcoming alarm after from.
func (s *Scheduler) NextAlarm(_ context.Context, from time.Time) (*domain.Upcoming, bool) {
	return domain.Nearest(s.registry.List(), from, s.cache.IsWorkday)
}

// CalendarStatus reports the calendar sync state.
func (s *Scheduler) CalendarStatus(context.Context) calendar.Status {
	return s.cache.Status()
}

// RefreshCalendar fetches the calendar and waits for the outcome.
// When a scheduled refresh overtakes this one the request is reissued, so the
// caller always sees the result of a fetch that started after the call.
func (s *Scheduler) RefreshCalendar(ctx context.Context) (calendar.Status, error) {
	var err error

	for range maxRefreshAttempts {
		err = s.cache.Refresh(ctx)
		if !errors.Is(err, calsvc.ErrSuperseded) {
			break
		}
	}

	if errors.Is(err, calsvc.ErrSuperseded) {
		err = nil
	}

	return s.cache.Status(), err
}

// CheckDay classifies a date with the cached calendar.
func (s *Scheduler) CheckDay(_ context.Context, date time.Time) (bool, bool) {
	return s.cache.IsWorkday(date), s.cache.IsHoliday(date)
}

// Load reads the persisted alarms and logs the nearest one. It must return
// before the transport accepts requests, otherwise an early change would be
// persisted over the stored list.
func (s *Scheduler) Load(ctx context.Context) []domain.Alarm {
	alarms := s.registry.Load(ctx)

	if next, ok := domain.Nearest(alarms, s.clock.Now(), s.cache.IsWorkday); ok {
		logger.InfoKV(ctx, "Next alarm",
			"alarm_id", next.Alarm.ID,
			"title", next.Alarm.Title(),
			"at", next.At.Format(time.RFC3339),
			"relative", domain.FormatRelative(next.At, s.clock.Now()))
	}

	return alarms
}

// Start triggers the first calendar fetch and runs the dispatcher until ctx
// is canceled. Load must have returned before.
func (s *Scheduler) Start(ctx context.Context) {
	s.cache.RefreshAsync(ctx)
	s.dispatcher.Run(ctx)
}

// Close aborts a calendar fetch in flight and waits for background work.
func (s *Scheduler) Close() {
	s.cache.Close()
}
