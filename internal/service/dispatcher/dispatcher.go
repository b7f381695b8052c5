package dispatcher

import (
	"context"
	"sync"
	"time"

	domain "github.com/oshokin/alarm-clock/internal/domain/alarm"
	"github.com/oshokin/alarm-clock/internal/logger"
	"github.com/oshokin/alarm-clock/internal/service/notify"
)

// DefaultInterval is the tick period of Run.
const DefaultInterval = time.Second

// AlarmSource provides the current alarm list.
type AlarmSource interface {
	List() []domain.Alarm
}

// WorkdaySource answers whether a date is a working day.
type WorkdaySource interface {
	IsWorkday(t time.Time) bool
}

// Clock tells the current time.
type Clock interface {
	Now() time.Time
}

// SystemClock reads the wall clock.
type SystemClock struct{}

// Now returns time.Now().
func (SystemClock) Now() time.Time { return time.Now() }

// Dispatcher emits at most one trigger per alarm per minute.
type Dispatcher struct {
	// alarms is read on every tick.
	alarms AlarmSource
	// calendar decides workday alarms; nil falls back to Monday to Friday.
	calendar WorkdaySource
	// notifier receives triggers that pass the gate.
	notifier notify.Notifier
	// clock drives Run.
	clock Clock
	// gate reports whether notifications may be delivered.
	gate func() bool
	// interval is the tick period of Run.
	interval time.Duration

	// mu guards ledger.
	mu sync.Mutex
	// ledger maps alarm id to the minute key it last fired for.
	ledger map[string]string
}

// Option configures a Dispatcher.
type Option func(*Dispatcher)

// WithGate installs the notification permission check.
func WithGate(gate func() bool) Option {
	return func(d *Dispatcher) {
		if gate != nil {
			d.gate = gate
		}
	}
}

// WithClock replaces the wall clock.
func WithClock(clock Clock) Option {
	return func(d *Dispatcher) {
		if clock != nil {
			d.clock = clock
		}
	}
}

// WithInterval changes the tick period of Run.
func WithInterval(interval time.Duration) Option {
	return func(d *Dispatcher) {
		if interval > 0 {
			d.interval = interval
		}
	}
}

// New creates a dispatcher over the given alarms, calendar and notifier.
func New(alarms AlarmSource, calendar WorkdaySource, notifier notify.Notifier, opts ...Option) *Dispatcher {
	d := &Dispatcher{
		alarms:   alarms,
		calendar: calendar,
		notifier: notifier,
		clock:    SystemClock{},
		gate:     func() bool { return true },
		interval: DefaultInterval,
		ledger:   make(map[string]string),
	}

	for _, opt := range opts {
		opt(d)
	}

	return d
}

// Run ticks until ctx is canceled.
func (d *Dispatcher) Run(ctx context.Context) {
	ctx = logger.WithName(ctx, "dispatcher")

	ticker := time.NewTicker(d.interval)
	defer ticker.Stop()

	logger.InfoKV(ctx, "Trigger dispatcher started", "interval", d.interval.String())

	for {
		select {
		case <-ctx.Done():
			logger.Info(ctx, "Trigger dispatcher stopped")
			return
		case <-ticker.C:
			d.Tick(ctx, d.clock.Now())
		}
	}
}

// Tick evaluates every alarm at now and returns the triggers it emitted.
// The ledger is updated even when the gate blocks delivery, so a minute is
// never announced late after notifications are re-enabled.
func (d *Dispatcher) Tick(ctx context.Context, now time.Time) []domain.Trigger {
	key := domain.MinuteKey(now)
	alarms := d.alarms.List()

	var isWorkday domain.WorkdayFunc
	if d.calendar != nil {
		isWorkday = d.calendar.IsWorkday
	}

	d.mu.Lock()

	var triggers []domain.Trigger

	seen := make(map[string]struct{}, len(alarms))

	for i := range alarms {
		a := &alarms[i]
		seen[a.ID] = struct{}{}

		if !domain.FiresAt(a, now, isWorkday) || d.ledger[a.ID] == key {
			continue
		}

		d.ledger[a.ID] = key
		triggers = append(triggers, domain.NewTrigger(a, now))
	}

	// Forget removed alarms.
	for id := range d.ledger {
		if _, ok := seen[id]; !ok {
			delete(d.ledger, id)
		}
	}

	d.mu.Unlock()

	if len(triggers) == 0 {
		return nil
	}

	if !d.gate() {
		logger.DebugKV(ctx, "Notifications not permitted, triggers dropped", "count", len(triggers), "minute", key)

		return triggers
	}

	for _, trigger := range triggers {
		msg := notify.Message{Title: trigger.Title, Body: trigger.Body}

		if err := d.notifier.Notify(ctx, msg); err != nil {
			logger.WarnKV(ctx, "Failed to deliver alarm notification",
				"alarm_id", trigger.AlarmID, "minute", trigger.MinuteKey, "error", err)
		}
	}

	return triggers
}
