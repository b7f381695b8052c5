package alarm

import (
	"time"

	"github.com/oshokin/alarm-clock/internal/domain/calendar"
)

const (
	// CustomHorizonDays is how far NextOccurrence scans for custom alarms.
	CustomHorizonDays = 14
	// WorkdayHorizonDays is how far NextOccurrence scans for workday alarms.
	// Long holiday runs fit without the feed having to cover more.
	WorkdayHorizonDays = 90

	// minuteKeyLayout produces keys such as "2025-01-31T07:30".
	minuteKeyLayout = "2006-01-02T15:04"
)

// WorkdayFunc reports whether the date of t is a working day.
type WorkdayFunc func(t time.Time) bool

// DayOf returns the weekday tag of t.
func DayOf(t time.Time) Day {
	return dayOrder[t.Weekday()]
}

// MinuteKey identifies the calendar minute of t.
func MinuteKey(t time.Time) string {
	return t.Format(minuteKeyLayout)
}

// FiresAt reports whether the alarm rings during the minute of instant.
// Seconds are ignored. A nil isWorkday falls back to the Monday to Friday rule.
func FiresAt(a *Alarm, instant time.Time, isWorkday WorkdayFunc) bool {
	if a == nil || !a.Enabled {
		return false
	}

	if instant.Hour() != a.Time.Hour || instant.Minute() != a.Time.Minute {
		return false
	}

	return a.accepts(instant, orDefault(isWorkday))
}

// NextOccurrence returns the next instant strictly after now at which the
// alarm rings. Today is eligible if its slot has not passed yet.
//
// Custom alarms are searched CustomHorizonDays ahead, workday alarms
// WorkdayHorizonDays ahead. When no day in the horizon matches, the first
// future candidate is returned anyway so an enabled alarm always has a next
// occurrence. The boolean is false only for disabled alarms.
func NextOccurrence(a *Alarm, now time.Time, isWorkday WorkdayFunc) (time.Time, bool) {
	if a == nil || !a.Enabled {
		return time.Time{}, false
	}

	var (
		check    = orDefault(isWorkday)
		horizon  = a.horizon()
		fallback time.Time
	)

	for offset := range horizon {
		candidate := time.Date(
			now.Year(), now.Month(), now.Day()+offset,
			a.Time.Hour, a.Time.Minute, 0, 0,
			now.Location(),
		)

		if !candidate.After(now) {
			continue
		}

		if fallback.IsZero() {
			fallback = candidate
		}

		if a.accepts(candidate, check) {
			return candidate, true
		}
	}

	return fallback, !fallback.IsZero()
}

// Upcoming pairs an alarm with its next occurrence.
type Upcoming struct {
	// Alarm is a copy of the alarm that rings next.
	Alarm *Alarm
	// At is when it rings.
	At time.Time
}

// Nearest finds the alarm whose next occurrence is the earliest.
// On ties the alarm listed first wins.
func Nearest(alarms []Alarm, now time.Time, isWorkday WorkdayFunc) (*Upcoming, bool) {
	var closest *Upcoming

	for i := range alarms {
		at, ok := NextOccurrence(&alarms[i], now, isWorkday)
		if !ok {
			continue
		}

		if closest == nil || at.Before(closest.At) {
			closest = &Upcoming{
				Alarm: alarms[i].Clone(),
				At:    at,
			}
		}
	}

	return closest, closest != nil
}

// accepts applies the repeat policy to the date of t.
func (a *Alarm) accepts(t time.Time, isWorkday WorkdayFunc) bool {
	if a.Mode == ModeWorkday {
		return isWorkday(t)
	}

	return a.HasDay(DayOf(t))
}

func (a *Alarm) horizon() int {
	if a.Mode == ModeWorkday {
		return WorkdayHorizonDays
	}

	return CustomHorizonDays
}

func orDefault(isWorkday WorkdayFunc) WorkdayFunc {
	if isWorkday == nil {
		return calendar.IsDefaultWorkday
	}

	return isWorkday
}
