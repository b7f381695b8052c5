package alarm

import (
	"fmt"
	"math"
	"strings"
	"time"
)

const (
	// RingingSoon is the relative text for occurrences less than a minute away.
	RingingSoon = "ringing soon"

	// draftStep is the granularity of RoundedTime.
	draftStep = 5
)

// FormatRelative describes how far target is from from, e.g. "in 2 h 5 min".
// Minutes are rounded to the nearest whole minute.
func FormatRelative(target, from time.Time) string {
	diff := target.Sub(from)
	if diff <= 0 {
		return RingingSoon
	}

	totalMinutes := int(math.Round(diff.Minutes()))
	hours, minutes := totalMinutes/60, totalMinutes%60

	parts := make([]string, 0, 2)
	if hours > 0 {
		parts = append(parts, fmt.Sprintf("%d h", hours))
	}

	if minutes > 0 {
		parts = append(parts, fmt.Sprintf("%d min", minutes))
	}

	if len(parts) == 0 {
		return RingingSoon
	}

	return "in " + strings.Join(parts, " ")
}

// RoundedTime rounds the current minute up to a multiple of five; a minute
// already on a boundary is kept. It is the default time offered for a new alarm.
func RoundedTime(now time.Time) TimeOfDay {
	next := now.Truncate(time.Minute)

	if rem := now.Minute() % draftStep; rem != 0 {
		next = next.Add(time.Duration(draftStep-rem) * time.Minute)
	}

	return TimeOfDay{Hour: next.Hour(), Minute: next.Minute()}
}

// Trigger is one emitted alarm notification.
type Trigger struct {
	// AlarmID identifies the alarm that fired.
	AlarmID string
	// MinuteKey is the de-duplication key of the firing minute.
	MinuteKey string
	// At is the tick instant that matched.
	At time.Time
	// Title is the notification title.
	Title string
	// Body is the notification text.
	Body string
}

// NewTrigger builds the notification for an alarm firing at the given instant.
func NewTrigger(a *Alarm, at time.Time) Trigger {
	title := a.Title()

	return Trigger{
		AlarmID:   a.ID,
		MinuteKey: MinuteKey(at),
		At:        at,
		Title:     title,
		Body:      fmt.Sprintf("%s · %s is ringing", a.Time, title),
	}
}
