package alarm

import (
	"errors"
	"fmt"
	"slices"
	"strconv"
	"strings"
)

// Day is a lowercase weekday tag as stored in persisted alarms.
type Day string

// Weekday tags in time.Weekday order (Sunday first).
const (
	Sunday    Day = "sun"
	Monday    Day = "mon"
	Tuesday   Day = "tue"
	Wednesday Day = "wed"
	Thursday  Day = "thu"
	Friday    Day = "fri"
	Saturday  Day = "sat"
)

// Mode is the repeat policy of an alarm.
type Mode string

const (
	// ModeCustom rings on an explicit set of weekdays (or every day when the set is empty).
	ModeCustom Mode = "custom"
	// ModeWorkday rings on days the holiday calendar reports as workdays.
	ModeWorkday Mode = "workday"
)

const (
	// DefaultLabel is assigned to alarms created or loaded without a label.
	DefaultLabel = "New alarm"
	// DisplayLabel is shown in notifications for alarms with an empty label.
	DisplayLabel = "Alarm"
)

// ErrInvalidTime is returned when a time of day is not a valid 24h "HH:MM" value.
var ErrInvalidTime = errors.New("invalid time of day")

//nolint:gochecknoglobals // Fixed lookup table indexed by time.Weekday.
var dayOrder = [...]Day{Sunday, Monday, Tuesday, Wednesday, Thursday, Friday, Saturday}

// Days returns all weekday tags in time.Weekday order.
func Days() []Day {
	return slices.Clone(dayOrder[:])
}

// ParseDay converts a tag such as "mon" into a Day.
func ParseDay(s string) (Day, bool) {
	d := Day(strings.ToLower(strings.TrimSpace(s)))
	if slices.Contains(dayOrder[:], d) {
		return d, true
	}

	return "", false
}

// ParseMode converts a string into a Mode. Anything except "workday" is custom.
func ParseMode(s string) Mode {
	if Mode(strings.ToLower(strings.TrimSpace(s))) == ModeWorkday {
		return ModeWorkday
	}

	return ModeCustom
}

// TimeOfDay is a wall-clock time in 24h form with minute resolution.
type TimeOfDay struct {
	// Hour is in range 0..23.
	Hour int
	// Minute is in range 0..59.
	Minute int
}

// ParseTimeOfDay parses "HH:MM" (the hour may have a single digit).
func ParseTimeOfDay(s string) (TimeOfDay, error) {
	hourPart, minutePart, ok := strings.Cut(strings.TrimSpace(s), ":")
	if !ok || len(hourPart) == 0 || len(hourPart) > 2 || len(minutePart) != 2 {
		return TimeOfDay{}, fmt.Errorf("%w: %q", ErrInvalidTime, s)
	}

	hour, err := strconv.Atoi(hourPart)
	if err != nil {
		return TimeOfDay{}, fmt.Errorf("%w: %q", ErrInvalidTime, s)
	}

	minute, err := strconv.Atoi(minutePart)
	if err != nil {
		return TimeOfDay{}, fmt.Errorf("%w: %q", ErrInvalidTime, s)
	}

	t := TimeOfDay{Hour: hour, Minute: minute}
	if !t.Valid() {
		return TimeOfDay{}, fmt.Errorf("%w: %q", ErrInvalidTime, s)
	}

	return t, nil
}

// Valid reports whether the value is a real 24h time.
func (t TimeOfDay) Valid() bool {
	return t.Hour >= 0 && t.Hour <= 23 && t.Minute >= 0 && t.Minute <= 59
}

// String renders the time as zero-padded "HH:MM".
func (t TimeOfDay) String() string {
	return fmt.Sprintf("%02d:%02d", t.Hour, t.Minute)
}

// Alarm is a user-defined alarm.
type Alarm struct {
	// ID is an opaque identifier assigned at creation.
	ID string
	// Label is free text; it may be empty.
	Label string
	// Time is the time of day the alarm rings at.
	Time TimeOfDay
	// Days restricts a custom alarm to these weekdays. Empty means every day.
	// The set is ignored for workday alarms.
	Days []Day
	// Enabled indicates whether the alarm is armed.
	Enabled bool
	// Mode is the repeat policy.
	Mode Mode
}

// Clone returns a copy that does not share the Days slice.
func (a *Alarm) Clone() *Alarm {
	if a == nil {
		return nil
	}

	cloned := *a
	cloned.Days = slices.Clone(a.Days)

	return &cloned
}

// HasDay reports whether a custom alarm is scheduled on the given weekday tag.
func (a *Alarm) HasDay(d Day) bool {
	return len(a.Days) == 0 || slices.Contains(a.Days, d)
}

// Title returns the label used when the alarm is announced.
func (a *Alarm) Title() string {
	if a.Label == "" {
		return DisplayLabel
	}

	return a.Label
}

// Draft is a user submission for a new alarm.
type Draft struct {
	Label string
	Time  TimeOfDay
	Days  []Day
	Mode  Mode
}
