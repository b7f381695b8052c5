package calendar

import "time"

// DateKeyLayout is the layout of calendar-day keys.
const DateKeyLayout = "2006-01-02"

// DateKey formats the wall-clock date of t as "YYYY-MM-DD".
func DateKey(t time.Time) string {
	return t.Format(DateKeyLayout)
}

// IsDefaultWorkday is the fallback rule: Monday to Friday are workdays.
func IsDefaultWorkday(t time.Time) bool {
	day := t.Weekday()

	return day >= time.Monday && day <= time.Friday
}

// Snapshot is an immutable view of the holiday feed.
type Snapshot struct {
	// holidays holds dates that are days off even when they fall on a weekday.
	holidays map[string]struct{}
	// workdays holds compensatory workdays, normally weekend dates.
	workdays map[string]struct{}
	// generated is the feed's own build timestamp, zero when absent.
	generated time.Time
}

// NewSnapshot builds a snapshot from date keys.
func NewSnapshot(holidays, workdays []string, generated time.Time) *Snapshot {
	s := &Snapshot{
		holidays:  make(map[string]struct{}, len(holidays)),
		workdays:  make(map[string]struct{}, len(workdays)),
		generated: generated,
	}

	for _, key := range holidays {
		s.holidays[key] = struct{}{}
	}

	for _, key := range workdays {
		s.workdays[key] = struct{}{}
	}

	return s
}

// IsWorkday reports whether t falls on a working day.
// Compensatory workdays win over holidays when a feed lists a date in both.
func (s *Snapshot) IsWorkday(t time.Time) bool {
	if s == nil {
		return IsDefaultWorkday(t)
	}

	key := DateKey(t)
	if _, ok := s.workdays[key]; ok {
		return true
	}

	if _, ok := s.holidays[key]; ok {
		return false
	}

	return IsDefaultWorkday(t)
}

// IsHoliday reports whether t is a day off according to the feed.
// Without a feed every weekend day counts as a holiday.
func (s *Snapshot) IsHoliday(t time.Time) bool {
	if s == nil {
		return !IsDefaultWorkday(t)
	}

	key := DateKey(t)
	if _, ok := s.workdays[key]; ok {
		return false
	}

	_, ok := s.holidays[key]

	return ok
}

// Generated returns the feed build time, zero if the feed did not report one.
func (s *Snapshot) Generated() time.Time {
	if s == nil {
		return time.Time{}
	}

	return s.generated
}

// HolidayCount returns the number of holiday dates.
func (s *Snapshot) HolidayCount() int {
	if s == nil {
		return 0
	}

	return len(s.holidays)
}

// WorkdayCount returns the number of compensatory workdays.
func (s *Snapshot) WorkdayCount() int {
	if s == nil {
		return 0
	}

	return len(s.workdays)
}

// Status describes the sync state of the calendar cache.
type Status struct {
	// Loading is true while a fetch is in flight.
	Loading bool
	// HasData is true once a snapshot has been applied.
	HasData bool
	// LastError holds the message of the most recent failed fetch.
	LastError string
	// Generated is the feed build time of the current snapshot.
	Generated time.Time
	// SyncedAt is when the current snapshot was applied.
	SyncedAt time.Time
	// SourceURL is where the feed is fetched from.
	SourceURL string
	// Holidays is the number of holiday dates in the snapshot.
	Holidays int
	// Workdays is the number of compensatory workdays in the snapshot.
	Workdays int
}
