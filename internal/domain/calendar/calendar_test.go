package calendar

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func day(month time.Month, d int) time.Time {
	return time.Date(2025, month, d, 12, 0, 0, 0, time.UTC)
}

// TestNilSnapshotDefaults verifies the Monday to Friday rule without a feed.
func TestNilSnapshotDefaults(t *testing.T) {
	t.Parallel()

	var s *Snapshot

	// 2025-01-04 is a Saturday, 2025-01-06 a Monday.
	require.False(t, s.IsWorkday(day(time.January, 4)))
	require.True(t, s.IsHoliday(day(time.January, 4)))
	require.True(t, s.IsWorkday(day(time.January, 6)))
	require.False(t, s.IsHoliday(day(time.January, 6)))
	require.True(t, s.Generated().IsZero())
	require.Zero(t, s.HolidayCount())
}

// TestSnapshotLookups covers holidays, compensatory workdays and the fallback.
func TestSnapshotLookups(t *testing.T) {
	t.Parallel()

	s := NewSnapshot(
		[]string{"2025-01-01", "2025-01-28"},
		[]string{"2025-01-26"},
		time.Time{},
	)

	// Wednesday holiday.
	require.False(t, s.IsWorkday(day(time.January, 1)))
	require.True(t, s.IsHoliday(day(time.January, 1)))

	// Sunday compensatory workday.
	require.True(t, s.IsWorkday(day(time.January, 26)))
	require.False(t, s.IsHoliday(day(time.January, 26)))

	// Unlisted Saturday: not a workday, and not a feed holiday either.
	require.False(t, s.IsWorkday(day(time.January, 4)))
	require.False(t, s.IsHoliday(day(time.January, 4)))

	// Unlisted Thursday.
	require.True(t, s.IsWorkday(day(time.January, 2)))
}

// TestSnapshotCompensatoryWins checks precedence when a malformed feed lists a date twice.
func TestSnapshotCompensatoryWins(t *testing.T) {
	t.Parallel()

	s := NewSnapshot([]string{"2025-01-01"}, []string{"2025-01-01"}, time.Time{})

	require.True(t, s.IsWorkday(day(time.January, 1)))
	require.False(t, s.IsHoliday(day(time.January, 1)))
}

// TestDateKeyUsesWallClock ensures keys follow the instant's own location.
func TestDateKeyUsesWallClock(t *testing.T) {
	t.Parallel()

	loc := time.FixedZone("UTC+8", 8*60*60)
	instant := time.Date(2025, time.January, 1, 23, 30, 0, 0, time.UTC).In(loc)

	require.Equal(t, "2025-01-02", DateKey(instant))
}
