package client

import (
	"bytes"
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	api "github.com/oshokin/alarm-clock/internal/api/grpc/alarm"
	domain "github.com/oshokin/alarm-clock/internal/domain/alarm"
	"github.com/oshokin/alarm-clock/internal/domain/calendar"
)

var errTestUnavailable = errors.New("test unavailable")

// fakeAPI records calls and returns canned responses.
type fakeAPI struct {
	alarms  []domain.Alarm
	drafts  []domain.Draft
	removed []string
	status  calendar.Status
	next    api.Next
	day     api.DayInfo
	err     error
}

func (f *fakeAPI) ListAlarms(context.Context) ([]domain.Alarm, error) { return f.alarms, f.err }

func (f *fakeAPI) CreateAlarm(_ context.Context, draft *domain.Draft) (domain.Alarm, error) {
	f.drafts = append(f.drafts, *draft)

	return domain.Alarm{
		ID:      "new-id",
		Label:   draft.Label,
		Time:    draft.Time,
		Days:    draft.Days,
		Enabled: true,
		Mode:    draft.Mode,
	}, f.err
}

func (f *fakeAPI) ToggleAlarm(_ context.Context, id string) (domain.Alarm, error) {
	return domain.Alarm{ID: id, Enabled: false}, f.err
}

func (f *fakeAPI) RemoveAlarm(_ context.Context, id string) error {
	f.removed = append(f.removed, id)

	return f.err
}

func (f *fakeAPI) NextAlarm(context.Context, time.Time) (api.Next, error) { return f.next, f.err }

func (f *fakeAPI) CalendarStatus(context.Context) (calendar.Status, error) { return f.status, f.err }

func (f *fakeAPI) RefreshCalendar(context.Context) (calendar.Status, error) { return f.status, f.err }

func (f *fakeAPI) CheckDay(context.Context, string) (api.DayInfo, error) { return f.day, f.err }

func TestList(t *testing.T) {
	t.Parallel()

	var out bytes.Buffer

	require.NoError(t, List()(context.Background(), new(fakeAPI), &out))
	require.Equal(t, "No alarms.\n", out.String())

	out.Reset()

	f := &fakeAPI{alarms: []domain.Alarm{
		{ID: "a", Label: "Standup", Time: domain.TimeOfDay{Hour: 9, Minute: 30}, Enabled: true, Mode: domain.ModeWorkday},
		{ID: "b", Time: domain.TimeOfDay{Hour: 7}, Days: []domain.Day{domain.Saturday, domain.Sunday}, Mode: domain.ModeCustom},
	}}

	require.NoError(t, List()(context.Background(), f, &out))
	require.Contains(t, out.String(), "09:30")
	require.Contains(t, out.String(), "workdays")
	require.Contains(t, out.String(), "sat,sun")
	require.Contains(t, out.String(), "Alarm")
	require.Contains(t, out.String(), "off")
}

func TestAdd(t *testing.T) {
	t.Parallel()

	var out bytes.Buffer

	f := new(fakeAPI)
	opts := AddOptions{Label: "Gym", Time: "6:45", Days: []string{"mon,WED", "fri"}}

	require.NoError(t, Add(opts)(context.Background(), f, &out))
	require.Len(t, f.drafts, 1)
	require.Equal(t, domain.TimeOfDay{Hour: 6, Minute: 45}, f.drafts[0].Time)
	require.Equal(t, []domain.Day{domain.Monday, domain.Wednesday, domain.Friday}, f.drafts[0].Days)
	require.Equal(t, domain.ModeCustom, f.drafts[0].Mode)
	require.Equal(t, "Created new-id 06:45 (Gym) mon,wed,fri\n", out.String())
}

func TestAdd_DefaultsAndErrors(t *testing.T) {
	t.Parallel()

	f := new(fakeAPI)
	now := func() time.Time { return time.Date(2025, time.January, 6, 7, 2, 0, 0, time.UTC) }

	require.NoError(t, Add(AddOptions{Workday: true, Now: now})(context.Background(), f, new(bytes.Buffer)))
	require.Equal(t, domain.TimeOfDay{Hour: 7, Minute: 5}, f.drafts[0].Time)
	require.Equal(t, domain.ModeWorkday, f.drafts[0].Mode)

	err := Add(AddOptions{Time: "24:00"})(context.Background(), f, new(bytes.Buffer))
	require.ErrorIs(t, err, domain.ErrInvalidTime)

	err = Add(AddOptions{Time: "08:00", Days: []string{"funday"}})(context.Background(), f, new(bytes.Buffer))
	require.ErrorIs(t, err, errUnknownDay)
	require.Len(t, f.drafts, 1)
}

func TestToggleRemove(t *testing.T) {
	t.Parallel()

	var out bytes.Buffer

	f := new(fakeAPI)

	require.NoError(t, Toggle("a")(context.Background(), f, &out))
	require.Equal(t, "Alarm a is now off\n", out.String())

	out.Reset()

	require.NoError(t, Remove("a")(context.Background(), f, &out))
	require.Equal(t, []string{"a"}, f.removed)
	require.Equal(t, "Removed a\n", out.String())

	f.err = errTestUnavailable
	require.ErrorIs(t, Remove("b")(context.Background(), f, &out), errTestUnavailable)
}

func TestNext(t *testing.T) {
	t.Parallel()

	var out bytes.Buffer

	f := &fakeAPI{next: api.Next{
		Alarm:    domain.Alarm{Label: "Standup"},
		At:       time.Date(2025, time.January, 6, 9, 30, 0, 0, time.UTC),
		Relative: "in 2 h 30 min",
	}}

	require.NoError(t, Next()(context.Background(), f, &out))
	require.Contains(t, out.String(), "Standup rings in 2 h 30 min")
}

func TestCalendarStatus(t *testing.T) {
	t.Parallel()

	var out bytes.Buffer

	f := &fakeAPI{status: calendar.Status{
		HasData:   true,
		SourceURL: "https://holidays.test/feed.json",
		Holidays:  30,
		Workdays:  6,
	}}

	require.NoError(t, CalendarStatus()(context.Background(), f, &out))
	require.Contains(t, out.String(), "synced")
	require.Contains(t, out.String(), "https://holidays.test/feed.json")
	require.Contains(t, out.String(), "30")

	out.Reset()

	f.status.LastError = "boom"
	require.NoError(t, RefreshCalendar()(context.Background(), f, &out))
	require.Contains(t, out.String(), "error: boom")
}

func TestCheckDay(t *testing.T) {
	t.Parallel()

	var out bytes.Buffer

	f := &fakeAPI{day: api.DayInfo{Date: "2025-01-01", Holiday: true}}

	require.NoError(t, CheckDay("2025-01-01")(context.Background(), f, &out))
	require.Equal(t, "2025-01-01: holiday\n", out.String())

	out.Reset()

	f.day = api.DayInfo{Date: "2025-01-04"}
	require.NoError(t, CheckDay("2025-01-04")(context.Background(), f, &out))
	require.Equal(t, "2025-01-04: day off\n", out.String())
}
