package server

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/mitchellh/go-ps"
	"github.com/stretchr/testify/require"

	domain "github.com/oshokin/alarm-clock/internal/domain/alarm"
	"github.com/oshokin/alarm-clock/internal/config"
	"github.com/oshokin/alarm-clock/internal/repository/record"
	"github.com/oshokin/alarm-clock/internal/service/registry"
)

var errTestProcesses = errors.New("test process list error")

// fixedClock always returns the same instant.
type fixedClock time.Time

func (c fixedClock) Now() time.Time { return time.Time(c) }

// memoryStore is a minimal in-memory record.Store for tests.
type memoryStore struct {
	mu      sync.Mutex
	records map[string][]byte
}

func (m *memoryStore) Read(_ context.Context, name string) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	data, ok := m.records[name]
	if !ok {
		return nil, record.ErrNotFound
	}

	return data, nil
}

func (m *memoryStore) Write(_ context.Context, name string, data []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.records == nil {
		m.records = make(map[string][]byte)
	}

	m.records[name] = append([]byte(nil), data...)

	return nil
}

// fakeProcess implements ps.Process.
type fakeProcess struct {
	pid  int
	name string
}

func (p fakeProcess) Pid() int           { return p.pid }
func (p fakeProcess) PPid() int          { return 1 }
func (p fakeProcess) Executable() string { return p.name }

const holidayFeed = `{
	"Generated": "20250101T000000",
	"Years": {
		"2025": [
			{"Name": "New Year", "StartDate": "2025-01-01", "EndDate": "2025-01-01", "CompDays": ["2025-01-04"]}
		]
	}
}`

func newTestScheduler(t *testing.T, feedURL string, now time.Time) *Scheduler {
	t.Helper()

	settings := config.Default()
	settings.Calendar.URL = feedURL

	scheduler, _, err := buildScheduler(settings, new(memoryStore), fixedClock(now))
	require.NoError(t, err)

	return scheduler
}

// TestScheduler_CRUD exercises the alarm operations through the scheduler.
func TestScheduler_CRUD(t *testing.T) {
	t.Parallel()

	now := time.Date(2025, time.January, 6, 7, 0, 0, 0, time.UTC)
	s := newTestScheduler(t, "http://127.0.0.1:0/unused", now)
	ctx := context.Background()

	created, err := s.CreateAlarm(ctx, domain.Draft{Time: domain.TimeOfDay{Hour: 9, Minute: 30}})
	require.NoError(t, err)
	require.Equal(t, domain.DefaultLabel, created.Label)
	require.Len(t, s.ListAlarms(ctx), 1)

	next, ok := s.NextAlarm(ctx, now)
	require.True(t, ok)
	require.Equal(t, created.ID, next.Alarm.ID)

	toggled, ok := s.ToggleAlarm(ctx, created.ID)
	require.True(t, ok)
	require.False(t, toggled.Enabled)

	_, ok = s.NextAlarm(ctx, now)
	require.False(t, ok)

	require.True(t, s.RemoveAlarm(ctx, created.ID))
	require.False(t, s.RemoveAlarm(ctx, created.ID))
	require.Empty(t, s.ListAlarms(ctx))
}

// TestScheduler_CalendarRefresh applies the feed and classifies days.
func TestScheduler_CalendarRefresh(t *testing.T) {
	t.Parallel()

	feed := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(holidayFeed))
	}))
	t.Cleanup(feed.Close)

	s := newTestScheduler(t, feed.URL, time.Date(2025, time.January, 1, 0, 0, 0, 0, time.UTC))
	t.Cleanup(s.Close)

	ctx := context.Background()

	// Before the first sync the Monday to Friday rule applies.
	workday, holiday := s.CheckDay(ctx, time.Date(2025, time.January, 1, 12, 0, 0, 0, time.UTC))
	require.True(t, workday)
	require.False(t, holiday)

	st, err := s.RefreshCalendar(ctx)
	require.NoError(t, err)
	require.True(t, st.HasData)
	require.Equal(t, 1, st.Holidays)
	require.Equal(t, 1, st.Workdays)
	require.Equal(t, feed.URL, st.SourceURL)
	require.Equal(t, st, s.CalendarStatus(ctx))

	workday, holiday = s.CheckDay(ctx, time.Date(2025, time.January, 1, 12, 0, 0, 0, time.UTC))
	require.False(t, workday)
	require.True(t, holiday)

	// Saturday made a working day.
	workday, _ = s.CheckDay(ctx, time.Date(2025, time.January, 4, 12, 0, 0, 0, time.UTC))
	require.True(t, workday)
}

// TestScheduler_CalendarRefreshFailure surfaces the fetch error.
func TestScheduler_CalendarRefreshFailure(t *testing.T) {
	t.Parallel()

	feed := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	t.Cleanup(feed.Close)

	s := newTestScheduler(t, feed.URL, time.Now())
	t.Cleanup(s.Close)

	st, err := s.RefreshCalendar(context.Background())
	require.Error(t, err)
	require.False(t, st.HasData)
	require.NotEmpty(t, st.LastError)
}

// TestBuildScheduler_BadSchedule rejects invalid cron expressions.
func TestBuildScheduler_BadSchedule(t *testing.T) {
	t.Parallel()

	settings := config.Default()
	settings.Calendar.Refresh = "sometimes"

	_, _, err := buildScheduler(settings, new(memoryStore), nil)
	require.Error(t, err)
}

// TestScheduler_NullFeedKeepsCalendar keeps the last good calendar when the
// feed later answers with a null document.
func TestScheduler_NullFeedKeepsCalendar(t *testing.T) {
	t.Parallel()

	var body atomic.Pointer[string]

	good, null := holidayFeed, "null"
	body.Store(&good)

	feed := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(*body.Load()))
	}))
	t.Cleanup(feed.Close)

	s := newTestScheduler(t, feed.URL, time.Date(2025, time.January, 1, 0, 0, 0, 0, time.UTC))
	t.Cleanup(s.Close)

	ctx := context.Background()

	_, err := s.RefreshCalendar(ctx)
	require.NoError(t, err)

	body.Store(&null)

	st, err := s.RefreshCalendar(ctx)
	require.Error(t, err)
	require.True(t, st.HasData)
	require.Equal(t, 1, st.Holidays)
	require.NotEmpty(t, st.LastError)

	_, holiday := s.CheckDay(ctx, time.Date(2025, time.January, 1, 12, 0, 0, 0, time.UTC))
	require.True(t, holiday)
}

// TestEnsureSingleInstance detects other processes with the same executable.
func TestEnsureSingleInstance(t *testing.T) {
	t.Parallel()

	lister := func(processes ...ps.Process) processLister {
		return func() ([]ps.Process, error) { return processes, nil }
	}

	require.NoError(t, ensureSingleInstance(lister(fakeProcess{pid: 42, name: "other"}), "alarm-clockd"))

	err := ensureSingleInstance(lister(fakeProcess{pid: 42, name: "alarm-clockd"}), "alarm-clockd")
	require.ErrorIs(t, err, ErrAlreadyRunning)

	failing := func() ([]ps.Process, error) { return nil, errTestProcesses }
	require.ErrorIs(t, ensureSingleInstance(failing, "alarm-clockd"), errTestProcesses)
}

// TestResolveListenAddress covers overrides, loopback and port-only binding.
func TestResolveListenAddress(t *testing.T) {
	t.Parallel()

	addr, err := resolveListenAddress("127.0.0.1:50061", "")
	require.NoError(t, err)
	require.Equal(t, "127.0.0.1:50061", addr)

	addr, err = resolveListenAddress("clock.example.com:8080", "")
	require.NoError(t, err)
	require.Equal(t, ":8080", addr)

	addr, err = resolveListenAddress("clock.example.com:8080", ":9090")
	require.NoError(t, err)
	require.Equal(t, ":9090", addr)

	_, err = resolveListenAddress("", "")
	require.ErrorIs(t, err, ErrNoServerAddress)

	_, err = resolveListenAddress("no-port", "")
	require.Error(t, err)
}

// TestOpenStore picks the backend from the settings.
func TestOpenStore(t *testing.T) {
	t.Parallel()

	ctx := context.Background()

	store, closeStore, err := openStore(ctx, &config.StoreConfig{Backend: config.StoreBackendFile, Path: t.TempDir()})
	require.NoError(t, err)
	require.IsType(t, &record.FileStore{}, store)
	closeStore()

	store, closeStore, err = openStore(ctx, &config.StoreConfig{Backend: config.StoreBackendSQLite, Path: t.TempDir()})
	require.NoError(t, err)
	require.IsType(t, &record.SQLiteStore{}, store)
	require.NoError(t, store.Write(ctx, "alarm-clock:alarms", []byte("[]")))
	closeStore()
}

// slowStore delays every read, like a store on a busy disk.
type slowStore struct {
	memoryStore

	delay time.Duration
}

func (s *slowStore) Read(ctx context.Context, name string) ([]byte, error) {
	time.Sleep(s.delay)

	return s.memoryStore.Read(ctx, name)
}

// TestScheduler_LoadKeepsPersistedAlarms creates an alarm right after start-up
// and checks the stored list is extended, not replaced.
func TestScheduler_LoadKeepsPersistedAlarms(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)

	store := &slowStore{delay: 100 * time.Millisecond}

	seed, err := registry.Encode([]domain.Alarm{{
		ID:      "old",
		Label:   "Old",
		Time:    domain.TimeOfDay{Hour: 6},
		Days:    []domain.Day{},
		Enabled: true,
		Mode:    domain.ModeCustom,
	}})
	require.NoError(t, err)
	require.NoError(t, store.Write(ctx, config.DefaultRecordName, seed))

	settings := config.Default()
	settings.Calendar.URL = "http://127.0.0.1:0/unused"

	s, _, err := buildScheduler(settings, store, fixedClock(time.Date(2025, time.January, 6, 5, 0, 0, 0, time.UTC)))
	require.NoError(t, err)
	t.Cleanup(s.Close)

	require.Len(t, s.Load(ctx), 1)

	started := make(chan struct{})

	go func() {
		close(started)
		s.Start(ctx)
	}()

	<-started

	_, err = s.CreateAlarm(ctx, domain.Draft{Label: "New", Time: domain.TimeOfDay{Hour: 7}})
	require.NoError(t, err)

	data, err := store.Read(ctx, config.DefaultRecordName)
	require.NoError(t, err)

	persisted, err := registry.Decode(data, nil)
	require.NoError(t, err)
	require.Len(t, persisted, 2)
	require.Equal(t, "Old", persisted[0].Label)
	require.Equal(t, "New", persisted[1].Label)
}
