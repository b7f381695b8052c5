package registry

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	domain "github.com/oshokin/alarm-clock/internal/domain/alarm"
	"github.com/oshokin/alarm-clock/internal/logger"
	"github.com/oshokin/alarm-clock/internal/repository/record"
)

var errTestStore = errors.New("test store error")

// memoryStore is a minimal in-memory record.Store for tests.
type memoryStore struct {
	// records holds payloads by name.
	records map[string][]byte
	// readErr is returned from Read when set.
	readErr error
	// writeErr is returned from Write when set.
	writeErr error
	// writes counts Write calls.
	writes int
}

func newMemoryStore() *memoryStore {
	return &memoryStore{records: make(map[string][]byte)}
}

// Read returns the stored payload or record.ErrNotFound.
func (m *memoryStore) Read(_ context.Context, name string) ([]byte, error) {
	if m.readErr != nil {
		return nil, m.readErr
	}

	data, ok := m.records[name]
	if !ok {
		return nil, record.ErrNotFound
	}

	return data, nil
}

// Write stores the payload unless writeErr is set.
func (m *memoryStore) Write(_ context.Context, name string, data []byte) error {
	m.writes++

	if m.writeErr != nil {
		return m.writeErr
	}

	m.records[name] = data

	return nil
}

// TestRegistry_CreateDefaults checks id assignment, enabled flag and label placeholder.
func TestRegistry_CreateDefaults(t *testing.T) {
	t.Parallel()

	store := newMemoryStore()
	r := New(store, "alarms", WithIDGenerator(sequentialIDs()))
	ctx := context.Background()

	days := []domain.Day{domain.Monday}
	created, err := r.Create(ctx, domain.Draft{
		Time: domain.TimeOfDay{Hour: 7, Minute: 30},
		Days: days,
		Mode: "unknown",
	})
	require.NoError(t, err)
	require.Equal(t, "gen-1", created.ID)
	require.True(t, created.Enabled)
	require.Equal(t, domain.DefaultLabel, created.Label)
	require.Equal(t, domain.ModeCustom, created.Mode)

	// The draft's slice is not shared.
	days[0] = domain.Sunday
	got, ok := r.Get("gen-1")
	require.True(t, ok)
	require.Equal(t, []domain.Day{domain.Monday}, got.Days)

	_, err = r.Create(ctx, domain.Draft{Time: domain.TimeOfDay{Hour: 24}})
	require.ErrorIs(t, err, domain.ErrInvalidTime)
	require.Len(t, r.List(), 1)
	require.Equal(t, 1, store.writes)
}

// TestRegistry_ToggleRemove flips and deletes alarms and ignores unknown ids.
func TestRegistry_ToggleRemove(t *testing.T) {
	t.Parallel()

	store := newMemoryStore()
	r := New(store, "alarms", WithIDGenerator(sequentialIDs()))
	ctx := context.Background()

	first, err := r.Create(ctx, domain.Draft{Label: "one", Time: domain.TimeOfDay{Hour: 6}})
	require.NoError(t, err)

	second, err := r.Create(ctx, domain.Draft{Label: "two", Time: domain.TimeOfDay{Hour: 7}, Mode: domain.ModeWorkday})
	require.NoError(t, err)

	toggled, ok := r.Toggle(ctx, first.ID)
	require.True(t, ok)
	require.False(t, toggled.Enabled)

	_, ok = r.Toggle(ctx, "missing")
	require.False(t, ok)
	require.False(t, r.Remove(ctx, "missing"))

	writes := store.writes
	require.True(t, r.Remove(ctx, first.ID))
	require.Equal(t, writes+1, store.writes)

	list := r.List()
	require.Len(t, list, 1)
	require.Equal(t, second.ID, list[0].ID)

	// The persisted record matches memory.
	persisted, err := Decode(store.records["alarms"], nil)
	require.NoError(t, err)
	require.Equal(t, list, persisted)
}

// TestRegistry_Load restores persisted alarms and tolerates store failures.
func TestRegistry_Load(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	store := newMemoryStore()
	store.records["alarms"] = []byte(`[{"id":"a","time":"06:00","mode":"bogus"},{"time":123}]`)

	r := New(store, "alarms")
	loaded := r.Load(ctx)
	require.Len(t, loaded, 1)
	require.Equal(t, domain.ModeCustom, loaded[0].Mode)
	require.Equal(t, loaded, r.List())

	// Missing record.
	r = New(newMemoryStore(), "alarms")
	require.Empty(t, r.Load(ctx))

	// Broken store.
	broken := newMemoryStore()
	broken.readErr = errTestStore
	r = New(broken, "alarms")
	require.Empty(t, r.Load(ctx))
}

// TestRegistry_LoadCorruptDocument starts empty and warns when the record is
// not a JSON array.
func TestRegistry_LoadCorruptDocument(t *testing.T) {
	t.Parallel()

	core, logs := observer.New(zapcore.WarnLevel)
	ctx := logger.ToContext(context.Background(), zap.New(core).Sugar())

	store := newMemoryStore()
	store.records["alarms"] = []byte(`{"time":"06:00"}`)

	r := New(store, "alarms")
	require.Empty(t, r.Load(ctx))

	entries := logs.FilterMessage("Persisted alarms are unreadable, starting empty").All()
	require.Len(t, entries, 1)
	require.Equal(t, "alarms", entries[0].ContextMap()["record"])

	// An empty array is not corrupt.
	store.records["alarms"] = []byte(`[]`)
	require.Empty(t, r.Load(ctx))
	require.Equal(t, 1, logs.Len())
}

// TestRegistry_WriteFailureKeepsMemory keeps mutations when persistence fails.
func TestRegistry_WriteFailureKeepsMemory(t *testing.T) {
	t.Parallel()

	store := newMemoryStore()
	store.writeErr = errTestStore

	r := New(store, "alarms")

	_, err := r.Create(context.Background(), domain.Draft{Time: domain.TimeOfDay{Hour: 5}})
	require.NoError(t, err)
	require.Len(t, r.List(), 1)
}

// TestRegistry_ListIsACopy ensures callers cannot mutate registry state.
func TestRegistry_ListIsACopy(t *testing.T) {
	t.Parallel()

	r := New(nil, "alarms")

	_, err := r.Create(context.Background(), domain.Draft{Time: domain.TimeOfDay{Hour: 5}, Days: []domain.Day{domain.Monday}})
	require.NoError(t, err)

	list := r.List()
	list[0].Enabled = false
	list[0].Days[0] = domain.Sunday

	again := r.List()
	require.True(t, again[0].Enabled)
	require.Equal(t, domain.Monday, again[0].Days[0])
}
