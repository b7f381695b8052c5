package registry

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sync"

	domain "github.com/oshokin/alarm-clock/internal/domain/alarm"
	"github.com/oshokin/alarm-clock/internal/logger"
	"github.com/oshokin/alarm-clock/internal/repository/record"
)

// Registry owns the ordered alarm list and persists it after every change.
type Registry struct {
	// store persists the alarm list; nil keeps alarms in memory only.
	store record.Store
	// recordName is the store key of the alarm list.
	recordName string
	// newID generates alarm identifiers.
	newID func() string
	// alarms is the current list in creation order.
	alarms []domain.Alarm
	// mu protects alarms.
	mu sync.RWMutex
}

// Option configures a Registry.
type Option func(*Registry)

// WithIDGenerator replaces the uuid-based identifier generator.
func WithIDGenerator(newID func() string) Option {
	return func(r *Registry) {
		if newID != nil {
			r.newID = newID
		}
	}
}

// New creates an empty registry persisting to the named record of store.
func New(store record.Store, recordName string, opts ...Option) *Registry {
	r := &Registry{
		store:      store,
		recordName: recordName,
		newID:      NewID,
		alarms:     []domain.Alarm{},
	}

	for _, opt := range opts {
		opt(r)
	}

	return r
}

// Load replaces the in-memory list with the persisted one.
// A missing or unreadable record results in an empty list; the failure is logged only.
func (r *Registry) Load(ctx context.Context) []domain.Alarm {
	alarms := []domain.Alarm{}

	if r.store != nil {
		data, err := r.store.Read(ctx, r.recordName)

		switch {
		case err == nil:
			if alarms, err = Decode(data, r.newID); err != nil {
				logger.WarnKV(ctx, "Persisted alarms are unreadable, starting empty", "record", r.recordName, "error", err)
			}
		case errors.Is(err, record.ErrNotFound):
			logger.Debug(ctx, "No persisted alarms yet")
		default:
			logger.WarnKV(ctx, "Failed to read persisted alarms", "record", r.recordName, "error", err)
		}
	}

	r.mu.Lock()
	r.alarms = alarms
	r.mu.Unlock()

	logger.InfoKV(ctx, "Alarms loaded", "count", len(alarms))

	return cloneAll(alarms)
}

// List returns a copy of the alarms in creation order.
func (r *Registry) List() []domain.Alarm {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return cloneAll(r.alarms)
}

// Get returns the alarm with the given id.
func (r *Registry) Get(id string) (domain.Alarm, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	i := r.indexOf(id)
	if i < 0 {
		return domain.Alarm{}, false
	}

	return *r.alarms[i].Clone(), true
}

// Create appends a new enabled alarm built from the draft.
func (r *Registry) Create(ctx context.Context, draft domain.Draft) (domain.Alarm, error) {
	if !draft.Time.Valid() {
		return domain.Alarm{}, fmt.Errorf("%w: %s", domain.ErrInvalidTime, draft.Time)
	}

	label := draft.Label
	if label == "" {
		label = domain.DefaultLabel
	}

	mode := draft.Mode
	if mode != domain.ModeWorkday {
		mode = domain.ModeCustom
	}

	created := domain.Alarm{
		ID:      r.newID(),
		Label:   label,
		Time:    draft.Time,
		Days:    append([]domain.Day{}, draft.Days...),
		Enabled: true,
		Mode:    mode,
	}

	r.mu.Lock()
	r.alarms = append(r.alarms, created)
	r.persistLocked(ctx)
	r.mu.Unlock()

	logger.InfoKV(ctx, "Alarm created", "id", created.ID, "time", created.Time.String(), "mode", created.Mode)

	return *created.Clone(), nil
}

// Toggle flips the enabled flag of an alarm. Unknown ids are ignored.
func (r *Registry) Toggle(ctx context.Context, id string) (domain.Alarm, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	i := r.indexOf(id)
	if i < 0 {
		return domain.Alarm{}, false
	}

	r.alarms[i].Enabled = !r.alarms[i].Enabled
	r.persistLocked(ctx)

	logger.InfoKV(ctx, "Alarm toggled", "id", id, "enabled", r.alarms[i].Enabled)

	return *r.alarms[i].Clone(), true
}

// Remove deletes an alarm. Unknown ids are ignored.
func (r *Registry) Remove(ctx context.Context, id string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	i := r.indexOf(id)
	if i < 0 {
		return false
	}

	r.alarms = slices.Delete(r.alarms, i, i+1)
	r.persistLocked(ctx)

	logger.InfoKV(ctx, "Alarm removed", "id", id)

	return true
}

// persistLocked writes the full list. Failures are logged and the in-memory
// state is kept. The caller must hold mu.
func (r *Registry) persistLocked(ctx context.Context) {
	if r.store == nil {
		return
	}

	data, err := Encode(r.alarms)
	if err != nil {
		logger.ErrorKV(ctx, "Failed to encode alarms", "error", err)
		return
	}

	if err = r.store.Write(ctx, r.recordName, data); err != nil {
		logger.WarnKV(ctx, "Failed to persist alarms", "record", r.recordName, "error", err)
	}
}

func (r *Registry) indexOf(id string) int {
	return slices.IndexFunc(r.alarms, func(a domain.Alarm) bool {
		return a.ID == id
	})
}

func cloneAll(alarms []domain.Alarm) []domain.Alarm {
	out := make([]domain.Alarm, len(alarms))
	for i := range alarms {
		out[i] = *alarms[i].Clone()
	}

	return out
}
