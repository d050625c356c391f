// Package servicetest provides an in-memory ReadingStore for tests of the
// service and HTTP layers.
package servicetest

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/septivank/solar-telemetry-ingest/internal/db"
	"github.com/septivank/solar-telemetry-ingest/internal/repository"
)

// MemoryStore keeps readings in a map keyed by (date, time)
type MemoryStore struct {
	mu       sync.Mutex
	readings map[uuid.UUID]*db.Reading

	// FailUpsert makes UpsertReading fail for the listed "date|time" keys
	FailUpsert map[string]error
	// ExistsErr, when set, is returned by ReadingExists
	ExistsErr error

	ExistsCalls int
}

// NewMemoryStore returns an empty store
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		readings:   make(map[uuid.UUID]*db.Reading),
		FailUpsert: make(map[string]error),
	}
}

// Key formats a (date, time) pair the way FailUpsert expects
func Key(date, tm string) string {
	return date + "|" + tm
}

func (m *MemoryStore) find(date, tm string) *db.Reading {
	for _, r := range m.readings {
		if r.Date == date && r.Time == tm {
			return r
		}
	}
	return nil
}

func copyFields(in map[string]float64) map[string]float64 {
	out := make(map[string]float64, len(in))
	for k, v := range in {
		out[k] = v
	}
	return out
}

func sameFields(a, b map[string]float64) bool {
	if len(a) != len(b) {
		return false
	}
	for k, v := range a {
		if w, ok := b[k]; !ok || w != v {
			return false
		}
	}
	return true
}

// Seed stores a reading as-is and returns its id
func (m *MemoryStore) Seed(date, tm string, fields map[string]float64) uuid.UUID {
	m.mu.Lock()
	defer m.mu.Unlock()

	r := &db.Reading{ID: uuid.New(), Date: date, Time: tm, Fields: copyFields(fields), CreatedAt: time.Now(), UpdatedAt: time.Now()}
	m.readings[r.ID] = r
	return r.ID
}

// Find returns the stored reading for a key
func (m *MemoryStore) Find(date, tm string) (db.Reading, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if r := m.find(date, tm); r != nil {
		return *r, true
	}
	return db.Reading{}, false
}

// Len returns the number of stored readings
func (m *MemoryStore) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.readings)
}

func (m *MemoryStore) UpsertReading(_ context.Context, date, tm string, fields map[string]float64) (repository.UpsertOutcome, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err := m.FailUpsert[Key(date, tm)]; err != nil {
		return 0, err
	}

	if r := m.find(date, tm); r != nil {
		if sameFields(r.Fields, fields) {
			return repository.Unchanged, nil
		}
		r.Fields = copyFields(fields)
		r.UpdatedAt = time.Now()
		return repository.Modified, nil
	}

	r := &db.Reading{ID: uuid.New(), Date: date, Time: tm, Fields: copyFields(fields), CreatedAt: time.Now(), UpdatedAt: time.Now()}
	m.readings[r.ID] = r
	return repository.Upserted, nil
}

func (m *MemoryStore) ReadingExists(_ context.Context, date, tm string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.ExistsCalls++
	if m.ExistsErr != nil {
		return false, m.ExistsErr
	}
	return m.find(date, tm) != nil, nil
}

func (m *MemoryStore) InsertReadings(_ context.Context, readings []db.Reading) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	inserted := 0
	for i := range readings {
		if m.find(readings[i].Date, readings[i].Time) != nil {
			continue
		}
		r := readings[i]
		r.ID = uuid.New()
		r.Fields = copyFields(r.Fields)
		r.CreatedAt, r.UpdatedAt = time.Now(), time.Now()
		m.readings[r.ID] = &r
		inserted++
	}
	return inserted, nil
}

func (m *MemoryStore) Create(_ context.Context, reading *db.Reading) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.find(reading.Date, reading.Time) != nil {
		return repository.ErrConflict
	}
	reading.ID = uuid.New()
	reading.CreatedAt, reading.UpdatedAt = time.Now(), time.Now()
	stored := *reading
	stored.Fields = copyFields(reading.Fields)
	m.readings[reading.ID] = &stored
	return nil
}

func (m *MemoryStore) Get(_ context.Context, id uuid.UUID) (*db.Reading, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	r, ok := m.readings[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	out := *r
	return &out, nil
}

func (m *MemoryStore) sorted(less func(a, b *db.Reading) bool) []db.Reading {
	all := make([]*db.Reading, 0, len(m.readings))
	for _, r := range m.readings {
		all = append(all, r)
	}
	sort.Slice(all, func(i, j int) bool { return less(all[i], all[j]) })

	out := make([]db.Reading, len(all))
	for i, r := range all {
		out[i] = *r
	}
	return out
}

func (m *MemoryStore) List(_ context.Context, limit, skip int) ([]db.Reading, int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	all := m.sorted(func(a, b *db.Reading) bool { return a.CreatedAt.After(b.CreatedAt) })
	total := int64(len(all))
	if skip >= len(all) {
		return []db.Reading{}, total, nil
	}
	all = all[skip:]
	if limit < len(all) {
		all = all[:limit]
	}
	return all, total, nil
}

func (m *MemoryStore) ListByDate(_ context.Context, date string) ([]db.Reading, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := []db.Reading{}
	for _, r := range m.sorted(func(a, b *db.Reading) bool { return a.Time < b.Time }) {
		if r.Date == date {
			out = append(out, r)
		}
	}
	return out, nil
}

func (m *MemoryStore) Update(_ context.Context, id uuid.UUID, patch repository.Patch) (*db.Reading, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	r, ok := m.readings[id]
	if !ok {
		return nil, repository.ErrNotFound
	}

	date, tm := r.Date, r.Time
	if patch.Date != nil {
		date = *patch.Date
	}
	if patch.Time != nil {
		tm = *patch.Time
	}
	if other := m.find(date, tm); other != nil && other.ID != id {
		return nil, repository.ErrConflict
	}

	r.Date, r.Time = date, tm
	for k, v := range patch.Fields {
		r.Fields[k] = v
	}
	r.UpdatedAt = time.Now()
	out := *r
	out.Fields = copyFields(r.Fields)
	return &out, nil
}

func (m *MemoryStore) Delete(_ context.Context, id uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.readings[id]; !ok {
		return repository.ErrNotFound
	}
	delete(m.readings, id)
	return nil
}

func (m *MemoryStore) DeleteMany(_ context.Context, ids []uuid.UUID) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var n int64
	for _, id := range ids {
		if _, ok := m.readings[id]; ok {
			delete(m.readings, id)
			n++
		}
	}
	return n, nil
}
