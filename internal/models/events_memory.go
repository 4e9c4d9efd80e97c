package models

import (
	"context"
	"sync"
)

type memTxKey struct{}

// MemoryRepo keeps events in process memory. Ids are never reused.
type MemoryRepo struct {
	mu     sync.RWMutex
	events map[int64]Event
	nextID int64
}

func NewMemoryRepo() *MemoryRepo {
	return &MemoryRepo{
		events: make(map[int64]Event),
		nextID: 1,
	}
}

func (m *MemoryRepo) inTx(ctx context.Context) bool {
	owner, ok := ctx.Value(memTxKey{}).(*MemoryRepo)
	return ok && owner == m
}

func (m *MemoryRepo) lock(ctx context.Context) func() {
	if m.inTx(ctx) {
		return func() {}
	}
	m.mu.Lock()
	return m.mu.Unlock
}

func (m *MemoryRepo) rlock(ctx context.Context) func() {
	if m.inTx(ctx) {
		return func() {}
	}
	m.mu.RLock()
	return m.mu.RUnlock
}

// WithTx holds the write lock for the whole of fn and restores the previous
// contents if fn fails.
func (m *MemoryRepo) WithTx(ctx context.Context, fn func(ctx context.Context) error) error {
	if m.inTx(ctx) {
		return fn(ctx)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	saved := make(map[int64]Event, len(m.events))
	for id, ev := range m.events {
		saved[id] = ev
	}
	savedNext := m.nextID

	if err := fn(context.WithValue(ctx, memTxKey{}, m)); err != nil {
		m.events = saved
		m.nextID = savedNext
		return err
	}
	return nil
}

func (m *MemoryRepo) CreateEvent(ctx context.Context, event *Event) (*Event, error) {
	unlock := m.lock(ctx)
	defer unlock()

	ev := *event
	ev.ID = m.nextID
	m.nextID++
	m.events[ev.ID] = ev
	return ev.Clone(), nil
}

func (m *MemoryRepo) GetEvent(ctx context.Context, id int64) (*Event, error) {
	unlock := m.rlock(ctx)
	defer unlock()

	ev, ok := m.events[id]
	if !ok {
		return nil, ErrNotFound
	}
	return ev.Clone(), nil
}

func (m *MemoryRepo) ListEvents(ctx context.Context) ([]Event, error) {
	unlock := m.rlock(ctx)
	defer unlock()

	out := make([]Event, 0, len(m.events))
	for _, ev := range m.events {
		out = append(out, ev)
	}
	return out, nil
}

func (m *MemoryRepo) UpdateEvent(ctx context.Context, event *Event) (*Event, error) {
	unlock := m.lock(ctx)
	defer unlock()

	if _, ok := m.events[event.ID]; !ok {
		return nil, ErrNotFound
	}
	m.events[event.ID] = *event
	return event.Clone(), nil
}

func (m *MemoryRepo) DeleteEvent(ctx context.Context, id int64) error {
	unlock := m.lock(ctx)
	defer unlock()

	if _, ok := m.events[id]; !ok {
		return ErrNotFound
	}
	delete(m.events, id)
	return nil
}

func (m *MemoryRepo) Close(ctx context.Context) error {
	return nil
}
