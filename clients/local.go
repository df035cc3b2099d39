package clients

import (
	"context"
	"sync"
)

// Local keeps records in process memory.
type Local struct {
	mu      sync.RWMutex
	records map[ID]Record
}

var _ Registry = (*Local)(nil)

// NewLocal creates an empty in-memory registry.
func NewLocal() *Local {
	return &Local{records: make(map[ID]Record)}
}

// Initialize is a no-op.
func (l *Local) Initialize(context.Context) error { return nil }

func (l *Local) GetAll(context.Context) (map[ID]Record, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return cloneAll(l.records), nil
}

func (l *Local) GetOne(_ context.Context, id ID) (Record, bool, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	rec, ok := l.records[id]
	if !ok {
		return nil, false, nil
	}
	return normalize(rec), true, nil
}

func (l *Local) SetOne(_ context.Context, id ID, rec Record) error {
	rec = normalize(rec)
	l.mu.Lock()
	l.records[id] = rec
	l.mu.Unlock()
	return nil
}

func (l *Local) RemoveOne(_ context.Context, id ID) error {
	l.mu.Lock()
	delete(l.records, id)
	l.mu.Unlock()
	return nil
}

func (l *Local) PurgeAll(context.Context) error {
	l.mu.Lock()
	clear(l.records)
	l.mu.Unlock()
	return nil
}

func (l *Local) Shared() bool { return false }
