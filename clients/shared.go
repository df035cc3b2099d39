package clients

import (
	"context"

	"github.com/kbukum/eventstream/errors"
	"github.com/kbukum/eventstream/redis"
)

// Shared keeps every record in one JSON object stored under a single Redis
// key, {"<id>": {"timestamp": ...}, ...}. Writes are read-modify-write
// cycles under WATCH.
type Shared struct {
	doc *redis.Doc[map[ID]Record]
}

var _ Registry = (*Shared)(nil)

// NewShared creates a registry stored under key. An empty key uses DefaultRedisKey.
func NewShared(client *redis.Client, key string) *Shared {
	if key == "" {
		key = DefaultRedisKey
	}
	return &Shared{doc: redis.NewDoc[map[ID]Record](client, key)}
}

// Key returns the Redis key holding the registry.
func (s *Shared) Key() string { return s.doc.Key() }

// Initialize creates an empty object unless one already exists.
func (s *Shared) Initialize(ctx context.Context) error {
	if _, err := s.doc.Init(ctx, map[ID]Record{}); err != nil {
		return errors.StoreUnavailable(err)
	}
	return nil
}

func (s *Shared) GetAll(ctx context.Context) (map[ID]Record, error) {
	all, _, err := s.doc.Load(ctx)
	if err != nil {
		return nil, errors.StoreUnavailable(err)
	}
	out := make(map[ID]Record, len(all))
	for id, rec := range all {
		out[id] = normalize(rec)
	}
	return out, nil
}

func (s *Shared) GetOne(ctx context.Context, id ID) (Record, bool, error) {
	all, _, err := s.doc.Load(ctx)
	if err != nil {
		return nil, false, errors.StoreUnavailable(err)
	}
	rec, ok := all[id]
	if !ok {
		return nil, false, nil
	}
	return normalize(rec), true, nil
}

func (s *Shared) SetOne(ctx context.Context, id ID, rec Record) error {
	err := s.doc.Update(ctx, func(all *map[ID]Record) error {
		if *all == nil {
			*all = make(map[ID]Record)
		}
		(*all)[id] = rec
		return nil
	})
	if err != nil {
		return errors.StoreUnavailable(err)
	}
	return nil
}

func (s *Shared) RemoveOne(ctx context.Context, id ID) error {
	err := s.doc.Update(ctx, func(all *map[ID]Record) error {
		if *all == nil {
			*all = make(map[ID]Record)
		}
		delete(*all, id)
		return nil
	})
	if err != nil {
		return errors.StoreUnavailable(err)
	}
	return nil
}

// PurgeAll deletes the key. Initialize must run again before the
// registry is used by other processes that expect the key to exist.
func (s *Shared) PurgeAll(ctx context.Context) error {
	if err := s.doc.Delete(ctx); err != nil {
		return errors.StoreUnavailable(err)
	}
	return nil
}

func (s *Shared) Shared() bool { return true }
