package redis

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"

	goredis "github.com/redis/go-redis/v9"
)

// Doc is a JSON document of type T stored under a single key.
// Numbers decode as json.Number when T holds interface values.
type Doc[T any] struct {
	client *Client
	key    string
}

// NewDoc creates a Doc bound to key.
func NewDoc[T any](client *Client, key string) *Doc[T] {
	return &Doc[T]{client: client, key: key}
}

// Key returns the Redis key holding the document.
func (d *Doc[T]) Key() string { return d.key }

// Init writes initial only if the key does not already exist.
// It reports whether the document was created.
func (d *Doc[T]) Init(ctx context.Context, initial T) (bool, error) {
	data, err := json.Marshal(initial)
	if err != nil {
		return false, fmt.Errorf("doc marshal %q: %w", d.key, err)
	}
	created, err := d.client.SetNX(ctx, d.key, string(data))
	if err != nil {
		return false, fmt.Errorf("doc init %q: %w", d.key, err)
	}
	return created, nil
}

// Load reads the document. found is false when the key does not exist.
func (d *Doc[T]) Load(ctx context.Context) (val T, found bool, err error) {
	raw, err := d.client.Get(ctx, d.key)
	if err != nil {
		if IsNil(err) {
			return val, false, nil
		}
		return val, false, fmt.Errorf("doc load %q: %w", d.key, err)
	}
	if err := decode(raw, &val); err != nil {
		return val, false, fmt.Errorf("doc unmarshal %q: %w", d.key, err)
	}
	return val, true, nil
}

// Update loads the document, lets fn modify it and writes it back, all
// under WATCH so a concurrent writer forces a retry instead of being
// overwritten. A missing key starts from the zero value of T.
func (d *Doc[T]) Update(ctx context.Context, fn func(*T) error) error {
	return d.client.Watch(ctx, func(tx *goredis.Tx) error {
		var val T
		raw, err := tx.Get(ctx, d.key).Result()
		switch {
		case IsNil(err):
		case err != nil:
			return fmt.Errorf("doc load %q: %w", d.key, err)
		default:
			if err := decode(raw, &val); err != nil {
				return fmt.Errorf("doc unmarshal %q: %w", d.key, err)
			}
		}

		if err := fn(&val); err != nil {
			return err
		}

		data, err := json.Marshal(val)
		if err != nil {
			return fmt.Errorf("doc marshal %q: %w", d.key, err)
		}
		_, err = tx.TxPipelined(ctx, func(pipe goredis.Pipeliner) error {
			pipe.Set(ctx, d.key, string(data), 0)
			return nil
		})
		return err
	}, d.key)
}

// Delete removes the document.
func (d *Doc[T]) Delete(ctx context.Context) error {
	if err := d.client.Del(ctx, d.key); err != nil {
		return fmt.Errorf("doc delete %q: %w", d.key, err)
	}
	return nil
}

func decode(raw string, v any) error {
	dec := json.NewDecoder(bytes.NewReader([]byte(raw)))
	dec.UseNumber()
	return dec.Decode(v)
}
