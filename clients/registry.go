package clients

import (
	"context"
	"encoding/json"
	"math"
)

// ID identifies a connected client.
type ID = string

// Record is the metadata kept for a connected client. Both backends store
// a normalized deep copy: integral numbers become int64, other numbers
// float64, and nested objects and arrays become map[string]any and []any.
// A record read back equals normalize of the record written.
type Record map[string]any

// DefaultRedisKey is the key the shared backend uses when none is configured.
const DefaultRedisKey = "isimisiSSEClientKey"

// Registry stores connected-client records.
type Registry interface {
	// Initialize prepares backing storage. Idempotent.
	Initialize(ctx context.Context) error
	// GetAll returns a snapshot of every record.
	GetAll(ctx context.Context) (map[ID]Record, error)
	// GetOne returns the record for id; found is false if there is none.
	GetOne(ctx context.Context, id ID) (rec Record, found bool, err error)
	// SetOne inserts or replaces the record for id.
	SetOne(ctx context.Context, id ID, rec Record) error
	// RemoveOne deletes the record for id. Missing ids are not an error.
	RemoveOne(ctx context.Context, id ID) error
	// PurgeAll removes every record.
	PurgeAll(ctx context.Context) error
	// Shared reports whether records are visible to other processes.
	Shared() bool
}

// Config selects and configures the backend.
type Config struct {
	Redis    bool   `mapstructure:"redis"`
	RedisKey string `mapstructure:"redis_key"`
}

// ApplyDefaults fills in the default Redis key.
func (c *Config) ApplyDefaults() {
	if c.RedisKey == "" {
		c.RedisKey = DefaultRedisKey
	}
}

// normalize returns a deep copy of rec in the form described on Record.
func normalize(rec Record) Record {
	if rec == nil {
		return nil
	}
	out := make(Record, len(rec))
	for k, v := range rec {
		out[k] = normalizeValue(v)
	}
	return out
}

func normalizeValue(v any) any {
	switch n := v.(type) {
	case Record:
		return map[string]any(normalize(n))
	case map[string]any:
		return map[string]any(normalize(n))
	case []any:
		out := make([]any, len(n))
		for i, e := range n {
			out[i] = normalizeValue(e)
		}
		return out
	case json.Number:
		if i, err := n.Int64(); err == nil {
			return i
		}
		if f, err := n.Float64(); err == nil {
			return f
		}
		return n.String()
	case int:
		return int64(n)
	case int8:
		return int64(n)
	case int16:
		return int64(n)
	case int32:
		return int64(n)
	case uint:
		return int64(n)
	case uint8:
		return int64(n)
	case uint16:
		return int64(n)
	case uint32:
		return int64(n)
	case uint64:
		if n <= math.MaxInt64 {
			return int64(n)
		}
		return float64(n)
	case float32:
		return normalizeFloat(float64(n))
	case float64:
		return normalizeFloat(n)
	default:
		return v
	}
}

func normalizeFloat(f float64) any {
	if f == math.Trunc(f) && math.Abs(f) < 1<<53 {
		return int64(f)
	}
	return f
}

func cloneAll(m map[ID]Record) map[ID]Record {
	out := make(map[ID]Record, len(m))
	for id, rec := range m {
		out[id] = normalize(rec)
	}
	return out
}
