package redis

import (
	"context"
	stderrors "errors"
	"fmt"
	"sync"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/kbukum/eventstream/logger"
	"github.com/kbukum/eventstream/resilience"
)

// ErrConflict is returned by Watch when the watched keys kept changing
// for every allowed attempt.
var ErrConflict = stderrors.New("redis: transaction conflict")

// Client wraps a go-redis client with logging.
type Client struct {
	rdb       *goredis.Client
	log       *logger.Logger
	cfg       Config
	txRetries int
	closed    bool
	mu        sync.Mutex
}

// New creates a new Redis client with the given configuration and logger.
func New(cfg Config, log *logger.Logger) (*Client, error) {
	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("redis config: %w", err)
	}

	tlsCfg, err := cfg.TLS.Build()
	if err != nil {
		return nil, fmt.Errorf("redis config: %w", err)
	}

	rdb := goredis.NewClient(&goredis.Options{
		Addr:         cfg.Addr,
		Password:     cfg.Password,
		DB:           cfg.DB,
		PoolSize:     cfg.PoolSize,
		MinIdleConns: cfg.MinIdleConns,
		MaxRetries:   cfg.MaxRetries,
		DialTimeout:  cfg.DialTimeout,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
		TLSConfig:    tlsCfg,
	})

	log.Debug("Redis client created", logger.Fields("addr", cfg.Addr, "db", cfg.DB, "pool_size", cfg.PoolSize, "tls", tlsCfg != nil))
	return &Client{rdb: rdb, log: log, cfg: cfg, txRetries: cfg.TxRetries}, nil
}

// NewFromClient wraps an existing go-redis client, e.g. one pointed at miniredis.
func NewFromClient(rdb *goredis.Client, log *logger.Logger) *Client {
	cfg := Config{Enabled: true, Addr: rdb.Options().Addr}
	cfg.ApplyDefaults()
	return &Client{rdb: rdb, log: log, cfg: cfg, txRetries: cfg.TxRetries}
}

// IsNil reports whether err is the go-redis "key does not exist" sentinel.
func IsNil(err error) bool {
	return stderrors.Is(err, goredis.Nil)
}

// Ping verifies the Redis connection is alive.
func (c *Client) Ping(ctx context.Context) error {
	if err := c.rdb.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("redis ping failed: %w", err)
	}
	return nil
}

// Get retrieves a value by key. A missing key yields an error for which IsNil is true.
func (c *Client) Get(ctx context.Context, key string) (string, error) {
	return c.rdb.Get(ctx, key).Result()
}

// Set stores a value with a key and expiration.
func (c *Client) Set(ctx context.Context, key string, value interface{}, expiration time.Duration) error {
	return c.rdb.Set(ctx, key, value, expiration).Err()
}

// SetNX stores value only if key does not exist and reports whether it did.
func (c *Client) SetNX(ctx context.Context, key string, value interface{}) (bool, error) {
	return c.rdb.SetNX(ctx, key, value, 0).Result()
}

// Del deletes one or more keys.
func (c *Client) Del(ctx context.Context, keys ...string) error {
	return c.rdb.Del(ctx, keys...).Err()
}

// Watch runs fn in an optimistic transaction over keys. A lost WATCH race
// re-runs fn after a short jittered backoff, up to the configured number
// of attempts, and then yields ErrConflict.
func (c *Client) Watch(ctx context.Context, fn func(tx *goredis.Tx) error, keys ...string) error {
	err := resilience.RetryFunc(ctx, resilience.RetryConfig{
		MaxAttempts:    c.txRetries,
		InitialBackoff: c.cfg.TxBackoff,
		MaxBackoff:     c.cfg.TxBackoff * 32,
		Jitter:         0.5,
		RetryIf: func(err error) bool {
			return stderrors.Is(err, goredis.TxFailedErr)
		},
		OnRetry: func(attempt int, _ error, backoff time.Duration) {
			c.log.Debug("Redis transaction conflict, retrying", logger.Fields("attempt", attempt, "backoff", backoff.String(), "keys", keys))
		},
	}, func(ctx context.Context) error {
		return c.rdb.Watch(ctx, fn, keys...)
	})
	if stderrors.Is(err, goredis.TxFailedErr) {
		return ErrConflict
	}
	return err
}

// Addr returns the configured server address.
func (c *Client) Addr() string { return c.cfg.Addr }

// Close closes the Redis connection. Safe to call multiple times.
func (c *Client) Close() error {
	if c == nil {
		return nil
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return nil
	}
	c.closed = true
	return c.rdb.Close()
}

// Unwrap returns the underlying go-redis client for advanced operations.
func (c *Client) Unwrap() *goredis.Client {
	return c.rdb
}
