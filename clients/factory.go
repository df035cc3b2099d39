package clients

import (
	stderrors "errors"

	"github.com/kbukum/eventstream/errors"
	"github.com/kbukum/eventstream/logger"
	"github.com/kbukum/eventstream/redis"
)

var errNoRedisClient = stderrors.New("shared client registry requested but no redis client is available")

// New selects the backend once at startup. Asking for the shared backend
// without a Redis client fails with a StoreUnavailable error.
func New(cfg Config, client *redis.Client, log *logger.Logger) (Registry, error) {
	cfg.ApplyDefaults()
	if !cfg.Redis {
		log.Debug("Using in-memory client registry")
		return NewLocal(), nil
	}
	if client == nil {
		return nil, errors.StoreUnavailable(errNoRedisClient)
	}
	log.Debug("Using shared client registry", logger.Fields("key", cfg.RedisKey, "addr", client.Addr()))
	return NewShared(client, cfg.RedisKey), nil
}
