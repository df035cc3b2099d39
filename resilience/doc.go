// Package resilience retries operations with exponential backoff and
// jitter. The Redis client uses it to re-run optimistic transactions that
// lost a WATCH race.
//
//	err := resilience.RetryFunc(ctx, resilience.RetryConfig{
//	    MaxAttempts:    16,
//	    InitialBackoff: 2 * time.Millisecond,
//	    RetryIf:        func(err error) bool { return errors.Is(err, redis.TxFailedErr) },
//	}, func(ctx context.Context) error {
//	    return rdb.Watch(ctx, txn, key)
//	})
package resilience
