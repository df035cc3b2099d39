// Package clients tracks which SSE clients are currently connected.
//
// A Registry is either Local (one process, in memory) or Shared (one JSON
// document in Redis, visible to every process behind a load balancer).
// Both have the same lifecycle: the registry is purged when the process
// starts, a record is set when a stream becomes ready, and it is removed
// when the stream closes.
//
//	reg, err := clients.New(cfg, redisClient, log)
//	_ = reg.SetOne(ctx, "42", clients.Record{"timestamp": time.Now().UnixMilli()})
package clients
