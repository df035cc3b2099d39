// Package redis wraps go-redis with the logging, configuration and
// component lifecycle conventions used across eventstream.
//
// The shared client registry stores all connected clients in one JSON
// document under a single key. Doc provides typed access to such a
// document, with Update running inside a WATCH/MULTI transaction so that
// concurrent writers never lose each other's changes:
//
//	doc := redis.NewDoc[map[string]Record](client, "isimisiSSEClientKey")
//	err := doc.Update(ctx, func(m *map[string]Record) error {
//	    (*m)["42"] = rec
//	    return nil
//	})
package redis
