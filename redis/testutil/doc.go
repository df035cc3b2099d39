// Package testutil provides an in-memory Redis test component backed by
// miniredis.
//
//	rc := testutil.NewComponent()
//	gktest.T(t).Setup(rc)
//	client := rc.Client() // *redis.Client wrapper
//	rc.Server().FastForward(time.Minute)
package testutil
