package sse

import (
	"context"
	"time"
)

// DefaultDispatchDelay is the pause Dispatch takes between callback runs.
const DefaultDispatchDelay = time.Millisecond

// Dispatch runs callback on a new goroutine and runs it again with the
// same arguments each time it returns, until ctx is done. It is meant for
// sources that must poll for data rather than have it pushed. Dispatch
// itself returns true immediately. A panic in callback is not recovered.
func Dispatch(ctx context.Context, callback func(ctx context.Context, args ...any), args ...any) bool {
	return DispatchEvery(ctx, DefaultDispatchDelay, callback, args...)
}

// DispatchEvery is Dispatch with an explicit pause between runs. A
// non-positive delay uses DefaultDispatchDelay.
func DispatchEvery(ctx context.Context, delay time.Duration, callback func(ctx context.Context, args ...any), args ...any) bool {
	if delay <= 0 {
		delay = DefaultDispatchDelay
	}
	go func() {
		t := time.NewTimer(delay)
		defer t.Stop()
		for ctx.Err() == nil {
			callback(ctx, args...)

			t.Reset(delay)
			select {
			case <-ctx.Done():
				return
			case <-t.C:
			}
		}
	}()
	return true
}
