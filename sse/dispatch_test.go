package sse

import (
	"context"
	"sync/atomic"
	"testing"
	"time"
)

func TestDispatch_LoopsUntilCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	var calls atomic.Int64
	var gotArgs atomic.Value

	ok := Dispatch(ctx, func(ctx context.Context, args ...any) {
		gotArgs.Store(args)
		calls.Add(1)
		time.Sleep(time.Millisecond)
	}, "room", 7)
	if !ok {
		t.Fatal("Dispatch should report true")
	}

	waitFor(t, "repeated callbacks", func() bool { return calls.Load() >= 3 })
	cancel()
	time.Sleep(20 * time.Millisecond)
	settled := calls.Load()
	time.Sleep(20 * time.Millisecond)
	if calls.Load() != settled {
		t.Error("callback kept running after cancel")
	}

	args, _ := gotArgs.Load().([]any)
	if len(args) != 2 || args[0] != "room" || args[1] != 7 {
		t.Errorf("args = %v", args)
	}
}

func TestDispatch_SendsOnSource(t *testing.T) {
	src := NewConnSource(NewCounter(), nil)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	var sent atomic.Int64
	src.Subscribe(func(p Payload) error {
		sent.Add(1)
		return nil
	})
	Dispatch(ctx, func(ctx context.Context, args ...any) {
		src.Send(args[0])
		select {
		case <-ctx.Done():
		case <-time.After(time.Millisecond):
		}
	}, "tick")

	waitFor(t, "dispatched sends", func() bool { return sent.Load() >= 2 })
}

func TestDispatch_PausesBetweenRuns(t *testing.T) {
	tests := []struct {
		name  string
		delay time.Duration
		max   int64
	}{
		{"default", 0, 200},
		{"ten milliseconds", 10 * time.Millisecond, 20},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			ctx, cancel := context.WithCancel(context.Background())
			var calls atomic.Int64
			DispatchEvery(ctx, tc.delay, func(context.Context, ...any) { calls.Add(1) })

			time.Sleep(100 * time.Millisecond)
			cancel()
			if n := calls.Load(); n < 1 || n > tc.max {
				t.Errorf("callback ran %d times in 100ms, want 1..%d", n, tc.max)
			}
		})
	}
}
