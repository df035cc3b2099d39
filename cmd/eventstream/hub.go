package main

import (
	"context"
	"sync"
	"time"

	"github.com/kbukum/eventstream/sse"
)

// hub indexes the sources of streams open on this process so API routes
// can publish to them. Streams held by other replicas are visible in the
// shared registry but not reachable from here.
type hub struct {
	mu      sync.RWMutex
	sources map[string]sse.Source
}

func newHub() *hub {
	return &hub{sources: make(map[string]sse.Source)}
}

// attach indexes src until ctx is done.
func (h *hub) attach(ctx context.Context, src sse.Source) {
	id := src.ID()
	h.mu.Lock()
	h.sources[id] = src
	h.mu.Unlock()

	context.AfterFunc(ctx, func() {
		h.mu.Lock()
		defer h.mu.Unlock()
		if h.sources[id] == src {
			delete(h.sources, id)
		}
	})
}

func (h *hub) get(id string) (sse.Source, bool) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	src, ok := h.sources[id]
	return src, ok
}

// broadcast sends to every local source and returns how many streams
// took the payload. Data that cannot be framed fails the same way on every
// source, so the first error stops the loop.
func (h *hub) broadcast(data any, opts ...sse.SendOption) (int, error) {
	h.mu.RLock()
	targets := make([]sse.Source, 0, len(h.sources))
	for _, src := range h.sources {
		targets = append(targets, src)
	}
	h.mu.RUnlock()

	delivered := 0
	for _, src := range targets {
		ok, err := src.Send(data, opts...)
		if err != nil {
			return delivered, err
		}
		if ok {
			delivered++
		}
	}
	return delivered, nil
}

func (h *hub) len() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.sources)
}

// ticker is a Dispatch callback that sends one "tick" per interval.
func ticker(ctx context.Context, args ...any) {
	src := args[0].(sse.Source)
	interval := args[1].(time.Duration)

	t := time.NewTimer(interval)
	defer t.Stop()
	select {
	case <-ctx.Done():
	case now := <-t.C:
		_, _ = src.Send(map[string]any{"time": now.UTC().Format(time.RFC3339)}, sse.WithEvent("tick"))
	}
}
