package sse

import (
	"context"
	stderrors "errors"
	"net/http"
	"sync"
	"time"

	"github.com/kbukum/eventstream/clients"
	"github.com/kbukum/eventstream/errors"
)

// Source is what application code sends events on.
type Source interface {
	// ID is the connection id, fixed for the life of the source.
	ID() string
	// Send publishes data to the attached stream and reports whether the
	// stream took it. With no stream attached it returns false and a nil
	// error. Data that cannot be framed returns an InvalidData error and
	// leaves the stream open.
	Send(data any, opts ...SendOption) (bool, error)
	// End closes the stream from the server side.
	End()
}

// Listener receives payloads published on a ConnSource.
type Listener func(Payload) error

var errNoRegistry = stderrors.New("event source has no client registry")

type listenerSlot struct {
	fn Listener
}

// ConnSource is a Source bound to one HTTP connection.
type ConnSource struct {
	id       string
	ids      IDGenerator
	registry clients.Registry

	mu           sync.Mutex
	slot         *listenerSlot
	maxListeners int

	done    chan struct{}
	endOnce sync.Once
}

var _ Source = (*ConnSource)(nil)

// NewConnSource creates a source and assigns its id. A nil generator uses
// a process-wide counter.
func NewConnSource(ids IDGenerator, registry clients.Registry) *ConnSource {
	if ids == nil {
		ids = defaultIDs
	}
	return &ConnSource{
		id:       ids(),
		ids:      ids,
		registry: registry,
		done:     make(chan struct{}),
	}
}

func (s *ConnSource) ID() string { return s.id }

// Registry returns the registry the source records itself in.
func (s *ConnSource) Registry() clients.Registry { return s.registry }

// MarkReady records the connection in the registry.
func (s *ConnSource) MarkReady(ctx context.Context) error {
	if s.registry == nil {
		return errors.StoreUnavailable(errNoRegistry)
	}
	return s.registry.SetOne(ctx, s.id, clients.Record{"timestamp": time.Now().UnixMilli()})
}

// Send builds a payload with a freshly generated id and hands it to the
// subscriber, if any, on the calling goroutine.
func (s *ConnSource) Send(data any, opts ...SendOption) (bool, error) {
	p := Payload{ID: s.ids(), Data: data}
	for _, opt := range opts {
		opt(&p)
	}

	s.mu.Lock()
	slot := s.slot
	s.mu.Unlock()
	if slot == nil {
		return false, nil
	}
	if err := slot.fn(p); err != nil {
		return false, err
	}
	return true, nil
}

// Subscribe installs l as the only listener, replacing any previous one.
// The returned function removes l; calling it again, or after another
// listener was installed, does nothing.
func (s *ConnSource) Subscribe(l Listener) func() {
	slot := &listenerSlot{fn: l}
	s.mu.Lock()
	s.slot = slot
	s.mu.Unlock()

	return func() {
		s.mu.Lock()
		if s.slot == slot {
			s.slot = nil
		}
		s.mu.Unlock()
	}
}

// ListenerCount is 1 while a stream is subscribed, else 0.
func (s *ConnSource) ListenerCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.slot != nil {
		return 1
	}
	return 0
}

func (s *ConnSource) SetMaxListeners(n int) {
	s.mu.Lock()
	s.maxListeners = n
	s.mu.Unlock()
}

func (s *ConnSource) MaxListeners() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.maxListeners
}

// adjustMaxListeners adds delta to the listener capacity atomically.
func (s *ConnSource) adjustMaxListeners(delta int) {
	s.mu.Lock()
	s.maxListeners += delta
	s.mu.Unlock()
}

// End asks the stream to close. Safe to call more than once.
func (s *ConnSource) End() {
	s.endOnce.Do(func() { close(s.done) })
}

// Done is closed once End has been called.
func (s *ConnSource) Done() <-chan struct{} { return s.done }

// NopSource stands in for requests whose method cannot open a stream.
type NopSource struct{}

var _ Source = NopSource{}

func (NopSource) ID() string                             { return "" }
func (NopSource) Send(any, ...SendOption) (bool, error) { return false, nil }
func (NopSource) End()                                  {}

// Factory builds a Source per request.
type Factory struct {
	registry clients.Registry
	ids      IDGenerator
}

// NewFactory creates a factory. A nil generator uses UUIDGenerator.
func NewFactory(registry clients.Registry, ids IDGenerator) *Factory {
	if ids == nil {
		ids = UUIDGenerator
	}
	return &Factory{registry: registry, ids: ids}
}

// ForRequest returns a fresh ConnSource for GET and POST, NopSource otherwise.
func (f *Factory) ForRequest(r *http.Request) Source {
	switch r.Method {
	case http.MethodGet, http.MethodPost:
		return NewConnSource(f.ids, f.registry)
	default:
		return NopSource{}
	}
}
