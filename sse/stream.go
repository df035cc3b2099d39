package sse

import (
	"context"
	"net/http"
	"strings"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/kbukum/eventstream/errors"
	"github.com/kbukum/eventstream/logger"
)

const tracerName = "github.com/kbukum/eventstream/sse"

// teardownTimeout bounds the registry call made after the client is gone.
const teardownTimeout = 5 * time.Second

// ServeFunc runs one stream. It returns an error only if the stream could
// not be started; otherwise it blocks until the client disconnects or the
// source is ended. next is called once, after the stream is set up.
type ServeFunc func(w http.ResponseWriter, r *http.Request, next func()) error

// Stream frames payloads from sources onto HTTP responses. One Stream
// serves every connection; its options never change after NewStream.
type Stream struct {
	opts    Options
	log     *logger.Logger
	metrics *Metrics
	tracer  trace.Tracer
}

// StreamOption configures a Stream.
type StreamOption func(*Stream)

// WithMetrics records stream instruments on m.
func WithMetrics(m *Metrics) StreamOption {
	return func(s *Stream) { s.metrics = m }
}

// WithTracer overrides the tracer used for the init span.
func WithTracer(t trace.Tracer) StreamOption {
	return func(s *Stream) { s.tracer = t }
}

// NewStream creates a Stream from cfg. Zero fields in cfg take defaults.
func NewStream(cfg Config, log *logger.Logger, opts ...StreamOption) *Stream {
	if log == nil {
		log = logger.GetGlobalLogger()
	}
	s := &Stream{
		opts:   resolveOptions(cfg),
		log:    log.WithComponent("sse"),
		tracer: otel.Tracer(tracerName),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Options returns the resolved options.
func (s *Stream) Options() Options { return s.opts }

// Init prepares src for streaming and returns the function that serves it.
// src must be a *ConnSource; it is recorded in its registry before Init
// returns.
func (s *Stream) Init(ctx context.Context, src Source) (ServeFunc, error) {
	ctx, span := s.tracer.Start(ctx, "sse.stream.init", trace.WithAttributes(
		attribute.String("sse.client_id", src.ID()),
	))
	defer span.End()

	cs, ok := src.(*ConnSource)
	if !ok {
		err := errors.InvalidMethod()
		span.SetStatus(codes.Error, err.Message)
		s.metrics.streamRejected(ctx, string(err.Code))
		return nil, err
	}
	if err := cs.MarkReady(ctx); err != nil {
		appErr := errors.Wrap(err)
		span.RecordError(err)
		span.SetStatus(codes.Error, appErr.Message)
		s.metrics.streamRejected(ctx, string(appErr.Code))
		return nil, appErr
	}

	return func(w http.ResponseWriter, r *http.Request, next func()) error {
		return s.serve(cs, w, r, next)
	}, nil
}

func (s *Stream) serve(src *ConnSource, w http.ResponseWriter, r *http.Request, next func()) error {
	ctx := r.Context()
	log := s.log.WithFields(logger.Fields(logger.FieldClientID, src.ID()))

	if !acceptsStream(r.Header) {
		return s.reject(ctx, src, errors.AcceptRejected())
	}
	if next == nil {
		return s.reject(ctx, src, errors.NextInvalid())
	}

	tuneTransport(w, r)

	h := w.Header()
	applyCORS(h, r, s.opts.CORS)
	h.Set("Content-Type", "text/event-stream")
	h.Set("Cache-Control", "no-cache")
	if r.ProtoMajor != 2 {
		h.Set("Connection", "keep-alive")
		h.Set("X-Accel-Buffering", "no")
	}
	w.WriteHeader(http.StatusOK)

	out := &streamWriter{w: w, rc: http.NewResponseController(w), log: log}
	out.flush()

	stopHeartbeat := func() {}
	if !strings.EqualFold(r.Header.Get("Connection"), "keep-alive") {
		stopHeartbeat = s.startHeartbeat(ctx, out)
	}

	f := frame{opts: &s.opts, connID: src.ID(), legacy: isLegacyClient(r)}
	src.adjustMaxListeners(1)
	unsubscribe := src.Subscribe(func(p Payload) error {
		msg, err := f.encode(p)
		if err != nil {
			log.Warn("Dropping event with invalid data", logger.Fields("error", err.Error()))
			return err
		}
		if out.write(msg) {
			s.metrics.messageSent(ctx, p.Event)
		}
		return nil
	})
	s.metrics.streamOpened(ctx)
	log.Debug("Stream opened", logger.Fields("proto", r.Proto, "remote_addr", r.RemoteAddr))

	var once sync.Once
	teardown := func(reason string) {
		once.Do(func() {
			stopHeartbeat()
			out.close()
			unsubscribe()
			src.adjustMaxListeners(-1)
			s.metrics.streamClosed(context.WithoutCancel(ctx))

			rmCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), teardownTimeout)
			defer cancel()
			if err := src.Registry().RemoveOne(rmCtx, src.ID()); err != nil {
				log.Error("Failed to remove client from registry", logger.Fields("error", err.Error()))
			}
			log.Debug("Stream closed", logger.Fields("reason", reason))
		})
	}
	defer teardown("handler returned")

	next()

	select {
	case <-ctx.Done():
		teardown("client disconnected")
	case <-src.Done():
		teardown("ended by server")
	}
	return nil
}

// reject undoes MarkReady for a stream that will never start.
func (s *Stream) reject(ctx context.Context, src *ConnSource, err *errors.AppError) error {
	s.metrics.streamRejected(ctx, string(err.Code))
	rmCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), teardownTimeout)
	defer cancel()
	if rmErr := src.Registry().RemoveOne(rmCtx, src.ID()); rmErr != nil {
		s.log.Warn("Failed to remove rejected client from registry", logger.Fields(
			logger.FieldClientID, src.ID(), "error", rmErr.Error(),
		))
	}
	return err
}

// startHeartbeat writes a comment line every HeartbeatInterval until the
// returned function is called.
func (s *Stream) startHeartbeat(ctx context.Context, out *streamWriter) (stop func()) {
	line := []byte(": " + s.opts.HeartbeatComment + "\n\n")
	done := make(chan struct{})
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		ticker := time.NewTicker(s.opts.HeartbeatInterval)
		defer ticker.Stop()
		for {
			select {
			case <-done:
				return
			case <-ticker.C:
				if out.write(line) {
					s.metrics.heartbeatSent(ctx)
				}
			}
		}
	}()
	var once sync.Once
	return func() {
		once.Do(func() {
			close(done)
			wg.Wait()
		})
	}
}

// streamWriter serializes writes to one response and refuses them once
// the stream is closed.
type streamWriter struct {
	mu     sync.Mutex
	w      http.ResponseWriter
	rc     *http.ResponseController
	log    *logger.Logger
	closed bool
}

func (sw *streamWriter) write(b []byte) bool {
	sw.mu.Lock()
	defer sw.mu.Unlock()
	if sw.closed {
		return false
	}
	if _, err := sw.w.Write(b); err != nil {
		sw.log.Debug("Stream write failed", logger.Fields("error", err.Error()))
		return false
	}
	if err := sw.rc.Flush(); err != nil {
		sw.log.Debug("Stream flush failed", logger.Fields("error", err.Error()))
	}
	return true
}

func (sw *streamWriter) flush() {
	sw.mu.Lock()
	defer sw.mu.Unlock()
	_ = sw.rc.Flush()
}

func (sw *streamWriter) close() {
	sw.mu.Lock()
	sw.closed = true
	sw.mu.Unlock()
}
