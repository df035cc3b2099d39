package sse

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// Metrics holds the stream instruments. A nil *Metrics records nothing.
type Metrics struct {
	active     metric.Int64UpDownCounter
	sent       metric.Int64Counter
	heartbeats metric.Int64Counter
	rejected   metric.Int64Counter
}

// NewMetrics creates the stream instruments on meter.
func NewMetrics(meter metric.Meter) (*Metrics, error) {
	active, err := meter.Int64UpDownCounter("sse.connections.active",
		metric.WithDescription("Number of open event streams"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating sse.connections.active counter: %w", err)
	}

	sent, err := meter.Int64Counter("sse.messages.sent",
		metric.WithDescription("Messages written to event streams"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating sse.messages.sent counter: %w", err)
	}

	heartbeats, err := meter.Int64Counter("sse.heartbeats.sent",
		metric.WithDescription("Heartbeat comments written to event streams"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating sse.heartbeats.sent counter: %w", err)
	}

	rejected, err := meter.Int64Counter("sse.stream.rejected",
		metric.WithDescription("Stream requests refused before streaming, by error code"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating sse.stream.rejected counter: %w", err)
	}

	return &Metrics{active: active, sent: sent, heartbeats: heartbeats, rejected: rejected}, nil
}

func (m *Metrics) streamOpened(ctx context.Context) {
	if m != nil {
		m.active.Add(ctx, 1)
	}
}

func (m *Metrics) streamClosed(ctx context.Context) {
	if m != nil {
		m.active.Add(ctx, -1)
	}
}

func (m *Metrics) messageSent(ctx context.Context, event string) {
	if m != nil {
		m.sent.Add(ctx, 1, metric.WithAttributes(attribute.String("event", event)))
	}
}

func (m *Metrics) heartbeatSent(ctx context.Context) {
	if m != nil {
		m.heartbeats.Add(ctx, 1)
	}
}

func (m *Metrics) streamRejected(ctx context.Context, code string) {
	if m != nil {
		m.rejected.Add(ctx, 1, metric.WithAttributes(attribute.String("code", code)))
	}
}
