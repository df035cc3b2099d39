package component

import (
	"context"
	"fmt"
	"io"
	"testing"

	"github.com/kbukum/eventstream/logger"
)

type mockComponent struct {
	name       string
	startErr   error
	stopErr    error
	health     Health
	startOrder *[]string
	stopOrder  *[]string
}

func (m *mockComponent) Name() string { return m.name }
func (m *mockComponent) Start(ctx context.Context) error {
	if m.startOrder != nil {
		*m.startOrder = append(*m.startOrder, m.name)
	}
	return m.startErr
}
func (m *mockComponent) Stop(ctx context.Context) error {
	if m.stopOrder != nil {
		*m.stopOrder = append(*m.stopOrder, m.name)
	}
	return m.stopErr
}
func (m *mockComponent) Health(ctx context.Context) Health { return m.health }

type describedComponent struct {
	mockComponent
	desc Description
}

func (d *describedComponent) Describe() Description { return d.desc }

func newTestRegistry() *Registry {
	return NewRegistry(logger.NewWithWriter(io.Discard, "debug", "test"))
}

func TestRegisterDuplicate(t *testing.T) {
	r := newTestRegistry()
	if err := r.Register(&mockComponent{name: "redis"}); err != nil {
		t.Fatalf("Register failed: %v", err)
	}
	if err := r.Register(&mockComponent{name: "redis"}); err == nil {
		t.Error("expected error for duplicate registration")
	}
}

func TestGet(t *testing.T) {
	r := newTestRegistry()
	_ = r.Register(&mockComponent{name: "clients"})

	if got := r.Get("clients"); got == nil || got.Name() != "clients" {
		t.Fatalf("expected registered component, got %v", got)
	}
	if got := r.Get("missing"); got != nil {
		t.Error("expected nil for unregistered component")
	}
}

func TestStartAllOrder(t *testing.T) {
	r := newTestRegistry()
	var order []string
	for _, name := range []string{"redis", "clients", "server"} {
		_ = r.Register(&mockComponent{name: name, startOrder: &order})
	}

	if err := r.StartAll(context.Background()); err != nil {
		t.Fatalf("StartAll failed: %v", err)
	}
	want := []string{"redis", "clients", "server"}
	if fmt.Sprint(order) != fmt.Sprint(want) {
		t.Errorf("expected start order %v, got %v", want, order)
	}
}

func TestStartAllErrorStopsChain(t *testing.T) {
	r := newTestRegistry()
	var order []string
	_ = r.Register(&mockComponent{name: "redis", startErr: fmt.Errorf("connection refused"), startOrder: &order})
	_ = r.Register(&mockComponent{name: "server", startOrder: &order})

	if err := r.StartAll(context.Background()); err == nil {
		t.Fatal("expected error from StartAll")
	}
	if len(order) != 1 {
		t.Errorf("expected later components not to start, got %v", order)
	}
}

func TestStopAllReverseOrder(t *testing.T) {
	r := newTestRegistry()
	var order []string
	for _, name := range []string{"redis", "clients", "server"} {
		_ = r.Register(&mockComponent{name: name, stopOrder: &order})
	}
	_ = r.StartAll(context.Background())

	if err := r.StopAll(context.Background()); err != nil {
		t.Fatalf("StopAll failed: %v", err)
	}
	want := []string{"server", "clients", "redis"}
	if fmt.Sprint(order) != fmt.Sprint(want) {
		t.Errorf("expected stop order %v, got %v", want, order)
	}
}

func TestStopAllSkipsUnstarted(t *testing.T) {
	r := newTestRegistry()
	var order []string
	_ = r.Register(&mockComponent{name: "redis", stopOrder: &order})

	if err := r.StopAll(context.Background()); err != nil {
		t.Fatalf("StopAll failed: %v", err)
	}
	if len(order) != 0 {
		t.Errorf("expected no stops for unstarted components, got %v", order)
	}
}

func TestStopAllWithErrors(t *testing.T) {
	r := newTestRegistry()
	_ = r.Register(&mockComponent{name: "redis", stopErr: fmt.Errorf("stop failed")})
	_ = r.StartAll(context.Background())

	if err := r.StopAll(context.Background()); err == nil {
		t.Error("expected error from StopAll")
	}
}

func TestHealthAll(t *testing.T) {
	r := newTestRegistry()
	_ = r.Register(&mockComponent{name: "redis", health: Health{Name: "redis", Status: StatusHealthy}})
	_ = r.Register(&mockComponent{name: "clients", health: Health{Name: "clients", Status: StatusUnhealthy, Message: "timeout"}})

	results := r.HealthAll(context.Background())
	if len(results) != 2 {
		t.Fatalf("expected 2 results, got %d", len(results))
	}
	if results[0].Status != StatusHealthy || results[1].Status != StatusUnhealthy {
		t.Errorf("unexpected health results %v", results)
	}
}

func TestDescribe(t *testing.T) {
	r := newTestRegistry()
	_ = r.Register(&mockComponent{name: "plain"})
	_ = r.Register(&describedComponent{
		mockComponent: mockComponent{name: "redis"},
		desc:          Description{Type: "redis", Details: "localhost:6379 db=0"},
	})

	descs := r.Describe()
	if len(descs) != 1 {
		t.Fatalf("expected 1 description, got %d", len(descs))
	}
	if descs[0].Name != "redis" {
		t.Errorf("expected name to default to component name, got %q", descs[0].Name)
	}
}
