package main

import (
	"bufio"
	"context"
	"encoding/json"
	"io"
	"net"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/kbukum/eventstream/bootstrap"
	"github.com/kbukum/eventstream/config"
	"github.com/kbukum/eventstream/logger"
	"github.com/kbukum/eventstream/server"
)

func freePort(t *testing.T) int {
	t.Helper()
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatal(err)
	}
	defer ln.Close()
	return ln.Addr().(*net.TCPAddr).Port
}

func testConfig(t *testing.T) *AppConfig {
	cfg := &AppConfig{ServiceConfig: config.ServiceConfig{Name: "eventstream-test", Version: "test"}}
	cfg.Server.Host = "127.0.0.1"
	cfg.Server.Port = freePort(t)
	cfg.SSE.HeartbeatInterval = time.Hour
	return cfg
}

// event is one parsed message: field name to value, data lines joined by "\n".
type event map[string]string

func readEvent(t *testing.T, r *bufio.Reader) event {
	t.Helper()
	ev := event{}
	for {
		line, err := r.ReadString('\n')
		if err != nil {
			t.Fatalf("reading stream: %v (partial event %v)", err, ev)
		}
		line = strings.TrimSuffix(line, "\n")
		if line == "" {
			if len(ev) == 0 {
				continue
			}
			return ev
		}
		if strings.HasPrefix(line, ":") {
			continue
		}
		field, value, _ := strings.Cut(line, ": ")
		if field == "data" && ev["data"] != "" {
			value = ev["data"] + "\n" + value
		}
		ev[field] = value
	}
}

func doJSON(t *testing.T, method, url, body string) (int, map[string]any) {
	t.Helper()
	req, _ := http.NewRequest(method, url, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("%s %s: %v", method, url, err)
	}
	defer resp.Body.Close()
	var out map[string]any
	_ = json.NewDecoder(resp.Body).Decode(&out)
	return resp.StatusCode, out
}

func TestServeApp_EndToEnd(t *testing.T) {
	cfg := testConfig(t)
	app, err := newServeApp(cfg, bootstrap.WithLogger(logger.NewNop()), bootstrap.WithSummaryOutput(io.Discard))
	if err != nil {
		t.Fatalf("newServeApp: %v", err)
	}

	err = app.RunTask(context.Background(), func(ctx context.Context) error {
		base := "http://" + app.Components.Get("http-server").(*server.Component).Server().Addr()

		req, _ := http.NewRequestWithContext(ctx, http.MethodGet, base+"/events", http.NoBody)
		req.Header.Set("Accept", "text/event-stream")
		resp, err := http.DefaultClient.Do(req)
		if err != nil {
			t.Fatalf("GET /events: %v", err)
		}
		defer resp.Body.Close()
		stream := bufio.NewReader(resp.Body)

		hello := readEvent(t, stream)
		if hello["event"] != "connected" || hello["retry"] != "3000" {
			t.Fatalf("unexpected first event %v", hello)
		}
		id := hello["sse_id"]
		if id == "" || !strings.Contains(hello["data"], id) {
			t.Fatalf("expected connection id in first event, got %v", hello)
		}

		status, body := doJSON(t, http.MethodPost, base+"/api/clients/"+id+"/events", `{"data":"hello","event":"greet"}`)
		if status != http.StatusAccepted || body["data"].(map[string]any)["delivered"] != true {
			t.Fatalf("publish: %d %v", status, body)
		}
		if ev := readEvent(t, stream); ev["event"] != "greet" || ev["data"] != "hello" || ev["sse_id"] != id {
			t.Errorf("unexpected published event %v", ev)
		}

		status, body = doJSON(t, http.MethodPost, base+"/api/events", `{"data":"all"}`)
		if status != http.StatusAccepted || body["data"].(map[string]any)["delivered"] != float64(1) {
			t.Fatalf("broadcast: %d %v", status, body)
		}
		if ev := readEvent(t, stream); ev["data"] != "all" {
			t.Errorf("unexpected broadcast event %v", ev)
		}

		status, body = doJSON(t, http.MethodGet, base+"/api/clients", "")
		if status != http.StatusOK || body["count"] != float64(1) || body["shared"] != false {
			t.Errorf("clients: %d %v", status, body)
		}

		status, body = doJSON(t, http.MethodPost, base+"/api/clients/nope/events", `{"data":"x"}`)
		if status != http.StatusNotFound || body["error"].(map[string]any)["code"] != "NOT_FOUND" {
			t.Errorf("unknown client: %d %v", status, body)
		}
		status, _ = doJSON(t, http.MethodPost, base+"/api/clients/"+id+"/events", `{"event":"no-data"}`)
		if status != http.StatusBadRequest {
			t.Errorf("missing data: status %d, want 400", status)
		}

		status, _ = doJSON(t, http.MethodDelete, base+"/api/clients/"+id, "")
		if status != http.StatusAccepted {
			t.Fatalf("end: status %d", status)
		}
		if _, err := io.Copy(io.Discard, stream); err != nil {
			t.Errorf("expected clean end of stream, got %v", err)
		}

		deadline := time.Now().Add(2 * time.Second)
		for {
			_, body = doJSON(t, http.MethodGet, base+"/api/clients", "")
			if body["count"] == float64(0) {
				break
			}
			if time.Now().After(deadline) {
				t.Fatalf("registry not cleaned after end: %v", body)
			}
			time.Sleep(10 * time.Millisecond)
		}

		status, body = doJSON(t, http.MethodGet, base+"/health", "")
		if status != http.StatusOK || body["status"] != "healthy" {
			t.Errorf("health: %d %v", status, body)
		}
		return nil
	})
	if err != nil {
		t.Fatalf("RunTask: %v", err)
	}
}

func TestServeApp_RejectsNonStreamAccept(t *testing.T) {
	cfg := testConfig(t)
	app, err := newServeApp(cfg, bootstrap.WithLogger(logger.NewNop()), bootstrap.WithSummaryOutput(io.Discard))
	if err != nil {
		t.Fatal(err)
	}
	err = app.RunTask(context.Background(), func(ctx context.Context) error {
		base := "http://" + app.Components.Get("http-server").(*server.Component).Server().Addr()
		req, _ := http.NewRequestWithContext(ctx, http.MethodGet, base+"/events", http.NoBody)
		req.Header.Set("Accept", "text/html")
		resp, err := http.DefaultClient.Do(req)
		if err != nil {
			return err
		}
		defer resp.Body.Close()
		var out map[string]map[string]any
		_ = json.NewDecoder(resp.Body).Decode(&out)
		if resp.StatusCode != http.StatusForbidden || out["error"]["code"] != "E_INVALID_ACCEPT_HEADER" {
			t.Errorf("got %d %v", resp.StatusCode, out)
		}
		return nil
	})
	if err != nil {
		t.Fatal(err)
	}
}

func TestAppConfig_Defaults(t *testing.T) {
	cfg := &AppConfig{ServiceConfig: config.ServiceConfig{Name: "eventstream"}}
	cfg.SSE.Redis = true
	cfg.ApplyDefaults()
	if !cfg.Redis.Enabled {
		t.Error("shared registry should enable redis")
	}
	if cfg.SSE.RedisKey != "isimisiSSEClientKey" || cfg.Server.Port != 8080 {
		t.Errorf("unexpected defaults: key=%q port=%d", cfg.SSE.RedisKey, cfg.Server.Port)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("defaults should validate: %v", err)
	}

	cfg.Demo.TickInterval = -time.Second
	if err := cfg.Validate(); err == nil {
		t.Error("expected negative tick interval to fail")
	}
}
