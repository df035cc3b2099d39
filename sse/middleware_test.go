package sse

import (
	"bufio"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/kbukum/eventstream/clients"
	"github.com/kbukum/eventstream/errors"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// readMessage reads lines up to and including the next blank line.
func readMessage(t *testing.T, r *bufio.Reader) []string {
	t.Helper()
	var lines []string
	for {
		line, err := r.ReadString('\n')
		if err != nil {
			t.Fatalf("reading stream: %v (got %q)", err, lines)
		}
		line = strings.TrimSuffix(line, "\n")
		if line == "" {
			return lines
		}
		lines = append(lines, line)
	}
}

func startServer(t *testing.T, h http.Handler) *httptest.Server {
	t.Helper()
	srv := httptest.NewUnstartedServer(h)
	srv.Config.ConnContext = ConnContext
	srv.Start()
	t.Cleanup(srv.Close)
	return srv
}

func getStream(t *testing.T, url string) *http.Response {
	t.Helper()
	req, _ := http.NewRequest(http.MethodGet, url, nil)
	req.Header.Set("Accept", "text/event-stream")
	req.Header.Set("Connection", "keep-alive")
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("GET %s: %v", url, err)
	}
	return resp
}

func TestHandler_StreamsOverHTTP(t *testing.T) {
	reg := clients.NewLocal()
	stream := NewStream(Config{}, testLogger())
	factory := NewFactory(reg, nil)

	srv := startServer(t, Handler(stream, factory, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		FromContext(r.Context()).Send("hello", WithEvent("greeting"))
	})))

	resp := getStream(t, srv.URL)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	if ct := resp.Header.Get("Content-Type"); ct != "text/event-stream" {
		t.Errorf("Content-Type = %q", ct)
	}

	lines := readMessage(t, bufio.NewReader(resp.Body))
	if len(lines) != 4 || !strings.HasPrefix(lines[0], "id: ") || lines[1] != "event: greeting" ||
		!strings.HasPrefix(lines[2], "sse_id: ") || lines[3] != "data: hello" {
		t.Fatalf("unexpected message %q", lines)
	}
	id := strings.TrimPrefix(lines[2], "sse_id: ")
	if _, found, _ := reg.GetOne(context.Background(), id); !found {
		t.Error("open stream is not registered")
	}

	_ = resp.Body.Close()
	waitFor(t, "registry cleanup after disconnect", func() bool {
		all, _ := reg.GetAll(context.Background())
		return len(all) == 0
	})
}

func TestHandler_Errors(t *testing.T) {
	tests := []struct {
		name   string
		method string
		accept string
		next   http.Handler
		status int
		code   errors.ErrorCode
	}{
		{"bad accept", http.MethodGet, "text/html", http.NotFoundHandler(), http.StatusForbidden, errors.ErrCodeAcceptRejected},
		{"bad method", http.MethodPut, "text/event-stream", http.NotFoundHandler(), http.StatusInternalServerError, errors.ErrCodeInvalidMethod},
		{"no next", http.MethodGet, "text/event-stream", nil, http.StatusInternalServerError, errors.ErrCodeNextInvalid},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			reg := clients.NewLocal()
			h := Handler(NewStream(Config{}, testLogger()), NewFactory(reg, nil), tc.next)

			req := httptest.NewRequest(tc.method, "/events", nil)
			req.Header.Set("Accept", tc.accept)
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, req)

			if rec.Code != tc.status {
				t.Errorf("status = %d, want %d", rec.Code, tc.status)
			}
			var body errors.ErrorResponse
			if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
				t.Fatalf("error body is not JSON: %v", err)
			}
			if body.Error.Code != tc.code {
				t.Errorf("code = %s, want %s", body.Error.Code, tc.code)
			}
			if all, _ := reg.GetAll(context.Background()); len(all) != 0 {
				t.Errorf("registry not empty after error: %v", all)
			}
		})
	}
}

func TestGinMiddleware_Streams(t *testing.T) {
	reg := clients.NewLocal()
	engine := gin.New()
	engine.GET("/events", GinMiddleware(NewStream(Config{NoIDs: true}, testLogger()), NewFactory(reg, NewCounter())),
		func(c *gin.Context) {
			src := FromGin(c)
			src.Send(map[string]any{"n": 1})
			src.End()
		})
	srv := startServer(t, engine)

	resp := getStream(t, srv.URL+"/events")
	defer resp.Body.Close()
	lines := readMessage(t, bufio.NewReader(resp.Body))
	want := []string{"sse_id: 1", "data: {", `data: "n": 1`, "data: }"}
	if strings.Join(lines, "|") != strings.Join(want, "|") {
		t.Errorf("message = %q, want %q", lines, want)
	}
	waitFor(t, "registry cleanup after End", func() bool {
		all, _ := reg.GetAll(context.Background())
		return len(all) == 0
	})
}

func TestGinMiddleware_RejectsAccept(t *testing.T) {
	engine := gin.New()
	reached := false
	engine.GET("/events", GinMiddleware(NewStream(Config{}, testLogger()), NewFactory(clients.NewLocal(), nil)),
		func(c *gin.Context) { reached = true })

	req := httptest.NewRequest(http.MethodGet, "/events", nil)
	req.Header.Set("Accept", "application/xml")
	rec := httptest.NewRecorder()
	engine.ServeHTTP(rec, req)

	if reached {
		t.Error("handler after the middleware ran for a rejected stream")
	}
	if rec.Code != http.StatusForbidden {
		t.Errorf("status = %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), string(errors.ErrCodeAcceptRejected)) {
		t.Errorf("body = %s", rec.Body.String())
	}
}

func TestFromContextDefaultsToNop(t *testing.T) {
	if _, ok := FromContext(context.Background()).(NopSource); !ok {
		t.Error("expected NopSource without a stored source")
	}
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	c.Request = httptest.NewRequest(http.MethodGet, "/", nil)
	if _, ok := FromGin(c).(NopSource); !ok {
		t.Error("expected NopSource from an empty gin context")
	}
}
