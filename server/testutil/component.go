package testutil

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"

	"github.com/gin-gonic/gin"

	"github.com/kbukum/eventstream/component"
	"github.com/kbukum/eventstream/logger"
	"github.com/kbukum/eventstream/server"
	"github.com/kbukum/eventstream/sse"
	"github.com/kbukum/eventstream/testutil"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// Component is a test server component backed by httptest.Server.
type Component struct {
	srv     *server.Server
	ts      *httptest.Server
	log     *logger.Logger
	started bool
	mu      sync.RWMutex
}

var (
	_ component.Component    = (*Component)(nil)
	_ testutil.TestComponent = (*Component)(nil)
)

// NewComponent creates a new test server component.
func NewComponent() *Component {
	log := logger.NewNop()
	return &Component{
		srv: newServer(log),
		log: log,
	}
}

func newServer(log *logger.Logger) *server.Server {
	cfg := server.Config{Host: "127.0.0.1"}
	cfg.ApplyDefaults()
	cfg.Port = 0
	return server.New(cfg, log)
}

// GinEngine returns the Gin engine for registering routes.
func (c *Component) GinEngine() *gin.Engine {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.srv.GinEngine()
}

// Server returns the underlying *server.Server.
func (c *Component) Server() *server.Server {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.srv
}

// BaseURL returns the test server's base URL, or "" before Start.
func (c *Component) BaseURL() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.ts == nil {
		return ""
	}
	return c.ts.URL
}

func (c *Component) Name() string { return "server-test" }

func (c *Component) Start(_ context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.started {
		return fmt.Errorf("component already started")
	}
	c.serve()
	c.started = true
	return nil
}

// serve starts httptest with the same middleware and connection tagging
// as a real server.
func (c *Component) serve() {
	c.srv.ApplyMiddleware(nil)
	c.ts = httptest.NewUnstartedServer(c.srv.Handler())
	c.ts.Config.ConnContext = sse.ConnContext
	c.ts.Start()
}

// close drops open connections first so streaming handlers return.
func (c *Component) close() {
	if c.ts == nil {
		return
	}
	c.ts.CloseClientConnections()
	c.ts.Close()
	c.ts = nil
}

func (c *Component) Stop(_ context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.started {
		return nil
	}
	c.close()
	c.started = false
	return nil
}

func (c *Component) Health(_ context.Context) component.Health {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if !c.started {
		return component.Health{Name: c.Name(), Status: component.StatusUnhealthy, Message: "not started"}
	}
	return component.Health{Name: c.Name(), Status: component.StatusHealthy}
}

// Reset recreates the server with a fresh Gin engine and no routes.
func (c *Component) Reset(_ context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.started {
		return fmt.Errorf("component not started")
	}
	c.close()
	c.srv = newServer(c.log)
	c.serve()
	return nil
}

// Handle mounts an http.Handler next to Gin.
func (c *Component) Handle(pattern string, handler http.Handler) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	c.srv.Handle(pattern, handler)
}
