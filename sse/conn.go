package sse

import (
	"context"
	"net"
	"net/http"
	"regexp"
	"time"
)

type connKey struct{}

// ConnContext stores the accepted connection in the request context so a
// Stream can tune the socket. Install it as http.Server.ConnContext.
func ConnContext(ctx context.Context, c net.Conn) context.Context {
	return context.WithValue(ctx, connKey{}, c)
}

// connFromContext returns the innermost connection stored by ConnContext,
// looking through TLS wrappers.
func connFromContext(ctx context.Context) net.Conn {
	c, _ := ctx.Value(connKey{}).(net.Conn)
	for c != nil {
		inner, ok := c.(interface{ NetConn() net.Conn })
		if !ok {
			break
		}
		c = inner.NetConn()
	}
	return c
}

// tuneTransport lifts the server's deadlines for this response and turns
// off Nagle buffering. Each step is skipped where the transport does not
// support it.
func tuneTransport(w http.ResponseWriter, r *http.Request) {
	rc := http.NewResponseController(w)
	_ = rc.SetReadDeadline(time.Time{})
	_ = rc.SetWriteDeadline(time.Time{})

	if tc, ok := connFromContext(r.Context()).(*net.TCPConn); ok {
		_ = tc.SetNoDelay(true)
		_ = tc.SetKeepAlive(true)
	}
}

var tridentPattern = regexp.MustCompile(`Trident[ /]\d`)

// isLegacyClient detects Internet Explorer class clients, which need
// padding before they start dispatching events.
func isLegacyClient(r *http.Request) bool {
	if _, ok := r.Header["Ua-Cpu"]; ok {
		return true
	}
	return tridentPattern.MatchString(r.UserAgent())
}
