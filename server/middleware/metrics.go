package middleware

import (
	"context"
	"net/http"
	"time"

	"github.com/kbukum/eventstream/observability"
)

// Metrics records request counts and durations. The route attribute is the
// request path, so mount it only where paths are bounded.
func Metrics(m *observability.Metrics) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			start := time.Now()
			m.RecordRequestStart(ctx)
			sw := newStatusWriter(w)
			defer func() {
				m.RecordRequestEnd(context.WithoutCancel(ctx), r.Method, r.URL.Path, sw.status, time.Since(start))
			}()
			next.ServeHTTP(sw, r)
		})
	}
}
