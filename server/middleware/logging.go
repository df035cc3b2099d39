package middleware

import (
	"net/http"
	"strings"
	"time"

	"github.com/kbukum/eventstream/logger"
)

var probePaths = map[string]bool{
	"/health": true,
	"/ready":  true,
	"/live":   true,
}

// RequestLogger logs each finished request at a level chosen by status.
// Probe endpoints are skipped. For event streams the entry is written when
// the stream closes and the duration is the stream's lifetime.
func RequestLogger(log *logger.Logger) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if probePaths[r.URL.Path] {
				next.ServeHTTP(w, r)
				return
			}

			start := time.Now()
			sw := newStatusWriter(w)
			next.ServeHTTP(sw, r)

			fields := logger.Fields(
				"method", r.Method,
				"path", r.URL.Path,
				"status", sw.status,
				logger.FieldDuration, time.Since(start).Milliseconds(),
			)
			if id := GetRequestID(r.Context()); id != "" {
				fields[logger.FieldRequestID] = id
			}
			if strings.Contains(sw.Header().Get("Content-Type"), "text/event-stream") {
				fields["stream"] = true
			}
			logByStatus(log, fields, sw.status)
		})
	}
}

func logByStatus(log *logger.Logger, fields map[string]interface{}, status int) {
	switch {
	case status >= 500:
		log.Error("Request completed", fields)
	case status >= 400:
		log.Warn("Request completed", fields)
	default:
		log.Debug("Request completed", fields)
	}
}
