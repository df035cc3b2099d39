package sse

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/kbukum/eventstream/errors"
)

// GinKey is the gin context key holding the request's Source.
const GinKey = "sse"

type sourceKey struct{}

// WithSource returns a copy of ctx carrying src.
func WithSource(ctx context.Context, src Source) context.Context {
	return context.WithValue(ctx, sourceKey{}, src)
}

// FromContext returns the request's Source, or NopSource if there is none.
func FromContext(ctx context.Context) Source {
	if src, ok := ctx.Value(sourceKey{}).(Source); ok {
		return src
	}
	return NopSource{}
}

// FromGin returns the Source GinMiddleware stored on c, or NopSource.
func FromGin(c *gin.Context) Source {
	if v, ok := c.Get(GinKey); ok {
		if src, ok := v.(Source); ok {
			return src
		}
	}
	return FromContext(c.Request.Context())
}

// Handler streams every request through stream. next runs once the
// stream is open and can read the Source with FromContext. It must not
// write to the response.
func Handler(stream *Stream, factory *Factory, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		src := factory.ForRequest(r)
		r = r.WithContext(WithSource(r.Context(), src))

		var cont func()
		if next != nil {
			cont = func() { next.ServeHTTP(w, r) }
		}
		if err := run(stream, src, w, r, cont); err != nil {
			writeError(w, err)
		}
	})
}

// GinMiddleware is Handler for gin. Handlers after it run as the
// continuation and read the Source with FromGin.
func GinMiddleware(stream *Stream, factory *Factory) gin.HandlerFunc {
	return func(c *gin.Context) {
		src := factory.ForRequest(c.Request)
		c.Set(GinKey, src)
		c.Request = c.Request.WithContext(WithSource(c.Request.Context(), src))

		if err := run(stream, src, c.Writer, c.Request, c.Next); err != nil {
			appErr := errors.Wrap(err)
			_ = c.Error(appErr)
			c.AbortWithStatusJSON(appErr.HTTPStatus, appErr.ToResponse())
		}
	}
}

func run(stream *Stream, src Source, w http.ResponseWriter, r *http.Request, next func()) error {
	serve, err := stream.Init(r.Context(), src)
	if err != nil {
		return err
	}
	return serve(w, r, next)
}

func writeError(w http.ResponseWriter, err error) {
	appErr := errors.Wrap(err)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(appErr.HTTPStatus)
	_ = json.NewEncoder(w).Encode(appErr.ToResponse())
}
