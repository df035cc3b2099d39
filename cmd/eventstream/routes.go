package main

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/kbukum/eventstream/clients"
	"github.com/kbukum/eventstream/errors"
	"github.com/kbukum/eventstream/logger"
	"github.com/kbukum/eventstream/server"
	"github.com/kbukum/eventstream/server/endpoint"
	"github.com/kbukum/eventstream/server/middleware"
	"github.com/kbukum/eventstream/sse"
)

// publishRequest is the body of the publish routes.
type publishRequest struct {
	Data    any    `json:"data" binding:"required"`
	Event   string `json:"event"`
	Comment string `json:"comment"`
	Retry   int    `json:"retry" binding:"gte=0"`
}

func (p publishRequest) options() []sse.SendOption {
	var opts []sse.SendOption
	if p.Event != "" {
		opts = append(opts, sse.WithEvent(p.Event))
	}
	if p.Comment != "" {
		opts = append(opts, sse.WithComment(p.Comment))
	}
	if p.Retry > 0 {
		opts = append(opts, sse.WithRetry(p.Retry))
	}
	return opts
}

// routes are registered before components start; the stream and the
// registry are looked up per request.
type routes struct {
	events   *sse.Component
	registry func() clients.Registry
	hub      *hub
	tick     time.Duration
	log      *logger.Logger
}

func (rt *routes) register(engine *gin.Engine, cors *middleware.CORSConfig) {
	events := rt.stream
	engine.GET("/events", events, rt.open)
	engine.POST("/events", events, rt.open)

	api := engine.Group("/api", middleware.GinCORS(cors))
	api.OPTIONS("/*path", func(c *gin.Context) { c.Status(http.StatusNoContent) })
	api.GET("/clients", endpoint.Clients(rt.registry))
	api.POST("/clients/:id/events", rt.publish)
	api.DELETE("/clients/:id", rt.end)
	api.POST("/events", rt.broadcast)
}

func (rt *routes) stream(c *gin.Context) {
	stream, factory := rt.events.Stream(), rt.events.Factory()
	if stream == nil {
		server.RespondWithError(c, errors.StoreUnavailable(nil))
		return
	}
	sse.GinMiddleware(stream, factory)(c)
}

// open runs once the stream is established. It must not write to the
// response.
func (rt *routes) open(c *gin.Context) {
	ctx := c.Request.Context()
	src := sse.FromGin(c)
	rt.hub.attach(ctx, src)

	if _, err := src.Send(map[string]any{"id": src.ID()}, sse.WithEvent("connected"), sse.WithRetry(3000)); err != nil {
		rt.log.Warn("Failed to send connected event", logger.ErrorFields("connected", err))
	}
	if rt.tick > 0 {
		sse.Dispatch(ctx, ticker, src, rt.tick)
	}
}

func (rt *routes) publish(c *gin.Context) {
	var req publishRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		server.RespondWithError(c, errors.Validation(err.Error()))
		return
	}
	src, ok := rt.hub.get(c.Param("id"))
	if !ok {
		server.RespondWithError(c, errors.NotFound("client", c.Param("id")))
		return
	}
	delivered, err := src.Send(req.Data, req.options()...)
	if err != nil {
		server.RespondWithError(c, err)
		return
	}
	server.RespondAccepted(c, gin.H{"delivered": delivered})
}

func (rt *routes) broadcast(c *gin.Context) {
	var req publishRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		server.RespondWithError(c, errors.Validation(err.Error()))
		return
	}
	delivered, err := rt.hub.broadcast(req.Data, req.options()...)
	if err != nil {
		server.RespondWithError(c, err)
		return
	}
	server.RespondAccepted(c, gin.H{"delivered": delivered})
}

func (rt *routes) end(c *gin.Context) {
	src, ok := rt.hub.get(c.Param("id"))
	if !ok {
		server.RespondWithError(c, errors.NotFound("client", c.Param("id")))
		return
	}
	src.End()
	server.RespondAccepted(c, gin.H{"ended": src.ID()})
}
