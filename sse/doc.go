// Package sse turns application-level "send an event" calls into a framed
// text/event-stream response, one long-lived response per connected client.
//
// # Architecture
//
//   - Source: what application code sends on. A ConnSource is bound to one
//     HTTP connection; a NopSource stands in for methods that cannot stream.
//   - Stream: negotiates the request, writes headers, runs the heartbeat and
//     frames every payload the Source publishes until the client goes away.
//   - Factory: builds the right Source for each request.
//   - Handler / GinMiddleware: plug the above into net/http or gin.
//
// # Usage
//
//	stream := sse.NewStream(cfg, log)
//	factory := sse.NewFactory(registry, sse.UUIDGenerator)
//	router.GET("/events", sse.GinMiddleware(stream, factory), func(c *gin.Context) {
//	    src := sse.FromGin(c)
//	    src.Send(map[string]string{"msg": "hi"}, sse.WithEvent("greeting"))
//	})
//
// Wire format of one message, lines in this order, each optional except
// data:
//
//	: <comment>
//	id: <payload id>
//	retry: <ms>
//	event: <name>
//	sse_id: <connection id>
//	data: <line>
//	<blank line>
package sse
