// Package server provides the HTTP server for eventstream services: a Gin
// engine behind a ServeMux, served over HTTP/1.1 and cleartext HTTP/2.
//
// Open event streams end when shutdown begins; their request contexts derive
// from a base context the server cancels.
//
// # Middleware
//
// ApplyMiddleware installs, outermost first (server/middleware):
//
//   - Recovery: panic recovery with a JSON error body
//   - RequestID: X-Request-ID generation and propagation
//   - Metrics: request count, duration and in-flight gauge (optional)
//   - RequestLogger: one structured line per request
//   - BodySizeLimit: request body cap
//
// CORS is not global. Apply middleware.GinCORS to API route groups.
//
// # Endpoints
//
// RegisterDefaultEndpoints adds /health, /ready, /live and /info
// (server/endpoint). endpoint.Clients reports the client registry.
package server
