// Package component defines the lifecycle contract shared by the redis
// handle, the client registry and the HTTP server, plus an ordered
// registry that starts them in dependency order and stops them in reverse.
package component
