// Package errors provides the typed error conditions raised while setting up
// and serving event streams. Every error carries an HTTP status and a stable
// machine-readable code so hosts can surface failures without inspecting
// messages.
package errors
