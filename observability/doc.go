// Package observability wires OpenTelemetry tracing and metrics over
// OTLP/HTTP.
//
// The Component installs the global tracer and meter providers when
// enabled. Code elsewhere takes meters and tracers from the globals, so it
// works unchanged, recording nothing, when observability is off.
//
//	observability:
//	  enabled: true
//	  endpoint: "otel-collector:4318"
//	  sample_rate: 0.25
package observability
