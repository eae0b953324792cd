// Package observe provides telemetry for the stream resolution engine:
// OpenTelemetry tracing and metrics plus a minimal structured JSON logger.
//
// An Observer is built once at startup from an explicit Config and injected
// into the resolver; there is no hidden global state beyond the otel
// provider registration.
package observe
