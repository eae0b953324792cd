// Package config loads and validates the streamgate configuration: the
// provider chain with its admission policies, probe and retry tuning, and
// telemetry settings. Credential values may reference environment variables
// with ${VAR} syntax; missing variables fail the load rather than leaving
// an empty credential in place.
package config
