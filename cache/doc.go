// Package cache provides in-memory TTL caching for resolved stream sources.
//
// It provides a generic TTL store with lazy expiry and bounded sweeping,
// SHA-256-based key derivation for stream requests, and TTL policies with
// per-provider clamping.
package cache
