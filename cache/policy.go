package cache

import "time"

// Policy configures caching behavior for resolved sources.
type Policy struct {
	// DefaultTTL is the TTL to use when none is specified.
	// If zero, caching is disabled by default.
	DefaultTTL time.Duration

	// MaxTTL is the maximum allowed TTL. Override TTLs are clamped to this.
	// If zero, no maximum is enforced.
	MaxTTL time.Duration
}

// DefaultPolicy returns the default caching policy for stream URLs.
// Streaming URLs expire upstream, so the default window is short.
// DefaultTTL: 5 minutes, MaxTTL: 30 minutes.
func DefaultPolicy() Policy {
	return Policy{
		DefaultTTL: 5 * time.Minute,
		MaxTTL:     30 * time.Minute,
	}
}

// CatalogPolicy returns the caching policy for catalog metadata, which is
// far more stable than live stream URLs.
// DefaultTTL: 30 minutes, MaxTTL: 2 hours.
func CatalogPolicy() Policy {
	return Policy{
		DefaultTTL: 30 * time.Minute,
		MaxTTL:     2 * time.Hour,
	}
}

// NoCachePolicy returns a policy that disables caching entirely.
func NoCachePolicy() Policy {
	return Policy{}
}

// ShouldCache returns true if caching is enabled by this policy.
func (p Policy) ShouldCache() bool {
	return p.DefaultTTL > 0
}

// EffectiveTTL returns the TTL to use, applying defaults and clamping.
func (p Policy) EffectiveTTL(override time.Duration) time.Duration {
	// Use default if no override (or negative override)
	ttl := override
	if ttl <= 0 {
		ttl = p.DefaultTTL
	}

	// Clamp to MaxTTL if set
	if p.MaxTTL > 0 && ttl > p.MaxTTL {
		ttl = p.MaxTTL
	}

	return ttl
}
