package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
)

// StreamKey derives a deterministic cache key for a stream resolution request.
// Format: stream:<provider>:<hash>
// where hash is the first 16 hex characters of SHA-256 over the request tuple.
func StreamKey(provider string, animeID, episode int, region string) string {
	canonical := fmt.Sprintf("%s|%d|%d|%s", provider, animeID, episode, region)
	hash := sha256.Sum256([]byte(canonical))
	return fmt.Sprintf("stream:%s:%s", provider, hex.EncodeToString(hash[:8]))
}

// ProbeKey derives the cache key for a health probe verdict.
func ProbeKey(endpoint string) string {
	return "probe:" + endpoint
}
