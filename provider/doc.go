// Package provider adapts upstream anime content sources into a normalized
// stream source model.
//
// Each adapter wraps one upstream (licensed bridge, backend proxy, community
// API) behind a uniform Fetch capability. Every fetch runs the same
// pipeline: admission (rate spacing + circuit breaker), retry with
// classification, timeout, response normalization, authenticity validation
// against the mock-content denylist, and TTL caching of validated results.
//
// New providers are added by implementing Adapter with the shared pipeline;
// HTTP paths, payload shapes, and auth are adapter internals.
package provider
