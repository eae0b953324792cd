package health

import (
	"context"
	"net/http"
	"strings"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/weanime/streamgate/cache"
)

// ProberConfig configures the endpoint prober.
type ProberConfig struct {
	// Timeout bounds a single probe request.
	// Default: 5 seconds
	Timeout time.Duration

	// TTL is how long a verdict (healthy or not) is cached per endpoint.
	// Default: 30 seconds
	TTL time.Duration

	// LivenessPath is appended to the endpoint for the probe request.
	// Default: "/health"
	LivenessPath string

	// Client is the HTTP client used for probes.
	// Default: http.DefaultClient
	Client *http.Client
}

// Prober checks whether networked endpoints are reachable.
//
// Contract:
// - Concurrency: safe for concurrent use; concurrent probes of the same
//   endpoint are collapsed via singleflight.
// - Verdicts: cached for the configured TTL, healthy and unhealthy alike.
type Prober struct {
	config   ProberConfig
	verdicts *cache.TTLCache[bool]
	sfGroup  singleflight.Group // prevents thundering herd
}

// NewProber creates a new endpoint prober.
func NewProber(config ProberConfig) *Prober {
	// Apply defaults
	if config.Timeout <= 0 {
		config.Timeout = 5 * time.Second
	}
	if config.TTL <= 0 {
		config.TTL = 30 * time.Second
	}
	if config.LivenessPath == "" {
		config.LivenessPath = "/health"
	}
	if config.Client == nil {
		config.Client = http.DefaultClient
	}

	return &Prober{
		config:   config,
		verdicts: cache.New[bool](),
	}
}

// Healthy reports whether the endpoint answers its liveness path with a 2xx
// within the probe timeout. Verdicts are served from cache inside the TTL
// window.
func (p *Prober) Healthy(ctx context.Context, endpoint string) bool {
	key := cache.ProbeKey(endpoint)
	if verdict, ok := p.verdicts.Get(key); ok {
		return verdict
	}

	v, _, _ := p.sfGroup.Do(endpoint, func() (any, error) {
		// The verdict is shared state that outlives this caller, so the
		// probe must not inherit the caller's cancellation. The probe
		// timeout still bounds it.
		verdict := p.probe(context.WithoutCancel(ctx), endpoint)
		_ = p.verdicts.Set(key, verdict, p.config.TTL)
		return verdict, nil
	})

	verdict, ok := v.(bool)
	return ok && verdict
}

// FirstHealthy returns the first endpoint in order that probes healthy.
func (p *Prober) FirstHealthy(ctx context.Context, endpoints []string) (string, bool) {
	for _, ep := range endpoints {
		if ctx.Err() != nil {
			return "", false
		}
		if p.Healthy(ctx, ep) {
			return ep, true
		}
	}
	return "", false
}

// Invalidate drops the cached verdict for an endpoint, forcing the next
// Healthy call to probe again.
func (p *Prober) Invalidate(endpoint string) {
	p.verdicts.Delete(cache.ProbeKey(endpoint))
}

func (p *Prober) probe(ctx context.Context, endpoint string) bool {
	ctx, cancel := context.WithTimeout(ctx, p.config.Timeout)
	defer cancel()

	url := strings.TrimRight(endpoint, "/") + p.config.LivenessPath
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return false
	}

	resp, err := p.config.Client.Do(req)
	if err != nil {
		return false
	}
	defer func() { _ = resp.Body.Close() }()

	return resp.StatusCode >= 200 && resp.StatusCode < 300
}
