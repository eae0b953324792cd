package provider

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/samber/lo"

	"github.com/weanime/streamgate/health"
)

// BackendName is the provider identifier for the backend proxy.
const BackendName = "backend"

// BackendConfig configures the backend proxy adapter.
type BackendConfig struct {
	// Hosts lists the candidate backend hosts in preference order
	// (primary first, then fallbacks).
	Hosts []string

	// Regions this provider serves. Empty means all.
	Regions []string

	// Prober picks the first live host before the real request goes out.
	Prober *health.Prober

	// Client is the HTTP client.
	// Default: a tuned shared client.
	Client *http.Client

	Deps
}

// Backend adapts the backend proxy service, which fronts several
// interchangeable hosts. Each fetch goes to the first host whose health
// probe passes; probe verdicts are cached so rapid resolutions do not
// re-probe.
type Backend struct {
	base
	hosts  []string
	prober *health.Prober
	client *http.Client
}

// NewBackend creates the backend proxy adapter.
func NewBackend(cfg BackendConfig) *Backend {
	client := cfg.Client
	if client == nil {
		client = NewHTTPClient(0)
	}

	return &Backend{
		base:   newBase(BackendName, KindLicensed, cfg.Regions, cfg.Deps),
		hosts:  cfg.Hosts,
		prober: cfg.Prober,
		client: client,
	}
}

// Fetch resolves stream sources through the shared pipeline.
func (b *Backend) Fetch(ctx context.Context, req Request) ([]StreamSource, error) {
	return b.fetch(ctx, req, b.call)
}

// backend wire format
type backendPayload struct {
	Sources   []backendSource   `json:"sources"`
	Subtitles []backendSubtitle `json:"subtitles"`
}

type backendSource struct {
	File  string `json:"file"`
	Label string `json:"label"`
	Kind  string `json:"kind"`
}

type backendSubtitle struct {
	Lang string `json:"lang"`
	URL  string `json:"url"`
}

func (b *Backend) call(ctx context.Context, req Request) ([]StreamSource, error) {
	host, ok := b.prober.FirstHealthy(ctx, b.hosts)
	if !ok {
		return nil, &NetworkError{Err: errors.New("no healthy backend host")}
	}

	url := fmt.Sprintf("%s/api/anime/%d/episodes/%d/sources", host, req.AnimeID, req.EpisodeNumber)
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, &NetworkError{Err: err}
	}

	resp, err := b.client.Do(httpReq)
	if err != nil {
		// The chosen host failed mid-request; drop its cached verdict so
		// the next attempt probes again instead of re-picking a dead host.
		b.prober.Invalidate(host)
		return nil, &NetworkError{Err: err}
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, statusError(BackendName, resp)
	}

	var payload backendPayload
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, &UpstreamError{Provider: BackendName, Status: resp.StatusCode}
	}

	subtitles := lo.Map(payload.Subtitles, func(s backendSubtitle, _ int) Subtitle {
		return Subtitle{Language: s.Lang, URL: s.URL}
	})

	return lo.Map(payload.Sources, func(s backendSource, _ int) StreamSource {
		return StreamSource{
			URL:       s.File,
			Quality:   s.Label,
			Type:      StreamType(s.Kind),
			Subtitles: subtitles,
		}
	}), nil
}
