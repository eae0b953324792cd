package provider

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/samber/lo"
)

// JikanName is the provider identifier for the Jikan community API.
const JikanName = "jikan"

// DefaultJikanBaseURL is the public Jikan API root.
const DefaultJikanBaseURL = "https://api.jikan.moe"

// JikanConfig configures the community API adapter.
type JikanConfig struct {
	// BaseURL overrides the API root, mainly for tests.
	// Default: DefaultJikanBaseURL
	BaseURL string

	// Client is the HTTP client.
	// Default: a tuned shared client.
	Client *http.Client

	Deps
}

// Jikan adapts the Jikan community API. It is unauthenticated and tolerates
// very little traffic, so its admission policy should carry a strict
// MinInterval. Most of its catalog links are watch pages rather than raw
// streams, so an empty validated result is a normal outcome.
type Jikan struct {
	base
	baseURL string
	client  *http.Client
}

// NewJikan creates the community API adapter.
func NewJikan(cfg JikanConfig) *Jikan {
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = DefaultJikanBaseURL
	}
	client := cfg.Client
	if client == nil {
		client = NewHTTPClient(0)
	}

	return &Jikan{
		base:    newBase(JikanName, KindCommunity, nil, cfg.Deps),
		baseURL: baseURL,
		client:  client,
	}
}

// Fetch resolves stream sources through the shared pipeline.
func (j *Jikan) Fetch(ctx context.Context, req Request) ([]StreamSource, error) {
	return j.fetch(ctx, req, j.call)
}

// jikan v4 wire format
type jikanPayload struct {
	Data []jikanEntry `json:"data"`
}

type jikanEntry struct {
	Name string `json:"name"`
	URL  string `json:"url"`
}

func (j *Jikan) call(ctx context.Context, req Request) ([]StreamSource, error) {
	url := fmt.Sprintf("%s/v4/anime/%d/streaming", j.baseURL, req.AnimeID)
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, &NetworkError{Err: err}
	}

	resp, err := j.client.Do(httpReq)
	if err != nil {
		return nil, &NetworkError{Err: err}
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, statusError(JikanName, resp)
	}

	var payload jikanPayload
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, &UpstreamError{Provider: JikanName, Status: resp.StatusCode}
	}

	return lo.Map(payload.Data, func(e jikanEntry, _ int) StreamSource {
		return StreamSource{
			URL:      e.URL,
			Quality:  "auto",
			Language: e.Name,
		}
	}), nil
}
