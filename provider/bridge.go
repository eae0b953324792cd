package provider

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/samber/lo"

	"github.com/weanime/streamgate/credentials"
)

// BridgeName is the provider identifier for the licensed partner bridge.
const BridgeName = "crunchyroll"

// BridgeConfig configures the licensed-partner bridge adapter.
type BridgeConfig struct {
	// BaseURL is the bridge service root, e.g. "https://bridge.internal:8081".
	BaseURL string

	// Regions this provider is licensed for. Empty means all.
	Regions []string

	// Credentials supplies the bearer token injected on every call.
	Credentials *credentials.Store

	// Client is the HTTP client. If nil, a tuned client wrapped with
	// credential injection is built.
	Client *http.Client

	Deps
}

// Bridge adapts the licensed partner bridge service. The bridge fronts the
// partner's licensed catalog; it is the highest-priority source.
type Bridge struct {
	base
	baseURL string
	creds   *credentials.Store
	client  *http.Client
}

// NewBridge creates the bridge adapter.
func NewBridge(cfg BridgeConfig) *Bridge {
	client := cfg.Client
	if client == nil {
		client = NewHTTPClient(0)
		client.Transport = credentials.NewTransport(BridgeName, cfg.Credentials, client.Transport)
	}

	return &Bridge{
		base:    newBase(BridgeName, KindLicensed, cfg.Regions, cfg.Deps),
		baseURL: cfg.BaseURL,
		creds:   cfg.Credentials,
		client:  client,
	}
}

// Fetch resolves stream sources through the shared pipeline.
func (b *Bridge) Fetch(ctx context.Context, req Request) ([]StreamSource, error) {
	return b.fetch(ctx, req, b.call)
}

// bridge wire format
type bridgePayload struct {
	Streams []bridgeStream `json:"streams"`
}

type bridgeStream struct {
	URL         string           `json:"url"`
	Quality     string           `json:"quality"`
	AudioLocale string           `json:"audio_locale"`
	Subtitles   []bridgeSubtitle `json:"subtitles"`
}

type bridgeSubtitle struct {
	Locale string `json:"locale"`
	URL    string `json:"url"`
}

func (b *Bridge) call(ctx context.Context, req Request) ([]StreamSource, error) {
	// Pre-flight: a bearer token known to be expired cannot yield anything
	// but a 401; fail without network I/O.
	if cred, ok := b.creds.Get(BridgeName); ok && credentials.BearerExpired(cred.Token) {
		return nil, &UpstreamError{Provider: BridgeName, Status: http.StatusUnauthorized}
	}

	url := fmt.Sprintf("%s/v1/anime/%d/episodes/%d/streams", b.baseURL, req.AnimeID, req.EpisodeNumber)
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, &NetworkError{Err: err}
	}
	if req.Region != "" {
		httpReq.Header.Set("X-Region", req.Region)
	}

	resp, err := b.client.Do(httpReq)
	if err != nil {
		return nil, &NetworkError{Err: err}
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, statusError(BridgeName, resp)
	}

	var payload bridgePayload
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, &UpstreamError{Provider: BridgeName, Status: resp.StatusCode}
	}

	return lo.Map(payload.Streams, func(s bridgeStream, _ int) StreamSource {
		return StreamSource{
			URL:      s.URL,
			Quality:  s.Quality,
			Language: s.AudioLocale,
			Subtitles: lo.Map(s.Subtitles, func(sub bridgeSubtitle, _ int) Subtitle {
				return Subtitle{Language: sub.Locale, URL: sub.URL}
			}),
		}
	}), nil
}
