package provider

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/weanime/streamgate/cache"
	"github.com/weanime/streamgate/resilience"
)

func TestJikan_WatchPagesFiltered(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v4/anime/16498/streaming" {
			t.Errorf("path = %q", r.URL.Path)
		}
		_ = json.NewEncoder(w).Encode(jikanPayload{
			Data: []jikanEntry{
				{Name: "Crunchyroll", URL: "https://crunchyroll.com/watch/GRDV0019R"},
				{Name: "Mirror", URL: "https://mirror.weanime.net/ep1/master.m3u8"},
			},
		})
	}))
	defer srv.Close()

	j := NewJikan(JikanConfig{BaseURL: srv.URL, Client: srv.Client(), Deps: testDeps()})

	got, err := j.Fetch(context.Background(), Request{AnimeID: 16498, EpisodeNumber: 1})
	if err != nil {
		t.Fatalf("Fetch() error = %v", err)
	}
	// Only the direct stream survives validation; the watch page is dropped.
	if len(got) != 1 {
		t.Fatalf("Fetch() = %d sources, want 1", len(got))
	}
	if got[0].Provider != JikanName || got[0].Type != StreamHLS {
		t.Errorf("source = %+v", got[0])
	}
}

func TestJikan_RateLimitRetriesThenFails(t *testing.T) {
	calls := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.Header().Set("Retry-After", "1")
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer srv.Close()

	deps := Deps{
		Admission:    resilience.NewAdmissionController(resilience.ProviderPolicy{MaxFailures: 5, ResetTimeout: time.Minute}),
		Retry:        resilience.NewRetry(resilience.RetryConfig{MaxAttempts: 2, BaseDelay: time.Millisecond, RetryIf: IsRetryable}),
		Cache:        cache.New[[]StreamSource](),
		Policy:       cache.CatalogPolicy(),
		FetchTimeout: time.Second,
	}

	j := NewJikan(JikanConfig{BaseURL: srv.URL, Client: srv.Client(), Deps: deps})

	_, err := j.Fetch(context.Background(), Request{AnimeID: 16498, EpisodeNumber: 1})

	var rl *RateLimitError
	if !errors.As(err, &rl) {
		t.Fatalf("Fetch() = %v, want RateLimitError", err)
	}
	if calls != 2 {
		t.Errorf("upstream calls = %d, want 2 (rate limit is retryable)", calls)
	}
}

func TestJikan_KindAndDefaults(t *testing.T) {
	j := NewJikan(JikanConfig{Deps: testDeps()})

	if j.Kind() != KindCommunity {
		t.Errorf("Kind() = %q, want community", j.Kind())
	}
	if j.Name() != JikanName {
		t.Errorf("Name() = %q, want jikan", j.Name())
	}
	if j.baseURL != DefaultJikanBaseURL {
		t.Errorf("baseURL = %q, want default", j.baseURL)
	}
	if len(j.Regions()) != 0 {
		t.Errorf("Regions() = %v, want empty (all regions)", j.Regions())
	}
}
