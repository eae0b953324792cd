package provider

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/weanime/streamgate/health"
)

func backendHost(t *testing.T, healthy bool, payload backendPayload) (*httptest.Server, *atomic.Int32) {
	t.Helper()
	var fetches atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.URL.Path == "/health":
			if healthy {
				w.WriteHeader(http.StatusOK)
			} else {
				w.WriteHeader(http.StatusServiceUnavailable)
			}
		default:
			fetches.Add(1)
			_ = json.NewEncoder(w).Encode(payload)
		}
	}))
	t.Cleanup(srv.Close)
	return srv, &fetches
}

func TestBackend_UsesFirstHealthyHost(t *testing.T) {
	down, downFetches := backendHost(t, false, backendPayload{})
	up, upFetches := backendHost(t, true, backendPayload{
		Sources: []backendSource{{File: "https://cdn.weanime.net/ep1/master.m3u8", Label: "1080p", Kind: "hls"}},
	})

	b := NewBackend(BackendConfig{
		Hosts:  []string{down.URL, up.URL},
		Prober: health.NewProber(health.ProberConfig{Timeout: time.Second}),
		Deps:   testDeps(),
	})

	got, err := b.Fetch(context.Background(), Request{AnimeID: 16498, EpisodeNumber: 1})
	if err != nil {
		t.Fatalf("Fetch() error = %v", err)
	}
	if len(got) != 1 || got[0].Provider != BackendName {
		t.Fatalf("Fetch() = %+v", got)
	}
	if downFetches.Load() != 0 {
		t.Error("unhealthy host received a content request")
	}
	if upFetches.Load() != 1 {
		t.Errorf("healthy host fetches = %d, want 1", upFetches.Load())
	}
}

func TestBackend_AllHostsDown(t *testing.T) {
	down1, f1 := backendHost(t, false, backendPayload{})
	down2, f2 := backendHost(t, false, backendPayload{})

	b := NewBackend(BackendConfig{
		Hosts:  []string{down1.URL, down2.URL},
		Prober: health.NewProber(health.ProberConfig{Timeout: time.Second}),
		Deps:   testDeps(),
	})

	_, err := b.Fetch(context.Background(), Request{AnimeID: 16498, EpisodeNumber: 1})

	var netErr *NetworkError
	if !errors.As(err, &netErr) {
		t.Fatalf("Fetch() = %v, want NetworkError", err)
	}
	if f1.Load() != 0 || f2.Load() != 0 {
		t.Error("content request sent to a host that failed its probe")
	}
}

func TestBackend_SubtitlesSharedAcrossSources(t *testing.T) {
	up, _ := backendHost(t, true, backendPayload{
		Sources: []backendSource{
			{File: "https://cdn.weanime.net/ep1/master.m3u8", Label: "1080p", Kind: "hls"},
			{File: "https://cdn.weanime.net/ep1/video.mp4", Label: "720p", Kind: "mp4"},
		},
		Subtitles: []backendSubtitle{{Lang: "en", URL: "https://cdn.weanime.net/ep1/en.vtt"}},
	})

	b := NewBackend(BackendConfig{
		Hosts:  []string{up.URL},
		Prober: health.NewProber(health.ProberConfig{Timeout: time.Second}),
		Deps:   testDeps(),
	})

	got, err := b.Fetch(context.Background(), Request{AnimeID: 16498, EpisodeNumber: 1})
	if err != nil {
		t.Fatalf("Fetch() error = %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("Fetch() = %d sources, want 2", len(got))
	}
	for _, s := range got {
		if len(s.Subtitles) != 1 || s.Subtitles[0].Language != "en" {
			t.Errorf("source %q subtitles = %+v", s.URL, s.Subtitles)
		}
	}
}

func TestBackend_NotFoundPropagates(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/health" {
			w.WriteHeader(http.StatusOK)
			return
		}
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	b := NewBackend(BackendConfig{
		Hosts:  []string{srv.URL},
		Prober: health.NewProber(health.ProberConfig{Timeout: time.Second}),
		Deps:   testDeps(),
	})

	_, err := b.Fetch(context.Background(), Request{AnimeID: 99999999, EpisodeNumber: 1})
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("Fetch() = %v, want ErrNotFound", err)
	}
}
