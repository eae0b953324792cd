package provider

import (
	"net/url"
	"strings"

	"github.com/samber/lo"
)

// StreamType is the container format of a stream source.
type StreamType string

const (
	StreamHLS  StreamType = "hls"
	StreamDASH StreamType = "dash"
	StreamMP4  StreamType = "mp4"
)

// Subtitle is a subtitle track attached to a stream source.
type Subtitle struct {
	Language string `json:"language"`
	URL      string `json:"url"`
}

// StreamSource is the normalized result unit shared by all adapters.
// Authentic is a hard invariant: the engine never emits a source pointing
// at placeholder or demo content.
type StreamSource struct {
	URL       string     `json:"url"`
	Quality   string     `json:"quality"`
	Type      StreamType `json:"stream_type"`
	Language  string     `json:"language,omitempty"`
	Subtitles []Subtitle `json:"subtitles,omitempty"`
	Provider  string     `json:"provider"`
	Authentic bool       `json:"is_authentic"`
}

// Request identifies the episode to resolve.
type Request struct {
	AnimeID       int    `json:"anime_id"`
	EpisodeNumber int    `json:"episode_number"`
	Region        string `json:"region,omitempty"`
}

// Validate checks the request for malformed fields.
func (r Request) Validate() error {
	if r.AnimeID <= 0 {
		return &ValidationError{Reason: "anime_id must be positive"}
	}
	if r.EpisodeNumber <= 0 {
		return &ValidationError{Reason: "episode_number must be positive"}
	}
	return nil
}

// mockDomains is the denylist of hosts known to serve placeholder or demo
// content. A URL under any of these must never surface as a StreamSource.
var mockDomains = []string{
	"archive.org",
	"example.com",
	"sample-videos.com",
	"test-streams.mux.dev",
	"commondatastorage.googleapis.com",
	"storage.googleapis.com",
	"demo.unified-streaming.com",
	"bitdash-a.akamaihd.net",
}

// mockPathMarkers flags placeholder content hosted on otherwise legitimate
// domains.
var mockPathMarkers = []string{
	"/placeholder",
	"/sample/",
	"/demo/",
	"/mock/",
}

// StreamTypeOf infers the stream type from a URL's path extension.
func StreamTypeOf(raw string) (StreamType, bool) {
	u, err := url.Parse(raw)
	if err != nil {
		return "", false
	}

	path := strings.ToLower(u.Path)
	switch {
	case strings.HasSuffix(path, ".m3u8"):
		return StreamHLS, true
	case strings.HasSuffix(path, ".mpd"):
		return StreamDASH, true
	case strings.HasSuffix(path, ".mp4"):
		return StreamMP4, true
	default:
		return "", false
	}
}

// AuthenticURL reports whether a URL is acceptable as a stream source:
// https, an approved streaming format, and not on the mock denylist.
func AuthenticURL(raw string) bool {
	u, err := url.Parse(raw)
	if err != nil {
		return false
	}
	if u.Scheme != "https" {
		return false
	}

	host := strings.ToLower(u.Hostname())
	for _, domain := range mockDomains {
		if host == domain || strings.HasSuffix(host, "."+domain) {
			return false
		}
	}

	path := strings.ToLower(u.Path)
	for _, marker := range mockPathMarkers {
		if strings.Contains(path, marker) {
			return false
		}
	}

	_, ok := StreamTypeOf(raw)
	return ok
}

// Sanitize filters a normalized source list down to authentic entries and
// stamps provider attribution. Sources with denylisted or unapproved URLs
// are dropped; an all-mock response collapses to an empty result.
func Sanitize(providerName string, sources []StreamSource) []StreamSource {
	valid := lo.Filter(sources, func(s StreamSource, _ int) bool {
		return AuthenticURL(s.URL)
	})

	return lo.Map(valid, func(s StreamSource, _ int) StreamSource {
		if s.Type == "" {
			s.Type, _ = StreamTypeOf(s.URL)
		}
		s.Provider = providerName
		s.Authentic = true
		s.Subtitles = lo.Filter(s.Subtitles, func(sub Subtitle, _ int) bool {
			return sub.URL != ""
		})
		return s
	})
}
