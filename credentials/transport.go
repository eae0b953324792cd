package credentials

import "net/http"

// Transport is an http.RoundTripper that injects a provider's credential
// header into every outbound request.
//
// Usage:
//
//	client := &http.Client{
//	    Transport: credentials.NewTransport("crunchyroll", store, base),
//	}
type Transport struct {
	provider string
	store    *Store
	base     http.RoundTripper
}

// NewTransport wraps base with credential injection for the named provider.
// A nil base uses http.DefaultTransport.
func NewTransport(provider string, store *Store, base http.RoundTripper) *Transport {
	if base == nil {
		base = http.DefaultTransport
	}
	return &Transport{provider: provider, store: store, base: base}
}

// RoundTrip injects the credential header, if one is stored, and delegates
// to the base transport. The incoming request is cloned, never mutated.
func (t *Transport) RoundTrip(req *http.Request) (*http.Response, error) {
	cred, ok := t.store.Get(t.provider)
	if !ok {
		return t.base.RoundTrip(req)
	}

	clone := req.Clone(req.Context())
	clone.Header.Set(cred.Header, cred.headerValue())
	return t.base.RoundTrip(clone)
}
