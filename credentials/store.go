// Package credentials holds opaque provider credentials supplied once at
// startup. Credentials are never logged; String implementations redact.
package credentials

import (
	"errors"
	"sync"
)

// ErrNoCredential is returned when a provider has no stored credential.
var ErrNoCredential = errors.New("credentials: no credential for provider")

// Credential is an opaque secret for one provider.
type Credential struct {
	// Token is the secret value. Treated as opaque; it may or may not be a
	// JWT.
	Token string

	// Header is the request header carrying the token.
	// Default: "Authorization"
	Header string

	// Scheme is the prefix before the token in the header, e.g. "Bearer".
	// Empty means the raw token is sent.
	Scheme string
}

// String redacts the token so credentials never leak through logging or
// formatting.
func (c Credential) String() string {
	return "[REDACTED]"
}

// headerValue renders the header value for outbound requests.
func (c Credential) headerValue() string {
	if c.Scheme == "" {
		return c.Token
	}
	return c.Scheme + " " + c.Token
}

// Store maps provider names to credentials. Populated at startup, read-only
// afterwards.
type Store struct {
	mu    sync.RWMutex
	creds map[string]Credential
}

// NewStore creates an empty credential store.
func NewStore() *Store {
	return &Store{creds: make(map[string]Credential)}
}

// Set stores the credential for a provider, applying header defaults.
func (s *Store) Set(provider string, cred Credential) {
	if cred.Header == "" {
		cred.Header = "Authorization"
	}

	s.mu.Lock()
	s.creds[provider] = cred
	s.mu.Unlock()
}

// Get returns the credential for a provider.
func (s *Store) Get(provider string) (Credential, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	cred, ok := s.creds[provider]
	return cred, ok
}
