package provider

import (
	"net/http"
	"time"
)

// NewHTTPClient returns an HTTP client tuned for concurrent provider
// traffic: larger per-host connection pools and bounded header waits, shared
// by adapters so connection reuse works across resolution calls.
func NewHTTPClient(timeout time.Duration) *http.Client {
	if timeout <= 0 {
		timeout = 20 * time.Second
	}

	t := http.DefaultTransport.(*http.Transport).Clone()
	t.MaxIdleConns = 100
	t.MaxIdleConnsPerHost = 100
	t.MaxConnsPerHost = 200
	t.IdleConnTimeout = 30 * time.Second
	t.ResponseHeaderTimeout = 15 * time.Second

	return &http.Client{
		Timeout:   timeout,
		Transport: t,
	}
}
