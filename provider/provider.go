package provider

import (
	"context"
	"errors"
	"time"

	"github.com/weanime/streamgate/cache"
	"github.com/weanime/streamgate/resilience"
)

// Kind classifies a provider for ordering purposes.
type Kind string

const (
	// KindLicensed providers carry authenticated, licensed content and are
	// tried first.
	KindLicensed Kind = "licensed"
	// KindCommunity providers are public fallbacks with stricter rate
	// tolerance.
	KindCommunity Kind = "community"
)

// Adapter is the uniform capability every upstream implements.
//
// Contract:
// - Concurrency: safe for concurrent use.
// - Fetch returns only validated, authentic sources; an upstream response
//   full of placeholder content yields an empty slice, not an error.
type Adapter interface {
	// Name is the stable provider identifier used for admission state,
	// cache keys, and diagnostics.
	Name() string

	// Kind classifies the provider.
	Kind() Kind

	// Regions lists the regions this provider serves. Empty means all.
	Regions() []string

	// Fetch resolves stream sources for the request.
	Fetch(ctx context.Context, req Request) ([]StreamSource, error)
}

// Deps are the shared collaborators injected into every adapter. All are
// process-wide singletons owned by the composition root.
type Deps struct {
	Admission *resilience.AdmissionController
	Retry     *resilience.Retry
	Cache     *cache.TTLCache[[]StreamSource]

	// Policy governs the TTL of cached results for this adapter.
	Policy cache.Policy

	// FetchTimeout bounds a single upstream call.
	// Default: 15 seconds
	FetchTimeout time.Duration
}

func (d Deps) withDefaults() Deps {
	if d.FetchTimeout <= 0 {
		d.FetchTimeout = 15 * time.Second
	}
	return d
}

// base carries the shared fetch pipeline. Adapters embed it and supply the
// provider-specific network call.
type base struct {
	name    string
	kind    Kind
	regions []string
	deps    Deps
}

func newBase(name string, kind Kind, regions []string, deps Deps) base {
	return base{name: name, kind: kind, regions: regions, deps: deps.withDefaults()}
}

func (b *base) Name() string      { return b.name }
func (b *base) Kind() Kind        { return b.kind }
func (b *base) Regions() []string { return b.regions }

// fetch runs the shared pipeline around the adapter's network call:
// cache -> admission -> retry(timeout(call)) -> record -> sanitize -> cache.
func (b *base) fetch(ctx context.Context, req Request, call func(context.Context, Request) ([]StreamSource, error)) ([]StreamSource, error) {
	key := cache.StreamKey(b.name, req.AnimeID, req.EpisodeNumber, req.Region)
	if cached, ok := b.deps.Cache.Get(key); ok {
		return cached, nil
	}

	// The single gate before network I/O. Fails fast when the circuit is
	// open without consuming a retry attempt.
	if err := b.deps.Admission.WaitForSlot(ctx, b.name); err != nil {
		return nil, err
	}

	var sources []StreamSource
	err := b.deps.Retry.Execute(ctx, func(ctx context.Context) error {
		return resilience.ExecuteWithTimeout(ctx, b.deps.FetchTimeout, func(ctx context.Context) error {
			got, callErr := call(ctx, req)
			if callErr != nil {
				return callErr
			}
			sources = got
			return nil
		})
	})

	if err != nil {
		// Caller cancellation is not a provider verdict; only a definitive
		// failure or timeout counts against the circuit.
		if !errors.Is(err, context.Canceled) {
			b.deps.Admission.RecordFailure(b.name)
		}
		return nil, err
	}

	b.deps.Admission.RecordSuccess(b.name)

	valid := Sanitize(b.name, sources)
	if len(valid) > 0 {
		_ = b.deps.Cache.Set(key, valid, b.deps.Policy.EffectiveTTL(0))
	}
	return valid, nil
}
