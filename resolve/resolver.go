package resolve

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/weanime/streamgate/cache"
	"github.com/weanime/streamgate/observe"
	"github.com/weanime/streamgate/provider"
	"github.com/weanime/streamgate/resilience"
)

// errNoSources marks a provider that answered cleanly but produced nothing
// that survived validation.
var errNoSources = errors.New("resolve: provider returned no authentic sources")

// Config assembles a Resolver. Adapters are consulted in slice order.
type Config struct {
	Adapters  []provider.Adapter
	Admission *resilience.AdmissionController
	Cache     *cache.TTLCache[[]provider.StreamSource]
	Observer  observe.Observer
}

// Resolver walks the provider chain for each request. Attempts within one
// request are strictly sequential; concurrent requests are independent.
type Resolver struct {
	adapters  []provider.Adapter
	admission *resilience.AdmissionController
	cache     *cache.TTLCache[[]provider.StreamSource]

	obs     observe.Observer
	logger  observe.Logger
	metrics *observe.ResolutionMetrics

	stats *statsTable
}

// New builds a Resolver from the config.
func New(cfg Config) (*Resolver, error) {
	if len(cfg.Adapters) == 0 {
		return nil, errors.New("resolve: at least one adapter is required")
	}
	if cfg.Admission == nil {
		return nil, errors.New("resolve: admission controller is required")
	}
	if cfg.Cache == nil {
		return nil, errors.New("resolve: cache is required")
	}
	if cfg.Observer == nil {
		cfg.Observer = observe.NopObserver()
	}

	metrics, err := observe.NewResolutionMetrics(cfg.Observer.Meter())
	if err != nil {
		return nil, fmt.Errorf("resolve: create metrics: %w", err)
	}

	return &Resolver{
		adapters:  cfg.Adapters,
		admission: cfg.Admission,
		cache:     cfg.Cache,
		obs:       cfg.Observer,
		logger:    cfg.Observer.Logger(),
		metrics:   metrics,
		stats:     newStatsTable(),
	}, nil
}

// Resolve finds authentic stream sources for the request, trying providers
// in priority order. A cached result from any region-eligible provider
// short-circuits the chain without touching the network.
func (r *Resolver) Resolve(ctx context.Context, req provider.Request) Result {
	start := time.Now()

	ctx, span := r.obs.Tracer().Start(ctx, "resolve.Resolve")
	defer span.End()
	span.SetAttributes(
		attribute.Int("anime_id", req.AnimeID),
		attribute.Int("episode", req.EpisodeNumber),
		attribute.String("region", req.Region),
	)

	if err := req.Validate(); err != nil {
		span.SetStatus(codes.Error, "invalid request")
		span.RecordError(err)
		r.metrics.RecordResolution(ctx, "", time.Since(start), true)
		r.logger.Warn(ctx, "rejected invalid resolve request",
			observe.Field{Key: "error", Value: err.Error()},
		)
		return failure(ReasonInvalidRequest, nil)
	}

	eligible := r.eligible(req.Region)

	// Cached entries are served even when the owning provider's circuit is
	// open; the cache check never performs I/O.
	for _, a := range eligible {
		key := cache.StreamKey(a.Name(), req.AnimeID, req.EpisodeNumber, req.Region)
		if sources, ok := r.cache.Get(key); ok && len(sources) > 0 {
			span.SetAttributes(
				attribute.String("provider_used", a.Name()),
				attribute.Bool("cache_hit", true),
			)
			r.metrics.RecordResolution(ctx, a.Name(), time.Since(start), false)
			r.stats.record(req.AnimeID, req.EpisodeNumber, a.Name(), true)
			return success(sources, a.Name(), time.Since(start), nil)
		}
	}

	candidates := make([]provider.Adapter, 0, len(eligible))
	var tried []Attempt
	for _, a := range eligible {
		if r.admission.Available(a.Name()) {
			candidates = append(candidates, a)
			continue
		}
		tried = append(tried, attempt(a.Name(), OutcomeCircuitSkipped, resilience.ErrCircuitOpen))
		r.metrics.RecordAttempt(ctx, a.Name(), string(OutcomeCircuitSkipped))
	}

	if len(candidates) == 0 {
		span.SetStatus(codes.Error, string(ReasonAllProvidersUnavailable))
		r.metrics.RecordResolution(ctx, "", time.Since(start), true)
		r.stats.record(req.AnimeID, req.EpisodeNumber, "", false)
		r.logger.Warn(ctx, "no providers available",
			observe.Field{Key: "anime_id", Value: req.AnimeID},
			observe.Field{Key: "episode", Value: req.EpisodeNumber},
			observe.Field{Key: "region", Value: req.Region},
		)
		return failure(ReasonAllProvidersUnavailable, tried)
	}

	for _, a := range candidates {
		sources, err := a.Fetch(ctx, req)

		switch {
		case err == nil && len(sources) > 0:
			tried = append(tried, attempt(a.Name(), OutcomeSuccess, nil))
			r.metrics.RecordAttempt(ctx, a.Name(), string(OutcomeSuccess))
			r.metrics.RecordResolution(ctx, a.Name(), time.Since(start), false)
			r.stats.record(req.AnimeID, req.EpisodeNumber, a.Name(), true)
			span.SetAttributes(attribute.String("provider_used", a.Name()))
			r.logger.WithProvider(a.Name()).Info(ctx, "resolved stream sources",
				observe.Field{Key: "anime_id", Value: req.AnimeID},
				observe.Field{Key: "episode", Value: req.EpisodeNumber},
				observe.Field{Key: "sources", Value: len(sources)},
			)
			return success(sources, a.Name(), time.Since(start), tried)

		case errors.Is(err, resilience.ErrCircuitOpen):
			// The circuit opened between the availability check and the
			// fetch. Move on without burning the request on it.
			tried = append(tried, attempt(a.Name(), OutcomeCircuitSkipped, err))
			r.metrics.RecordAttempt(ctx, a.Name(), string(OutcomeCircuitSkipped))

		case errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded):
			tried = append(tried, attempt(a.Name(), OutcomeFailure, err))
			r.metrics.RecordAttempt(ctx, a.Name(), string(OutcomeFailure))
			span.SetStatus(codes.Error, "request aborted")
			span.RecordError(err)
			r.metrics.RecordResolution(ctx, "", time.Since(start), true)
			r.stats.record(req.AnimeID, req.EpisodeNumber, "", false)
			return failure(ReasonNoAuthenticSource, tried)

		default:
			if err == nil {
				err = errNoSources
			}
			tried = append(tried, attempt(a.Name(), OutcomeFailure, err))
			r.metrics.RecordAttempt(ctx, a.Name(), string(OutcomeFailure))
			r.logger.WithProvider(a.Name()).Warn(ctx, "provider attempt failed",
				observe.Field{Key: "anime_id", Value: req.AnimeID},
				observe.Field{Key: "episode", Value: req.EpisodeNumber},
				observe.Field{Key: "error", Value: err.Error()},
			)
		}
	}

	span.SetStatus(codes.Error, string(ReasonNoAuthenticSource))
	r.metrics.RecordResolution(ctx, "", time.Since(start), true)
	r.stats.record(req.AnimeID, req.EpisodeNumber, "", false)
	r.logger.Error(ctx, "no authentic source found",
		observe.Field{Key: "anime_id", Value: req.AnimeID},
		observe.Field{Key: "episode", Value: req.EpisodeNumber},
		observe.Field{Key: "providers_tried", Value: len(tried)},
	)
	return failure(ReasonNoAuthenticSource, tried)
}

// eligible returns the adapters serving the request's region, in priority
// order. An adapter with no region list serves everywhere; an empty request
// region matches every adapter.
func (r *Resolver) eligible(region string) []provider.Adapter {
	out := make([]provider.Adapter, 0, len(r.adapters))
	for _, a := range r.adapters {
		if region == "" || serves(a.Regions(), region) {
			out = append(out, a)
		}
	}
	return out
}

func serves(regions []string, region string) bool {
	if len(regions) == 0 {
		return true
	}
	for _, r := range regions {
		if r == region {
			return true
		}
	}
	return false
}

// ProviderStatus returns a point-in-time snapshot of per-provider admission
// state for diagnostics.
func (r *Resolver) ProviderStatus() map[string]resilience.ProviderStatus {
	return r.admission.Snapshot()
}

// EpisodeStats returns the rolling tally for one episode, if any
// resolutions have been recorded for it.
func (r *Resolver) EpisodeStats(animeID, episode int) (EpisodeStats, bool) {
	return r.stats.get(animeID, episode)
}
