package resolve

import (
	"time"

	"github.com/weanime/streamgate/provider"
)

// Outcome classifies a single provider attempt within a resolution.
type Outcome string

const (
	// OutcomeSuccess means the provider returned at least one authentic source.
	OutcomeSuccess Outcome = "success"

	// OutcomeFailure means the provider was tried and failed, or returned
	// nothing usable.
	OutcomeFailure Outcome = "failure"

	// OutcomeCircuitSkipped means the provider's circuit opened before or
	// during the attempt and no retry budget was spent on it.
	OutcomeCircuitSkipped Outcome = "circuit_skipped"
)

// Reason explains why a resolution failed.
type Reason string

const (
	// ReasonInvalidRequest means the request was rejected before any
	// provider was consulted.
	ReasonInvalidRequest Reason = "invalid_request"

	// ReasonAllProvidersUnavailable means no candidate passed the region
	// and admission filters, so no network call was made.
	ReasonAllProvidersUnavailable Reason = "all_providers_unavailable"

	// ReasonNoAuthenticSource means every candidate was tried and none
	// produced a validated source.
	ReasonNoAuthenticSource Reason = "no_authentic_source"
)

// Attempt records one provider consultation inside a resolution.
type Attempt struct {
	Provider string  `json:"provider"`
	Outcome  Outcome `json:"outcome"`
	Err      error   `json:"-"`

	// Detail carries the error text for serialization; Err keeps the
	// original chain for errors.Is inspection.
	Detail string `json:"detail,omitempty"`
}

// Result is the verdict of a resolution. Exactly one of Sources or Reason
// is meaningful: a success carries sources and the provider that produced
// them, a failure carries the reason and the attempt trail.
type Result struct {
	Sources      []provider.StreamSource `json:"sources,omitempty"`
	ProviderUsed string                  `json:"provider_used,omitempty"`
	Latency      time.Duration           `json:"latency,omitempty"`

	Reason Reason    `json:"reason,omitempty"`
	Tried  []Attempt `json:"tried,omitempty"`
}

// OK reports whether the resolution produced sources.
func (r Result) OK() bool {
	return r.Reason == ""
}

func success(sources []provider.StreamSource, providerName string, latency time.Duration, tried []Attempt) Result {
	return Result{
		Sources:      sources,
		ProviderUsed: providerName,
		Latency:      latency,
		Tried:        tried,
	}
}

func failure(reason Reason, tried []Attempt) Result {
	return Result{Reason: reason, Tried: tried}
}

func attempt(providerName string, outcome Outcome, err error) Attempt {
	a := Attempt{Provider: providerName, Outcome: outcome, Err: err}
	if err != nil {
		a.Detail = err.Error()
	}
	return a
}
