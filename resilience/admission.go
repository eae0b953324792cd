package resilience

import (
	"context"
	"sync"
	"time"
)

// ProviderPolicy configures admission control for a single provider.
type ProviderPolicy struct {
	// MinInterval is the minimum spacing between two calls to the provider.
	// Zero means no spacing is enforced.
	MinInterval time.Duration

	// MaxFailures is the number of consecutive failures before opening the
	// circuit.
	// Default: 5
	MaxFailures int

	// ResetTimeout is how long the circuit stays open before the provider
	// is admitted again.
	// Default: 30 seconds
	ResetTimeout time.Duration
}

func (p ProviderPolicy) withDefaults() ProviderPolicy {
	if p.MaxFailures <= 0 {
		p.MaxFailures = 5
	}
	if p.ResetTimeout <= 0 {
		p.ResetTimeout = 30 * time.Second
	}
	return p
}

// ProviderStatus is a point-in-time snapshot of a provider's admission state.
type ProviderStatus struct {
	Available           bool      `json:"available"`
	CircuitOpen         bool      `json:"circuit_open"`
	ConsecutiveFailures int       `json:"consecutive_failures"`
	LastFailure         time.Time `json:"last_failure,omitempty"`
}

// providerState holds the mutable admission state for one provider.
// Created lazily on first use, lives for the process lifetime, mutated only
// under its own mutex.
type providerState struct {
	mu          sync.Mutex
	lastCall    time.Time
	failures    int
	open        bool
	lastFailure time.Time
}

// AdmissionController gates calls to upstream providers. It combines
// per-provider minimum-interval rate spacing with a consecutive-failure
// circuit breaker, keyed by provider name.
//
// Contract:
// - Concurrency: safe for concurrent use; state mutations for a given
//   provider are serialized per provider key.
// - WaitForSlot is the single gate callers must pass before network I/O.
type AdmissionController struct {
	defaults ProviderPolicy

	mu       sync.Mutex
	policies map[string]ProviderPolicy
	states   map[string]*providerState
}

// NewAdmissionController creates an admission controller with the given
// default policy. Per-provider overrides are set with SetPolicy.
func NewAdmissionController(defaults ProviderPolicy) *AdmissionController {
	return &AdmissionController{
		defaults: defaults.withDefaults(),
		policies: make(map[string]ProviderPolicy),
		states:   make(map[string]*providerState),
	}
}

// SetPolicy sets the admission policy for a provider. Intended to be called
// once at startup, before the controller is shared.
func (ac *AdmissionController) SetPolicy(provider string, policy ProviderPolicy) {
	ac.mu.Lock()
	ac.policies[provider] = policy.withDefaults()
	ac.mu.Unlock()
}

func (ac *AdmissionController) policy(provider string) ProviderPolicy {
	ac.mu.Lock()
	defer ac.mu.Unlock()
	if p, ok := ac.policies[provider]; ok {
		return p
	}
	return ac.defaults
}

func (ac *AdmissionController) state(provider string) *providerState {
	ac.mu.Lock()
	defer ac.mu.Unlock()
	st, ok := ac.states[provider]
	if !ok {
		st = &providerState{}
		ac.states[provider] = st
	}
	return st
}

// Available reports whether the provider may be called. If the circuit is
// open and the reset window has elapsed, the circuit closes, failures are
// cleared, and the provider is admitted again.
func (ac *AdmissionController) Available(provider string) bool {
	policy := ac.policy(provider)
	st := ac.state(provider)

	st.mu.Lock()
	defer st.mu.Unlock()
	return st.availableLocked(policy)
}

func (st *providerState) availableLocked(policy ProviderPolicy) bool {
	if st.open && time.Since(st.lastFailure) > policy.ResetTimeout {
		st.open = false
		st.failures = 0
		return true
	}
	return !st.open
}

// WaitForSlot blocks until the provider's minimum call interval has elapsed,
// then stamps the call time. It fails fast with ErrCircuitOpen if the
// provider is not available, without waiting on the interval.
func (ac *AdmissionController) WaitForSlot(ctx context.Context, provider string) error {
	policy := ac.policy(provider)
	st := ac.state(provider)

	for {
		st.mu.Lock()
		if !st.availableLocked(policy) {
			st.mu.Unlock()
			return ErrCircuitOpen
		}

		wait := policy.MinInterval - time.Since(st.lastCall)
		if wait <= 0 {
			st.lastCall = time.Now()
			st.mu.Unlock()
			return nil
		}
		st.mu.Unlock()

		// Sleep outside the lock; another caller may slip in and claim the
		// slot first, so re-check after waking.
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(wait):
		}
	}
}

// RecordSuccess resets the provider's failure count and closes its circuit.
func (ac *AdmissionController) RecordSuccess(provider string) {
	st := ac.state(provider)

	st.mu.Lock()
	st.failures = 0
	st.open = false
	st.mu.Unlock()
}

// RecordFailure increments the provider's consecutive failure count and
// opens the circuit once the policy threshold is reached.
func (ac *AdmissionController) RecordFailure(provider string) {
	policy := ac.policy(provider)
	st := ac.state(provider)

	st.mu.Lock()
	st.failures++
	st.lastFailure = time.Now()
	if st.failures >= policy.MaxFailures {
		st.open = true
	}
	st.mu.Unlock()
}

// Reset clears the admission state for a provider.
func (ac *AdmissionController) Reset(provider string) {
	st := ac.state(provider)

	st.mu.Lock()
	st.lastCall = time.Time{}
	st.failures = 0
	st.open = false
	st.lastFailure = time.Time{}
	st.mu.Unlock()
}

// Snapshot returns the current admission status of every provider seen so
// far. Read-only diagnostics; the snapshot does not trigger reset
// transitions.
func (ac *AdmissionController) Snapshot() map[string]ProviderStatus {
	ac.mu.Lock()
	states := make(map[string]*providerState, len(ac.states))
	for name, st := range ac.states {
		states[name] = st
	}
	ac.mu.Unlock()

	out := make(map[string]ProviderStatus, len(states))
	for name, st := range states {
		policy := ac.policy(name)

		st.mu.Lock()
		resetElapsed := st.open && time.Since(st.lastFailure) > policy.ResetTimeout
		out[name] = ProviderStatus{
			Available:           !st.open || resetElapsed,
			CircuitOpen:         st.open,
			ConsecutiveFailures: st.failures,
			LastFailure:         st.lastFailure,
		}
		st.mu.Unlock()
	}
	return out
}
