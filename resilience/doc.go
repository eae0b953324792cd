// Package resilience provides admission control and retry patterns for
// upstream streaming providers.
//
// # Patterns
//
// The package provides the following patterns:
//
//   - Admission Controller: a per-provider gate combining minimum-interval
//     rate spacing with a consecutive-failure circuit breaker. Callers must
//     pass WaitForSlot before issuing network I/O to a provider.
//
//   - Retry: automatically retries failed operations with configurable
//     backoff and a pluggable error classifier.
//
//   - Timeout: ensures operations complete within a time limit.
//
// # Usage
//
//	admission := resilience.NewAdmissionController(resilience.ProviderPolicy{
//	    MinInterval:  500 * time.Millisecond,
//	    MaxFailures:  5,
//	    ResetTimeout: 30 * time.Second,
//	})
//
//	if err := admission.WaitForSlot(ctx, "jikan"); err != nil {
//	    return err // circuit open, skip this provider
//	}
//	err := callProvider(ctx)
//	if err != nil {
//	    admission.RecordFailure("jikan")
//	} else {
//	    admission.RecordSuccess("jikan")
//	}
package resilience
