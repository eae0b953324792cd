package observe

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// ResolutionMetrics records stream resolution outcomes.
//
// Contract:
// - Concurrency: safe for concurrent use.
// - Context: must return quickly; recording is best-effort.
type ResolutionMetrics struct {
	totalCount   metric.Int64Counter
	failureCount metric.Int64Counter
	durationHist metric.Float64Histogram
	attemptCount metric.Int64Counter
}

// NewResolutionMetrics creates the resolution instruments on the meter.
func NewResolutionMetrics(meter metric.Meter) (*ResolutionMetrics, error) {
	totalCount, err := meter.Int64Counter(
		"resolve.total",
		metric.WithDescription("Total number of stream resolutions"),
		metric.WithUnit("{call}"),
	)
	if err != nil {
		return nil, err
	}

	failureCount, err := meter.Int64Counter(
		"resolve.failures",
		metric.WithDescription("Total number of failed stream resolutions"),
		metric.WithUnit("{failure}"),
	)
	if err != nil {
		return nil, err
	}

	durationHist, err := meter.Float64Histogram(
		"resolve.duration_ms",
		metric.WithDescription("Stream resolution duration in milliseconds"),
		metric.WithUnit("ms"),
	)
	if err != nil {
		return nil, err
	}

	attemptCount, err := meter.Int64Counter(
		"resolve.provider_attempts",
		metric.WithDescription("Per-provider fetch attempts by outcome"),
		metric.WithUnit("{attempt}"),
	)
	if err != nil {
		return nil, err
	}

	return &ResolutionMetrics{
		totalCount:   totalCount,
		failureCount: failureCount,
		durationHist: durationHist,
		attemptCount: attemptCount,
	}, nil
}

// RecordResolution records one completed resolution.
func (m *ResolutionMetrics) RecordResolution(ctx context.Context, providerUsed string, duration time.Duration, failed bool) {
	attrs := []attribute.KeyValue{}
	if providerUsed != "" {
		attrs = append(attrs, attribute.String("provider", providerUsed))
	}
	opt := metric.WithAttributes(attrs...)

	m.totalCount.Add(ctx, 1, opt)
	if failed {
		m.failureCount.Add(ctx, 1, opt)
	}
	m.durationHist.Record(ctx, float64(duration.Milliseconds()), opt)
}

// RecordAttempt records a single provider attempt and its outcome.
func (m *ResolutionMetrics) RecordAttempt(ctx context.Context, provider, outcome string) {
	m.attemptCount.Add(ctx, 1, metric.WithAttributes(
		attribute.String("provider", provider),
		attribute.String("outcome", outcome),
	))
}
