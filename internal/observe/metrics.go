// Package observe provides application-wide observability primitives for
// IPA Navigator: OpenTelemetry metrics, distributed tracing, structured
// logging, and HTTP middleware that ties them together.
//
// Metrics are recorded through the OpenTelemetry Metrics API. A Prometheus
// exporter bridge is available via [InitProvider] so that metrics can still be
// scraped via the standard /metrics endpoint. A package-level default
// [Metrics] instance ([DefaultMetrics]) is provided for convenience; tests
// should use [NewMetrics] with a custom [metric.MeterProvider] to avoid
// cross-test pollution.
package observe

import (
	"context"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// meterName is the instrumentation scope name used for all IPA Navigator
// metrics.
const meterName = "github.com/twilight39/IPA-Navigator"

// Metrics holds all OpenTelemetry metric instruments for the application.
// All fields are safe for concurrent use — the underlying OTel types handle
// their own synchronisation.
type Metrics struct {
	// --- Latency histograms ---

	// AssessDuration tracks end-to-end assessment latency, from worker-slot
	// acquisition to the aggregated result.
	AssessDuration metric.Float64Histogram

	// CollaboratorDuration tracks per-collaborator call latency. Use with
	// attribute: attribute.String("collaborator", ...)
	CollaboratorDuration metric.Float64Histogram

	// --- Counters ---

	// CollaboratorRequests counts collaborator calls. Use with attributes:
	//   attribute.String("collaborator", ...), attribute.String("status", ...)
	CollaboratorRequests metric.Int64Counter

	// WordsScored counts transcript words that went through the scoring
	// pipeline.
	WordsScored metric.Int64Counter

	// --- Error counters ---

	// CollaboratorErrors counts failed collaborator calls. Use with attribute:
	//   attribute.String("collaborator", ...)
	CollaboratorErrors metric.Int64Counter

	// --- Gauges ---

	// ActiveAssessments tracks the number of assessments currently holding a
	// worker slot.
	ActiveAssessments metric.Int64UpDownCounter

	// --- HTTP middleware ---

	// HTTPRequestDuration tracks HTTP request processing time. Use with attributes:
	//   attribute.String("method", ...), attribute.String("path", ...)
	HTTPRequestDuration metric.Float64Histogram
}

// latencyBuckets defines histogram bucket boundaries (in seconds) for
// collaborator and assessment latencies. The external model services dominate,
// so the upper buckets stretch into multi-second territory.
var latencyBuckets = []float64{
	0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10,
}

// NewMetrics creates a fully initialised [Metrics] struct using the given
// [metric.MeterProvider]. Returns an error if any instrument creation fails.
func NewMetrics(mp metric.MeterProvider) (*Metrics, error) {
	m := mp.Meter(meterName)
	var err error
	met := &Metrics{}

	// Histograms.
	if met.AssessDuration, err = m.Float64Histogram("ipanav.assess.duration",
		metric.WithDescription("End-to-end pronunciation assessment latency."),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(latencyBuckets...),
	); err != nil {
		return nil, err
	}
	if met.CollaboratorDuration, err = m.Float64Histogram("ipanav.collaborator.duration",
		metric.WithDescription("Latency of collaborator service calls."),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(latencyBuckets...),
	); err != nil {
		return nil, err
	}

	// Counters.
	if met.CollaboratorRequests, err = m.Int64Counter("ipanav.collaborator.requests",
		metric.WithDescription("Total collaborator calls by collaborator and status."),
	); err != nil {
		return nil, err
	}
	if met.WordsScored, err = m.Int64Counter("ipanav.words.scored",
		metric.WithDescription("Total transcript words scored."),
	); err != nil {
		return nil, err
	}

	// Error counters.
	if met.CollaboratorErrors, err = m.Int64Counter("ipanav.collaborator.errors",
		metric.WithDescription("Total failed collaborator calls by collaborator."),
	); err != nil {
		return nil, err
	}

	// Gauges (UpDownCounters).
	if met.ActiveAssessments, err = m.Int64UpDownCounter("ipanav.active_assessments",
		metric.WithDescription("Number of assessments currently holding a worker slot."),
	); err != nil {
		return nil, err
	}

	// HTTP middleware histogram.
	if met.HTTPRequestDuration, err = m.Float64Histogram("ipanav.http.request.duration",
		metric.WithDescription("HTTP request latency by method and path."),
		metric.WithUnit("s"),
	); err != nil {
		return nil, err
	}

	return met, nil
}

// defaultMetrics is the lazily-initialised package-level Metrics instance.
var (
	defaultMetrics     *Metrics
	defaultMetricsOnce sync.Once
)

// DefaultMetrics returns the package-level [Metrics] instance, creating it on
// first call using [otel.GetMeterProvider]. Subsequent calls return the same
// pointer. Panics if instrument creation fails (should not happen with the
// global provider).
func DefaultMetrics() *Metrics {
	defaultMetricsOnce.Do(func() {
		var err error
		defaultMetrics, err = NewMetrics(otel.GetMeterProvider())
		if err != nil {
			panic("observe: failed to create default metrics: " + err.Error())
		}
	})
	return defaultMetrics
}

// Attr is a convenience alias for [attribute.String] to reduce verbosity at
// call sites.
func Attr(key, value string) attribute.KeyValue {
	return attribute.String(key, value)
}

// ObserveCollaborator records one collaborator call: its duration histogram,
// the request counter with a success/error status, and the error counter when
// err is non-nil.
func (m *Metrics) ObserveCollaborator(ctx context.Context, collaborator string, d time.Duration, err error) {
	status := "success"
	if err != nil {
		status = "error"
		m.CollaboratorErrors.Add(ctx, 1,
			metric.WithAttributes(attribute.String("collaborator", collaborator)),
		)
	}
	m.CollaboratorDuration.Record(ctx, d.Seconds(),
		metric.WithAttributes(attribute.String("collaborator", collaborator)),
	)
	m.CollaboratorRequests.Add(ctx, 1,
		metric.WithAttributes(
			attribute.String("collaborator", collaborator),
			attribute.String("status", status),
		),
	)
}
