package observability

import (
	"context"
	"strconv"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

const meterName = "github.com/akitas-arrow/child-name"

// HTTPMetrics records request counts and latency. A nil *HTTPMetrics records nothing.
type HTTPMetrics struct {
	requests metric.Int64Counter
	latency  metric.Float64Histogram
}

// NewHTTPMetrics registers the HTTP instruments on the global meter provider.
func NewHTTPMetrics() (*HTTPMetrics, error) {
	meter := otel.Meter(meterName)
	requests, err := meter.Int64Counter("childname.http.requests",
		metric.WithDescription("HTTP requests served"))
	if err != nil {
		return nil, err
	}
	latency, err := meter.Float64Histogram("childname.http.latency",
		metric.WithDescription("HTTP request latency"),
		metric.WithUnit("ms"))
	if err != nil {
		return nil, err
	}
	return &HTTPMetrics{requests: requests, latency: latency}, nil
}

// Record adds one request observation.
func (m *HTTPMetrics) Record(ctx context.Context, method, route string, status int, latency time.Duration) {
	if m == nil {
		return
	}
	attrs := metric.WithAttributes(
		attribute.String("http.method", method),
		attribute.String("http.route", route),
		attribute.String("http.status_code", strconv.Itoa(status)),
	)
	m.requests.Add(ctx, 1, attrs)
	m.latency.Record(ctx, float64(latency)/float64(time.Millisecond), attrs)
}

// SubmissionObserver counts submission outcomes (created, invalid, error, in_flight, replayed).
func SubmissionObserver() (func(context.Context, string), error) {
	counter, err := otel.Meter(meterName).Int64Counter("childname.submissions",
		metric.WithDescription("Name suggestion submissions by outcome"))
	if err != nil {
		return nil, err
	}
	return func(ctx context.Context, outcome string) {
		counter.Add(ctx, 1, metric.WithAttributes(attribute.String("outcome", outcome)))
	}, nil
}
