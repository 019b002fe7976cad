package observability

import (
	"context"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// DeliveryMetrics records per-attempt delivery instrumentation. A nil
// receiver is a no-op so callers can leave it unset in tests.
type DeliveryMetrics struct {
	attempts metric.Int64Counter
	duration metric.Float64Histogram
}

func NewDeliveryMetrics(serviceName string) *DeliveryMetrics {
	meter := otel.Meter(serviceName)

	attempts, _ := meter.Int64Counter(
		"notification_delivery_attempts",
		metric.WithDescription("Delivery attempts by channel and outcome"),
		metric.WithUnit("{attempt}"),
	)
	duration, _ := meter.Float64Histogram(
		"notification_delivery_duration_ms",
		metric.WithDescription("Provider send duration in milliseconds"),
		metric.WithUnit("ms"),
	)

	return &DeliveryMetrics{attempts: attempts, duration: duration}
}

// RecordAttempt counts one provider send. outcome is the terminal label for
// this attempt (sent, retryable, permanent, bounced, opted_out, skipped).
func (m *DeliveryMetrics) RecordAttempt(ctx context.Context, channel, outcome string, elapsed time.Duration) {
	if m == nil {
		return
	}
	attrs := metric.WithAttributes(
		attribute.String("channel", channel),
		attribute.String("outcome", outcome),
	)
	m.attempts.Add(ctx, 1, attrs)
	m.duration.Record(ctx, elapsed.Seconds()*1000, attrs)
}
