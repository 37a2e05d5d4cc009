package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// WebhookMetrics records inbound payment notification processing.
type WebhookMetrics struct {
	received    *prometheus.CounterVec
	outcomes    *prometheus.CounterVec
	duration    *prometheus.HistogramVec
	fulfillment *prometheus.CounterVec
}

// NewWebhookMetrics registers the webhook metrics on the provided registerer.
func NewWebhookMetrics(reg prometheus.Registerer) *WebhookMetrics {
	if reg == nil {
		return &WebhookMetrics{}
	}
	received := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "webhook_notifications_total",
		Help: "Inbound payment notifications by provider.",
	}, []string{"provider"})
	outcomes := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "webhook_reconcile_outcomes_total",
		Help: "Reconciliation outcomes by provider and result.",
	}, []string{"provider", "outcome"})
	duration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "webhook_processing_duration_seconds",
		Help:    "Duration of notification processing in seconds.",
		Buckets: prometheus.DefBuckets,
	}, []string{"provider"})
	fulfillment := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "fulfillment_items_total",
		Help: "Fulfillment item results.",
	}, []string{"result"})
	reg.MustRegister(received, outcomes, duration, fulfillment)
	return &WebhookMetrics{
		received:    received,
		outcomes:    outcomes,
		duration:    duration,
		fulfillment: fulfillment,
	}
}

// IncReceived counts one inbound notification for the provider.
func (m *WebhookMetrics) IncReceived(provider string) {
	if m == nil || m.received == nil {
		return
	}
	m.received.WithLabelValues(normalizeLabel(provider)).Inc()
}

// IncOutcome counts a reconciliation outcome for the provider.
func (m *WebhookMetrics) IncOutcome(provider, outcome string) {
	if m == nil || m.outcomes == nil {
		return
	}
	m.outcomes.WithLabelValues(normalizeLabel(provider), normalizeLabel(outcome)).Inc()
}

// ObserveDuration records the processing time for the provider.
func (m *WebhookMetrics) ObserveDuration(provider string, duration time.Duration) {
	if m == nil || m.duration == nil {
		return
	}
	m.duration.WithLabelValues(normalizeLabel(provider)).Observe(duration.Seconds())
}

// IncFulfillmentItems counts item-level fulfillment results.
func (m *WebhookMetrics) IncFulfillmentItems(result string, n int) {
	if m == nil || m.fulfillment == nil || n <= 0 {
		return
	}
	m.fulfillment.WithLabelValues(normalizeLabel(result)).Add(float64(n))
}

func normalizeLabel(v string) string {
	if v == "" {
		return "unknown"
	}
	return v
}
