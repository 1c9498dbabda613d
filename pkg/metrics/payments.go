package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// PaymentMetrics records counters for the payment reconciliation flow.
type PaymentMetrics struct {
	transitions *prometheus.CounterVec
	webhooks    *prometheus.CounterVec
}

// NewPaymentMetrics registers the payment metrics on the provided registerer.
func NewPaymentMetrics(reg prometheus.Registerer) *PaymentMetrics {
	if reg == nil {
		return &PaymentMetrics{}
	}
	transitions := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "payment_transitions_total",
		Help: "Payment status transitions, labeled by the path that applied them.",
	}, []string{"source", "result"})
	webhooks := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "payment_webhook_events_total",
		Help: "Gateway webhook deliveries by outcome.",
	}, []string{"outcome"})
	reg.MustRegister(transitions, webhooks)
	return &PaymentMetrics{
		transitions: transitions,
		webhooks:    webhooks,
	}
}

// ObserveTransition counts one attempted pending→paid transition.
// result is "applied" when this caller won the conditional update and
// "noop" when the order was already paid.
func (m *PaymentMetrics) ObserveTransition(source, result string) {
	if m == nil || m.transitions == nil {
		return
	}
	m.transitions.WithLabelValues(source, result).Inc()
}

// ObserveWebhook counts one webhook delivery by outcome
// (accepted, duplicate, rejected_signature, malformed, failed).
func (m *PaymentMetrics) ObserveWebhook(outcome string) {
	if m == nil || m.webhooks == nil {
		return
	}
	m.webhooks.WithLabelValues(outcome).Inc()
}
