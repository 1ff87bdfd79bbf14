package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// CheckoutMetrics records order submissions and gateway outcomes.
type CheckoutMetrics struct {
	ordersSubmitted *prometheus.CounterVec
	gatewayOutcomes *prometheus.CounterVec
	syncFallbacks   prometheus.Counter
}

// NewCheckoutMetrics registers the checkout metrics on the provided registerer.
func NewCheckoutMetrics(reg prometheus.Registerer) *CheckoutMetrics {
	if reg == nil {
		return &CheckoutMetrics{}
	}
	ordersSubmitted := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "orders_submitted_total",
		Help: "Orders submitted to the storefront backend, by payment method and status.",
	}, []string{"method", "status"})
	gatewayOutcomes := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "gateway_outcomes_total",
		Help: "Payment popup outcomes, by resolution.",
	}, []string{"outcome"})
	syncFallbacks := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "order_sync_fallbacks_total",
		Help: "Orders persisted locally after a failed backend submission.",
	})
	reg.MustRegister(ordersSubmitted, gatewayOutcomes, syncFallbacks)
	return &CheckoutMetrics{
		ordersSubmitted: ordersSubmitted,
		gatewayOutcomes: gatewayOutcomes,
		syncFallbacks:   syncFallbacks,
	}
}

// IncOrderSubmitted counts one submitted order.
func (c *CheckoutMetrics) IncOrderSubmitted(method, status string) {
	if c == nil || c.ordersSubmitted == nil {
		return
	}
	c.ordersSubmitted.WithLabelValues(normalizeLabel(method), normalizeLabel(status)).Inc()
}

// IncGatewayOutcome counts one popup resolution.
func (c *CheckoutMetrics) IncGatewayOutcome(outcome string) {
	if c == nil || c.gatewayOutcomes == nil {
		return
	}
	c.gatewayOutcomes.WithLabelValues(normalizeLabel(outcome)).Inc()
}

// IncSyncFallback counts one local-persistence fallback.
func (c *CheckoutMetrics) IncSyncFallback() {
	if c == nil || c.syncFallbacks == nil {
		return
	}
	c.syncFallbacks.Inc()
}

func normalizeLabel(value string) string {
	if value == "" {
		return "unknown"
	}
	return value
}
