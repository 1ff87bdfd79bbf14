package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestCheckoutMetricsCounts(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewCheckoutMetrics(reg)

	m.IncOrderSubmitted("cash", "pending")
	m.IncOrderSubmitted("cash", "pending")
	m.IncGatewayOutcome("success")
	m.IncSyncFallback()

	if got := testutil.ToFloat64(m.ordersSubmitted.WithLabelValues("cash", "pending")); got != 2 {
		t.Fatalf("expected 2 submitted orders, got %v", got)
	}
	if got := testutil.ToFloat64(m.gatewayOutcomes.WithLabelValues("success")); got != 1 {
		t.Fatalf("expected 1 gateway outcome, got %v", got)
	}
	if got := testutil.ToFloat64(m.syncFallbacks); got != 1 {
		t.Fatalf("expected 1 sync fallback, got %v", got)
	}
}

func TestCheckoutMetricsNilSafe(t *testing.T) {
	var m *CheckoutMetrics
	m.IncOrderSubmitted("cash", "pending")
	m.IncGatewayOutcome("")
	m.IncSyncFallback()

	unregistered := NewCheckoutMetrics(nil)
	unregistered.IncOrderSubmitted("gopay", "completed")
}
