package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestSettlementMetricsCounters(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewSettlementMetrics(reg)

	m.IncPlaced("cod")
	m.IncPlaced("cod")
	m.IncFailed("online", "verification_failed")
	m.IncOversell("cod")
	m.ObserveDuration("cod", 25*time.Millisecond)

	if got := testutil.ToFloat64(m.placed.WithLabelValues("cod")); got != 2 {
		t.Fatalf("expected 2 placed, got %v", got)
	}
	if got := testutil.ToFloat64(m.failed.WithLabelValues("online", "verification_failed")); got != 1 {
		t.Fatalf("expected 1 failure, got %v", got)
	}
	if got := testutil.ToFloat64(m.oversell.WithLabelValues("cod")); got != 1 {
		t.Fatalf("expected 1 oversell rejection, got %v", got)
	}
}

func TestSettlementMetricsNilSafe(t *testing.T) {
	m := NewSettlementMetrics(nil)
	m.IncPlaced("cod")
	m.IncFailed("cod", "oops")
	m.IncOversell("cod")
	m.ObserveDuration("cod", time.Second)

	var nilMetrics *SettlementMetrics
	nilMetrics.IncPlaced("cod")
}
