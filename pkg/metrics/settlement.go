package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// SettlementMetrics records counters for order settlement outcomes.
type SettlementMetrics struct {
	duration *prometheus.HistogramVec
	placed   *prometheus.CounterVec
	failed   *prometheus.CounterVec
	oversell *prometheus.CounterVec
}

// NewSettlementMetrics registers the settlement metrics on the provided registerer.
func NewSettlementMetrics(reg prometheus.Registerer) *SettlementMetrics {
	if reg == nil {
		return &SettlementMetrics{}
	}
	duration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "settlement_duration_seconds",
		Help:    "Duration of order settlement in seconds.",
		Buckets: prometheus.DefBuckets,
	}, []string{"workflow"})
	placed := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "settlement_orders_placed_total",
		Help: "Orders successfully settled.",
	}, []string{"workflow"})
	failed := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "settlement_orders_failed_total",
		Help: "Settlement attempts rejected or rolled back.",
	}, []string{"workflow", "reason"})
	oversell := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "settlement_oversell_rejections_total",
		Help: "Orders rejected because stock would have gone negative.",
	}, []string{"workflow"})
	reg.MustRegister(duration, placed, failed, oversell)
	return &SettlementMetrics{
		duration: duration,
		placed:   placed,
		failed:   failed,
		oversell: oversell,
	}
}

// ObserveDuration records the settlement duration for the named workflow.
func (m *SettlementMetrics) ObserveDuration(workflow string, d time.Duration) {
	if m == nil || m.duration == nil {
		return
	}
	m.duration.WithLabelValues(normalizeLabel(workflow)).Observe(d.Seconds())
}

// IncPlaced increments the placed counter for the named workflow.
func (m *SettlementMetrics) IncPlaced(workflow string) {
	if m == nil || m.placed == nil {
		return
	}
	m.placed.WithLabelValues(normalizeLabel(workflow)).Inc()
}

// IncFailed increments the failure counter for the workflow and reason.
func (m *SettlementMetrics) IncFailed(workflow, reason string) {
	if m == nil || m.failed == nil {
		return
	}
	m.failed.WithLabelValues(normalizeLabel(workflow), normalizeLabel(reason)).Inc()
}

// IncOversell increments the oversell rejection counter.
func (m *SettlementMetrics) IncOversell(workflow string) {
	if m == nil || m.oversell == nil {
		return
	}
	m.oversell.WithLabelValues(normalizeLabel(workflow)).Inc()
}

func normalizeLabel(value string) string {
	if value == "" {
		return "unknown"
	}
	return value
}
