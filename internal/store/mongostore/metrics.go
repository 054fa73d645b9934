package mongostore

import "github.com/prometheus/client_golang/prometheus"

// metrics bundles the counters every collection wrapper reports against.
// A single instance is shared across the four stores so their readings
// show up under one registry namespace.
type metrics struct {
	ops     *prometheus.CounterVec
	latency *prometheus.HistogramVec
}

func newMetrics(reg prometheus.Registerer) *metrics {
	m := &metrics{
		ops: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "zcap",
			Subsystem: "mongostore",
			Name:      "operations_total",
			Help:      "Number of store operations performed, by collection and outcome.",
		}, []string{"collection", "op", "outcome"}),
		latency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "zcap",
			Subsystem: "mongostore",
			Name:      "operation_duration_seconds",
			Help:      "Latency of store operations, by collection.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"collection", "op"}),
	}
	if reg != nil {
		reg.MustRegister(m.ops, m.latency)
	}
	return m
}

func (m *metrics) observe(collection, op string, err error, seconds float64) {
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	m.ops.WithLabelValues(collection, op, outcome).Inc()
	m.latency.WithLabelValues(collection, op).Observe(seconds)
}
