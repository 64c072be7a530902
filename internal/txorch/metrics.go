package txorch

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

type metrics struct {
	submitSuccess     prometheus.Counter
	submitFailure     prometheus.Counter
	rebuildCounter    prometheus.Counter
	durationHistogram prometheus.Histogram
}

// Registered once for the process; orchestrator instances share it.
var defaultMetrics = newMetrics()

func newMetrics() *metrics {
	m := &metrics{
		submitSuccess: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "launchpad_tx_success_total",
			Help: "Total number of confirmed transactions",
		}),
		submitFailure: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "launchpad_tx_failure_total",
			Help: "Total number of failed transaction submissions",
		}),
		rebuildCounter: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "launchpad_tx_rebuild_total",
			Help: "Total number of envelope rebuilds after block reference expiry",
		}),
		durationHistogram: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "launchpad_tx_duration_seconds",
			Help:    "Submit-to-confirmation duration in seconds",
			Buckets: prometheus.LinearBuckets(0, 0.5, 20),
		}),
	}
	prometheus.MustRegister(m.submitSuccess, m.submitFailure, m.rebuildCounter, m.durationHistogram)
	return m
}

func (m *metrics) trackSubmission(start time.Time) {
	m.durationHistogram.Observe(time.Since(start).Seconds())
}
