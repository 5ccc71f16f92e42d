package export

import "github.com/prometheus/client_golang/prometheus"

// metrics is the optional export-session instrumentation named in the
// domain stack (§2): counters per action category plus a queue-depth gauge
// for the worker pool's bounded commit queue. Registered against whatever
// *prometheus.Registry the caller supplied; never exposed over HTTP by this
// package.
type metrics struct {
	actions    *prometheus.CounterVec
	failures   prometheus.Counter
	queueDepth prometheus.Gauge
}

func newMetrics(reg *prometheus.Registry) *metrics {
	if reg == nil {
		reg = prometheus.NewRegistry()
	}

	m := &metrics{
		actions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "photoslib",
			Subsystem: "export",
			Name:      "actions_total",
			Help:      "Count of export actions taken, by category.",
		}, []string{"category"}),
		failures: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "photoslib",
			Subsystem: "export",
			Name:      "failures_total",
			Help:      "Count of export jobs that failed after exhausting retries.",
		}),
		queueDepth: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "photoslib",
			Subsystem: "export",
			Name:      "queue_depth",
			Help:      "Number of planned jobs not yet committed to the export database.",
		}),
	}

	reg.MustRegister(m.actions, m.failures, m.queueDepth)
	return m
}

func (m *metrics) observe(r jobResult) {
	if m == nil {
		return
	}
	m.actions.WithLabelValues(string(r.job.plan.Action)).Inc()
	if r.err != nil {
		m.failures.Inc()
	}
}
