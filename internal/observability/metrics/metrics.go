package metrics

import "github.com/prometheus/client_golang/prometheus"

// PortalMetrics exposes counters/histograms for the appointment-request flow.
type PortalMetrics struct {
	sessionsStarted *prometheus.CounterVec
	transitions     *prometheus.CounterVec
	matcherResults  *prometheus.CounterVec
	matcherLatency  prometheus.Histogram
	submissions     *prometheus.CounterVec
}

func NewPortalMetrics(reg prometheus.Registerer) *PortalMetrics {
	m := &PortalMetrics{
		sessionsStarted: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "portal",
			Subsystem: "wizard",
			Name:      "sessions_started_total",
			Help:      "Total wizard sessions opened",
		}, []string{"authenticated"}),
		transitions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "portal",
			Subsystem: "wizard",
			Name:      "transitions_total",
			Help:      "Total page transitions",
		}, []string{"from", "to", "direction"}),
		matcherResults: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "portal",
			Subsystem: "availability",
			Name:      "matcher_results_total",
			Help:      "Availability matcher outcomes",
		}, []string{"backend", "outcome"}),
		matcherLatency: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "portal",
			Subsystem: "availability",
			Name:      "matcher_latency_seconds",
			Help:      "Latency of availability matching",
			Buckets:   prometheus.DefBuckets,
		}),
		submissions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "portal",
			Subsystem: "wizard",
			Name:      "submissions_total",
			Help:      "Appointment-request submissions",
		}, []string{"branch", "outcome"}),
	}
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	reg.MustRegister(m.sessionsStarted, m.transitions, m.matcherResults, m.matcherLatency, m.submissions)
	return m
}

func (m *PortalMetrics) ObserveSessionStarted(authenticated bool) {
	if m == nil {
		return
	}
	label := "false"
	if authenticated {
		label = "true"
	}
	m.sessionsStarted.WithLabelValues(label).Inc()
}

func (m *PortalMetrics) ObserveTransition(from, to, direction string) {
	if m == nil {
		return
	}
	m.transitions.WithLabelValues(from, to, direction).Inc()
}

func (m *PortalMetrics) ObserveMatcherResult(backend, outcome string) {
	if m == nil {
		return
	}
	m.matcherResults.WithLabelValues(backend, outcome).Inc()
}

func (m *PortalMetrics) ObserveMatcherLatency(seconds float64) {
	if m == nil {
		return
	}
	m.matcherLatency.Observe(seconds)
}

func (m *PortalMetrics) ObserveSubmission(branch, outcome string) {
	if m == nil {
		return
	}
	m.submissions.WithLabelValues(branch, outcome).Inc()
}
