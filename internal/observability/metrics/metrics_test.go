package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
)

func TestPortalMetricsObserve(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewPortalMetrics(reg)
	m.ObserveSessionStarted(true)
	m.ObserveTransition("intro", "new-client", "forward")
	m.ObserveMatcherResult("routing", "slots_found")
	m.ObserveMatcherLatency(0.25)
	m.ObserveSubmission("regular_visit", "accepted")
}

func TestPortalMetricsNilSafe(t *testing.T) {
	var m *PortalMetrics
	m.ObserveSessionStarted(false)
	m.ObserveTransition("a", "b", "back")
	m.ObserveMatcherResult("publicbook", "empty")
	m.ObserveMatcherLatency(0.1)
	m.ObserveSubmission("euthanasia", "failed")
}
