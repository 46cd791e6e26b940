package optimizer

import "github.com/prometheus/client_golang/prometheus"

// metrics holds one Optimizer's counters, registered against a
// caller-supplied registry rather than prometheus.DefaultRegisterer —
// grounded on the pack's own per-component registry discipline
// (kube-nexus scheduler's metrics live on an injected registry so
// multiple schedulers in one process never collide); here it's multiple
// communicators in one process that must not share counters.
type metrics struct {
	decisions *prometheus.CounterVec
	cacheHits *prometheus.CounterVec
}

// newMetrics constructs and registers counters against reg. A nil
// registry disables metrics entirely (optimizer.metrics is then left
// nil and every increment is a guarded no-op).
func newMetrics(reg *prometheus.Registry) (*metrics, error) {
	if reg == nil {
		return nil, nil
	}
	m := &metrics{
		decisions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "topoflow_optimizer_decisions_total",
			Help: "Count of collective algorithm selections by operation and algorithm.",
		}, []string{"op", "algorithm"}),
		cacheHits: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "topoflow_optimizer_decision_cache_total",
			Help: "Count of decision cache lookups by outcome (hit or miss).",
		}, []string{"outcome"}),
	}
	if err := reg.Register(m.decisions); err != nil {
		return nil, err
	}
	if err := reg.Register(m.cacheHits); err != nil {
		return nil, err
	}
	return m, nil
}

func (m *metrics) recordDecision(op string, algorithm string) {
	if m == nil {
		return
	}
	m.decisions.WithLabelValues(op, algorithm).Inc()
}

func (m *metrics) recordCache(hit bool) {
	if m == nil {
		return
	}
	outcome := "miss"
	if hit {
		outcome = "hit"
	}
	m.cacheHits.WithLabelValues(outcome).Inc()
}
