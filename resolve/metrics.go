package resolve

import "github.com/prometheus/client_golang/prometheus"

// Metrics exposes the resolver's cache behavior as Prometheus
// counters. All methods are nil-receiver safe so a Resolver without
// metrics skips instrumentation entirely.
type Metrics struct {
	cacheHits          prometheus.Counter
	cacheMisses        prometheus.Counter
	desperateFallbacks prometheus.Counter
	notFound           prometheus.Counter
}

// NewMetrics builds and registers the resolver counters.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		cacheHits: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "pyflow",
			Subsystem: "resolver",
			Name:      "cache_hits_total",
			Help:      "Resolver queries answered from the memo table.",
		}),
		cacheMisses: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "pyflow",
			Subsystem: "resolver",
			Name:      "cache_misses_total",
			Help:      "Resolver queries that walked the search paths.",
		}),
		desperateFallbacks: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "pyflow",
			Subsystem: "resolver",
			Name:      "desperate_fallbacks_total",
			Help:      "Queries that fell back to ancestor-based desperate resolution.",
		}),
		notFound: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "pyflow",
			Subsystem: "resolver",
			Name:      "not_found_total",
			Help:      "Queries that resolved to no module.",
		}),
	}
	if reg != nil {
		reg.MustRegister(m.cacheHits, m.cacheMisses, m.desperateFallbacks, m.notFound)
	}
	return m
}

func (m *Metrics) hit() {
	if m != nil {
		m.cacheHits.Inc()
	}
}

func (m *Metrics) miss() {
	if m != nil {
		m.cacheMisses.Inc()
	}
}

func (m *Metrics) desperate() {
	if m != nil {
		m.desperateFallbacks.Inc()
	}
}

func (m *Metrics) missingModule() {
	if m != nil {
		m.notFound.Inc()
	}
}
