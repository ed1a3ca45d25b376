package router

import "github.com/prometheus/client_golang/prometheus"

// Metrics tracks the work done by best-trade search.
type Metrics struct {
	branchesExplored *prometheus.CounterVec
	branchesPruned   *prometheus.CounterVec
	tradesFound      *prometheus.CounterVec
	searchDuration   *prometheus.HistogramVec
}

// NewMetrics builds and registers the search collectors on the given
// registerer.
func NewMetrics(registry prometheus.Registerer) *Metrics {
	m := &Metrics{
		branchesExplored: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "clmm",
			Subsystem: "router",
			Name:      "branches_explored_total",
			Help:      "Pool simulations attempted during best-trade search.",
		}, []string{"trade_type"}),
		branchesPruned: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "clmm",
			Subsystem: "router",
			Name:      "branches_pruned_total",
			Help:      "Search branches abandoned for insufficient liquidity.",
		}, []string{"trade_type"}),
		tradesFound: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "clmm",
			Subsystem: "router",
			Name:      "trades_found_total",
			Help:      "Complete candidate trades inserted into the result set.",
		}, []string{"trade_type"}),
		searchDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "clmm",
			Subsystem: "router",
			Name:      "search_duration_seconds",
			Help:      "Wall time of one best-trade search call.",
		}, []string{"trade_type"}),
	}
	registry.MustRegister(m.branchesExplored, m.branchesPruned, m.tradesFound, m.searchDuration)
	return m
}
