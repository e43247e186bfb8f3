package campus

import "github.com/prometheus/client_golang/prometheus"

// Metrics are the prometheus collectors updated by a Catalog.
type Metrics struct {
	Queries     *prometheus.CounterVec
	Evaluations prometheus.Histogram
	Buildings   prometheus.Gauge
}

// NewMetrics creates the catalog collectors and registers them with reg,
// if reg is not nil.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		Queries: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "loctree_queries_total",
			Help: "Total number of catalog queries",
		}, []string{"kind"}),
		Evaluations: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "loctree_closest_distance_evaluations",
			Help:    "Exact distance evaluations per closest-building query",
			Buckets: prometheus.ExponentialBuckets(1, 2, 12),
		}),
		Buildings: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "loctree_buildings",
			Help: "Number of buildings in the catalog",
		}),
	}
	if reg != nil {
		reg.MustRegister(m.Queries, m.Evaluations, m.Buildings)
	}
	return m
}
