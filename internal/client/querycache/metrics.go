package querycache

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics counts cache traffic per collection.
type Metrics struct {
	Hits        *prometheus.CounterVec
	Misses      *prometheus.CounterVec
	FetchErrors *prometheus.CounterVec
}

func NewMetrics(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		Hits: f.NewCounterVec(prometheus.CounterOpts{
			Name: "domaindesk_client_cache_hits_total",
			Help: "Reads served from a fresh cached value",
		}, []string{"collection"}),
		Misses: f.NewCounterVec(prometheus.CounterOpts{
			Name: "domaindesk_client_cache_misses_total",
			Help: "Reads that found no value or a stale one",
		}, []string{"collection"}),
		FetchErrors: f.NewCounterVec(prometheus.CounterOpts{
			Name: "domaindesk_client_cache_fetch_errors_total",
			Help: "Failed fetches",
		}, []string{"collection"}),
	}
}

func (m *Metrics) hit(k Key) {
	if m == nil {
		return
	}
	m.Hits.WithLabelValues(k.Collection).Inc()
}

func (m *Metrics) miss(k Key) {
	if m == nil {
		return
	}
	m.Misses.WithLabelValues(k.Collection).Inc()
}

func (m *Metrics) fetchError(k Key) {
	if m == nil {
		return
	}
	m.FetchErrors.WithLabelValues(k.Collection).Inc()
}
