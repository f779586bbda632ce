package mutation

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics records mutation outcomes.
type Metrics struct {
	Outcomes *prometheus.CounterVec
	Duration *prometheus.HistogramVec
}

func NewMetrics(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		Outcomes: f.NewCounterVec(prometheus.CounterOpts{
			Name: "domaindesk_client_mutations_total",
			Help: "Mutations by name and outcome",
		}, []string{"mutation", "outcome"}),
		Duration: f.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "domaindesk_client_mutation_duration_seconds",
			Help:    "Time from pending to commit or rollback",
			Buckets: prometheus.DefBuckets,
		}, []string{"mutation"}),
	}
}

func (m *Metrics) observe(name string, outcome Phase, d time.Duration) {
	if m == nil {
		return
	}
	m.Outcomes.WithLabelValues(name, outcome.String()).Inc()
	m.Duration.WithLabelValues(name).Observe(d.Seconds())
}
