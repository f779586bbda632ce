package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the server-side Prometheus metrics.
type Metrics struct {
	RequestDuration      *prometheus.HistogramVec
	DomainsCreated       prometheus.Counter
	DomainsDeleted       prometheus.Counter
	OffersUpdated        prometheus.Counter
	ConsultationsCreated prometheus.Counter
	AuthFailures         *prometheus.CounterVec
	RateLimited          prometheus.Counter
}

// New creates and registers all server metrics on reg. A nil reg uses the
// default Prometheus registerer.
func New(reg prometheus.Registerer) *Metrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	f := promauto.With(reg)
	return &Metrics{
		RequestDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "domaindesk_http_request_duration_seconds",
			Help:    "HTTP request latency by route, method and status",
			Buckets: prometheus.DefBuckets,
		}, []string{"route", "method", "status"}),
		DomainsCreated: f.NewCounter(prometheus.CounterOpts{
			Name: "domaindesk_domains_created_total",
			Help: "Total number of domains added to the inventory",
		}),
		DomainsDeleted: f.NewCounter(prometheus.CounterOpts{
			Name: "domaindesk_domains_deleted_total",
			Help: "Total number of domains removed from the inventory",
		}),
		OffersUpdated: f.NewCounter(prometheus.CounterOpts{
			Name: "domaindesk_offers_updated_total",
			Help: "Total number of offer updates",
		}),
		ConsultationsCreated: f.NewCounter(prometheus.CounterOpts{
			Name: "domaindesk_consultations_created_total",
			Help: "Total number of consultations opened",
		}),
		AuthFailures: f.NewCounterVec(prometheus.CounterOpts{
			Name: "domaindesk_auth_failures_total",
			Help: "Rejected requests by reason",
		}, []string{"reason"}),
		RateLimited: f.NewCounter(prometheus.CounterOpts{
			Name: "domaindesk_rate_limited_total",
			Help: "Requests rejected by the rate limiter",
		}),
	}
}

// ObserveRequest records one request latency.
func (m *Metrics) ObserveRequest(route, method string, status int, d time.Duration) {
	if m == nil {
		return
	}
	m.RequestDuration.WithLabelValues(route, method, strconv.Itoa(status)).Observe(d.Seconds())
}

func (m *Metrics) IncrementDomainsCreated() {
	if m != nil {
		m.DomainsCreated.Inc()
	}
}

func (m *Metrics) IncrementDomainsDeleted() {
	if m != nil {
		m.DomainsDeleted.Inc()
	}
}

func (m *Metrics) IncrementOffersUpdated() {
	if m != nil {
		m.OffersUpdated.Inc()
	}
}

func (m *Metrics) IncrementConsultationsCreated() {
	if m != nil {
		m.ConsultationsCreated.Inc()
	}
}

func (m *Metrics) IncrementAuthFailure(reason string) {
	if m != nil {
		m.AuthFailures.WithLabelValues(reason).Inc()
	}
}

func (m *Metrics) IncrementRateLimited() {
	if m != nil {
		m.RateLimited.Inc()
	}
}
