// Package metrics expone métricas Prometheus del servicio.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Recorder es lo que handlers y servicios usan para registrar eventos.
type Recorder interface {
	RecordRequest(method, route string, status int, latency time.Duration)
	RecordTokenIssued()
	RecordAuthRejected(reason string)
	RecordBidCreated()
	RecordDuplicateBid()
}

// Collector implementa Recorder con contadores e histogramas de Prometheus.
type Collector struct {
	requests      *prometheus.CounterVec
	latency       *prometheus.HistogramVec
	tokensIssued  prometheus.Counter
	authRejected  *prometheus.CounterVec
	bidsCreated   prometheus.Counter
	duplicateBids prometheus.Counter
}

// NewCollector crea el collector y registra sus métricas en reg.
func NewCollector(reg prometheus.Registerer) *Collector {
	c := &Collector{
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "solosphere_http_requests_total",
			Help: "HTTP requests by method, route and status code.",
		}, []string{"method", "route", "status"}),
		latency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "solosphere_http_request_duration_seconds",
			Help:    "HTTP request latency.",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "route"}),
		tokensIssued: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "solosphere_tokens_issued_total",
			Help: "Session tokens issued.",
		}),
		authRejected: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "solosphere_auth_rejected_total",
			Help: "Requests rejected by the access gate or ownership checks.",
		}, []string{"reason"}),
		bidsCreated: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "solosphere_bids_created_total",
			Help: "Bids inserted.",
		}),
		duplicateBids: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "solosphere_bids_duplicate_total",
			Help: "Bids rejected as duplicates.",
		}),
	}

	reg.MustRegister(
		c.requests,
		c.latency,
		c.tokensIssued,
		c.authRejected,
		c.bidsCreated,
		c.duplicateBids,
	)
	return c
}

func (c *Collector) RecordRequest(method, route string, status int, latency time.Duration) {
	if route == "" {
		route = "unmatched"
	}
	c.requests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	c.latency.WithLabelValues(method, route).Observe(latency.Seconds())
}

func (c *Collector) RecordTokenIssued() {
	c.tokensIssued.Inc()
}

func (c *Collector) RecordAuthRejected(reason string) {
	c.authRejected.WithLabelValues(reason).Inc()
}

func (c *Collector) RecordBidCreated() {
	c.bidsCreated.Inc()
}

func (c *Collector) RecordDuplicateBid() {
	c.duplicateBids.Inc()
}

// Handler devuelve el handler de scrape de Prometheus.
func Handler(gatherer prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})
}

type nopRecorder struct{}

// Nop devuelve un Recorder que descarta todo.
func Nop() Recorder { return nopRecorder{} }

func (nopRecorder) RecordRequest(string, string, int, time.Duration) {}
func (nopRecorder) RecordTokenIssued()                               {}
func (nopRecorder) RecordAuthRejected(string)                        {}
func (nopRecorder) RecordBidCreated()                                {}
func (nopRecorder) RecordDuplicateBid()                              {}
