package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "sportsadmin"

// Outcome labels for workflow transitions
const (
	OutcomeSuccess  = "success"
	OutcomeRejected = "rejected"
	OutcomeError    = "error"
)

type Metrics struct {
	registry      *prometheus.Registry
	httpReqCnt    *prometheus.CounterVec
	httpDur       *prometheus.HistogramVec
	transitionCnt *prometheus.CounterVec
	transitionDur *prometheus.HistogramVec
	expiringDocs  prometheus.Gauge
}

func New() *Metrics {
	r := prometheus.NewRegistry()
	r.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	r.MustRegister(collectors.NewGoCollector())

	httpReqCnt := prometheus.NewCounterVec(prometheus.CounterOpts{Namespace: namespace, Name: "http_requests_total"}, []string{"method", "route", "status"})
	httpDur := prometheus.NewHistogramVec(prometheus.HistogramOpts{Namespace: namespace, Name: "http_request_duration_seconds", Buckets: prometheus.DefBuckets}, []string{"method", "route"})
	r.MustRegister(httpReqCnt, httpDur)

	transitionCnt := prometheus.NewCounterVec(prometheus.CounterOpts{Namespace: namespace, Name: "workflow_transitions_total"}, []string{"entity", "action", "outcome"})
	transitionDur := prometheus.NewHistogramVec(prometheus.HistogramOpts{Namespace: namespace, Name: "workflow_transition_duration_seconds", Buckets: prometheus.DefBuckets}, []string{"entity", "action"})
	expiringDocs := prometheus.NewGauge(prometheus.GaugeOpts{Namespace: namespace, Name: "documents_expiring"})
	r.MustRegister(transitionCnt, transitionDur, expiringDocs)

	return &Metrics{
		registry:      r,
		httpReqCnt:    httpReqCnt,
		httpDur:       httpDur,
		transitionCnt: transitionCnt,
		transitionDur: transitionDur,
		expiringDocs:  expiringDocs,
	}
}

// ObserveTransition records one workflow action. A nil receiver is a no-op.
func (m *Metrics) ObserveTransition(entity, action, outcome string, since time.Time) {
	if m == nil {
		return
	}
	m.transitionCnt.WithLabelValues(entity, action, outcome).Inc()
	m.transitionDur.WithLabelValues(entity, action).Observe(time.Since(since).Seconds())
}

// SetExpiringDocuments publishes the latest expiry scan result.
func (m *Metrics) SetExpiringDocuments(n int) {
	if m == nil {
		return
	}
	m.expiringDocs.Set(float64(n))
}

func (m *Metrics) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		start := time.Now()
		c.Next()
		m.httpReqCnt.WithLabelValues(c.Request.Method, route, strconv.Itoa(c.Writer.Status())).Inc()
		m.httpDur.WithLabelValues(c.Request.Method, route).Observe(time.Since(start).Seconds())
	}
}

func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// Registry exposes the underlying registry for tests and extra collectors.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}
