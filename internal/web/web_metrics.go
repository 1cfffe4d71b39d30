package web

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Outcome labels beyond the routing kinds.
const (
	outcomeError  = "error"
	outcomeStatic = "static"
)

// PageMetrics counts resolved page requests by outcome.
type PageMetrics struct {
	requests       *prometheus.CounterVec
	renderDuration *prometheus.HistogramVec
	gatherer       prometheus.Gatherer
}

// NewPageMetrics registers the page metrics on reg.
// A nil reg gets a fresh private registry.
func NewPageMetrics(reg *prometheus.Registry) *PageMetrics {
	if reg == nil {
		reg = prometheus.NewRegistry()
	}
	factory := promauto.With(reg)
	return &PageMetrics{
		requests: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "notest",
			Subsystem: "page",
			Name:      "requests_total",
			Help:      "Page requests by routing outcome",
		}, []string{"outcome"}),
		renderDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "notest",
			Subsystem: "page",
			Name:      "render_duration_seconds",
			Help:      "Time spent resolving and writing a page response",
			Buckets:   prometheus.DefBuckets,
		}, []string{"outcome"}),
		gatherer: reg,
	}
}

func (m *PageMetrics) observe(outcome string, start time.Time) {
	if m == nil {
		return
	}
	m.requests.WithLabelValues(outcome).Inc()
	m.renderDuration.WithLabelValues(outcome).Observe(time.Since(start).Seconds())
}

// Handler serves the registry in the Prometheus exposition format.
func (m *PageMetrics) Handler() gin.HandlerFunc {
	return gin.WrapH(promhttp.HandlerFor(m.gatherer, promhttp.HandlerOpts{}))
}
