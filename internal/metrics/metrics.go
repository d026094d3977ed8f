package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "storefront"

type Metrics struct {
	Requests      *prometheus.CounterVec
	LatencyMS     *prometheus.HistogramVec
	OrdersCreated prometheus.Counter
	OrdersPaid    *prometheus.CounterVec
}

// New registers the collectors on reg. Tests pass a fresh registry.
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		Requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total number of HTTP requests.",
		}, []string{"method", "route", "status"}),
		LatencyMS: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "request_duration_ms",
			Help:      "HTTP request latency in milliseconds.",
			Buckets:   []float64{5, 10, 25, 50, 100, 250, 500, 1000, 2500, 5000},
		}, []string{"method", "route"}),
		OrdersCreated: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "orders",
			Name:      "created_total",
			Help:      "Orders created from carts.",
		}),
		OrdersPaid: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "orders",
			Name:      "paid_total",
			Help:      "Orders marked paid, by payment method.",
		}, []string{"method"}),
	}

	reg.MustRegister(m.Requests, m.LatencyMS, m.OrdersCreated, m.OrdersPaid)
	return m
}

// Middleware records one sample per request, labelled by the route template
// so path parameters do not explode cardinality.
func (m *Metrics) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		method := c.Request.Method

		m.Requests.WithLabelValues(method, route, strconv.Itoa(c.Writer.Status())).Inc()
		m.LatencyMS.WithLabelValues(method, route).Observe(float64(time.Since(start).Milliseconds()))
	}
}

// IncOrderCreated is safe on a nil receiver.
func (m *Metrics) IncOrderCreated() {
	if m == nil {
		return
	}
	m.OrdersCreated.Inc()
}

// IncOrderPaid is safe on a nil receiver.
func (m *Metrics) IncOrderPaid(method string) {
	if m == nil {
		return
	}
	m.OrdersPaid.WithLabelValues(method).Inc()
}

func Handler(g prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(g, promhttp.HandlerOpts{})
}
