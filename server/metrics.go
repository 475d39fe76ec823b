package server

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// metrics live in a registry per server so several servers can coexist in one process
type metrics struct {
	registry *prometheus.Registry
	moves    *prometheus.CounterVec
	requests *prometheus.HistogramVec
}

func newMetrics() *metrics {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)
	return &metrics{
		registry: reg,
		moves: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "tictactoe_moves_total",
			Help: "Moves played by source (policy or random fallback)",
		}, []string{"source"}),
		requests: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "tictactoe_request_duration_seconds",
			Help:    "Request latency by route and status",
			Buckets: []float64{0.0001, 0.0005, 0.001, 0.005, 0.01, 0.05, 0.1},
		}, []string{"route", "status"}),
	}
}

func (m *metrics) observeMove(fallback bool) {
	source := "policy"
	if fallback {
		source = "fallback"
	}
	m.moves.WithLabelValues(source).Inc()
}

func (m *metrics) instrument() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		m.requests.WithLabelValues(route, strconv.Itoa(c.Writer.Status())).Observe(time.Since(start).Seconds())
	}
}

func (m *metrics) handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
