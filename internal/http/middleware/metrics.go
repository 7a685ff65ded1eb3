package middleware

import (
	"errors"
	"strconv"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
)

// unmatchedRoute is the route label for requests that matched no route, so
// 404 scans cannot grow the series count.
const unmatchedRoute = "unmatched"

// HTTPMetrics holds the HTTP traffic collectors. Series are labelled by the
// registered Gin route (e.g. /v1/quotes/:id), never by the raw URL.
type HTTPMetrics struct {
	requests *prometheus.CounterVec   // method, route, status
	duration *prometheus.HistogramVec // method, route
	size     *prometheus.HistogramVec // method, route
	inflight prometheus.Gauge
}

// NewHTTPMetrics creates the collectors and registers them on reg. Collectors
// already present on reg are reused, so several routers may share one
// registry.
func NewHTTPMetrics(reg prometheus.Registerer) (*HTTPMetrics, error) {
	m := &HTTPMetrics{
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "quotes",
			Name:      "http_requests_total",
			Help:      "HTTP requests by method, route and status code.",
		}, []string{"method", "route", "status"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "quotes",
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency in seconds.",
			Buckets:   []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5},
		}, []string{"method", "route"}),
		size: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "quotes",
			Name:      "http_response_size_bytes",
			Help:      "HTTP response body size in bytes.",
			// A page of 100 quotes is roughly 40 KiB.
			Buckets: prometheus.ExponentialBuckets(256, 4, 7),
		}, []string{"method", "route"}),
		inflight: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "quotes",
			Name:      "http_requests_inflight",
			Help:      "HTTP requests currently being served.",
		}),
	}
	if reg == nil {
		return m, nil
	}

	var err error
	if m.requests, err = registerOrReuse(reg, m.requests); err != nil {
		return nil, err
	}
	if m.duration, err = registerOrReuse(reg, m.duration); err != nil {
		return nil, err
	}
	if m.size, err = registerOrReuse(reg, m.size); err != nil {
		return nil, err
	}
	if m.inflight, err = registerOrReuse(reg, m.inflight); err != nil {
		return nil, err
	}
	return m, nil
}

func registerOrReuse[C prometheus.Collector](reg prometheus.Registerer, c C) (C, error) {
	if err := reg.Register(c); err != nil {
		var are prometheus.AlreadyRegisteredError
		if errors.As(err, &are) {
			if existing, ok := are.ExistingCollector.(C); ok {
				return existing, nil
			}
		}
		return c, err
	}
	return c, nil
}

// Handler instruments every request passing through it.
func (m *HTTPMetrics) Handler() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		m.inflight.Inc()
		defer m.inflight.Dec()

		c.Next()

		route := c.FullPath()
		if route == "" {
			route = unmatchedRoute
		}
		method := c.Request.Method

		m.requests.WithLabelValues(method, route, strconv.Itoa(c.Writer.Status())).Inc()
		m.duration.WithLabelValues(method, route).Observe(time.Since(start).Seconds())
		// -1 when nothing was written.
		if n := c.Writer.Size(); n >= 0 {
			m.size.WithLabelValues(method, route).Observe(float64(n))
		}
	}
}

var (
	defaultHTTPMetrics     *HTTPMetrics
	defaultHTTPMetricsOnce sync.Once
)

// Metrics instruments requests with collectors on the default Prometheus
// registry, the one served by promhttp.Handler().
func Metrics() gin.HandlerFunc {
	defaultHTTPMetricsOnce.Do(func() {
		m, err := NewHTTPMetrics(prometheus.DefaultRegisterer)
		if err != nil {
			panic(err)
		}
		defaultHTTPMetrics = m
	})
	return defaultHTTPMetrics.Handler()
}
