package metrics

import (
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/valyala/fasthttp/fasthttpadaptor"
)

var (
	// HTTP metrics
	httpRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "flint",
		Subsystem: "http",
		Name:      "requests_total",
		Help:      "Total HTTP requests processed",
	}, []string{"method", "path", "status"})

	httpRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "flint",
		Subsystem: "http",
		Name:      "request_duration_seconds",
		Help:      "HTTP request latency in seconds",
		Buckets:   []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5},
	}, []string{"method", "path"})

	httpResponseSize = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "flint",
		Subsystem: "http",
		Name:      "response_size_bytes",
		Help:      "HTTP response size in bytes",
		Buckets:   prometheus.ExponentialBuckets(100, 10, 6),
	}, []string{"method", "path"})

	// Business metrics
	SwipesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "flint",
		Subsystem: "matching",
		Name:      "swipes_total",
		Help:      "Swipes recorded, by direction",
	}, []string{"direction"})

	MatchesTotal = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "flint",
		Subsystem: "matching",
		Name:      "matches_total",
		Help:      "Mutual matches created",
	})

	MessagesTotal = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "flint",
		Subsystem: "chat",
		Name:      "messages_total",
		Help:      "Chat messages accepted",
	})

	WSConnections = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "flint",
		Subsystem: "chat",
		Name:      "ws_connections",
		Help:      "Currently connected WebSocket clients",
	})
)

// Middleware records request count, latency, and response size per route.
func Middleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()

		err := c.Next()

		// Use the route pattern, not the raw path, to bound cardinality.
		path := c.Route().Path
		method := c.Method()
		status := strconv.Itoa(c.Response().StatusCode())

		httpRequestsTotal.WithLabelValues(method, path, status).Inc()
		httpRequestDuration.WithLabelValues(method, path).Observe(time.Since(start).Seconds())
		httpResponseSize.WithLabelValues(method, path).Observe(float64(len(c.Response().Body())))

		return err
	}
}

// Handler exposes the Prometheus registry at /metrics.
func Handler() fiber.Handler {
	h := fasthttpadaptor.NewFastHTTPHandler(promhttp.Handler())
	return func(c *fiber.Ctx) error {
		h(c.Context())
		return nil
	}
}
