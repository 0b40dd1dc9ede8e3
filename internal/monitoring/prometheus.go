package monitoring

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "ascvd"

// promCollectors owns one registry per Metrics instance.
type promCollectors struct {
	registry *prometheus.Registry

	httpRequests         *prometheus.CounterVec
	httpDuration         *prometheus.HistogramVec
	calculations         *prometheus.CounterVec
	calculationDuration  prometheus.Histogram
	cacheLookups         *prometheus.CounterVec
	chatMessages         prometheus.Counter
	rateLimitBlocks      *prometheus.CounterVec
	rateLimitRedisErrors prometheus.Counter
}

func newPromCollectors() *promCollectors {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	factory := promauto.With(reg)

	return &promCollectors{
		registry: reg,
		httpRequests: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "http",
				Name:      "requests_total",
				Help:      "Total HTTP requests processed",
			},
			[]string{"method", "route", "status"},
		),
		httpDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Subsystem: "http",
				Name:      "request_duration_seconds",
				Help:      "Duration of HTTP requests",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"method", "route"},
		),
		calculations: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "risk",
				Name:      "calculations_total",
				Help:      "Risk calculations by profile and outcome",
			},
			[]string{"profile", "outcome"},
		),
		calculationDuration: factory.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Subsystem: "risk",
				Name:      "calculation_duration_seconds",
				Help:      "Time spent parsing and evaluating a calculation",
				Buckets:   prometheus.ExponentialBuckets(1e-6, 4, 8),
			},
		),
		cacheLookups: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "cache",
				Name:      "lookups_total",
				Help:      "Response cache lookups by result",
			},
			[]string{"result"},
		),
		chatMessages: factory.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "chat",
				Name:      "messages_total",
				Help:      "Chat messages accepted",
			},
		),
		rateLimitBlocks: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "ratelimit",
				Name:      "blocks_total",
				Help:      "Requests rejected by the rate limiter",
			},
			[]string{"scope"},
		),
		rateLimitRedisErrors: factory.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "ratelimit",
				Name:      "redis_errors_total",
				Help:      "Redis failures that forced the in-memory limiter",
			},
		),
	}
}

func (p *promCollectors) observeHTTP(method, route string, statusCode int, duration time.Duration) {
	if route == "" {
		route = "unmatched"
	}
	p.httpRequests.WithLabelValues(method, route, strconv.Itoa(statusCode)).Inc()
	p.httpDuration.WithLabelValues(method, route).Observe(duration.Seconds())
}

// Handler serves the prometheus exposition format for this Metrics instance
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.prom.registry, promhttp.HandlerOpts{})
}
