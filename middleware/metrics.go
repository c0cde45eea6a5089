package middleware

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/dmitrymomot/onion/core/handler"
	"github.com/dmitrymomot/onion/core/router"
)

// unmatchedRoute labels requests that reached the not-found handler, so raw
// paths never become label values.
const unmatchedRoute = "unmatched"

// otherMethod labels requests with a non-standard method.
const otherMethod = "other"

// MetricsConfig configures the Prometheus middleware.
type MetricsConfig struct {
	Skip func(ctx handler.Context) bool
	// Registerer defaults to prometheus.DefaultRegisterer.
	Registerer prometheus.Registerer
	Namespace  string
	Subsystem  string
	// Buckets for the duration histogram (default: prometheus.DefBuckets).
	Buckets []float64
}

// Metrics records request count, duration, response size and in-flight
// requests, labelled by method, route pattern and status.
// Collectors are registered when the middleware is built; building it twice
// against one registry panics.
func Metrics[C handler.Context]() handler.Middleware[C] {
	return MetricsWithConfig[C](MetricsConfig{})
}

func MetricsWithConfig[C handler.Context](cfg MetricsConfig) handler.Middleware[C] {
	if cfg.Registerer == nil {
		cfg.Registerer = prometheus.DefaultRegisterer
	}
	if cfg.Namespace == "" {
		cfg.Namespace = "onion"
	}
	if cfg.Subsystem == "" {
		cfg.Subsystem = "http"
	}
	if cfg.Buckets == nil {
		cfg.Buckets = prometheus.DefBuckets
	}

	factory := promauto.With(cfg.Registerer)
	labels := []string{"method", "route", "status"}

	requests := factory.NewCounterVec(prometheus.CounterOpts{
		Namespace: cfg.Namespace,
		Subsystem: cfg.Subsystem,
		Name:      "requests_total",
		Help:      "Total HTTP requests processed.",
	}, labels)
	duration := factory.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: cfg.Namespace,
		Subsystem: cfg.Subsystem,
		Name:      "request_duration_seconds",
		Help:      "Time spent serving HTTP requests.",
		Buckets:   cfg.Buckets,
	}, labels)
	size := factory.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: cfg.Namespace,
		Subsystem: cfg.Subsystem,
		Name:      "response_size_bytes",
		Help:      "Size of HTTP response bodies.",
		Buckets:   prometheus.ExponentialBuckets(64, 4, 8),
	}, labels)
	inFlight := factory.NewGauge(prometheus.GaugeOpts{
		Namespace: cfg.Namespace,
		Subsystem: cfg.Subsystem,
		Name:      "requests_in_flight",
		Help:      "HTTP requests currently being served.",
	})

	return func(next handler.HandlerFunc[C]) handler.HandlerFunc[C] {
		return func(ctx C) handler.Response {
			if cfg.Skip != nil && cfg.Skip(ctx) {
				return next(ctx)
			}

			inFlight.Inc()
			defer inFlight.Dec()

			start := time.Now()
			out, resp := settle(ctx, next(ctx))

			route := router.RoutePattern(ctx)
			if route == "" {
				route = unmatchedRoute
			}
			lv := []string{methodLabel(ctx.Request().Method), route, strconv.Itoa(out.status)}
			requests.WithLabelValues(lv...).Inc()
			duration.WithLabelValues(lv...).Observe(time.Since(start).Seconds())
			size.WithLabelValues(lv...).Observe(float64(out.size))

			return resp
		}
	}
}

// MetricsHandler exposes the metrics gathered by g in the Prometheus text
// format (default gatherer when g is nil).
func MetricsHandler[C handler.Context](g prometheus.Gatherer) handler.HandlerFunc[C] {
	if g == nil {
		g = prometheus.DefaultGatherer
	}
	h := promhttp.HandlerFor(g, promhttp.HandlerOpts{})
	return func(ctx C) handler.Response {
		return func(w http.ResponseWriter, r *http.Request) error {
			h.ServeHTTP(w, r)
			return nil
		}
	}
}

// methodLabel keeps the method label bounded: client-chosen tokens share "other".
func methodLabel(m string) string {
	switch m {
	case http.MethodGet, http.MethodHead, http.MethodPost, http.MethodPut, http.MethodPatch,
		http.MethodDelete, http.MethodConnect, http.MethodOptions, http.MethodTrace:
		return m
	}
	return otherMethod
}
