package middleware_test

import (
	"net/http"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/onion/core/handler"
	"github.com/dmitrymomot/onion/core/response"
	"github.com/dmitrymomot/onion/core/router"
	"github.com/dmitrymomot/onion/middleware"
)

func labels(m *dto.Metric) map[string]string {
	out := make(map[string]string)
	for _, lp := range m.GetLabel() {
		out[lp.GetName()] = lp.GetValue()
	}
	return out
}

func findFamily(t *testing.T, reg *prometheus.Registry, name string) *dto.MetricFamily {
	t.Helper()
	families, err := reg.Gather()
	require.NoError(t, err)
	for _, mf := range families {
		if mf.GetName() == name {
			return mf
		}
	}
	t.Fatalf("metric %s not found", name)
	return nil
}

func TestMetrics(t *testing.T) {
	t.Parallel()

	reg := prometheus.NewRegistry()
	r := newRouter()
	r.Use(middleware.MetricsWithConfig[*router.Context](middleware.MetricsConfig{Registerer: reg}))
	r.Get("/users/:id", ok)
	r.Get("/fail", func(ctx *router.Context) handler.Response {
		return response.Error(response.ErrBadRequest)
	})

	serve(r, get("/users/1"))
	serve(r, get("/users/2"))
	serve(r, get("/fail"))
	serve(r, get("/nope/123"))

	counts := make(map[string]float64)
	for _, m := range findFamily(t, reg, "onion_http_requests_total").GetMetric() {
		l := labels(m)
		assert.Equal(t, http.MethodGet, l["method"])
		counts[l["route"]+" "+l["status"]] = m.GetCounter().GetValue()
	}
	assert.Equal(t, map[string]float64{
		"/users/:id 200": 2,
		"/fail 400":      1,
		"unmatched 404":  1,
	}, counts)

	for _, m := range findFamily(t, reg, "onion_http_response_size_bytes").GetMetric() {
		if labels(m)["route"] == "/users/:id" {
			assert.Equal(t, uint64(2), m.GetHistogram().GetSampleCount())
			assert.InDelta(t, 4, m.GetHistogram().GetSampleSum(), 0)
		}
	}

	inFlight := findFamily(t, reg, "onion_http_requests_in_flight")
	assert.Zero(t, inFlight.GetMetric()[0].GetGauge().GetValue())
	findFamily(t, reg, "onion_http_request_duration_seconds")
}

func TestMetricsSkipAndNamespace(t *testing.T) {
	t.Parallel()

	reg := prometheus.NewRegistry()
	r := newRouter()
	r.Use(middleware.MetricsWithConfig[*router.Context](middleware.MetricsConfig{
		Registerer: reg,
		Namespace:  "shop",
		Subsystem:  "api",
		Skip:       func(ctx handler.Context) bool { return ctx.Request().URL.Path == "/metrics" },
	}))
	r.Get("/", ok)
	r.Get("/metrics", middleware.MetricsHandler[*router.Context](reg))

	serve(r, get("/"))
	w := serve(r, get("/metrics"))
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Header().Get("Content-Type"), "text/plain")
	assert.Contains(t, w.Body.String(), `shop_api_requests_total{method="GET",route="/",status="200"} 1`)
	assert.NotContains(t, w.Body.String(), `route="/metrics"`)
}

func TestMetricsDuplicateRegistrationPanics(t *testing.T) {
	t.Parallel()

	reg := prometheus.NewRegistry()
	cfg := middleware.MetricsConfig{Registerer: reg}
	middleware.MetricsWithConfig[*router.Context](cfg)
	assert.Panics(t, func() { middleware.MetricsWithConfig[*router.Context](cfg) })
}

func TestMetricsMethodLabel(t *testing.T) {
	t.Parallel()

	reg := prometheus.NewRegistry()
	r := newRouter()
	r.Use(middleware.MetricsWithConfig[*router.Context](middleware.MetricsConfig{Registerer: reg}))
	r.Get("/", ok)

	serve(r, get("/"))
	for _, m := range []string{"PURGE", "X-RANDOM-1", "X-RANDOM-2"} {
		req := get("/")
		req.Method = m
		serve(r, req)
	}

	methods := make(map[string]float64)
	for _, m := range findFamily(t, reg, "onion_http_requests_total").GetMetric() {
		methods[labels(m)["method"]] += m.GetCounter().GetValue()
	}
	assert.Equal(t, map[string]float64{http.MethodGet: 1, "other": 3}, methods)
}
