package response_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/dmitrymomot/onion/core/handler"
	"github.com/dmitrymomot/onion/core/response"
	"github.com/dmitrymomot/onion/core/router"
)

func benchRender(b *testing.B, build func() handler.Response) {
	b.Helper()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	b.ReportAllocs()
	for b.Loop() {
		_ = build()(httptest.NewRecorder(), req)
	}
}

func BenchmarkString(b *testing.B) {
	benchRender(b, func() handler.Response {
		return response.String("Hello, World! This is a test response.")
	})
}

func BenchmarkJSON(b *testing.B) {
	data := map[string]any{
		"id":      123,
		"name":    "test",
		"enabled": true,
		"tags":    []string{"tag1", "tag2", "tag3"},
	}
	benchRender(b, func() handler.Response { return response.JSON(data) })
}

func BenchmarkStreamJSON(b *testing.B) {
	benchRender(b, func() handler.Response {
		items := make(chan any, 100)
		for j := range 100 {
			items <- map[string]int{"id": j, "value": j * 2}
		}
		close(items)
		return response.StreamJSON(items)
	})
}

func BenchmarkSSE(b *testing.B) {
	benchRender(b, func() handler.Response {
		events := make(chan any, 10)
		for j := range 10 {
			events <- map[string]int{"count": j}
		}
		close(events)
		return response.SSE(events, response.WithoutKeepAlive())
	})
}

func BenchmarkErrorHandler(b *testing.B) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	b.ReportAllocs()
	for b.Loop() {
		w := httptest.NewRecorder()
		ctx := router.NewContext(w, req, nil)
		_ = response.JSONErrorHandler(ctx, response.ErrNotFound)(w, req)
	}
}
