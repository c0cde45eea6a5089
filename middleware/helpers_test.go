package middleware_test

import (
	"net/http"
	"net/http/httptest"

	"github.com/dmitrymomot/onion/core/handler"
	"github.com/dmitrymomot/onion/core/response"
	"github.com/dmitrymomot/onion/core/router"
)

func serve(r http.Handler, req *http.Request) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func get(path string) *http.Request {
	return httptest.NewRequest(http.MethodGet, path, nil)
}

func ok(ctx *router.Context) handler.Response {
	return response.String("ok")
}

func newRouter(opts ...router.Option[*router.Context]) router.Router[*router.Context] {
	opts = append([]router.Option[*router.Context]{
		router.WithErrorHandler(response.JSONErrorHandler[*router.Context]),
	}, opts...)
	return router.New(opts...)
}

func post(path string) *http.Request {
	return httptest.NewRequest(http.MethodPost, path, nil)
}
