package router_test

import (
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/dmitrymomot/onion/core/router"
)

func overrideRequest(method, header, query, form string) *http.Request {
	target := "/resource"
	if query != "" {
		target += "?_method=" + url.QueryEscape(query)
	}

	var req *http.Request
	if form != "" {
		body := url.Values{"_method": {form}}.Encode()
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	} else {
		req = httptest.NewRequest(method, target, nil)
	}
	if header != "" {
		req.Header.Set(router.DefaultOverrideHeader, header)
	}
	return req
}

func TestMethodOverrideResolve(t *testing.T) {
	t.Parallel()

	o := router.DefaultMethodOverride()

	tests := []struct {
		name   string
		method string
		header string
		query  string
		form   string
		want   string
	}{
		{name: "header beats query and form", method: http.MethodPost, header: "PUT", query: "PATCH", form: "DELETE", want: http.MethodPut},
		{name: "query beats form", method: http.MethodPost, query: "PATCH", form: "DELETE", want: http.MethodPatch},
		{name: "form alone", method: http.MethodPost, form: "delete", want: http.MethodDelete},
		{name: "case and space insensitive", method: http.MethodPost, header: " patch ", want: http.MethodPatch},
		{name: "disallowed header value falls through", method: http.MethodPost, header: "GET", query: "DELETE", want: http.MethodDelete},
		{name: "nothing allowed keeps POST", method: http.MethodPost, header: "TRACE", query: "HEAD", want: http.MethodPost},
		{name: "no sources keeps POST", method: http.MethodPost, want: http.MethodPost},
		{name: "only POST is overridden", method: http.MethodGet, header: "DELETE", query: "PUT", want: http.MethodGet},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			req := overrideRequest(tt.method, tt.header, tt.query, tt.form)
			assert.Equal(t, tt.want, o.Resolve(req))
		})
	}
}

func TestMethodOverrideDisabledSources(t *testing.T) {
	t.Parallel()

	headerOnly := router.MethodOverride{Header: "X-Method"}

	req := overrideRequest(http.MethodPost, "", "PUT", "DELETE")
	assert.Equal(t, http.MethodPost, headerOnly.Resolve(req))

	req = httptest.NewRequest(http.MethodPost, "/", nil)
	req.Header.Set("X-Method", "DELETE")
	assert.Equal(t, http.MethodDelete, headerOnly.Resolve(req))
}

func TestMethodOverrideIgnoresNonFormBodies(t *testing.T) {
	t.Parallel()

	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader("_method=DELETE"))
	req.Header.Set("Content-Type", "text/plain")

	assert.Equal(t, http.MethodPost, router.DefaultMethodOverride().Resolve(req))
}
