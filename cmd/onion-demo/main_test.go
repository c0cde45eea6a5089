package main

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/onion/core/logger"
	"github.com/dmitrymomot/onion/core/response"
	"github.com/dmitrymomot/onion/core/router"
)

func TestNewStorage(t *testing.T) {
	t.Parallel()

	st, err := newStorage(t.Context(), Config{Storage: "memory"}, logger.Nop())
	require.NoError(t, err)
	assert.NotNil(t, st.sessions)
	assert.NotNil(t, st.limits)
	assert.Empty(t, st.checks)
	assert.NoError(t, st.close(t.Context()))

	_, err = newStorage(t.Context(), Config{Storage: "etcd"}, logger.Nop())
	assert.ErrorContains(t, err, "etcd")
}

func TestRandomSecret(t *testing.T) {
	t.Parallel()

	a, b := randomSecret(), randomSecret()
	assert.Len(t, a, 64)
	assert.NotEqual(t, a, b)
}

func TestHello(t *testing.T) {
	t.Parallel()

	r := router.New(
		router.WithContextFactory(newContext),
		router.WithErrorHandler[*Context](response.JSONErrorHandler[*Context]),
	)
	r.Get("/hello/:name?", hello)

	tests := []struct {
		path   string
		status int
		body   string
	}{
		{"/hello", http.StatusOK, `{"message":"hello world"}`},
		{"/hello/ann", http.StatusOK, `{"message":"hello ann"}`},
		{"/hello/ann?greeting=hi&shout=1", http.StatusOK, `{"message":"HI ANN"}`},
		{"/hello/ann?shout=maybe", http.StatusBadRequest, ""},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			t.Parallel()
			rec := httptest.NewRecorder()
			r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, tt.path, nil))
			assert.Equal(t, tt.status, rec.Code)
			if tt.body != "" {
				assert.JSONEq(t, tt.body, rec.Body.String())
			}
		})
	}
}
