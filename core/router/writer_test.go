package router

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestResponseWriter(t *testing.T) {
	t.Parallel()

	t.Run("first status wins", func(t *testing.T) {
		t.Parallel()

		rec := httptest.NewRecorder()
		w := newResponseWriter(rec)
		assert.False(t, w.Written())

		w.WriteHeader(http.StatusCreated)
		w.WriteHeader(http.StatusTeapot)

		assert.True(t, w.Written())
		assert.Equal(t, http.StatusCreated, w.Status())
		assert.Equal(t, http.StatusCreated, rec.Code)
	})

	t.Run("write implies 200 and counts bytes", func(t *testing.T) {
		t.Parallel()

		rec := httptest.NewRecorder()
		w := newResponseWriter(rec)

		n, err := w.Write([]byte("hello"))
		assert.NoError(t, err)
		assert.Equal(t, 5, n)
		_, _ = w.Write([]byte(" world"))

		assert.Equal(t, http.StatusOK, w.Status())
		assert.Equal(t, 11, w.Size())
		assert.Equal(t, "hello world", rec.Body.String())
	})

	t.Run("flush marks the response written", func(t *testing.T) {
		t.Parallel()

		rec := httptest.NewRecorder()
		w := newResponseWriter(rec)
		w.Flush()

		assert.True(t, w.Written())
		assert.True(t, rec.Flushed)
		assert.Same(t, http.ResponseWriter(rec), w.Unwrap())
	})

	t.Run("fallback response", func(t *testing.T) {
		t.Parallel()

		rec := httptest.NewRecorder()
		rec.Header().Set("Content-Length", "99")
		writeFallback(rec)

		assert.Equal(t, http.StatusInternalServerError, rec.Code)
		assert.Equal(t, fallbackBody, rec.Body.String())
		assert.Empty(t, rec.Header().Get("Content-Length"))
	})
}
