package multipart_test

import (
	"bytes"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/onion/core/multipart"
)

func TestParseRequest(t *testing.T) {
	t.Parallel()

	ct, body := encode(t, "req",
		part{name: "name", value: "onion"},
		part{name: "avatar", filename: "me.png", contentType: "image/png", value: "\x89PNG"},
	)

	t.Run("parses body", func(t *testing.T) {
		t.Parallel()

		req := httptest.NewRequest(http.MethodPost, "/upload", bytes.NewReader(body))
		req.Header.Set("Content-Type", ct)

		b, err := multipart.ParseRequest(req, 0)
		require.NoError(t, err)
		assert.Equal(t, "onion", b.Field("name"))

		data, err := io.ReadAll(b.File("avatar").Open())
		require.NoError(t, err)
		assert.Equal(t, "\x89PNG", string(data))
	})

	t.Run("rejects other content types", func(t *testing.T) {
		t.Parallel()

		req := httptest.NewRequest(http.MethodPost, "/upload", strings.NewReader("{}"))
		req.Header.Set("Content-Type", "application/json")

		_, err := multipart.ParseRequest(req, 0)
		assert.ErrorIs(t, err, multipart.ErrNotMultipart)

		var pe *multipart.ParseError
		require.True(t, errors.As(err, &pe))
		assert.Equal(t, http.StatusUnsupportedMediaType, pe.StatusCode())
	})

	t.Run("enforces the size limit by content length", func(t *testing.T) {
		t.Parallel()

		req := httptest.NewRequest(http.MethodPost, "/upload", bytes.NewReader(body))
		req.Header.Set("Content-Type", ct)

		_, err := multipart.ParseRequest(req, 10)
		assert.ErrorIs(t, err, multipart.ErrBodyTooLarge)
	})

	t.Run("enforces the size limit while reading", func(t *testing.T) {
		t.Parallel()

		req := httptest.NewRequest(http.MethodPost, "/upload", io.MultiReader(bytes.NewReader(body)))
		req.ContentLength = -1
		req.Header.Set("Content-Type", ct)

		_, err := multipart.ParseRequest(req, 10)
		require.Error(t, err)
		assert.ErrorIs(t, err, multipart.ErrBodyTooLarge)

		var pe *multipart.ParseError
		require.ErrorAs(t, err, &pe)
		assert.Equal(t, http.StatusRequestEntityTooLarge, pe.StatusCode())
	})
}
