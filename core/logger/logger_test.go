package logger_test

import (
	"bytes"
	"context"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/onion/core/logger"
)

type ctxKey struct{}

func TestNew(t *testing.T) {
	t.Parallel()

	t.Run("json output with attrs", func(t *testing.T) {
		t.Parallel()
		var buf bytes.Buffer
		log := logger.New(
			logger.WithOutput(&buf),
			logger.WithJSONFormatter(),
			logger.WithAttr(slog.String("service", "api")),
		)
		log.Info("hello", logger.Path("/x"))

		out := buf.String()
		assert.Contains(t, out, `"msg":"hello"`)
		assert.Contains(t, out, `"service":"api"`)
		assert.Contains(t, out, `"path":"/x"`)
	})

	t.Run("level filters records", func(t *testing.T) {
		t.Parallel()
		var buf bytes.Buffer
		log := logger.New(logger.WithOutput(&buf), logger.WithLevel(slog.LevelWarn))
		log.Info("hidden")
		log.Warn("shown")

		assert.NotContains(t, buf.String(), "hidden")
		assert.Contains(t, buf.String(), "shown")
	})

	t.Run("context values are extracted", func(t *testing.T) {
		t.Parallel()
		var buf bytes.Buffer
		log := logger.New(
			logger.WithOutput(&buf),
			logger.WithContextValue("request_id", ctxKey{}),
		)
		ctx := context.WithValue(context.Background(), ctxKey{}, "req-42")
		log.InfoContext(ctx, "with ctx")
		log.With("k", "v").InfoContext(context.Background(), "without ctx")

		lines := bytes.Split(bytes.TrimSpace(buf.Bytes()), []byte("\n"))
		require.Len(t, lines, 2)
		assert.Contains(t, string(lines[0]), "request_id=req-42")
		assert.NotContains(t, string(lines[1]), "request_id")
		assert.Contains(t, string(lines[1]), "k=v")
	})

	t.Run("development preset", func(t *testing.T) {
		t.Parallel()
		var buf bytes.Buffer
		log := logger.New(logger.WithDevelopment("demo"), logger.WithOutput(&buf))
		log.Debug("dbg")
		assert.Contains(t, buf.String(), "service=demo")
		assert.Contains(t, buf.String(), "env=development")
	})
}

func TestFromConfig(t *testing.T) {
	t.Parallel()
	var buf bytes.Buffer
	log := logger.FromConfig(logger.Config{
		Level:   "error",
		Format:  "JSON",
		Service: "svc",
		Env:     "test",
	}, logger.WithOutput(&buf))

	log.Warn("dropped")
	log.Error("kept")

	out := buf.String()
	assert.NotContains(t, out, "dropped")
	assert.Contains(t, out, `"service":"svc"`)
	assert.Contains(t, out, `"env":"test"`)
}

func TestParseLevel(t *testing.T) {
	t.Parallel()
	assert.Equal(t, slog.LevelDebug, logger.ParseLevel("DEBUG"))
	assert.Equal(t, slog.LevelWarn, logger.ParseLevel("warning"))
	assert.Equal(t, slog.LevelError, logger.ParseLevel(" error "))
	assert.Equal(t, slog.LevelInfo, logger.ParseLevel("verbose"))
}

func TestNop(t *testing.T) {
	t.Parallel()
	log := logger.Nop()
	require.NotNil(t, log)
	assert.False(t, log.Enabled(context.Background(), slog.LevelError))
}
