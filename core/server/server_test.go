package server_test

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/onion/core/logger"
	"github.com/dmitrymomot/onion/core/server"
)

func start(t *testing.T, srv *server.Server, h http.Handler) (context.CancelFunc, <-chan error) {
	t.Helper()
	ctx, cancel := context.WithCancel(t.Context())
	done := make(chan error, 1)
	go func() { done <- srv.Run(ctx, h) }()

	select {
	case <-srv.Ready():
	case err := <-done:
		t.Fatalf("server exited early: %v", err)
	case <-time.After(2 * time.Second):
		t.Fatal("server did not start")
	}
	return cancel, done
}

func TestRunServesAndStops(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	srv := server.New("127.0.0.1:0", server.WithLogger(logger.New(logger.WithOutput(&buf))))
	cancel, done := start(t, srv, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, "hello")
	}))

	resp, err := http.Get("http://" + srv.Addr() + "/")
	require.NoError(t, err)
	body, _ := io.ReadAll(resp.Body)
	_ = resp.Body.Close()
	assert.Equal(t, "hello", string(body))

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("server did not stop")
	}
	assert.Contains(t, buf.String(), "server started")
	assert.Contains(t, buf.String(), "server stopped")

	assert.ErrorIs(t, srv.Run(t.Context(), http.NotFoundHandler()), server.ErrServerAlreadyRunning)
}

func TestRunDrainsInFlightRequests(t *testing.T) {
	t.Parallel()

	started := make(chan struct{})
	srv := server.New("127.0.0.1:0", server.WithShutdownTimeout(2*time.Second))
	cancel, done := start(t, srv, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		close(started)
		time.Sleep(100 * time.Millisecond)
		_, _ = io.WriteString(w, "finished")
	}))

	result := make(chan string, 1)
	go func() {
		resp, err := http.Get("http://" + srv.Addr() + "/")
		if err != nil {
			result <- err.Error()
			return
		}
		defer resp.Body.Close()
		body, _ := io.ReadAll(resp.Body)
		result <- string(body)
	}()

	<-started
	cancel()
	assert.Equal(t, "finished", <-result)
	assert.NoError(t, <-done)
}

func TestRunListenError(t *testing.T) {
	t.Parallel()

	srv := server.New("256.0.0.1:99999")
	assert.Error(t, srv.Run(t.Context(), http.NotFoundHandler()))
}

func TestNewFromConfig(t *testing.T) {
	t.Parallel()

	_, err := server.NewFromConfig(server.Config{})
	assert.ErrorIs(t, err, server.ErrMissingAddress)

	_, err = server.NewFromConfig(server.Config{Addr: ":0", TLSCertFile: "cert.pem"})
	assert.ErrorIs(t, err, server.ErrEmptyCertPath)

	_, err = server.NewFromConfig(server.Config{Addr: ":0", TLSCertFile: "missing.pem", TLSKeyFile: "missing.key"})
	assert.ErrorIs(t, err, server.ErrFailedLoadCert)

	srv, err := server.NewFromConfig(server.Config{Addr: "127.0.0.1:0", ShutdownTimeout: time.Second})
	require.NoError(t, err)
	assert.Equal(t, "127.0.0.1:0", srv.Addr())
}

func TestTLSConfigs(t *testing.T) {
	t.Parallel()

	def := server.DefaultTLSConfig()
	assert.Equal(t, uint16(0x0303), def.MinVersion)
	assert.NotEmpty(t, def.CipherSuites)

	modern := server.ModernTLSConfig()
	assert.Equal(t, uint16(0x0304), modern.MinVersion)
	assert.Empty(t, modern.CipherSuites)
}

func TestAutocert(t *testing.T) {
	t.Parallel()

	_, err := server.NewAutocertManager(server.AutocertConfig{CacheDir: t.TempDir()})
	assert.ErrorIs(t, err, server.ErrNoAutocertDomains)

	_, err = server.NewAutocertManager(server.AutocertConfig{Domains: []string{" ", ""}, CacheDir: t.TempDir()})
	assert.ErrorIs(t, err, server.ErrNoAutocertDomains)

	m, err := server.NewAutocertManager(server.AutocertConfig{
		Email:    "ops@example.com",
		Domains:  []string{"Example.com", "www.example.com"},
		CacheDir: t.TempDir(),
	})
	require.NoError(t, err)
	require.NoError(t, m.HostPolicy(t.Context(), "example.com"))
	assert.Error(t, m.HostPolicy(t.Context(), "evil.test"))

	_, err = server.NewFromConfig(server.Config{
		Addr:        ":0",
		TLSCertFile: "cert.pem",
		TLSKeyFile:  "key.pem",
		Autocert:    server.AutocertConfig{Domains: []string{"example.com"}, CacheDir: t.TempDir()},
	})
	assert.ErrorIs(t, err, server.ErrConflictingTLS)

	srv, err := server.NewFromConfig(server.Config{
		Addr:     ":0",
		Autocert: server.AutocertConfig{Domains: []string{"example.com"}, CacheDir: t.TempDir()},
	})
	require.NoError(t, err)
	assert.NotNil(t, srv)
}

func TestChallengeHandlerRedirects(t *testing.T) {
	t.Parallel()

	m, err := server.NewAutocertManager(server.AutocertConfig{Domains: []string{"example.com"}, CacheDir: t.TempDir()})
	require.NoError(t, err)

	rec := httptest.NewRecorder()
	server.ChallengeHandler(m).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "http://example.com:80/path?q=1", nil))
	assert.Equal(t, http.StatusMovedPermanently, rec.Code)
	assert.Equal(t, "https://example.com/path?q=1", rec.Header().Get("Location"))
}
