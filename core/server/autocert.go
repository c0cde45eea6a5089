package server

import (
	"fmt"
	"net/http"
	"slices"
	"strings"

	"golang.org/x/crypto/acme"
	"golang.org/x/crypto/acme/autocert"
)

// AutocertConfig obtains certificates from Let's Encrypt on demand.
type AutocertConfig struct {
	Email    string   `env:"SERVER_AUTOCERT_EMAIL"`
	Domains  []string `env:"SERVER_AUTOCERT_DOMAINS" envSeparator:","`
	CacheDir string   `env:"SERVER_AUTOCERT_CACHE_DIR" envDefault:"./certs"`
}

// Enabled reports whether any domain is configured.
func (c AutocertConfig) Enabled() bool {
	return len(c.Domains) > 0
}

// NewAutocertManager validates cfg and returns a manager restricted to
// cfg.Domains. Certificates are cached on disk in cfg.CacheDir.
func NewAutocertManager(cfg AutocertConfig) (*autocert.Manager, error) {
	if !cfg.Enabled() {
		return nil, ErrNoAutocertDomains
	}
	if cfg.CacheDir == "" {
		return nil, ErrEmptyCertPath
	}
	domains := make([]string, 0, len(cfg.Domains))
	for _, d := range cfg.Domains {
		if d = strings.TrimSpace(strings.ToLower(d)); d != "" {
			domains = append(domains, d)
		}
	}
	if len(domains) == 0 {
		return nil, ErrNoAutocertDomains
	}

	return &autocert.Manager{
		Prompt:     autocert.AcceptTOS,
		Email:      cfg.Email,
		Cache:      autocert.DirCache(cfg.CacheDir),
		HostPolicy: autocert.HostWhitelist(slices.Compact(slices.Sorted(slices.Values(domains)))...),
	}, nil
}

// WithAutocert serves HTTPS with certificates from m, answering
// tls-alpn-01 challenges on the same listener.
func WithAutocert(m *autocert.Manager) Option {
	return func(s *Server) {
		if m == nil {
			return
		}
		cfg := DefaultTLSConfig()
		cfg.GetCertificate = m.GetCertificate
		cfg.NextProtos = []string{"h2", "http/1.1", acme.ALPNProto}
		s.tlsConfig = cfg
	}
}

// ChallengeHandler answers http-01 challenges and redirects every other
// request to HTTPS. Mount it on port 80 when tls-alpn-01 is unavailable.
func ChallengeHandler(m *autocert.Manager) http.Handler {
	return m.HTTPHandler(http.HandlerFunc(redirectHTTPS))
}

func redirectHTTPS(w http.ResponseWriter, r *http.Request) {
	host := r.Host
	if h, _, ok := strings.Cut(host, ":"); ok {
		host = h
	}
	target := fmt.Sprintf("https://%s%s", host, r.URL.RequestURI())
	http.Redirect(w, r, target, http.StatusMovedPermanently)
}
