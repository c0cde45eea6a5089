package server

import "errors"

var (
	ErrMissingAddress       = errors.New("server: address is required")
	ErrServerAlreadyRunning = errors.New("server: already running")
	ErrEmptyCertPath        = errors.New("server: certificate or key file path is empty")
	ErrFailedLoadCert       = errors.New("server: failed to load certificate")
	ErrConflictingTLS       = errors.New("server: certificate files and autocert are both configured")
	ErrNoAutocertDomains    = errors.New("server: autocert needs at least one domain")
)
