package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/dmitrymomot/onion/core/cookie"
	"github.com/dmitrymomot/onion/core/logger"
	"github.com/dmitrymomot/onion/pkg/clientip"
)

// Manager ties a Store to a signed session cookie holding the token.
type Manager[Data any] struct {
	store   Store[Data]
	cookies *cookie.Manager
	cfg     Config
	logger  *slog.Logger
}

// NewManager creates a Manager. The cookie manager signs the token cookie.
func NewManager[Data any](store Store[Data], cookies *cookie.Manager, opts ...Option) *Manager[Data] {
	cfg := defaultConfig()
	for _, opt := range opts {
		opt(&cfg)
	}
	return &Manager[Data]{
		store:   store,
		cookies: cookies,
		cfg:     cfg,
		logger:  logger.Nop(),
	}
}

// SetLogger replaces the logger used by Run.
func (m *Manager[Data]) SetLogger(l *slog.Logger) {
	if l != nil {
		m.logger = l
	}
}

// TTL returns the configured idle timeout.
func (m *Manager[Data]) TTL() time.Duration {
	return m.cfg.TTL
}

// Load returns the session referenced by the request cookie. A missing,
// forged, unknown or expired token yields a fresh anonymous session.
// Only store failures are returned as errors.
func (m *Manager[Data]) Load(ctx context.Context, r *http.Request) (Session[Data], error) {
	token, err := m.cookies.GetSigned(r, m.cfg.CookieName)
	if err == nil {
		sess, err := m.store.GetByToken(ctx, token)
		switch {
		case err == nil && !sess.IsExpired():
			return sess, nil
		case err != nil && !errors.Is(err, ErrNotFound):
			return Session[Data]{}, fmt.Errorf("session: load: %w", err)
		}
	}

	return New[Data](Params{
		IP:        clientip.GetIP(r),
		UserAgent: r.UserAgent(),
	}, m.cfg.TTL)
}

// Save persists sess if it changed and refreshes the cookie.
// A logged out session is removed from the store and its cookie deleted.
func (m *Manager[Data]) Save(ctx context.Context, w http.ResponseWriter, sess Session[Data]) error {
	if sess.IsDeleted() {
		if err := m.store.Delete(ctx, sess.ID); err != nil && !errors.Is(err, ErrNotFound) {
			return errors.Join(ErrDeleteSession, err)
		}
		m.cookies.Delete(w, m.cfg.CookieName)
		return nil
	}

	sess.Touch(m.cfg.TTL, m.cfg.TouchInterval)
	if !sess.IsModified() {
		return nil
	}

	if err := m.store.Save(ctx, sess); err != nil {
		return errors.Join(ErrSaveSession, err)
	}
	return m.cookies.SetSigned(w, m.cfg.CookieName, sess.Token,
		cookie.WithMaxAge(int(time.Until(sess.ExpiresAt).Seconds())),
		cookie.WithHTTPOnly(true),
	)
}

// CleanupExpired removes expired sessions from the store.
func (m *Manager[Data]) CleanupExpired(ctx context.Context) (int64, error) {
	return m.store.DeleteExpired(ctx)
}

// Run purges expired sessions every CleanupInterval until ctx is done.
// It fits errgroup and App background workers.
func (m *Manager[Data]) Run(ctx context.Context) error {
	if m.cfg.CleanupInterval <= 0 {
		<-ctx.Done()
		return nil
	}

	ticker := time.NewTicker(m.cfg.CleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			n, err := m.CleanupExpired(ctx)
			if err != nil {
				m.logger.ErrorContext(ctx, "session cleanup failed", logger.Error(err))
				continue
			}
			if n > 0 {
				m.logger.DebugContext(ctx, "expired sessions removed", slog.Int64("count", n))
			}
		}
	}
}
