package session

import (
	"crypto/rand"
	"encoding/base64"
	"errors"
	"time"

	"github.com/google/uuid"
)

// Session is a server-side session carrying application data of type Data.
type Session[Data any] struct {
	// ID never changes for the lifetime of the session.
	ID uuid.UUID `json:"id"`
	// Token is the secret the client presents. It is rotated on
	// authentication so a token observed before login is useless after it.
	Token string `json:"token"`
	// UserID is uuid.Nil for anonymous sessions.
	UserID uuid.UUID `json:"user_id"`

	IP        string `json:"ip"`
	UserAgent string `json:"user_agent"`
	Data      Data   `json:"data"`

	ExpiresAt time.Time `json:"expires_at"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
	DeletedAt time.Time `json:"deleted_at"`

	modified bool
}

// Params describes the client a new session is created for.
type Params struct {
	IP        string
	UserAgent string
}

// New creates an anonymous session that expires after ttl.
// The session is marked modified so the first Save persists it.
func New[Data any](params Params, ttl time.Duration) (Session[Data], error) {
	if params.IP == "" {
		return Session[Data]{}, ErrMissingIP
	}

	token, err := generateToken()
	if err != nil {
		return Session[Data]{}, errors.Join(ErrTokenGeneration, err)
	}

	now := time.Now()
	return Session[Data]{
		ID:        uuid.New(),
		Token:     token,
		IP:        params.IP,
		UserAgent: params.UserAgent,
		ExpiresAt: now.Add(ttl),
		CreatedAt: now,
		UpdatedAt: now,
		modified:  true,
	}, nil
}

// Authenticate binds the session to userID and rotates its token.
func (s *Session[Data]) Authenticate(userID uuid.UUID) error {
	if err := s.rotateToken(); err != nil {
		return err
	}
	s.UserID = userID
	s.markUpdated()
	return nil
}

// Refresh rotates the token, keeping the ID and the user.
func (s *Session[Data]) Refresh() error {
	if err := s.rotateToken(); err != nil {
		return err
	}
	s.markUpdated()
	return nil
}

// Logout marks the session for deletion on the next Save.
func (s *Session[Data]) Logout() {
	s.DeletedAt = time.Now()
	s.modified = true
}

func (s *Session[Data]) SetData(data Data) {
	s.Data = data
	s.markUpdated()
}

// Touch extends the expiration once touchInterval has passed since the
// last update. A zero interval extends on every call.
func (s *Session[Data]) Touch(ttl, touchInterval time.Duration) {
	if time.Since(s.UpdatedAt) < touchInterval {
		return
	}
	s.ExpiresAt = time.Now().Add(ttl)
	s.markUpdated()
}

func (s Session[Data]) IsAuthenticated() bool { return s.UserID != uuid.Nil }
func (s Session[Data]) IsDeleted() bool       { return !s.DeletedAt.IsZero() }
func (s Session[Data]) IsModified() bool      { return s.modified }
func (s Session[Data]) IsExpired() bool       { return !time.Now().Before(s.ExpiresAt) }

func (s *Session[Data]) markUpdated() {
	s.UpdatedAt = time.Now()
	s.modified = true
}

func (s *Session[Data]) rotateToken() error {
	token, err := generateToken()
	if err != nil {
		return errors.Join(ErrTokenGeneration, err)
	}
	s.Token = token
	s.modified = true
	return nil
}

// generateToken returns 32 random bytes, base64url encoded without padding.
func generateToken() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}
