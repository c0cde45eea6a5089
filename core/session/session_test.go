package session_test

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/onion/core/session"
)

type cart struct {
	Items []string `json:"items"`
}

func newSession(t *testing.T, ttl time.Duration) session.Session[cart] {
	t.Helper()
	sess, err := session.New[cart](session.Params{IP: "192.0.2.1", UserAgent: "test"}, ttl)
	require.NoError(t, err)
	return sess
}

func TestNew(t *testing.T) {
	t.Parallel()

	sess := newSession(t, time.Hour)
	assert.NotEqual(t, uuid.Nil, sess.ID)
	assert.Len(t, sess.Token, 43)
	assert.False(t, sess.IsAuthenticated())
	assert.True(t, sess.IsModified())
	assert.False(t, sess.IsExpired())
	assert.WithinDuration(t, time.Now().Add(time.Hour), sess.ExpiresAt, time.Second)

	_, err := session.New[cart](session.Params{}, time.Hour)
	assert.ErrorIs(t, err, session.ErrMissingIP)
}

func TestAuthenticateRotatesToken(t *testing.T) {
	t.Parallel()

	sess := newSession(t, time.Hour)
	id, token := sess.ID, sess.Token
	user := uuid.New()

	require.NoError(t, sess.Authenticate(user))
	assert.Equal(t, id, sess.ID)
	assert.NotEqual(t, token, sess.Token)
	assert.Equal(t, user, sess.UserID)
	assert.True(t, sess.IsAuthenticated())

	token = sess.Token
	require.NoError(t, sess.Refresh())
	assert.NotEqual(t, token, sess.Token)
	assert.Equal(t, user, sess.UserID)
}

func TestLogoutAndExpiry(t *testing.T) {
	t.Parallel()

	sess := newSession(t, time.Hour)
	sess.Logout()
	assert.True(t, sess.IsDeleted())

	expired := newSession(t, -time.Second)
	assert.True(t, expired.IsExpired())
}

func TestTouch(t *testing.T) {
	t.Parallel()

	sess := newSession(t, time.Minute)
	before := sess.ExpiresAt

	// interval not yet elapsed
	sess.Touch(time.Hour, time.Hour)
	assert.Equal(t, before, sess.ExpiresAt)

	sess.Touch(time.Hour, 0)
	assert.True(t, sess.ExpiresAt.After(before))
}
