package session

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
)

// MemoryStore keeps sessions in process memory. Sessions are lost on restart
// and are not shared between instances.
type MemoryStore[Data any] struct {
	mu       sync.RWMutex
	sessions map[uuid.UUID]Session[Data]
	tokens   map[string]uuid.UUID
}

func NewMemoryStore[Data any]() *MemoryStore[Data] {
	return &MemoryStore[Data]{
		sessions: make(map[uuid.UUID]Session[Data]),
		tokens:   make(map[string]uuid.UUID),
	}
}

func (s *MemoryStore[Data]) GetByToken(_ context.Context, token string) (Session[Data], error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	id, ok := s.tokens[token]
	if !ok {
		return Session[Data]{}, ErrNotFound
	}
	sess, ok := s.sessions[id]
	if !ok {
		return Session[Data]{}, ErrNotFound
	}
	return sess, nil
}

func (s *MemoryStore[Data]) Save(_ context.Context, sess Session[Data]) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if prev, ok := s.sessions[sess.ID]; ok && prev.Token != sess.Token {
		delete(s.tokens, prev.Token)
	}
	sess.modified = false
	s.sessions[sess.ID] = sess
	s.tokens[sess.Token] = sess.ID
	return nil
}

func (s *MemoryStore[Data]) Delete(_ context.Context, id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, ok := s.sessions[id]
	if !ok {
		return ErrNotFound
	}
	delete(s.tokens, sess.Token)
	delete(s.sessions, id)
	return nil
}

func (s *MemoryStore[Data]) DeleteExpired(_ context.Context) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now()
	var n int64
	for id, sess := range s.sessions {
		if !now.Before(sess.ExpiresAt) {
			delete(s.tokens, sess.Token)
			delete(s.sessions, id)
			n++
		}
	}
	return n, nil
}

// Len returns the number of stored sessions.
func (s *MemoryStore[Data]) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions)
}
