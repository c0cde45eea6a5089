package session

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	jsoniter "github.com/json-iterator/go"
	"github.com/redis/go-redis/v9"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// DefaultRedisPrefix namespaces session keys.
const DefaultRedisPrefix = "onion:session:"

// RedisStore keeps sessions in Redis. Each session is stored as JSON under
// its ID with a second key mapping the token to the ID. Both keys expire
// with the session, so DeleteExpired has nothing to do.
type RedisStore[Data any] struct {
	client redis.UniversalClient
	prefix string
}

// RedisOption configures a RedisStore.
type RedisOption func(*redisOptions)

type redisOptions struct{ prefix string }

// WithRedisPrefix overrides DefaultRedisPrefix.
func WithRedisPrefix(prefix string) RedisOption {
	return func(o *redisOptions) { o.prefix = prefix }
}

func NewRedisStore[Data any](client redis.UniversalClient, opts ...RedisOption) *RedisStore[Data] {
	o := redisOptions{prefix: DefaultRedisPrefix}
	for _, opt := range opts {
		opt(&o)
	}
	return &RedisStore[Data]{client: client, prefix: o.prefix}
}

func (s *RedisStore[Data]) idKey(id uuid.UUID) string  { return s.prefix + "id:" + id.String() }
func (s *RedisStore[Data]) tokenKey(tok string) string { return s.prefix + "token:" + tok }

func (s *RedisStore[Data]) GetByToken(ctx context.Context, token string) (Session[Data], error) {
	raw, err := s.client.Get(ctx, s.tokenKey(token)).Result()
	if errors.Is(err, redis.Nil) {
		return Session[Data]{}, ErrNotFound
	}
	if err != nil {
		return Session[Data]{}, fmt.Errorf("session: lookup token: %w", err)
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return Session[Data]{}, fmt.Errorf("%w: %w", ErrCorrupted, err)
	}

	sess, err := s.load(ctx, id)
	if err != nil {
		return Session[Data]{}, err
	}
	// token index outlived a rotation
	if sess.Token != token {
		return Session[Data]{}, ErrNotFound
	}
	return sess, nil
}

func (s *RedisStore[Data]) load(ctx context.Context, id uuid.UUID) (Session[Data], error) {
	data, err := s.client.Get(ctx, s.idKey(id)).Bytes()
	if errors.Is(err, redis.Nil) {
		return Session[Data]{}, ErrNotFound
	}
	if err != nil {
		return Session[Data]{}, fmt.Errorf("session: load: %w", err)
	}

	var sess Session[Data]
	if err := json.Unmarshal(data, &sess); err != nil {
		return Session[Data]{}, fmt.Errorf("%w: %w", ErrCorrupted, err)
	}
	return sess, nil
}

func (s *RedisStore[Data]) Save(ctx context.Context, sess Session[Data]) error {
	ttl := time.Until(sess.ExpiresAt)
	if ttl <= 0 {
		return ErrExpired
	}

	data, err := json.Marshal(sess)
	if err != nil {
		return errors.Join(ErrSaveSession, err)
	}

	var staleToken string
	if prev, err := s.load(ctx, sess.ID); err == nil && prev.Token != sess.Token {
		staleToken = prev.Token
	}

	_, err = s.client.TxPipelined(ctx, func(p redis.Pipeliner) error {
		if staleToken != "" {
			p.Del(ctx, s.tokenKey(staleToken))
		}
		p.Set(ctx, s.idKey(sess.ID), data, ttl)
		p.Set(ctx, s.tokenKey(sess.Token), sess.ID.String(), ttl)
		return nil
	})
	if err != nil {
		return errors.Join(ErrSaveSession, err)
	}
	return nil
}

func (s *RedisStore[Data]) Delete(ctx context.Context, id uuid.UUID) error {
	sess, err := s.load(ctx, id)
	if err != nil {
		return err
	}
	if err := s.client.Del(ctx, s.idKey(id), s.tokenKey(sess.Token)).Err(); err != nil {
		return errors.Join(ErrDeleteSession, err)
	}
	return nil
}

// DeleteExpired is a no-op; Redis expires the keys itself.
func (s *RedisStore[Data]) DeleteExpired(context.Context) (int64, error) {
	return 0, nil
}
