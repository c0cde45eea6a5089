package session

import (
	"context"

	"github.com/google/uuid"
)

// Store persists sessions. Implementations must be safe for concurrent use.
//
// Save replaces any earlier record with the same ID. When the token changed
// since the last Save, the old token must stop resolving.
type Store[Data any] interface {
	GetByToken(ctx context.Context, token string) (Session[Data], error)
	Save(ctx context.Context, sess Session[Data]) error
	Delete(ctx context.Context, id uuid.UUID) error
	// DeleteExpired removes expired sessions and reports how many were removed.
	DeleteExpired(ctx context.Context) (int64, error)
}
