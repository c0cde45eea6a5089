package session

import "errors"

var (
	ErrExpired         = errors.New("session: expired")
	ErrNotFound        = errors.New("session: not found")
	ErrMissingIP       = errors.New("session: ip address is required")
	ErrTokenGeneration = errors.New("session: failed to generate token")
	ErrSaveSession     = errors.New("session: failed to save")
	ErrDeleteSession   = errors.New("session: failed to delete")
	ErrCorrupted       = errors.New("session: stored record is corrupted")
)
