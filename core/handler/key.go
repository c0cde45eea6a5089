package handler

// Key is a typed identifier for values stored in a request Context.
// Keys compare by identity, so two keys created with the same name never collide.
type Key[T any] struct {
	name string
}

// NewKey creates a new typed store key. The name is used for debugging only.
func NewKey[T any](name string) *Key[T] {
	return &Key[T]{name: name}
}

// String returns the key name.
func (k *Key[T]) String() string {
	return k.name
}

// Set stores val under key in the request-scoped store.
func Set[T any](ctx Context, key *Key[T], val T) {
	ctx.SetValue(key, val)
}

// Get returns the value stored under key.
// The boolean is false if the key is absent or holds a value of another type.
func Get[T any](ctx Context, key *Key[T]) (T, bool) {
	v, ok := ctx.Value(key).(T)
	return v, ok
}

// GetOr returns the value stored under key, or fallback if it is absent.
func GetOr[T any](ctx Context, key *Key[T], fallback T) T {
	if v, ok := Get(ctx, key); ok {
		return v
	}
	return fallback
}
