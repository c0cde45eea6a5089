package cookie

import (
	"errors"
	"fmt"
)

var (
	ErrNoSecret         = errors.New("cookie: no secret provided")
	ErrSecretTooShort   = errors.New("cookie: secret must be at least 32 bytes")
	ErrInvalidSignature = errors.New("cookie: signature verification failed")
	ErrDecryptionFailed = errors.New("cookie: decryption failed")
	ErrCookieNotFound   = errors.New("cookie: not found")
	ErrInvalidFormat    = errors.New("cookie: invalid format")
)

// TooLargeError is returned when the serialized Set-Cookie header exceeds the
// manager's size limit. Nothing is written in that case.
type TooLargeError struct {
	Name string
	Size int
	Max  int
}

func (e TooLargeError) Error() string {
	return fmt.Sprintf("cookie: %q is %d bytes, limit is %d", e.Name, e.Size, e.Max)
}
