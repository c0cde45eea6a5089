package cookie

import (
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	jsoniter "github.com/json-iterator/go"
)

const (
	// MaxCookieSize is the default limit for a serialized Set-Cookie value.
	MaxCookieSize = 4096

	minSecretLength = 32
	flashPrefix     = "__flash_"
)

var (
	json = jsoniter.ConfigCompatibleWithStandardLibrary
	enc  = base64.RawURLEncoding
)

// Manager writes and reads cookies. The first secret signs and encrypts new
// values; every secret is tried when reading, so old secrets can be kept in
// the list while rotating.
type Manager struct {
	keys     []keyset
	defaults Options
	maxSize  int
}

// ManagerOption configures the Manager itself.
type ManagerOption func(*Manager)

// WithMaxSize sets the Set-Cookie size limit.
func WithMaxSize(size int) ManagerOption {
	return func(m *Manager) {
		if size > 0 {
			m.maxSize = size
		}
	}
}

// WithDefaults sets the attributes applied to every cookie.
func WithDefaults(opts ...Option) ManagerOption {
	return func(m *Manager) { m.defaults = m.defaults.apply(opts) }
}

// New creates a Manager. Empty secrets are ignored; at least one secret of
// 32 bytes or more is required.
func New(secrets []string, opts ...ManagerOption) (*Manager, error) {
	m := &Manager{
		defaults: Options{Path: "/", HttpOnly: true, SameSite: http.SameSiteLaxMode},
		maxSize:  MaxCookieSize,
	}

	for i, s := range secrets {
		if s == "" {
			continue
		}
		ks, err := deriveKeyset(s)
		if err != nil {
			return nil, fmt.Errorf("%w: secret %d has %d bytes", err, i, len(s))
		}
		m.keys = append(m.keys, ks)
	}
	if len(m.keys) == 0 {
		return nil, ErrNoSecret
	}

	for _, opt := range opts {
		opt(m)
	}
	return m, nil
}

// Set writes a plain cookie.
func (m *Manager) Set(w http.ResponseWriter, name, value string, opts ...Option) error {
	o := m.defaults.apply(opts)
	c := &http.Cookie{
		Name:     name,
		Value:    value,
		Path:     o.Path,
		Domain:   o.Domain,
		MaxAge:   o.MaxAge,
		Secure:   o.Secure,
		HttpOnly: o.HttpOnly,
		SameSite: o.SameSite,
	}
	if o.MaxAge > 0 {
		c.Expires = time.Now().Add(time.Duration(o.MaxAge) * time.Second)
	}

	if size := len(c.String()); size > m.maxSize {
		return TooLargeError{Name: name, Size: size, Max: m.maxSize}
	}
	http.SetCookie(w, c)
	return nil
}

// Get returns the raw value of a cookie.
func (m *Manager) Get(r *http.Request, name string) (string, error) {
	c, err := r.Cookie(name)
	if errors.Is(err, http.ErrNoCookie) {
		return "", ErrCookieNotFound
	}
	if err != nil {
		return "", err
	}
	return c.Value, nil
}

// Delete expires a cookie using the default path and domain.
func (m *Manager) Delete(w http.ResponseWriter, name string) {
	http.SetCookie(w, &http.Cookie{
		Name:     name,
		Path:     m.defaults.Path,
		Domain:   m.defaults.Domain,
		MaxAge:   -1,
		Expires:  time.Unix(0, 0),
		Secure:   m.defaults.Secure,
		HttpOnly: m.defaults.HttpOnly,
		SameSite: m.defaults.SameSite,
	})
}

// SetSigned writes value with an HMAC-SHA256 tag bound to the cookie name.
func (m *Manager) SetSigned(w http.ResponseWriter, name, value string, opts ...Option) error {
	return m.Set(w, name, m.sign(name, value), opts...)
}

// GetSigned reads a cookie written by SetSigned and verifies its tag.
func (m *Manager) GetSigned(r *http.Request, name string) (string, error) {
	raw, err := m.Get(r, name)
	if err != nil {
		return "", err
	}
	return m.verify(name, raw)
}

// SetEncrypted writes value sealed with AES-256-GCM.
func (m *Manager) SetEncrypted(w http.ResponseWriter, name, value string, opts ...Option) error {
	sealed, err := m.encrypt(name, value)
	if err != nil {
		return err
	}
	return m.Set(w, name, sealed, opts...)
}

// GetEncrypted reads and opens a cookie written by SetEncrypted.
func (m *Manager) GetEncrypted(r *http.Request, name string) (string, error) {
	raw, err := m.Get(r, name)
	if err != nil {
		return "", err
	}
	return m.decrypt(name, raw)
}

// SetFlash stores a one-time value that GetFlash deletes after reading.
func (m *Manager) SetFlash(w http.ResponseWriter, key string, value any) error {
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("cookie: marshal flash: %w", err)
	}
	return m.SetEncrypted(w, flashPrefix+key, string(data))
}

// GetFlash decodes a flash value into dest and deletes the cookie.
func (m *Manager) GetFlash(w http.ResponseWriter, r *http.Request, key string, dest any) error {
	name := flashPrefix + key
	data, err := m.GetEncrypted(r, name)
	if err != nil {
		return err
	}
	m.Delete(w, name)

	if err := json.Unmarshal([]byte(data), dest); err != nil {
		return fmt.Errorf("cookie: unmarshal flash: %w", err)
	}
	return nil
}

func mac(key []byte, name, value string) []byte {
	h := hmac.New(sha256.New, key)
	h.Write([]byte(name))
	h.Write([]byte{0})
	h.Write([]byte(value))
	return h.Sum(nil)
}

func (m *Manager) sign(name, value string) string {
	return enc.EncodeToString([]byte(value)) + "." + enc.EncodeToString(mac(m.keys[0].sign, name, value))
}

func (m *Manager) verify(name, signed string) (string, error) {
	encoded, tag, ok := strings.Cut(signed, ".")
	if !ok {
		return "", ErrInvalidFormat
	}
	value, err := enc.DecodeString(encoded)
	if err != nil {
		return "", ErrInvalidFormat
	}
	sum, err := enc.DecodeString(tag)
	if err != nil {
		return "", ErrInvalidFormat
	}

	for _, ks := range m.keys {
		if hmac.Equal(sum, mac(ks.sign, name, string(value))) {
			return string(value), nil
		}
	}
	return "", ErrInvalidSignature
}

// encrypt uses the cookie name as additional data so a sealed value cannot
// be replayed under another name.
func (m *Manager) encrypt(name, value string) (string, error) {
	aead := m.keys[0].aead
	nonce := make([]byte, aead.NonceSize())
	if _, err := rand.Read(nonce); err != nil {
		return "", fmt.Errorf("cookie: nonce: %w", err)
	}
	return enc.EncodeToString(aead.Seal(nonce, nonce, []byte(value), []byte(name))), nil
}

func (m *Manager) decrypt(name, sealed string) (string, error) {
	data, err := enc.DecodeString(sealed)
	if err != nil {
		return "", ErrInvalidFormat
	}

	for _, ks := range m.keys {
		n := ks.aead.NonceSize()
		if len(data) < n+ks.aead.Overhead() {
			return "", ErrInvalidFormat
		}
		if plain, err := ks.aead.Open(nil, data[:n], data[n:], []byte(name)); err == nil {
			return string(plain), nil
		}
	}
	return "", ErrDecryptionFailed
}
