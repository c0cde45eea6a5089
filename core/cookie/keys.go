package cookie

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/sha256"
	"fmt"
	"io"

	"golang.org/x/crypto/hkdf"
)

const (
	keySize = 32

	signInfo    = "onion/cookie/sign"
	encryptInfo = "onion/cookie/encrypt"
)

// keyset holds the keys derived from one configured secret.
// Signing and encryption never share key material.
type keyset struct {
	sign []byte
	aead cipher.AEAD
}

func deriveKeyset(secret string) (keyset, error) {
	if len(secret) < minSecretLength {
		return keyset{}, ErrSecretTooShort
	}

	sign, err := derive(secret, signInfo)
	if err != nil {
		return keyset{}, err
	}
	enc, err := derive(secret, encryptInfo)
	if err != nil {
		return keyset{}, err
	}

	block, err := aes.NewCipher(enc)
	if err != nil {
		return keyset{}, fmt.Errorf("cookie: init cipher: %w", err)
	}
	aead, err := cipher.NewGCM(block)
	if err != nil {
		return keyset{}, fmt.Errorf("cookie: init gcm: %w", err)
	}

	return keyset{sign: sign, aead: aead}, nil
}

func derive(secret, info string) ([]byte, error) {
	key := make([]byte, keySize)
	r := hkdf.New(sha256.New, []byte(secret), nil, []byte(info))
	if _, err := io.ReadFull(r, key); err != nil {
		return nil, fmt.Errorf("cookie: derive %s key: %w", info, err)
	}
	return key, nil
}
