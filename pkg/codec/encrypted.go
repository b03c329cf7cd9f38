package codec

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"errors"
	"fmt"
	"io"
)

// KeySize is the length of an AES-256 key.
const KeySize = 32

var (
	// ErrKeySize is returned when a key is not KeySize bytes long.
	ErrKeySize = errors.New("encryption key must be 32 bytes (AES-256)")

	// ErrDecrypt is returned when no configured key opens the data.
	ErrDecrypt = errors.New("decryption failed with all available keys")
)

// Encrypted wraps another codec and seals its output with AES-GCM.
// New data is sealed with the active key; reads fall back to older keys so
// keys can be rotated without rewriting existing files first.
type Encrypted[T any] struct {
	inner    Codec[T]
	active   []byte
	fallback [][]byte
}

// NewEncrypted validates the keys and wraps inner.
func NewEncrypted[T any](inner Codec[T], active []byte, fallback ...[]byte) (*Encrypted[T], error) {
	if len(active) != KeySize {
		return nil, ErrKeySize
	}
	for i, k := range fallback {
		if len(k) != KeySize {
			return nil, fmt.Errorf("fallback key %d: %w", i, ErrKeySize)
		}
	}
	return &Encrypted[T]{inner: inner, active: active, fallback: fallback}, nil
}

func (e *Encrypted[T]) Marshal(v T) ([]byte, error) {
	plain, err := e.inner.Marshal(v)
	if err != nil {
		return nil, err
	}
	return seal(plain, e.active)
}

func (e *Encrypted[T]) Unmarshal(data []byte) (T, error) {
	plain, err := open(data, e.active)
	if err != nil {
		for _, key := range e.fallback {
			if plain, err = open(data, key); err == nil {
				break
			}
		}
	}
	if err != nil {
		var zero T
		return zero, ErrDecrypt
	}
	return e.inner.Unmarshal(plain)
}

func newGCM(key []byte) (cipher.AEAD, error) {
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, err
	}
	return cipher.NewGCM(block)
}

// seal prefixes the ciphertext with its random nonce.
func seal(plain, key []byte) ([]byte, error) {
	gcm, err := newGCM(key)
	if err != nil {
		return nil, err
	}

	nonce := make([]byte, gcm.NonceSize())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return nil, err
	}
	return gcm.Seal(nonce, nonce, plain, nil), nil
}

func open(data, key []byte) ([]byte, error) {
	gcm, err := newGCM(key)
	if err != nil {
		return nil, err
	}
	if len(data) < gcm.NonceSize() {
		return nil, errors.New("ciphertext too short")
	}
	nonce, ciphertext := data[:gcm.NonceSize()], data[gcm.NonceSize():]
	return gcm.Open(nil, nonce, ciphertext, nil)
}
