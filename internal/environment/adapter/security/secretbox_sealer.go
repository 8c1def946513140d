package security

import (
	"crypto/rand"
	"errors"
	"fmt"
	"io"

	"golang.org/x/crypto/argon2"
	"golang.org/x/crypto/nacl/secretbox"
)

const (
	SaltSize  = 16
	nonceSize = 24
	keySize   = 32

	argonTime    = 1
	argonMemory  = 64 * 1024
	argonThreads = 4
)

var (
	ErrEmptySecret   = errors.New("sealing secret must not be empty")
	ErrInvalidSalt   = errors.New("salt must be 16 bytes")
	ErrMalformedSeal = errors.New("sealed value is malformed")
	ErrUnsealFailed  = errors.New("sealed value cannot be opened with this secret")
)

// SecretboxSealer seals passwords with NaCl secretbox under an Argon2id key.
type SecretboxSealer struct {
	key  [keySize]byte
	rand io.Reader
}

// NewSecretboxSealer derives the sealing key from secret and salt.
func NewSecretboxSealer(secret string, salt []byte) (*SecretboxSealer, error) {
	if secret == "" {
		return nil, ErrEmptySecret
	}
	if len(salt) != SaltSize {
		return nil, ErrInvalidSalt
	}

	s := &SecretboxSealer{rand: rand.Reader}
	copy(s.key[:], argon2.IDKey([]byte(secret), salt, argonTime, argonMemory, argonThreads, keySize))
	return s, nil
}

// NewSalt returns a random salt for NewSecretboxSealer.
func NewSalt() ([]byte, error) {
	salt := make([]byte, SaltSize)
	if _, err := io.ReadFull(rand.Reader, salt); err != nil {
		return nil, fmt.Errorf("failed to generate salt: %w", err)
	}
	return salt, nil
}

// Seal encrypts plaintext. The nonce is prepended to the box.
func (s *SecretboxSealer) Seal(plaintext string) ([]byte, error) {
	var nonce [nonceSize]byte
	if _, err := io.ReadFull(s.rand, nonce[:]); err != nil {
		return nil, fmt.Errorf("failed to generate nonce: %w", err)
	}
	return secretbox.Seal(nonce[:], []byte(plaintext), &nonce, &s.key), nil
}

// Open reverses Seal.
func (s *SecretboxSealer) Open(sealed []byte) (string, error) {
	if len(sealed) < nonceSize+secretbox.Overhead {
		return "", ErrMalformedSeal
	}

	var nonce [nonceSize]byte
	copy(nonce[:], sealed[:nonceSize])

	plaintext, ok := secretbox.Open(nil, sealed[nonceSize:], &nonce, &s.key)
	if !ok {
		return "", ErrUnsealFailed
	}
	return string(plaintext), nil
}
