// internal/utils/crypto.go
package utils

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io"

	"golang.org/x/crypto/nacl/secretbox"
)

const nonceSize = 24

// Sealer encrypts upstream tokens before they are persisted.
type Sealer struct {
	key [32]byte
}

// NewSealer accepts a 64 character hex key or any passphrase, which is
// hashed to 32 bytes. An empty key yields a random one, so sealed values
// do not survive a restart.
func NewSealer(key string) (*Sealer, error) {
	s := &Sealer{}

	switch {
	case key == "":
		if _, err := io.ReadFull(rand.Reader, s.key[:]); err != nil {
			return nil, fmt.Errorf("failed to generate seal key: %w", err)
		}
	case len(key) == 64:
		raw, err := hex.DecodeString(key)
		if err != nil {
			return nil, fmt.Errorf("invalid hex seal key: %w", err)
		}
		copy(s.key[:], raw)
	default:
		s.key = sha256.Sum256([]byte(key))
	}

	return s, nil
}

func (s *Sealer) Seal(plaintext string) ([]byte, error) {
	var nonce [nonceSize]byte
	if _, err := io.ReadFull(rand.Reader, nonce[:]); err != nil {
		return nil, fmt.Errorf("failed to generate nonce: %w", err)
	}
	return secretbox.Seal(nonce[:], []byte(plaintext), &nonce, &s.key), nil
}

func (s *Sealer) Open(sealed []byte) (string, error) {
	if len(sealed) < nonceSize+secretbox.Overhead {
		return "", errors.New("sealed value too short")
	}

	var nonce [nonceSize]byte
	copy(nonce[:], sealed[:nonceSize])

	plaintext, ok := secretbox.Open(nil, sealed[nonceSize:], &nonce, &s.key)
	if !ok {
		return "", errors.New("sealed value could not be opened")
	}
	return string(plaintext), nil
}
