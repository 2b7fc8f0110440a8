// Package crypto implements the encryption primitive for the Encrypted
// State-Check Repository (spec §3.6): AES-256-GCM with a key derived from
// a caller-supplied secret via PBKDF2, in the style of the teacher's
// notifications.TokenCipher and the pack's ansible_vault PBKDF2 usage.
package crypto

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"fmt"
	"io"

	"golang.org/x/crypto/pbkdf2"
)

// MinIterations is the floor for PBKDF2 iterations (spec §3.6: "at least
// 100,000"). Config.Load rejects anything lower.
const MinIterations = 100_000

const (
	keyLength  = 32 // AES-256
	saltLength = 16
)

// Cipher encrypts and decrypts state-check payloads with a key derived
// once from the caller's secret and held in memory for the process
// lifetime.
type Cipher struct {
	key []byte
}

// DerivedKey is a PBKDF2-derived AES-256 key bundled with the salt it was
// derived from, so the salt can be persisted alongside ciphertext.
type DerivedKey struct {
	Key  []byte
	Salt []byte
}

// DeriveKey derives a 32-byte AES key from secret and salt using PBKDF2-
// HMAC-SHA256. If salt is nil a fresh random salt is generated.
func DeriveKey(secret string, salt []byte, iterations int) (DerivedKey, error) {
	if iterations < MinIterations {
		iterations = MinIterations
	}
	if salt == nil {
		salt = make([]byte, saltLength)
		if _, err := io.ReadFull(rand.Reader, salt); err != nil {
			return DerivedKey{}, fmt.Errorf("crypto: generate salt: %w", err)
		}
	}
	key := pbkdf2.Key([]byte(secret), salt, iterations, keyLength, sha256.New)
	return DerivedKey{Key: key, Salt: salt}, nil
}

// New builds a Cipher from an already-derived key.
func New(key []byte) (*Cipher, error) {
	if len(key) != keyLength {
		return nil, fmt.Errorf("crypto: key must be %d bytes, got %d", keyLength, len(key))
	}
	return &Cipher{key: key}, nil
}

// Encrypt seals plaintext with AES-256-GCM, generating a fresh random IV
// (nonce) per call. It returns the ciphertext and the IV used, both of
// which the repository persists alongside the record (spec §3.6).
func (c *Cipher) Encrypt(plaintext []byte) (ciphertext, iv []byte, err error) {
	block, err := aes.NewCipher(c.key)
	if err != nil {
		return nil, nil, fmt.Errorf("crypto: new cipher: %w", err)
	}
	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, nil, fmt.Errorf("crypto: new gcm: %w", err)
	}

	iv = make([]byte, gcm.NonceSize())
	if _, err := io.ReadFull(rand.Reader, iv); err != nil {
		return nil, nil, fmt.Errorf("crypto: generate iv: %w", err)
	}

	ciphertext = gcm.Seal(nil, iv, plaintext, nil)
	return ciphertext, iv, nil
}

// Decrypt opens ciphertext using the caller-supplied IV persisted at
// encryption time. A mismatched key or corrupted ciphertext surfaces as
// ErrDecrypt from the caller (the repository wraps this).
func (c *Cipher) Decrypt(ciphertext, iv []byte) ([]byte, error) {
	block, err := aes.NewCipher(c.key)
	if err != nil {
		return nil, fmt.Errorf("crypto: new cipher: %w", err)
	}
	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("crypto: new gcm: %w", err)
	}
	if len(iv) != gcm.NonceSize() {
		return nil, fmt.Errorf("crypto: invalid iv length %d", len(iv))
	}

	plaintext, err := gcm.Open(nil, iv, ciphertext, nil)
	if err != nil {
		return nil, fmt.Errorf("crypto: open: %w", err)
	}
	return plaintext, nil
}
