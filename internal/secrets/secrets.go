// Package secrets encrypts API keys and integration tokens before they are written to a
// shareable config file. The key lives in a separate local file that is never shared.
package secrets

import (
	"crypto/cipher"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/crypto/chacha20poly1305"
)

// Prefix marks an encrypted value.
const Prefix = "enc::"

// KeySize is the key length in bytes.
const KeySize = chacha20poly1305.KeySize

// ErrInvalidKey is returned for a key file that does not hold a key of KeySize bytes.
var ErrInvalidKey = errors.New("invalid encryption key")

// DecryptError is an encrypted value that could not be opened with the local key.
type DecryptError struct {
	Message string
	Cause   error
}

func (e *DecryptError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("decrypt secret: %s: %v", e.Message, e.Cause)
	}
	return fmt.Sprintf("decrypt secret: %s", e.Message)
}

func (e *DecryptError) Unwrap() error {
	return e.Cause
}

// IsEncrypted reports whether value carries Prefix.
func IsEncrypted(value string) bool {
	return strings.HasPrefix(value, Prefix)
}

// Box encrypts and decrypts values with one key.
type Box struct {
	aead cipher.AEAD
}

// New returns a Box for key.
func New(key []byte) (*Box, error) {
	if len(key) != KeySize {
		return nil, fmt.Errorf("%w: want %d bytes, got %d", ErrInvalidKey, KeySize, len(key))
	}
	aead, err := chacha20poly1305.New(key)
	if err != nil {
		return nil, fmt.Errorf("failed to create cipher: %w", err)
	}
	return &Box{aead: aead}, nil
}

// Encrypt returns Prefix + base64(nonce || ciphertext). Empty and already encrypted values are
// returned unchanged.
func (b *Box) Encrypt(plaintext string) (string, error) {
	if plaintext == "" || IsEncrypted(plaintext) {
		return plaintext, nil
	}
	nonce := make([]byte, b.aead.NonceSize(), b.aead.NonceSize()+len(plaintext)+b.aead.Overhead())
	if _, err := rand.Read(nonce); err != nil {
		return "", fmt.Errorf("failed to generate nonce: %w", err)
	}
	sealed := b.aead.Seal(nonce, nonce, []byte(plaintext), nil)
	return Prefix + base64.StdEncoding.EncodeToString(sealed), nil
}

// Decrypt opens a value produced by Encrypt. Values without Prefix are plaintext and are
// returned unchanged.
func (b *Box) Decrypt(value string) (string, error) {
	if !IsEncrypted(value) {
		return value, nil
	}
	raw, err := base64.StdEncoding.DecodeString(strings.TrimPrefix(value, Prefix))
	if err != nil {
		return "", &DecryptError{Message: "not valid base64", Cause: err}
	}
	if len(raw) < b.aead.NonceSize() {
		return "", &DecryptError{Message: "value too short"}
	}
	nonce, ciphertext := raw[:b.aead.NonceSize()], raw[b.aead.NonceSize():]
	plain, err := b.aead.Open(nil, nonce, ciphertext, nil)
	if err != nil {
		return "", &DecryptError{Message: "wrong key or corrupted value", Cause: err}
	}
	return string(plain), nil
}

// LoadOrCreateKey reads the base64 key at path, generating and writing a new one with mode
// 0600 when the file does not exist.
func LoadOrCreateKey(path string) ([]byte, error) {
	data, err := os.ReadFile(path)
	if err == nil {
		key, err := base64.StdEncoding.DecodeString(strings.TrimSpace(string(data)))
		if err != nil || len(key) != KeySize {
			return nil, fmt.Errorf("%w in %s", ErrInvalidKey, path)
		}
		return key, nil
	}
	if !os.IsNotExist(err) {
		return nil, fmt.Errorf("failed to read key file: %w", err)
	}

	key := make([]byte, KeySize)
	if _, err := rand.Read(key); err != nil {
		return nil, fmt.Errorf("failed to generate key: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return nil, fmt.Errorf("failed to create key directory: %w", err)
	}
	encoded := base64.StdEncoding.EncodeToString(key) + "\n"
	if err := os.WriteFile(path, []byte(encoded), 0o600); err != nil {
		return nil, fmt.Errorf("failed to write key file: %w", err)
	}
	return key, nil
}

// Open loads (or creates) the key at path and returns a Box for it.
func Open(path string) (*Box, error) {
	key, err := LoadOrCreateKey(path)
	if err != nil {
		return nil, err
	}
	return New(key)
}
