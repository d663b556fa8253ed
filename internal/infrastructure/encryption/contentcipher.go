package encryption

import (
	"crypto/cipher"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/crypto/chacha20poly1305"

	apperrors "github.com/applytrack/applytrack/internal/shared/errors"
)

const envelopeV1 byte = 1

// ErrDecrypt is returned for any ciphertext that fails to open: wrong key,
// truncated payload, unknown envelope version or mismatched session id.
var ErrDecrypt = errors.New("content decryption failed")

// ContentCipher seals preview content at rest with XChaCha20-Poly1305.
// Envelope layout: version(1) || nonce(24) || ciphertext+tag. The session id
// is bound as additional data so a row cannot be replayed under another id.
type ContentCipher struct {
	aead cipher.AEAD
}

// NewContentCipher parses a base64 encoded 32 byte key. A missing or
// malformed key is a configuration error.
func NewContentCipher(encodedKey string) (*ContentCipher, error) {
	encodedKey = strings.TrimSpace(encodedKey)
	if encodedKey == "" {
		return nil, apperrors.NewConfigurationError("content encryption key is not configured")
	}

	key, err := base64.StdEncoding.DecodeString(encodedKey)
	if err != nil {
		return nil, apperrors.NewConfigurationError("content encryption key is not valid base64", err.Error())
	}
	return NewContentCipherFromKey(key)
}

func NewContentCipherFromKey(key []byte) (*ContentCipher, error) {
	if len(key) != chacha20poly1305.KeySize {
		return nil, apperrors.NewConfigurationError(
			"content encryption key has wrong length",
			fmt.Sprintf("want %d bytes, got %d", chacha20poly1305.KeySize, len(key)),
		)
	}

	aead, err := chacha20poly1305.NewX(key)
	if err != nil {
		return nil, apperrors.NewConfigurationError("failed to initialise content cipher", err.Error())
	}
	return &ContentCipher{aead: aead}, nil
}

func (c *ContentCipher) Encrypt(sessionID string, plaintext []byte) ([]byte, error) {
	nonceSize := c.aead.NonceSize()
	out := make([]byte, 1+nonceSize, 1+nonceSize+len(plaintext)+c.aead.Overhead())
	out[0] = envelopeV1
	if _, err := rand.Read(out[1 : 1+nonceSize]); err != nil {
		return nil, fmt.Errorf("failed to generate nonce: %w", err)
	}

	return c.aead.Seal(out, out[1:1+nonceSize], plaintext, []byte(sessionID)), nil
}

func (c *ContentCipher) Decrypt(sessionID string, envelope []byte) ([]byte, error) {
	nonceSize := c.aead.NonceSize()
	if len(envelope) < 1+nonceSize+c.aead.Overhead() {
		return nil, fmt.Errorf("%w: envelope too short", ErrDecrypt)
	}
	if envelope[0] != envelopeV1 {
		return nil, fmt.Errorf("%w: unknown envelope version %d", ErrDecrypt, envelope[0])
	}

	nonce := envelope[1 : 1+nonceSize]
	plaintext, err := c.aead.Open(nil, nonce, envelope[1+nonceSize:], []byte(sessionID))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDecrypt, err)
	}
	return plaintext, nil
}
