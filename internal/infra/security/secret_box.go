package security

import (
	"crypto/rand"
	"encoding/base64"
	"fmt"
	"io"

	"golang.org/x/crypto/nacl/secretbox"

	"ridi-pay/internal/domain"
)

const (
	keySize   = 32
	nonceSize = 24
)

// SecretBox seals secrets with NaCl secretbox (XSalsa20-Poly1305).
// Output format: base64(nonce || sealed). A fresh random nonce is drawn per message.
type SecretBox struct {
	key [keySize]byte
}

// NewSecretBox takes the base64 encoding of a 32-byte key.
// Each secret class (partner secrets, bill keys) gets its own key.
func NewSecretBox(base64Key string) (*SecretBox, error) {
	k, err := base64.StdEncoding.DecodeString(base64Key)
	if err != nil {
		return nil, fmt.Errorf("secret box key is not base64: %w", err)
	}
	if len(k) != keySize {
		return nil, fmt.Errorf("secret box key must be %d bytes; got %d", keySize, len(k))
	}
	sb := &SecretBox{}
	copy(sb.key[:], k)
	return sb, nil
}

// GenerateKey returns a random base64 key suitable for NewSecretBox.
func GenerateKey() (string, error) {
	k := make([]byte, keySize)
	if _, err := io.ReadFull(rand.Reader, k); err != nil {
		return "", fmt.Errorf("rand key: %w", err)
	}
	return base64.StdEncoding.EncodeToString(k), nil
}

func (s *SecretBox) Encrypt(plaintext []byte) (string, error) {
	var nonce [nonceSize]byte
	if _, err := io.ReadFull(rand.Reader, nonce[:]); err != nil {
		return "", fmt.Errorf("rand nonce: %w", err)
	}
	sealed := secretbox.Seal(nonce[:], plaintext, &nonce, &s.key)
	return base64.StdEncoding.EncodeToString(sealed), nil
}

// Decrypt accepts output of Encrypt. Any malformed, truncated, tampered or foreign
// blob yields domain.ErrCryptoIntegrity.
func (s *SecretBox) Decrypt(blob string) ([]byte, error) {
	data, err := base64.StdEncoding.DecodeString(blob)
	if err != nil {
		return nil, fmt.Errorf("%w: base64 decode", domain.ErrCryptoIntegrity)
	}
	if len(data) < nonceSize+secretbox.Overhead {
		return nil, fmt.Errorf("%w: ciphertext too short", domain.ErrCryptoIntegrity)
	}
	var nonce [nonceSize]byte
	copy(nonce[:], data[:nonceSize])
	pt, ok := secretbox.Open(nil, data[nonceSize:], &nonce, &s.key)
	if !ok {
		return nil, fmt.Errorf("%w: authentication failed", domain.ErrCryptoIntegrity)
	}
	if pt == nil {
		pt = []byte{}
	}
	return pt, nil
}
