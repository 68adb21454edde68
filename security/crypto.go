package security

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"encoding/hex"
	"strings"

	"github.com/fmpberger88/EnigmaTalk/exception"
)

const gcmTagSize = 16

// Codec seals message bodies at rest with AES-256-GCM. The stored form is
// "nonce_hex:ciphertext_hex:tag_hex"; a row not matching that shape is a
// corrupt record.
type Codec struct {
	aead cipher.AEAD
}

func NewCodec(hexKey string) (*Codec, error) {
	key, err := hex.DecodeString(hexKey)
	if err != nil {
		return nil, exception.Formatf("encryption key is not valid hex")
	}
	if len(key) != 32 {
		return nil, exception.Formatf("encryption key must be 32 bytes, got %d", len(key))
	}
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, err
	}
	aead, err := cipher.NewGCM(block)
	if err != nil {
		return nil, err
	}
	return &Codec{aead: aead}, nil
}

// Encrypt seals plaintext under a fresh random nonce. Nonces are never reused
// for the codec key.
func (c *Codec) Encrypt(plaintext string) (string, error) {
	nonce := make([]byte, c.aead.NonceSize())
	if _, err := rand.Read(nonce); err != nil {
		return "", err
	}

	sealed := c.aead.Seal(nil, nonce, []byte(plaintext), nil)
	ciphertext := sealed[:len(sealed)-gcmTagSize]
	tag := sealed[len(sealed)-gcmTagSize:]

	return hex.EncodeToString(nonce) + ":" + hex.EncodeToString(ciphertext) + ":" + hex.EncodeToString(tag), nil
}

// Decrypt opens a sealed blob. It fails with exception.ErrFormat when the
// blob cannot be parsed into nonce, ciphertext and tag, and with
// exception.ErrIntegrity when the tag does not authenticate.
func (c *Codec) Decrypt(blob string) (string, error) {
	parts := strings.Split(blob, ":")
	if len(parts) != 3 {
		return "", exception.ErrFormat
	}

	nonce, err := hex.DecodeString(parts[0])
	if err != nil {
		return "", exception.ErrFormat
	}
	ciphertext, err := hex.DecodeString(parts[1])
	if err != nil {
		return "", exception.ErrFormat
	}
	tag, err := hex.DecodeString(parts[2])
	if err != nil {
		return "", exception.ErrFormat
	}
	if len(nonce) != c.aead.NonceSize() || len(tag) != gcmTagSize {
		return "", exception.ErrFormat
	}

	plaintext, err := c.aead.Open(nil, nonce, append(ciphertext, tag...), nil)
	if err != nil {
		return "", exception.ErrIntegrity
	}
	return string(plaintext), nil
}
