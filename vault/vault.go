// Package vault provides authenticated symmetric encryption for
// sensitive payloads using AES-256-GCM.
//
// The wire format is nonce||ciphertext encoded as base64 (default) or
// hex. A fresh 16-byte nonce is generated for every Encrypt call;
// nonces are never reused with the same key. Tampered ciphertext or a
// wrong key fails GCM tag verification on Decrypt.
//
// The key is supplied once at construction and must be exactly
// 32 bytes. There is deliberately no fallback key: a deployment
// without a configured key must refuse to start rather than encrypt
// with a guessable default.
package vault

import (
	"context"
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"encoding/base64"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"log/slog"
)

// nonceSize is the per-message nonce length. 16 bytes rather than
// GCM's 12-byte default to stay wire-compatible with payloads written
// by the WebCrypto-based predecessor.
const nonceSize = 16

// keySize is the AES-256 key length.
const keySize = 32

// Sentinel errors. Primitive failures wrap one of these so callers
// can branch with errors.Is without inspecting messages.
var (
	ErrEncrypt = errors.New("vault: encryption failed")
	ErrDecrypt = errors.New("vault: decryption failed")
)

// Encoding selects the text representation of the sealed payload.
type Encoding string

const (
	EncodingBase64 Encoding = "base64"
	EncodingHex    Encoding = "hex"
)

// Option configures a single Encrypt or Decrypt call.
type Option func(*callOptions)

type callOptions struct {
	encoding Encoding
}

// WithEncoding selects hex or base64 output. Default is base64.
func WithEncoding(enc Encoding) Option {
	return func(o *callOptions) {
		o.encoding = enc
	}
}

// Vault seals and opens payloads with a single process-wide key.
type Vault struct {
	aead   cipher.AEAD
	logger *slog.Logger
}

// New creates a Vault. The key must be exactly 32 bytes.
func New(key []byte, logger *slog.Logger) (*Vault, error) {
	if len(key) != keySize {
		return nil, fmt.Errorf("vault: key must be exactly %d bytes for AES-256, got %d", keySize, len(key))
	}
	if logger == nil {
		logger = slog.Default()
	}

	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("vault: create cipher: %w", err)
	}

	aead, err := cipher.NewGCMWithNonceSize(block, nonceSize)
	if err != nil {
		return nil, fmt.Errorf("vault: create GCM: %w", err)
	}

	return &Vault{aead: aead, logger: logger}, nil
}

// Encrypt seals plaintext and returns the encoded nonce||ciphertext.
// The context is honored before the primitive runs so callers can
// bound a slow hardware crypto provider.
func (v *Vault) Encrypt(ctx context.Context, plaintext string, opts ...Option) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", fmt.Errorf("%w: %w", ErrEncrypt, err)
	}

	nonce := make([]byte, nonceSize)
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		v.logger.Error("encryption failed", "error", err)
		return "", fmt.Errorf("%w: generate nonce: %w", ErrEncrypt, err)
	}

	// Seal appends to the nonce slice, producing nonce||ciphertext.
	sealed := v.aead.Seal(nonce, nonce, []byte(plaintext), nil)
	return encode(sealed, resolveEncoding(opts)), nil
}

// Decrypt reverses Encrypt: decodes, splits the nonce, and opens the
// ciphertext. Fails on corrupt input, a wrong key, or a failed
// authentication tag.
func (v *Vault) Decrypt(ctx context.Context, encoded string, opts ...Option) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", fmt.Errorf("%w: %w", ErrDecrypt, err)
	}

	sealed, err := decode(encoded, resolveEncoding(opts))
	if err != nil {
		v.logger.Error("decryption failed", "error", err)
		return "", fmt.Errorf("%w: decode: %w", ErrDecrypt, err)
	}

	if len(sealed) < nonceSize {
		v.logger.Error("decryption failed", "error", "ciphertext too short")
		return "", fmt.Errorf("%w: ciphertext too short", ErrDecrypt)
	}

	nonce, ciphertext := sealed[:nonceSize], sealed[nonceSize:]
	plaintext, err := v.aead.Open(nil, nonce, ciphertext, nil)
	if err != nil {
		v.logger.Error("decryption failed", "error", err)
		return "", fmt.Errorf("%w: %w", ErrDecrypt, err)
	}

	return string(plaintext), nil
}

func resolveEncoding(opts []Option) Encoding {
	o := callOptions{encoding: EncodingBase64}
	for _, opt := range opts {
		opt(&o)
	}
	return o.encoding
}

func encode(data []byte, enc Encoding) string {
	if enc == EncodingHex {
		return hex.EncodeToString(data)
	}
	return base64.StdEncoding.EncodeToString(data)
}

func decode(s string, enc Encoding) ([]byte, error) {
	if enc == EncodingHex {
		return hex.DecodeString(s)
	}
	return base64.StdEncoding.DecodeString(s)
}

// GenerateKey generates a new random 32-byte key.
func GenerateKey() ([]byte, error) {
	key := make([]byte, keySize)
	if _, err := rand.Read(key); err != nil {
		return nil, fmt.Errorf("vault: generate key: %w", err)
	}
	return key, nil
}

// KeyToBase64 encodes a key for storage in configuration.
func KeyToBase64(key []byte) string {
	return base64.StdEncoding.EncodeToString(key)
}

// KeyFromBase64 decodes a base64-encoded key, as stored in
// configuration.
func KeyFromBase64(s string) ([]byte, error) {
	key, err := base64.StdEncoding.DecodeString(s)
	if err != nil {
		return nil, fmt.Errorf("vault: decode key: %w", err)
	}
	if len(key) != keySize {
		return nil, fmt.Errorf("vault: key must be %d bytes, got %d", keySize, len(key))
	}
	return key, nil
}
