// Package cryptoutil implements the storage engine's codec and at-rest
// encryption (spec §4.A): values are serialized to compact JSON, then
// optionally sealed with AES-256-GCM under a key derived once at open time.
package cryptoutil

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"encoding/json"
	"fmt"

	"golang.org/x/crypto/pbkdf2"
)

const (
	// KeyLength is the derived AES-256 key size in bytes.
	KeyLength = 32
	// SaltLength is the per-database PBKDF2 salt size in bytes.
	SaltLength = 32
	// NonceLength is the AES-GCM nonce size in bytes (96 bits).
	NonceLength = 12
	// pbkdf2Iterations matches spec §4.A: 100,000 rounds of HMAC-SHA-256.
	pbkdf2Iterations = 100_000
)

// Codec serializes values to JSON and, when a key is configured, seals the
// resulting bytes with AES-256-GCM. A nil-key Codec is a pass-through,
// matching the "encryption disabled" deployment mode.
type Codec struct {
	aead cipher.AEAD
}

// NewSalt generates a fresh random salt suitable for DeriveKey. Callers
// persist it as the `encryption_salt` setting on first open.
func NewSalt() ([]byte, error) {
	salt := make([]byte, SaltLength)
	if _, err := rand.Read(salt); err != nil {
		return nil, fmt.Errorf("generate salt: %w", err)
	}
	return salt, nil
}

// DeriveKey derives the symmetric key from an operator passphrase and the
// per-database salt via PBKDF2-HMAC-SHA-256 with 100,000 iterations.
func DeriveKey(passphrase string, salt []byte) []byte {
	return pbkdf2.Key([]byte(passphrase), salt, pbkdf2Iterations, KeyLength, sha256.New)
}

// NewCodec builds a Codec from a derived key. Pass a nil key to obtain a
// plaintext (encryption-disabled) codec.
func NewCodec(key []byte) (*Codec, error) {
	if key == nil {
		return &Codec{}, nil
	}
	if len(key) != KeyLength {
		return nil, fmt.Errorf("cryptoutil: key must be %d bytes, got %d", KeyLength, len(key))
	}
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("new cipher: %w", err)
	}
	aead, err := cipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("new gcm: %w", err)
	}
	return &Codec{aead: aead}, nil
}

// Enabled reports whether this codec seals values (vs. plaintext passthrough).
func (c *Codec) Enabled() bool {
	return c != nil && c.aead != nil
}

// Encode marshals v to JSON, then seals it if encryption is enabled. The
// sealed form is the fresh nonce followed by the GCM ciphertext (spec §4.A:
// "prefixed with a fresh 96-bit nonce").
func (c *Codec) Encode(v interface{}) ([]byte, error) {
	plain, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("marshal: %w", err)
	}
	if !c.Enabled() {
		return plain, nil
	}

	nonce := make([]byte, NonceLength)
	if _, err := rand.Read(nonce); err != nil {
		return nil, fmt.Errorf("read nonce: %w", err)
	}
	sealed := c.aead.Seal(nil, nonce, plain, nil)

	out := make([]byte, 0, len(nonce)+len(sealed))
	out = append(out, nonce...)
	out = append(out, sealed...)
	return out, nil
}

// Decode reverses Encode into v. Returns ErrDecrypt if authentication tag
// verification fails (wrong passphrase, tampered blob, or too-short input).
func (c *Codec) Decode(blob []byte, v interface{}) error {
	plain := blob
	if c.Enabled() {
		if len(blob) < NonceLength {
			return ErrDecrypt
		}
		nonce := blob[:NonceLength]
		body := blob[NonceLength:]
		opened, err := c.aead.Open(nil, nonce, body, nil)
		if err != nil {
			return ErrDecrypt
		}
		plain = opened
	}
	if err := json.Unmarshal(plain, v); err != nil {
		return fmt.Errorf("unmarshal: %w", err)
	}
	return nil
}
