package crypto

import (
	"encoding/base64"
	"errors"

	"github.com/AlexZinkM/evm-wallet/internal/model"
)

// ErrDecryptionFailed is returned for a wrong password or a damaged ciphertext.
// It is distinct from a successful decryption of an empty secret.
var ErrDecryptionFailed = errors.New("decryption failed")

// Decrypt recovers the plaintext sealed by Encrypt.
// A wrong password yields ErrDecryptionFailed and never panics.
func (c *Cipher) Decrypt(cipherText model.CipherText, password string) (string, error) {
	raw, ok := decode(cipherText)
	if !ok {
		return "", ErrDecryptionFailed
	}
	salt, nonce, sealed := raw[:saltLen], raw[saltLen:saltLen+nonceLen], raw[saltLen+nonceLen:]

	aesGCM, err := c.newGCM([]byte(password), salt)
	if err != nil {
		return "", ErrDecryptionFailed
	}

	// Decrypt
	plaintext, err := aesGCM.Open(nil, nonce, sealed, nil)
	if err != nil {
		return "", ErrDecryptionFailed
	}
	defer clear(plaintext) // wipe decrypted bytes from memory

	return string(plaintext), nil
}

// WellFormed reports whether s has the shape of a ciphertext produced by Encrypt.
// Plaintext secrets (hex keys, mnemonics) never pass.
func WellFormed(s model.CipherText) bool {
	_, ok := decode(s)
	return ok
}

// decode base64-decodes a ciphertext and checks its minimum length
func decode(s model.CipherText) ([]byte, bool) {
	raw, err := base64.StdEncoding.DecodeString(string(s))
	if err != nil || len(raw) < saltLen+nonceLen+gcmTagLen {
		return nil, false
	}
	return raw, true
}
