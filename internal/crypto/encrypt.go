package crypto

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"encoding/base64"
	"fmt"
	"io"

	"github.com/AlexZinkM/evm-wallet/internal/model"

	"golang.org/x/crypto/scrypt"
)

const (
	// scrypt parameters for local wallet
	// Security is prioritized over performance
	//
	// N=2^18 (~256MB RAM, 0.5-2s) - optimal balance:
	//   - Maximum security while remaining compatible with mobile devices
	//   - Works on phones (4-16GB RAM) and desktops alike
	//   - Brute-force attacks remain extremely expensive
	scryptN      = 1 << 18
	scryptR      = 8
	scryptP      = 1
	scryptKeyLen = 32
	saltLen      = 32
	nonceLen     = 12
	gcmTagLen    = 16
)

// ScryptParams are the key derivation cost parameters
type ScryptParams struct {
	N int
	R int
	P int
}

// DefaultParams returns the production key derivation cost
func DefaultParams() ScryptParams {
	return ScryptParams{N: scryptN, R: scryptR, P: scryptP}
}

// Cipher encrypts secret strings under a password.
// Each Encrypt uses a fresh salt and nonce, so equal inputs give different ciphertexts.
type Cipher struct {
	params ScryptParams
}

// NewCipher creates a Cipher with the given scrypt cost
func NewCipher(params ScryptParams) *Cipher {
	return &Cipher{params: params}
}

// Encrypt encrypts plaintext with a key derived from password.
// The result is base64(salt || nonce || sealed).
func (c *Cipher) Encrypt(plaintext, password string) (model.CipherText, error) {
	// Generate salt and nonce
	buf := make([]byte, saltLen+nonceLen)
	if _, err := io.ReadFull(rand.Reader, buf); err != nil {
		return "", fmt.Errorf("failed to generate salt and nonce: %w", err)
	}
	salt, nonce := buf[:saltLen], buf[saltLen:]

	aesGCM, err := c.newGCM([]byte(password), salt)
	if err != nil {
		return "", err
	}

	pt := []byte(plaintext)
	defer clear(pt) // wipe plaintext bytes from memory

	// Encrypt
	sealed := aesGCM.Seal(buf, nonce, pt, nil)

	return model.CipherText(base64.StdEncoding.EncodeToString(sealed)), nil
}

// newGCM derives the key from password and salt and builds AES-GCM
func (c *Cipher) newGCM(password, salt []byte) (cipher.AEAD, error) {
	// Derive key from password
	key, err := scrypt.Key(password, salt, c.params.N, c.params.R, c.params.P, scryptKeyLen)
	if err != nil {
		return nil, fmt.Errorf("failed to derive key: %w", err)
	}
	defer clear(key)

	// Create AES cipher
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("failed to create cipher: %w", err)
	}

	// Create GCM
	aesGCM, err := cipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("failed to create GCM: %w", err)
	}
	return aesGCM, nil
}
